package echoapi

import (
	"net/http"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/msaada/core"
	"github.com/trezcool/msaada/core/award"
)

type awardApi struct {
	svc      *award.Service
	validate *validator.Validate
}

func registerAwardAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := awardApi{
		svc:      deps.AwardSvc,
		validate: deps.Validate,
	}

	ag := g.Group("/awards", jwt)
	ag.POST("", api.create)
	ag.GET("", api.query, staffMiddleware())
	ag.GET("/queue", api.queue, staffMiddleware())
	ag.POST("/sweep", api.sweep, adminMiddleware())

	dg := ag.Group("/:id")
	dg.GET("", api.retrieve)
	dg.GET("/history", api.history)
	dg.POST("/transitions", api.transition)
	dg.PUT("/hours", api.updateHours, staffMiddleware())
}

// Handlers

func (api *awardApi) create(ctx echo.Context) error {
	var data award.NewApplication
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewApplication")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	app, err := api.svc.Create(ctx.Request().Context(), data, claimsActor(claims))
	if err != nil {
		return errors.Wrap(err, "creating application")
	}
	return ctx.JSON(http.StatusCreated, app)
}

func (api *awardApi) query(ctx echo.Context) error {
	filter := new(award.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []award.Application{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	apps, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying applications")
	}
	sortApplications(apps, ordering.Orderings)
	if apps == nil {
		apps = []award.Application{}
	}
	return ctx.JSON(http.StatusOK, apps)
}

// queue buckets open applications by urgency for the support office.
func (api *awardApi) queue(ctx echo.Context) error {
	queue, err := api.svc.ListByPriority(ctx.Request().Context(), award.NowFunc().UTC())
	if err != nil {
		return errors.Wrap(err, "building priority queue")
	}

	resp := make(map[string][]award.Application, len(queue))
	for p, apps := range queue {
		resp[p.String()] = apps
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *awardApi) retrieve(ctx echo.Context) error {
	app, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ApplicationDetailResponse{
		Application: app,
		Actions:     award.EdgeLabels(app.Status, claims.Roles),
	})
}

// history returns the audit trail, most recent entry first.
func (api *awardApi) history(ctx echo.Context) error {
	app, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	entries := make([]award.AuditEntry, len(app.AuditHistory))
	for i, entry := range app.AuditHistory {
		entries[len(entries)-1-i] = entry
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *awardApi) transition(ctx echo.Context) error {
	var data award.TransitionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TransitionRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	app, err := api.svc.Transition(ctx.Request().Context(), ctx.Param("id"), data.Target, data.Comment, claimsActor(claims))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *awardApi) updateHours(ctx echo.Context) error {
	var data UpdateHoursRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateHoursRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	app, err := api.svc.SetCompletedHours(ctx.Request().Context(), ctx.Param("id"), data.CompletedServiceHours)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *awardApi) sweep(ctx echo.Context) error {
	report, err := api.svc.Sweep(ctx.Request().Context(), award.NowFunc().UTC())
	if err != nil {
		return errors.Wrap(err, "sweeping applications")
	}
	return ctx.JSON(http.StatusOK, report)
}

func claimsActor(claims Claims) award.Actor {
	return award.Actor{Name: claims.Username, Roles: claims.Roles}
}

// sortApplications orders in place on the requested fields; unknown fields
// are ignored.
func sortApplications(apps []award.Application, orderings []core.DBOrdering) {
	for i := len(orderings) - 1; i >= 0; i-- {
		ord := orderings[i]
		var less func(a, b award.Application) bool
		switch ord.Field {
		case "created_at":
			less = func(a, b award.Application) bool { return a.CreatedAt.Before(b.CreatedAt) }
		case "updated_at":
			less = func(a, b award.Application) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
		case "status_deadline":
			less = func(a, b award.Application) bool {
				switch {
				case a.StatusDeadline == nil:
					return false
				case b.StatusDeadline == nil:
					return true
				default:
					return a.StatusDeadline.Before(*b.StatusDeadline)
				}
			}
		case "amount":
			less = func(a, b award.Application) bool { return a.Amount < b.Amount }
		case "semester":
			less = func(a, b award.Application) bool { return a.Semester < b.Semester }
		case "status":
			less = func(a, b award.Application) bool { return a.Status < b.Status }
		default:
			continue
		}
		sort.SliceStable(apps, func(x, y int) bool {
			if ord.Ascending {
				return less(apps[x], apps[y])
			}
			return less(apps[y], apps[x])
		})
	}
}

type (
	ApplicationDetailResponse struct {
		award.Application
		Actions []string `json:"actions"`
	}

	UpdateHoursRequest struct {
		CompletedServiceHours int `json:"completed_service_hours" validate:"gte=0"`
	}
)

func (ur *UpdateHoursRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(ur)
}
