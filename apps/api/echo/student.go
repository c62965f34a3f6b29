package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/msaada/core/award"
	"github.com/trezcool/msaada/core/student"
)

type studentApi struct {
	svc      *student.Service
	awardSvc *award.Service
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := studentApi{
		svc:      deps.StudentSvc,
		awardSvc: deps.AwardSvc,
		validate: deps.Validate,
	}

	sg := g.Group("/students", jwt)
	sg.POST("", api.create, staffMiddleware())
	sg.GET("", api.query, staffMiddleware())
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update, staffMiddleware())
	sg.POST("/:id/service-hours", api.recordServiceHours, staffMiddleware())
	sg.GET("/:id/service-hours/:semester", api.serviceHoursTotal)
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(reqCtx, api.validate, api.svc); err != nil {
		return err
	}

	std, err := api.svc.Create(reqCtx, data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	filter.Clean()

	students, err := api.svc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	std, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) update(ctx echo.Context) error {
	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

// recordServiceHours logs a block of community-service work and propagates
// the student's new semester total to their open award applications.
func (api *studentApi) recordServiceHours(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	studentID := ctx.Param("id")

	var data ServiceHoursRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ServiceHoursRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.svc.GetByID(reqCtx, studentID); err != nil {
		return err
	}

	total, err := api.svc.RecordServiceHours(reqCtx, studentID, data.Semester, data.Activity, data.Hours)
	if err != nil {
		return errors.Wrap(err, "recording service hours")
	}

	apps, err := api.awardSvc.Filter(reqCtx, award.QueryFilter{StudentID: studentID, Semester: data.Semester})
	if err != nil {
		return errors.Wrap(err, "loading applications")
	}
	for _, app := range apps {
		if app.Status.IsClosed() {
			continue
		}
		if _, err := api.awardSvc.SetCompletedHours(reqCtx, app.ID, total); err != nil {
			return errors.Wrap(err, "updating application hours")
		}
	}

	return ctx.JSON(http.StatusOK, ServiceHoursResponse{StudentID: studentID, Semester: data.Semester, Total: total})
}

func (api *studentApi) serviceHoursTotal(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	studentID := ctx.Param("id")
	semester := ctx.Param("semester")

	if _, err := api.svc.GetByID(reqCtx, studentID); err != nil {
		return err
	}
	total, err := api.svc.TotalServiceHours(reqCtx, studentID, semester)
	if err != nil {
		return errors.Wrap(err, "summing service hours")
	}
	return ctx.JSON(http.StatusOK, ServiceHoursResponse{StudentID: studentID, Semester: semester, Total: total})
}

type (
	ServiceHoursRequest struct {
		Semester string `json:"semester" validate:"required,semester"`
		Hours    int    `json:"hours" validate:"required,gt=0"`
		Activity string `json:"activity"`
	}

	ServiceHoursResponse struct {
		StudentID string `json:"student_id"`
		Semester  string `json:"semester"`
		Total     int    `json:"total"`
	}
)

func (sr *ServiceHoursRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(sr)
}
