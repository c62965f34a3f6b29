package award

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/msaada/core"
)

var NowFunc = time.Now // mockable

// MaxRejections is the strike cap: once an application has accumulated this
// many rejections, the next rejection resolves to a terminal cancellation.
const MaxRejections = 3

// strikeCancelMarker appears in the synthesized audit comment when the
// strike policy converts a rejection into a cancellation.
const strikeCancelMarker = "rejection limit reached"

type Service struct {
	repo     Repository
	notifier core.Notifier
	logger   core.Logger
	conf     *core.Config

	// per-application serialization of the read-modify-write cycle; the
	// sweeper and interactive callers share these locks.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(repo Repository, notifier core.Notifier, logger core.Logger, conf *core.Config) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		conf:     conf,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (svc *Service) lockFor(id string) *sync.Mutex {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	lock, ok := svc.locks[id]
	if !ok {
		lock = new(sync.Mutex)
		svc.locks[id] = lock
	}
	return lock
}

// Create opens a new application in Draft and seeds its audit trail.
func (svc *Service) Create(ctx context.Context, na NewApplication, actor Actor) (Application, error) {
	now := NowFunc().UTC()
	app := Application{
		ID:                   uuid.New().String(),
		StudentID:            na.StudentID,
		Semester:             na.Semester,
		Name:                 na.Name,
		Amount:               na.Amount,
		RequiredServiceHours: na.RequiredServiceHours,
		Status:               StatusDraft,
		StatusUpdatedAt:      now,
		StatusUpdatedBy:      actor.Name,
		CurrentHandler:       HandlerFor(StatusDraft),
		AuditHistory: []AuditEntry{
			{Timestamp: now, ToStatus: StatusDraft, Actor: actor.Name, Comment: "Application created"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateApplication(ctx, app)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Application, error) {
	return svc.repo.GetApplicationByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Application, error) {
	return svc.repo.QueryAllApplications(ctx)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Application, error) {
	if filter.IsEmpty() {
		return svc.repo.QueryAllApplications(ctx)
	}
	return svc.repo.FilterApplications(ctx, filter)
}

// SetCompletedHours records service hours computed by the student module.
// Hours are not workflow-owned; this bypasses the transition machinery.
func (svc *Service) SetCompletedHours(ctx context.Context, id string, completed int) (Application, error) {
	return svc.repo.UpdateApplicationHours(ctx, id, completed)
}

// Transition moves an application along a modeled edge on behalf of actor.
// The whole read-modify-write is serialized per application; it either fully
// succeeds or leaves the record untouched. The returned record carries the
// effective status, which the strike policy may have rewritten.
func (svc *Service) Transition(ctx context.Context, id string, target Status, comment string, actor Actor) (Application, error) {
	lock := svc.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	app, err := svc.repo.GetApplicationByID(ctx, id)
	if err != nil {
		return Application{}, err
	}

	edge, ok := EdgeFor(app.Status, target)
	if !ok {
		return Application{}, ErrInvalidTransition
	}
	if !anyRoleAllowed(edge.Roles, actor.Roles) {
		return Application{}, ErrUnauthorized
	}
	if edge.RequiresComment && core.CleanString(comment) == "" {
		return Application{}, ErrMissingComment
	}

	return svc.apply(ctx, app, target, comment, actor, NowFunc().UTC())
}

// apply performs the accepted transition: strike rewrite, deadline
// computation, audit append and write-back. Callers hold the record's lock.
func (svc *Service) apply(ctx context.Context, app Application, target Status, comment string, actor Actor, now time.Time) (Application, error) {
	effective := target

	// strike policy: a rejection past the cap terminates the application.
	// The rewrite happens before the audit entry is built so the trail
	// reflects the true effective transition.
	if target == StatusHoursRejected {
		if app.RejectionCount >= MaxRejections {
			effective = StatusCancelled
			comment = synthesizeStrikeComment(comment)
		} else {
			app.RejectionCount++
		}
	}

	// administrative reopen wipes the strike record
	if app.Status == StatusCancelled && effective == StatusDraft {
		app.RejectionCount = 0
	}

	from := app.Status
	app.Status = effective
	app.StatusDeadline = DeadlineFor(effective, now)
	app.StatusUpdatedAt = now
	app.StatusUpdatedBy = actor.Name
	app.CurrentHandler = HandlerFor(effective)
	app.AuditHistory = append(app.AuditHistory, AuditEntry{
		Timestamp:  now,
		FromStatus: from,
		ToStatus:   effective,
		Actor:      actor.Name,
		Comment:    comment,
	})
	app.UpdatedAt = now

	updated, err := svc.repo.UpdateApplicationStatus(ctx, app)
	if err != nil {
		return Application{}, errors.Wrap(err, "saving application")
	}
	return updated, nil
}

func synthesizeStrikeComment(operatorComment string) string {
	msg := fmt.Sprintf("Cancelled automatically: %s (%d strikes).", strikeCancelMarker, MaxRejections)
	if c := core.CleanString(operatorComment); c != "" {
		msg += " Operator note: " + c
	}
	return msg
}

// ListByPriority buckets open applications for the operations queue.
// Closed applications (disbursed, cancelled, returned) are excluded.
func (svc *Service) ListByPriority(ctx context.Context, now time.Time) (map[Priority][]Application, error) {
	apps, err := svc.repo.QueryAllApplications(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading applications")
	}

	queue := make(map[Priority][]Application, 4)
	for _, app := range apps {
		if app.Status.IsClosed() {
			continue
		}
		p := PriorityOf(app, now)
		queue[p] = append(queue[p], app)
	}
	return queue, nil
}

// EdgeLabels returns the labels of the transitions the given roles may take
// from a status; used by the API to offer actions.
func EdgeLabels(from Status, roles []string) []string {
	var labels []string
	for _, edge := range EdgesFrom(from) {
		if anyRoleAllowed(edge.Roles, roles) {
			labels = append(labels, edge.Label)
		}
	}
	return labels
}
