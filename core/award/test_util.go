package award

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/msaada/core"
	testutil "github.com/trezcool/msaada/tests"
)

// memRepo is a minimal in-memory Repository for engine tests. Writes for an
// application ID listed in failUpdate error out, to exercise failure paths.
type memRepo struct {
	mu         sync.Mutex
	apps       map[string]*Application
	failUpdate map[string]error
}

var _ Repository = (*memRepo)(nil)

func newMemRepo() *memRepo {
	return &memRepo{
		apps:       make(map[string]*Application),
		failUpdate: make(map[string]error),
	}
}

func copyTestApp(app Application) Application {
	cp := app
	cp.AuditHistory = append([]AuditEntry(nil), app.AuditHistory...)
	if app.StatusDeadline != nil {
		deadline := *app.StatusDeadline
		cp.StatusDeadline = &deadline
	}
	return cp
}

func (r *memRepo) CreateApplication(ctx context.Context, app Application) (Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := copyTestApp(app)
	r.apps[app.ID] = &cp
	return app, nil
}

func (r *memRepo) GetApplicationByID(ctx context.Context, id string) (Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if app, ok := r.apps[id]; ok {
		return copyTestApp(*app), nil
	}
	return Application{}, ErrNotFound
}

func (r *memRepo) QueryAllApplications(ctx context.Context) ([]Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]Application, 0, len(r.apps))
	for _, app := range r.apps {
		res = append(res, copyTestApp(*app))
	}
	return res, nil
}

func (r *memRepo) FilterApplications(ctx context.Context, filter QueryFilter) ([]Application, error) {
	apps, _ := r.QueryAllApplications(ctx)
	res := make([]Application, 0)
	for _, app := range apps {
		if filter.StudentID != "" && app.StudentID != filter.StudentID {
			continue
		}
		if filter.Semester != "" && app.Semester != filter.Semester {
			continue
		}
		res = append(res, app)
	}
	return res, nil
}

func (r *memRepo) UpdateApplicationStatus(ctx context.Context, app Application) (Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failUpdate[app.ID]; ok {
		return Application{}, err
	}
	curr, ok := r.apps[app.ID]
	if !ok {
		return Application{}, ErrNotFound
	}
	curr.Status = app.Status
	curr.StatusDeadline = app.StatusDeadline
	curr.StatusUpdatedAt = app.StatusUpdatedAt
	curr.StatusUpdatedBy = app.StatusUpdatedBy
	curr.RejectionCount = app.RejectionCount
	curr.CurrentHandler = app.CurrentHandler
	curr.AuditHistory = append([]AuditEntry(nil), app.AuditHistory...)
	curr.UpdatedAt = app.UpdatedAt
	return copyTestApp(*curr), nil
}

func (r *memRepo) UpdateApplicationHours(ctx context.Context, id string, completed int) (Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	curr, ok := r.apps[id]
	if !ok {
		return Application{}, ErrNotFound
	}
	curr.CompletedServiceHours = completed
	return copyTestApp(*curr), nil
}

// testNotifier records notifications for assertions.
type testNotifier struct {
	mu         sync.Mutex
	messages   []string
	severities []core.Severity
}

var _ core.Notifier = (*testNotifier)(nil)

func (n *testNotifier) Notify(msg string, severity core.Severity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	n.severities = append(n.severities, severity)
}

func newTestService(t *testing.T) (*Service, *memRepo, *testNotifier) {
	t.Helper()
	repo := newMemRepo()
	notifier := new(testNotifier)
	svc := NewService(repo, notifier, testutil.NewLogger(), testutil.NewConfig())
	return svc, repo, notifier
}

// seedApplication drops an application with the given workflow state straight
// into the repo, bypassing the transition machinery.
func seedApplication(t *testing.T, repo *memRepo, status Status, deadline *time.Time, rejections int) Application {
	t.Helper()
	now := NowFunc().UTC()
	app := Application{
		ID:                   uuid.New().String(),
		StudentID:            uuid.New().String(),
		Semester:             "2026-S1",
		Name:                 "Community Service Award",
		Amount:               500,
		RequiredServiceHours: 40,
		Status:               status,
		StatusDeadline:       deadline,
		StatusUpdatedAt:      now,
		StatusUpdatedBy:      "seed",
		RejectionCount:       rejections,
		CurrentHandler:       HandlerFor(status),
		AuditHistory: []AuditEntry{
			{Timestamp: now, ToStatus: status, Actor: "seed"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	created, err := repo.CreateApplication(context.Background(), app)
	if err != nil {
		t.Fatalf("seedApplication() failed: %v", err)
	}
	return created
}

var (
	studentActor = Actor{Name: "student", Roles: []string{"student:"}}
	staffActor   = Actor{Name: "staff", Roles: []string{"staff:"}}
	financeActor = Actor{Name: "finance", Roles: []string{"staff:finance"}}
	adminActor   = Actor{Name: "admin", Roles: []string{"admin:principal"}}
)
