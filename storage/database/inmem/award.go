package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/msaada/core/award"
)

type applicationRepository struct {
	db *awardTable
}

var _ award.Repository = (*applicationRepository)(nil)

func NewApplicationRepository(db *DB) *applicationRepository {
	return &applicationRepository{db: db.award}
}

// copyApp deep-copies the audit history so callers observe value semantics,
// matching the database-backed repository.
func copyApp(app award.Application) award.Application {
	cp := app
	cp.AuditHistory = make([]award.AuditEntry, len(app.AuditHistory))
	copy(cp.AuditHistory, app.AuditHistory)
	if app.StatusDeadline != nil {
		deadline := *app.StatusDeadline
		cp.StatusDeadline = &deadline
	}
	return cp
}

func (r *applicationRepository) query() []award.Application {
	res := make([]award.Application, 0, len(r.db.t))
	for _, app := range r.db.t {
		res = append(res, copyApp(*app))
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res
}

func (r *applicationRepository) CreateApplication(ctx context.Context, app award.Application) (award.Application, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	cp := copyApp(app)
	r.db.t[app.ID] = &cp
	return app, nil
}

func (r *applicationRepository) GetApplicationByID(ctx context.Context, id string) (award.Application, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if app, ok := r.db.t[id]; ok {
		return copyApp(*app), nil
	}
	return award.Application{}, award.ErrNotFound
}

func (r *applicationRepository) QueryAllApplications(ctx context.Context) ([]award.Application, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	return r.query(), nil
}

func (r *applicationRepository) FilterApplications(ctx context.Context, filter award.QueryFilter) ([]award.Application, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	match := func(app award.Application) bool {
		if filter.StudentID != "" && app.StudentID != filter.StudentID {
			return false
		}
		if filter.Semester != "" && app.Semester != filter.Semester {
			return false
		}
		if len(filter.Statuses) > 0 {
			var any bool
			for _, s := range filter.Statuses {
				if app.Status == s {
					any = true
					break
				}
			}
			if !any {
				return false
			}
		}
		return true
	}

	res := make([]award.Application, 0)
	for _, app := range r.query() {
		if match(app) {
			res = append(res, app)
		}
	}
	return res, nil
}

func (r *applicationRepository) UpdateApplicationStatus(ctx context.Context, app award.Application) (award.Application, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	curr, ok := r.db.t[app.ID]
	if !ok {
		return award.Application{}, award.ErrNotFound
	}
	curr.Status = app.Status
	if app.StatusDeadline != nil {
		deadline := *app.StatusDeadline
		curr.StatusDeadline = &deadline
	} else {
		curr.StatusDeadline = nil
	}
	curr.StatusUpdatedAt = app.StatusUpdatedAt
	curr.StatusUpdatedBy = app.StatusUpdatedBy
	curr.RejectionCount = app.RejectionCount
	curr.CurrentHandler = app.CurrentHandler
	curr.AuditHistory = make([]award.AuditEntry, len(app.AuditHistory))
	copy(curr.AuditHistory, app.AuditHistory)
	curr.UpdatedAt = app.UpdatedAt
	return copyApp(*curr), nil
}

func (r *applicationRepository) UpdateApplicationHours(ctx context.Context, id string, completed int) (award.Application, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	curr, ok := r.db.t[id]
	if !ok {
		return award.Application{}, award.ErrNotFound
	}
	curr.CompletedServiceHours = completed
	return copyApp(*curr), nil
}
