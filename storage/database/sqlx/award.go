package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/msaada/core/award"
)

type applicationRow struct {
	ID                    string          `db:"id"`
	StudentID             string          `db:"student_id"`
	Semester              string          `db:"semester"`
	Name                  string          `db:"name"`
	Amount                int             `db:"amount"`
	RequiredServiceHours  int             `db:"required_service_hours"`
	CompletedServiceHours int             `db:"completed_service_hours"`
	Status                string          `db:"status"`
	StatusDeadline        null.Time       `db:"status_deadline"`
	StatusUpdatedAt       null.Time       `db:"status_updated_at"`
	StatusUpdatedBy       null.String     `db:"status_updated_by"`
	RejectionCount        int             `db:"rejection_count"`
	CurrentHandler        null.String     `db:"current_handler"`
	AuditHistory          json.RawMessage `db:"audit_history"`
	CreatedAt             null.Time       `db:"created_at"`
	UpdatedAt             null.Time       `db:"updated_at"`
}

func (r applicationRow) unpack() (award.Application, error) {
	var history []award.AuditEntry
	if len(r.AuditHistory) > 0 {
		if err := json.Unmarshal(r.AuditHistory, &history); err != nil {
			return award.Application{}, errors.Wrap(err, "decoding audit history")
		}
	}
	return award.Application{
		ID:                    r.ID,
		StudentID:             r.StudentID,
		Semester:              r.Semester,
		Name:                  r.Name,
		Amount:                r.Amount,
		RequiredServiceHours:  r.RequiredServiceHours,
		CompletedServiceHours: r.CompletedServiceHours,
		Status:                award.Status(r.Status),
		StatusDeadline:        r.StatusDeadline.Ptr(),
		StatusUpdatedAt:       r.StatusUpdatedAt.Time,
		StatusUpdatedBy:       r.StatusUpdatedBy.String,
		RejectionCount:        r.RejectionCount,
		CurrentHandler:        r.CurrentHandler.String,
		AuditHistory:          history,
		CreatedAt:             r.CreatedAt.Time,
		UpdatedAt:             r.UpdatedAt.Time,
	}, nil
}

func packApplication(app award.Application) (applicationRow, error) {
	history, err := json.Marshal(app.AuditHistory)
	if err != nil {
		return applicationRow{}, errors.Wrap(err, "encoding audit history")
	}
	return applicationRow{
		ID:                    app.ID,
		StudentID:             app.StudentID,
		Semester:              app.Semester,
		Name:                  app.Name,
		Amount:                app.Amount,
		RequiredServiceHours:  app.RequiredServiceHours,
		CompletedServiceHours: app.CompletedServiceHours,
		Status:                app.Status.String(),
		StatusDeadline:        null.TimeFromPtr(app.StatusDeadline),
		StatusUpdatedAt:       null.NewTime(app.StatusUpdatedAt.UTC(), !app.StatusUpdatedAt.IsZero()),
		StatusUpdatedBy:       null.NewString(app.StatusUpdatedBy, app.StatusUpdatedBy != ""),
		RejectionCount:        app.RejectionCount,
		CurrentHandler:        null.NewString(app.CurrentHandler, app.CurrentHandler != ""),
		AuditHistory:          history,
		CreatedAt:             null.NewTime(app.CreatedAt.UTC(), !app.CreatedAt.IsZero()),
		UpdatedAt:             null.NewTime(app.UpdatedAt.UTC(), !app.UpdatedAt.IsZero()),
	}, nil
}

type applicationRepository struct {
	db *sqlx.DB
}

var _ award.Repository = (*applicationRepository)(nil) // interface compliance check

func NewApplicationRepository(db *sql.DB) *applicationRepository {
	return &applicationRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo applicationRepository) CreateApplication(ctx context.Context, app award.Application) (award.Application, error) {
	row, err := packApplication(app)
	if err != nil {
		return award.Application{}, err
	}
	_, err = repo.db.NamedExecContext(ctx, `
		INSERT INTO award_application (
			id, student_id, semester, name, amount,
			required_service_hours, completed_service_hours,
			status, status_deadline, status_updated_at, status_updated_by,
			rejection_count, current_handler, audit_history, created_at, updated_at
		) VALUES (
			:id, :student_id, :semester, :name, :amount,
			:required_service_hours, :completed_service_hours,
			:status, :status_deadline, :status_updated_at, :status_updated_by,
			:rejection_count, :current_handler, :audit_history, :created_at, :updated_at
		)`,
		row,
	)
	if err != nil {
		return award.Application{}, errors.Wrap(err, "creating application")
	}
	return app, nil
}

func (repo applicationRepository) GetApplicationByID(ctx context.Context, id string) (award.Application, error) {
	var row applicationRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM award_application WHERE id = $1`, id); err != nil {
		return award.Application{}, trapNoRowsErr(err, award.ErrNotFound, "getting application")
	}
	return row.unpack()
}

func (repo applicationRepository) QueryAllApplications(ctx context.Context) ([]award.Application, error) {
	var rows []applicationRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM award_application ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying applications")
	}
	return unpackApplications(rows)
}

func (repo applicationRepository) FilterApplications(ctx context.Context, filter award.QueryFilter) ([]award.Application, error) {
	conds := []string{"true"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.StudentID != "" {
		conds = append(conds, fmt.Sprintf("student_id = %s", arg(filter.StudentID)))
	}
	if filter.Semester != "" {
		conds = append(conds, fmt.Sprintf("semester = %s", arg(filter.Semester)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, s.String())
		}
		conds = append(conds, fmt.Sprintf("status = ANY(%s)", arg(pq.Array(statuses))))
	}

	query := `SELECT * FROM award_application WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY created_at`
	var rows []applicationRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering applications")
	}
	return unpackApplications(rows)
}

// UpdateApplicationStatus persists only the workflow-owned columns so that
// concurrent writers of other fields (service hours) are never clobbered.
func (repo applicationRepository) UpdateApplicationStatus(ctx context.Context, app award.Application) (award.Application, error) {
	row, err := packApplication(app)
	if err != nil {
		return award.Application{}, err
	}
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE award_application SET
			status            = :status,
			status_deadline   = :status_deadline,
			status_updated_at = :status_updated_at,
			status_updated_by = :status_updated_by,
			rejection_count   = :rejection_count,
			current_handler   = :current_handler,
			audit_history     = :audit_history,
			updated_at        = :updated_at
		WHERE id = :id`,
		row,
	)
	if err != nil {
		return award.Application{}, errors.Wrap(err, "updating application status")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return award.Application{}, award.ErrNotFound
	}
	return repo.GetApplicationByID(ctx, app.ID)
}

func (repo applicationRepository) UpdateApplicationHours(ctx context.Context, id string, completed int) (award.Application, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE award_application SET completed_service_hours = $1, updated_at = now() WHERE id = $2`,
		completed, id,
	)
	if err != nil {
		return award.Application{}, errors.Wrap(err, "updating application hours")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return award.Application{}, award.ErrNotFound
	}
	return repo.GetApplicationByID(ctx, id)
}

func unpackApplications(rows []applicationRow) ([]award.Application, error) {
	apps := make([]award.Application, 0, len(rows))
	for _, row := range rows {
		app, err := row.unpack()
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, nil
}
