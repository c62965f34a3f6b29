package award

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/msaada/core"
)

var (
	// errors
	ErrNotFound          = errors.New("application not found")
	ErrInvalidTransition = errors.New("transition not allowed from the current status")
	ErrUnauthorized      = errors.New("role not permitted for this transition")
	ErrMissingComment    = errors.New("a comment is required for this transition")
)

// Status is an award application's position in the disbursement workflow.
type Status string

const (
	StatusDraft                  Status = "draft"
	StatusSubmitted              Status = "submitted"
	StatusHoursVerification      Status = "hours_verification"
	StatusHoursApproved          Status = "hours_approved"
	StatusHoursRejected          Status = "hours_rejected"
	StatusResubmitted            Status = "resubmitted"
	StatusHoursRejectionExpired  Status = "hours_rejection_expired"
	StatusDisbursementPending    Status = "disbursement_pending"
	StatusDisbursementProcessing Status = "disbursement_processing"
	StatusAccountingReview       Status = "accounting_review"
	StatusAccountingApproved     Status = "accounting_approved"
	StatusDisbursed              Status = "disbursed"
	StatusCancelled              Status = "cancelled"
	StatusReturned               Status = "returned"
)

func (s Status) String() string { return string(s) }

// IsClosed reports whether the application has left the active pipeline.
// Closed applications never appear in the operations queue.
func (s Status) IsClosed() bool {
	return s == StatusDisbursed || s == StatusCancelled || s == StatusReturned
}

// AllStatuses lists every modeled status, in workflow order.
var AllStatuses = []Status{
	StatusDraft,
	StatusSubmitted,
	StatusHoursVerification,
	StatusHoursApproved,
	StatusHoursRejected,
	StatusResubmitted,
	StatusHoursRejectionExpired,
	StatusDisbursementPending,
	StatusDisbursementProcessing,
	StatusAccountingReview,
	StatusAccountingApproved,
	StatusDisbursed,
	StatusCancelled,
	StatusReturned,
}

// Actor identifies who requests a transition. SystemActor is used by the
// escalation sweeper for automatic transitions.
type Actor struct {
	Name  string
	Roles []string
}

var SystemActor = Actor{Name: "System"}

// AuditEntry records one successful transition. Entries are append-only and
// chronological; the engine never edits or removes them.
type AuditEntry struct {
	Timestamp  time.Time `json:"timestamp"` // UTC
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	Actor      string    `json:"actor"`
	Comment    string    `json:"comment,omitempty"`
}

type Application struct {
	ID                    string `json:"id"`
	StudentID             string `json:"student_id"`
	Semester              string `json:"semester"`
	Name                  string `json:"name"`
	Amount                int    `json:"amount"`
	RequiredServiceHours  int    `json:"required_service_hours"`
	CompletedServiceHours int    `json:"completed_service_hours"`

	Status          Status     `json:"status"`
	StatusDeadline  *time.Time `json:"status_deadline,omitempty"` // UTC; set iff the status carries an SLA
	StatusUpdatedAt time.Time  `json:"status_updated_at"`         // UTC
	StatusUpdatedBy string     `json:"status_updated_by"`
	RejectionCount  int        `json:"rejection_count"`
	CurrentHandler  string     `json:"current_handler"`

	AuditHistory []AuditEntry `json:"audit_history"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// HoursComplete reports whether the applicant has worked off the required
// service hours.
func (app *Application) HoursComplete() bool {
	return app.CompletedServiceHours >= app.RequiredServiceHours
}

// NewApplication contains information needed to open a new Application.
type NewApplication struct {
	StudentID            string `json:"student_id" validate:"required,uuid4"`
	Semester             string `json:"semester" validate:"required,semester"`
	Name                 string `json:"name" validate:"required"`
	Amount               int    `json:"amount" validate:"required,gt=0"`
	RequiredServiceHours int    `json:"required_service_hours" validate:"gte=0"`
}

// TransitionRequest is the payload of a transition call.
type TransitionRequest struct {
	Target  Status `json:"target" validate:"required"`
	Comment string `json:"comment"`
}

type QueryFilter struct {
	StudentID string   `query:"student_id"`
	Semester  string   `query:"semester"`
	Statuses  []Status `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.StudentID == "" && qf.Semester == "" && qf.Statuses == nil
}

func (qf *QueryFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.Semester = core.CleanString(qf.Semester)
}

// SweepReport summarizes one escalation pass.
type SweepReport struct {
	Expired  int  `json:"expired"`
	Notified bool `json:"notified"`
}

type Repository interface {
	CreateApplication(ctx context.Context, app Application) (Application, error)
	GetApplicationByID(ctx context.Context, id string) (Application, error)
	QueryAllApplications(ctx context.Context) ([]Application, error)
	// FilterApplications applies AND operation on available QueryFilter fields.
	FilterApplications(ctx context.Context, filter QueryFilter) ([]Application, error)
	// UpdateApplicationStatus persists only the workflow-owned fields: status,
	// deadline, handler, rejection count, audit history and update stamps.
	// Other fields may be mutated by external collaborators concurrently.
	UpdateApplicationStatus(ctx context.Context, app Application) (Application, error)
	// UpdateApplicationHours records service hours computed outside the engine.
	UpdateApplicationHours(ctx context.Context, id string, completed int) (Application, error)
}
