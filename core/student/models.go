package student

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/msaada/core"
)

var (
	// errors
	ErrNotFound    = errors.New("student not found")
	ErrRegNoExists = errors.New("a student with this registration number already exists")
)

type Student struct {
	ID        string    `json:"id"`
	RegNo     string    `json:"reg_no"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Programme string    `json:"programme"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewStudent contains information needed to register a new Student.
type NewStudent struct {
	RegNo     string `json:"reg_no" validate:"required,alphanum_"`
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
	Programme string `json:"programme"`
}

func (ns *NewStudent) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	ns.RegNo = core.CleanString(ns.RegNo, true /* lower */)
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Programme = core.CleanString(ns.Programme)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckRegNoUniqueness(ctx, ns.RegNo)
}

// UpdateStudent contains the fields that may change after registration.
// Empty fields keep their current value.
type UpdateStudent struct {
	Name      string `json:"name"`
	Email     string `json:"email" validate:"omitempty,email"`
	Programme string `json:"programme"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	us.Email = core.CleanString(us.Email, true /* lower */)
	us.Programme = core.CleanString(us.Programme)
	return validate.Struct(us)
}

// ServiceHoursEntry is one recorded block of community-service work.
// Completed hours on award applications are the sum of a student's entries
// for the semester; the workflow engine consumes that sum, never the entries.
type ServiceHoursEntry struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Semester  string    `json:"semester"`
	Hours     int       `json:"hours" validate:"required,gt=0"`
	Activity  string    `json:"activity"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type QueryFilter struct {
	Search    string `query:"search"`
	Programme string `query:"programme"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Programme == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Programme = core.CleanString(qf.Programme)
}

type Repository interface {
	CheckRegNoUniqueness(ctx context.Context, regNo string) error
	CreateStudent(ctx context.Context, std Student) (Student, error)
	QueryAllStudents(ctx context.Context) ([]Student, error)
	GetStudentByID(ctx context.Context, id string) (Student, error)
	GetStudentByRegNo(ctx context.Context, regNo string) (Student, error)
	FilterStudents(ctx context.Context, filter QueryFilter) ([]Student, error)
	UpdateStudent(ctx context.Context, std Student) (Student, error)
	AddServiceHours(ctx context.Context, entry ServiceHoursEntry) (ServiceHoursEntry, error)
	SumServiceHours(ctx context.Context, studentID, semester string) (int, error)
}
