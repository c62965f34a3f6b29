package student

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/msaada/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckRegNoUniqueness(ctx context.Context, regNo string) error {
	if err := svc.repo.CheckRegNoUniqueness(ctx, regNo); err != nil {
		if err == ErrRegNoExists {
			return core.NewValidationError(err, core.FieldError{Field: "reg_no", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	std := Student{
		ID:        uuid.New().String(),
		RegNo:     ns.RegNo,
		Name:      ns.Name,
		Email:     ns.Email,
		Programme: ns.Programme,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) GetByRegNo(ctx context.Context, regNo string) (Student, error) {
	return svc.repo.GetStudentByRegNo(ctx, core.CleanString(regNo, true /* lower */))
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if us.Name != "" {
		std.Name = us.Name
	}
	if us.Email != "" {
		std.Email = us.Email
	}
	if us.Programme != "" {
		std.Programme = us.Programme
	}
	std.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]Student, error) {
	if filter.IsEmpty() {
		return svc.repo.QueryAllStudents(ctx)
	}
	return svc.repo.FilterStudents(ctx, filter)
}

// RecordServiceHours logs a block of community-service work and returns the
// student's new total for the semester.
func (svc *Service) RecordServiceHours(ctx context.Context, studentID, semester, activity string, hours int) (int, error) {
	entry := ServiceHoursEntry{
		ID:        uuid.New().String(),
		StudentID: studentID,
		Semester:  semester,
		Hours:     hours,
		Activity:  core.CleanString(activity),
		CreatedAt: time.Now().UTC(),
	}
	if _, err := svc.repo.AddServiceHours(ctx, entry); err != nil {
		return 0, err
	}
	return svc.repo.SumServiceHours(ctx, studentID, semester)
}

func (svc *Service) TotalServiceHours(ctx context.Context, studentID, semester string) (int, error) {
	return svc.repo.SumServiceHours(ctx, studentID, semester)
}
