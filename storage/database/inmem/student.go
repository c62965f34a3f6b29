package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/msaada/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db.student}
}

func (r *studentRepository) query() []student.Student {
	res := make([]student.Student, 0, len(r.db.t))
	for _, std := range r.db.t {
		res = append(res, *std)
	}
	return res
}

func (r *studentRepository) CheckRegNoUniqueness(ctx context.Context, regNo string) error {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	for _, std := range r.db.t {
		if std.RegNo == regNo {
			return student.ErrRegNoExists
		}
	}
	return nil
}

func (r *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	r.db.t[std.ID] = &std
	return std, nil
}

func (r *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	return r.query(), nil
}

func (r *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	if std, ok := r.db.t[id]; ok {
		return *std, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (r *studentRepository) GetStudentByRegNo(ctx context.Context, regNo string) (student.Student, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	for _, std := range r.db.t {
		if std.RegNo == regNo {
			return *std, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (r *studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	match := func(std student.Student) bool {
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(std.Name), s) &&
				!strings.Contains(strings.ToLower(std.RegNo), s) &&
				!strings.Contains(strings.ToLower(std.Email), s) {
				return false
			}
		}
		if filter.Programme != "" && std.Programme != filter.Programme {
			return false
		}
		return true
	}

	res := make([]student.Student, 0)
	for _, std := range r.query() {
		if match(std) {
			res = append(res, std)
		}
	}
	return res, nil
}

func (r *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	curr, ok := r.db.t[std.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if std.Name != "" {
		curr.Name = std.Name
	}
	if std.Email != "" {
		curr.Email = std.Email
	}
	if std.Programme != "" {
		curr.Programme = std.Programme
	}
	curr.UpdatedAt = std.UpdatedAt
	return *curr, nil
}

func (r *studentRepository) AddServiceHours(ctx context.Context, entry student.ServiceHoursEntry) (student.ServiceHoursEntry, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()

	r.db.hours = append(r.db.hours, entry)
	return entry, nil
}

func (r *studentRepository) SumServiceHours(ctx context.Context, studentID, semester string) (int, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()

	var total int
	for _, entry := range r.db.hours {
		if entry.StudentID == studentID && entry.Semester == semester {
			total += entry.Hours
		}
	}
	return total, nil
}
