package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/msaada/core/student"
)

type studentRow struct {
	ID        string      `db:"id"`
	RegNo     string      `db:"reg_no"`
	Name      string      `db:"name"`
	Email     null.String `db:"email"`
	Programme null.String `db:"programme"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

func (r studentRow) unpack() student.Student {
	return student.Student{
		ID:        r.ID,
		RegNo:     r.RegNo,
		Name:      r.Name,
		Email:     r.Email.String,
		Programme: r.Programme.String,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

func packStudent(std student.Student) studentRow {
	return studentRow{
		ID:        std.ID,
		RegNo:     std.RegNo,
		Name:      std.Name,
		Email:     null.NewString(std.Email, std.Email != ""),
		Programme: null.NewString(std.Programme, std.Programme != ""),
		CreatedAt: null.NewTime(std.CreatedAt.UTC(), !std.CreatedAt.IsZero()),
		UpdatedAt: null.NewTime(std.UpdatedAt.UTC(), !std.UpdatedAt.IsZero()),
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sql.DB) *studentRepository {
	return &studentRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo studentRepository) CheckRegNoUniqueness(ctx context.Context, regNo string) error {
	var exists bool
	err := repo.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM student WHERE reg_no = $1)`, regNo)
	if err != nil {
		return errors.Wrap(err, "checking reg_no uniqueness")
	}
	if exists {
		return student.ErrRegNoExists
	}
	return nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	row := packStudent(std)
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO student (id, reg_no, name, email, programme, created_at, updated_at)
		VALUES (:id, :reg_no, :name, :email, :programme, :created_at, :updated_at)`,
		row,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "creating student")
	}
	return std, nil
}

func (repo studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM student ORDER BY reg_no`); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return unpackStudents(rows), nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM student WHERE id = $1`, id); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "getting student")
	}
	return row.unpack(), nil
}

func (repo studentRepository) GetStudentByRegNo(ctx context.Context, regNo string) (student.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM student WHERE reg_no = $1`, regNo); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "getting student")
	}
	return row.unpack(), nil
}

func (repo studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	conds := []string{"true"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %[1]s OR reg_no ILIKE %[1]s OR email ILIKE %[1]s)", p))
	}
	if filter.Programme != "" {
		conds = append(conds, fmt.Sprintf("programme = %s", arg(filter.Programme)))
	}

	query := `SELECT * FROM student WHERE ` + strings.Join(conds, " AND ") + ` ORDER BY reg_no`
	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering students")
	}
	return unpackStudents(rows), nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	row := packStudent(std)
	_, err := repo.db.NamedExecContext(ctx, `
		UPDATE student SET
			name       = :name,
			email      = COALESCE(:email, email),
			programme  = COALESCE(:programme, programme),
			updated_at = :updated_at
		WHERE id = :id`,
		row,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	return repo.GetStudentByID(ctx, std.ID)
}

func (repo studentRepository) AddServiceHours(ctx context.Context, entry student.ServiceHoursEntry) (student.ServiceHoursEntry, error) {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO student_service_hours (id, student_id, semester, hours, activity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.StudentID, entry.Semester, entry.Hours, entry.Activity, entry.CreatedAt.UTC(),
	)
	if err != nil {
		return student.ServiceHoursEntry{}, errors.Wrap(err, "adding service hours")
	}
	return entry, nil
}

func (repo studentRepository) SumServiceHours(ctx context.Context, studentID, semester string) (int, error) {
	var total int
	err := repo.db.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(hours), 0) FROM student_service_hours
		WHERE student_id = $1 AND semester = $2`,
		studentID, semester,
	)
	if err != nil {
		return 0, errors.Wrap(err, "summing service hours")
	}
	return total, nil
}

func unpackStudents(rows []studentRow) []student.Student {
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.unpack())
	}
	return students
}
