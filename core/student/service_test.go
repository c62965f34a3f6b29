package student_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/trezcool/msaada/core"
	"github.com/trezcool/msaada/core/student"
	inmemdb "github.com/trezcool/msaada/storage/database/inmem"
)

func newTestService(t *testing.T) *student.Service {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	return student.NewService(inmemdb.NewStudentRepository(db))
}

func TestService_Create(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	std, err := svc.Create(ctx, student.NewStudent{
		RegNo:     "cs2026_041",
		Name:      "Thandi Dlamini",
		Email:     "thandi@test.cd",
		Programme: "Computer Science",
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if std.ID == "" {
		t.Error("Create() did not assign an ID")
	}

	got, err := svc.GetByRegNo(ctx, "CS2026_041")
	if err != nil {
		t.Fatalf("GetByRegNo() failed: %v", err)
	}
	if got.ID != std.ID {
		t.Errorf("GetByRegNo() = %q, want %q", got.ID, std.ID)
	}

	// duplicate registration numbers are rejected with a field error
	err = svc.CheckRegNoUniqueness(ctx, "cs2026_041")
	verr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("CheckRegNoUniqueness() = %v, want *core.ValidationError", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0].Field != "reg_no" {
		t.Errorf("unexpected field errors: %+v", verr.Fields)
	}
}

func TestService_RecordServiceHours(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	studentID := uuid.New().String()

	total, err := svc.RecordServiceHours(ctx, studentID, "2026-S1", "Library shelving", 10)
	if err != nil {
		t.Fatalf("RecordServiceHours() failed: %v", err)
	}
	if total != 10 {
		t.Errorf("total = %d, want 10", total)
	}

	total, err = svc.RecordServiceHours(ctx, studentID, "2026-S1", "Campus cleanup", 15)
	if err != nil {
		t.Fatalf("RecordServiceHours() failed: %v", err)
	}
	if total != 25 {
		t.Errorf("total = %d, want 25", total)
	}

	// a different semester keeps its own tally
	total, err = svc.RecordServiceHours(ctx, studentID, "2026-S2", "Tutoring", 5)
	if err != nil {
		t.Fatalf("RecordServiceHours() failed: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}

	total, err = svc.TotalServiceHours(ctx, studentID, "2026-S1")
	if err != nil {
		t.Fatalf("TotalServiceHours() failed: %v", err)
	}
	if total != 25 {
		t.Errorf("TotalServiceHours() = %d, want 25", total)
	}

	// a student with no entries sums to zero
	total, err = svc.TotalServiceHours(ctx, uuid.New().String(), "2026-S1")
	if err != nil {
		t.Fatalf("TotalServiceHours() failed: %v", err)
	}
	if total != 0 {
		t.Errorf("TotalServiceHours() = %d, want 0", total)
	}
}
