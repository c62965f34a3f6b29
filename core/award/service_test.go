package award

import (
	"context"
	"strings"
	"testing"
	"time"
)

func mockNow(t *testing.T, now time.Time) {
	t.Helper()
	NowFunc = func() time.Time { return now }
	t.Cleanup(func() { NowFunc = time.Now })
}

func TestService_Create(t *testing.T) {
	svc, _, _ := newTestService(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	mockNow(t, now)

	na := NewApplication{
		StudentID:            "b2f6a7b8-0000-4000-8000-000000000001",
		Semester:             "2026-S1",
		Name:                 "Community Service Award",
		Amount:               500,
		RequiredServiceHours: 40,
	}
	app, err := svc.Create(context.Background(), na, studentActor)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if app.Status != StatusDraft {
		t.Errorf("Status = %s, want %s", app.Status, StatusDraft)
	}
	if app.StatusDeadline != nil {
		t.Errorf("StatusDeadline = %v, want nil", app.StatusDeadline)
	}
	if app.RejectionCount != 0 {
		t.Errorf("RejectionCount = %d, want 0", app.RejectionCount)
	}
	if app.CurrentHandler != "Applicant" {
		t.Errorf("CurrentHandler = %q, want %q", app.CurrentHandler, "Applicant")
	}
	if len(app.AuditHistory) != 1 {
		t.Fatalf("len(AuditHistory) = %d, want 1", len(app.AuditHistory))
	}
	entry := app.AuditHistory[0]
	if entry.ToStatus != StatusDraft || entry.Actor != studentActor.Name || !entry.Timestamp.Equal(now) {
		t.Errorf("unexpected seed audit entry: %+v", entry)
	}
}

func TestService_Transition_errors(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	draft := seedApplication(t, repo, StatusDraft, nil, 0)
	submitted := seedApplication(t, repo, StatusSubmitted, nil, 0)
	verifying := seedApplication(t, repo, StatusHoursVerification, nil, 0)

	tests := []struct {
		name    string
		id      string
		target  Status
		comment string
		actor   Actor
		wantErr error
	}{
		{name: "unknown application", id: "nope", target: StatusSubmitted, actor: studentActor, wantErr: ErrNotFound},
		{name: "unmodeled edge", id: draft.ID, target: StatusHoursVerification, actor: adminActor, wantErr: ErrInvalidTransition},
		{name: "terminal edge", id: draft.ID, target: StatusDisbursed, actor: adminActor, wantErr: ErrInvalidTransition},
		{name: "role not allowed", id: submitted.ID, target: StatusHoursVerification, actor: studentActor, wantErr: ErrUnauthorized},
		{name: "missing comment", id: verifying.ID, target: StatusHoursRejected, actor: staffActor, wantErr: ErrMissingComment},
		{name: "whitespace comment", id: verifying.ID, target: StatusHoursRejected, comment: "   ", actor: staffActor, wantErr: ErrMissingComment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Transition(ctx, tt.id, tt.target, tt.comment, tt.actor)
			if err != tt.wantErr {
				t.Errorf("Transition() error = %v, wantErr %v", err, tt.wantErr)
			}

			// the record must be untouched on failure
			if tt.id != "nope" {
				app, gerr := repo.GetApplicationByID(ctx, tt.id)
				if gerr != nil {
					t.Fatalf("GetApplicationByID() failed: %v", gerr)
				}
				if len(app.AuditHistory) != 1 {
					t.Errorf("audit history grew on failed transition: %d entries", len(app.AuditHistory))
				}
			}
		})
	}
}

func TestService_Transition_deadlines(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	mockNow(t, now)

	t.Run("rejection sets correction deadline", func(t *testing.T) {
		app := seedApplication(t, repo, StatusHoursVerification, nil, 0)
		got, err := svc.Transition(ctx, app.ID, StatusHoursRejected, "hours mismatch", staffActor)
		if err != nil {
			t.Fatalf("Transition() failed: %v", err)
		}
		want := now.Add(CorrectionSLA)
		if got.StatusDeadline == nil || !got.StatusDeadline.Equal(want) {
			t.Errorf("StatusDeadline = %v, want %v", got.StatusDeadline, want)
		}
	})

	t.Run("queueing sets disbursement deadline", func(t *testing.T) {
		app := seedApplication(t, repo, StatusHoursApproved, nil, 0)
		got, err := svc.Transition(ctx, app.ID, StatusDisbursementPending, "", staffActor)
		if err != nil {
			t.Fatalf("Transition() failed: %v", err)
		}
		want := now.Add(DisbursementSLA)
		if got.StatusDeadline == nil || !got.StatusDeadline.Equal(want) {
			t.Errorf("StatusDeadline = %v, want %v", got.StatusDeadline, want)
		}
	})

	t.Run("resubmission clears deadline", func(t *testing.T) {
		deadline := now.Add(CorrectionSLA)
		app := seedApplication(t, repo, StatusHoursRejected, &deadline, 1)
		got, err := svc.Transition(ctx, app.ID, StatusResubmitted, "", studentActor)
		if err != nil {
			t.Fatalf("Transition() failed: %v", err)
		}
		if got.StatusDeadline != nil {
			t.Errorf("StatusDeadline = %v, want nil", got.StatusDeadline)
		}
	})

	t.Run("plain edge carries no deadline", func(t *testing.T) {
		app := seedApplication(t, repo, StatusDraft, nil, 0)
		got, err := svc.Transition(ctx, app.ID, StatusSubmitted, "", studentActor)
		if err != nil {
			t.Fatalf("Transition() failed: %v", err)
		}
		if got.StatusDeadline != nil {
			t.Errorf("StatusDeadline = %v, want nil", got.StatusDeadline)
		}
	})
}

func TestService_strikePolicy(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("rejections below the cap increment the count", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		mockNow(t, now)

		for _, count := range []int{0, 1, 2} {
			app := seedApplication(t, repo, StatusHoursVerification, nil, count)
			got, err := svc.Transition(ctx, app.ID, StatusHoursRejected, "hours mismatch", staffActor)
			if err != nil {
				t.Fatalf("Transition() failed: %v", err)
			}
			if got.Status != StatusHoursRejected {
				t.Errorf("Status = %s, want %s", got.Status, StatusHoursRejected)
			}
			if got.RejectionCount != count+1 {
				t.Errorf("RejectionCount = %d, want %d", got.RejectionCount, count+1)
			}
		}
	})

	t.Run("rejection at the cap becomes a cancellation", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		mockNow(t, now)

		app := seedApplication(t, repo, StatusHoursVerification, nil, MaxRejections)
		got, err := svc.Transition(ctx, app.ID, StatusHoursRejected, "still short", staffActor)
		if err != nil {
			t.Fatalf("Transition() failed: %v", err)
		}
		if got.Status != StatusCancelled {
			t.Errorf("Status = %s, want %s", got.Status, StatusCancelled)
		}
		if got.RejectionCount != MaxRejections {
			t.Errorf("RejectionCount = %d, want %d (not incremented)", got.RejectionCount, MaxRejections)
		}
		if got.StatusDeadline != nil {
			t.Errorf("StatusDeadline = %v, want nil", got.StatusDeadline)
		}

		last := got.AuditHistory[len(got.AuditHistory)-1]
		if last.ToStatus != StatusCancelled {
			t.Errorf("last audit ToStatus = %s, want %s", last.ToStatus, StatusCancelled)
		}
		if !strings.Contains(last.Comment, "rejection limit reached (3 strikes)") {
			t.Errorf("audit comment missing strike marker: %q", last.Comment)
		}
		if !strings.Contains(last.Comment, "Operator note: still short") {
			t.Errorf("audit comment missing operator note: %q", last.Comment)
		}
	})

	t.Run("reopening a cancelled application resets the count", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		mockNow(t, now)

		app := seedApplication(t, repo, StatusCancelled, nil, MaxRejections)
		got, err := svc.Transition(ctx, app.ID, StatusDraft, "", adminActor)
		if err != nil {
			t.Fatalf("Transition() failed: %v", err)
		}
		if got.Status != StatusDraft {
			t.Errorf("Status = %s, want %s", got.Status, StatusDraft)
		}
		if got.RejectionCount != 0 {
			t.Errorf("RejectionCount = %d, want 0", got.RejectionCount)
		}
	})
}

func TestService_Transition_auditTrail(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	mockNow(t, now)

	app := seedApplication(t, repo, StatusDraft, nil, 0)

	steps := []struct {
		target  Status
		comment string
		actor   Actor
	}{
		{StatusSubmitted, "", studentActor},
		{StatusHoursVerification, "", staffActor},
		{StatusHoursApproved, "all 40 hours verified", staffActor},
		{StatusDisbursementPending, "", staffActor},
		{StatusDisbursementProcessing, "", financeActor},
	}

	var got Application
	var err error
	for i, step := range steps {
		mockNow(t, now.Add(time.Duration(i)*time.Hour))
		got, err = svc.Transition(ctx, app.ID, step.target, step.comment, step.actor)
		if err != nil {
			t.Fatalf("Transition(#%d -> %s) failed: %v", i, step.target, err)
		}
	}

	if want := 1 + len(steps); len(got.AuditHistory) != want {
		t.Fatalf("len(AuditHistory) = %d, want %d", len(got.AuditHistory), want)
	}

	// chronological order, linked from/to chain, last entry matches status
	for i := 1; i < len(got.AuditHistory); i++ {
		prev, curr := got.AuditHistory[i-1], got.AuditHistory[i]
		if curr.Timestamp.Before(prev.Timestamp) {
			t.Errorf("audit entries out of order at %d", i)
		}
		if curr.FromStatus != prev.ToStatus {
			t.Errorf("audit chain broken at %d: %s -> %s", i, prev.ToStatus, curr.FromStatus)
		}
	}
	last := got.AuditHistory[len(got.AuditHistory)-1]
	if last.ToStatus != got.Status {
		t.Errorf("last audit ToStatus = %s, want current status %s", last.ToStatus, got.Status)
	}
	if got.StatusUpdatedBy != financeActor.Name {
		t.Errorf("StatusUpdatedBy = %q, want %q", got.StatusUpdatedBy, financeActor.Name)
	}
	if got.CurrentHandler != "Finance Office" {
		t.Errorf("CurrentHandler = %q, want %q", got.CurrentHandler, "Finance Office")
	}
}

func TestService_ListByPriority(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	urgent := now.Add(10 * time.Hour)
	relaxed := now.Add(200 * time.Hour)

	expired := seedApplication(t, repo, StatusHoursRejectionExpired, nil, 0)
	rejected := seedApplication(t, repo, StatusHoursRejected, &urgent, 1)
	pending := seedApplication(t, repo, StatusDisbursementPending, &relaxed, 0)
	submitted := seedApplication(t, repo, StatusSubmitted, nil, 0)
	seedApplication(t, repo, StatusDisbursed, nil, 0) // closed
	seedApplication(t, repo, StatusCancelled, nil, 0) // closed
	seedApplication(t, repo, StatusReturned, nil, 0)  // closed

	queue, err := svc.ListByPriority(ctx, now)
	if err != nil {
		t.Fatalf("ListByPriority() failed: %v", err)
	}

	total := 0
	for _, apps := range queue {
		total += len(apps)
	}
	if total != 4 {
		t.Errorf("queued %d applications, want 4 (closed must be excluded)", total)
	}

	find := func(p Priority, id string) bool {
		for _, app := range queue[p] {
			if app.ID == id {
				return true
			}
		}
		return false
	}
	if !find(P0, expired.ID) {
		t.Error("expired rejection missing from P0")
	}
	if !find(P0, rejected.ID) {
		t.Error("urgent rejection missing from P0")
	}
	if !find(P2, submitted.ID) {
		t.Error("submitted application missing from P2")
	}
	if !find(P3, pending.ID) {
		t.Error("relaxed pending application missing from P3")
	}
}
