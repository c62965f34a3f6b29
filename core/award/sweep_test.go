package award

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/msaada/core"
	testutil "github.com/trezcool/msaada/tests"
)

func TestService_Sweep_expiry(t *testing.T) {
	svc, repo, notifier := newTestService(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	past := now.Add(-1 * time.Hour)
	app := seedApplication(t, repo, StatusHoursRejected, &past, 1)

	report, err := svc.Sweep(ctx, now)
	if err != nil {
		t.Fatalf("Sweep() failed: %v", err)
	}
	if report.Expired != 1 {
		t.Errorf("report.Expired = %d, want 1", report.Expired)
	}
	if report.Notified {
		t.Error("report.Notified = true, want false (no imminent deadlines)")
	}
	if len(notifier.messages) != 0 {
		t.Errorf("unexpected notifications: %v", notifier.messages)
	}

	got, err := repo.GetApplicationByID(ctx, app.ID)
	if err != nil {
		t.Fatalf("GetApplicationByID() failed: %v", err)
	}
	if got.Status != StatusHoursRejectionExpired {
		t.Errorf("Status = %s, want %s", got.Status, StatusHoursRejectionExpired)
	}
	if got.StatusDeadline != nil {
		t.Errorf("StatusDeadline = %v, want nil", got.StatusDeadline)
	}

	last := got.AuditHistory[len(got.AuditHistory)-1]
	if last.Actor != SystemActor.Name {
		t.Errorf("audit actor = %q, want %q", last.Actor, SystemActor.Name)
	}
	if last.Comment != "Deadline exceeded" {
		t.Errorf("audit comment = %q, want %q", last.Comment, "Deadline exceeded")
	}
	if last.FromStatus != StatusHoursRejected || last.ToStatus != StatusHoursRejectionExpired {
		t.Errorf("audit edge = %s -> %s", last.FromStatus, last.ToStatus)
	}
}

func TestService_Sweep_idempotent(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	past := now.Add(-1 * time.Hour)
	app := seedApplication(t, repo, StatusHoursRejected, &past, 1)

	if _, err := svc.Sweep(ctx, now); err != nil {
		t.Fatalf("first Sweep() failed: %v", err)
	}
	report, err := svc.Sweep(ctx, now)
	if err != nil {
		t.Fatalf("second Sweep() failed: %v", err)
	}
	if report.Expired != 0 {
		t.Errorf("second pass Expired = %d, want 0", report.Expired)
	}

	got, _ := repo.GetApplicationByID(ctx, app.ID)
	if len(got.AuditHistory) != 2 { // seed + one expiry
		t.Errorf("len(AuditHistory) = %d, want 2 (no duplicate expiry)", len(got.AuditHistory))
	}
}

func TestService_Sweep_urgentNotification(t *testing.T) {
	svc, repo, notifier := newTestService(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	soonA := now.Add(3 * time.Hour)
	soonB := now.Add(5 * time.Hour)
	safe := now.Add(48 * time.Hour)
	seedApplication(t, repo, StatusHoursRejected, &soonA, 1)
	seedApplication(t, repo, StatusHoursRejected, &soonB, 2)
	seedApplication(t, repo, StatusHoursRejected, &safe, 0)

	report, err := svc.Sweep(ctx, now)
	if err != nil {
		t.Fatalf("Sweep() failed: %v", err)
	}
	if report.Expired != 0 {
		t.Errorf("report.Expired = %d, want 0", report.Expired)
	}
	if !report.Notified {
		t.Error("report.Notified = false, want true")
	}

	// one notification for the whole pass, however many records are imminent
	if len(notifier.messages) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifier.messages))
	}
	if notifier.severities[0] != core.SeverityUrgent {
		t.Errorf("severity = %s, want %s", notifier.severities[0], core.SeverityUrgent)
	}
}

func TestService_Sweep_ignoresOtherStatuses(t *testing.T) {
	svc, repo, notifier := newTestService(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	past := now.Add(-1 * time.Hour)
	pending := seedApplication(t, repo, StatusDisbursementPending, &past, 0)
	seedApplication(t, repo, StatusHoursRejected, nil, 1) // no deadline

	report, err := svc.Sweep(ctx, now)
	if err != nil {
		t.Fatalf("Sweep() failed: %v", err)
	}
	if report.Expired != 0 || report.Notified {
		t.Errorf("report = %+v, want zero", report)
	}
	if len(notifier.messages) != 0 {
		t.Errorf("unexpected notifications: %v", notifier.messages)
	}

	// the overdue disbursement stays put
	got, _ := repo.GetApplicationByID(ctx, pending.ID)
	if got.Status != StatusDisbursementPending {
		t.Errorf("Status = %s, want %s", got.Status, StatusDisbursementPending)
	}
}

func TestService_Sweep_failureIsolation(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	past := now.Add(-1 * time.Hour)
	broken := seedApplication(t, repo, StatusHoursRejected, &past, 1)
	healthy := seedApplication(t, repo, StatusHoursRejected, &past, 1)
	repo.failUpdate[broken.ID] = errors.New("connection reset")

	report, err := svc.Sweep(ctx, now)
	if err != nil {
		t.Fatalf("Sweep() must not fail on a single record: %v", err)
	}
	if report.Expired != 1 {
		t.Errorf("report.Expired = %d, want 1", report.Expired)
	}

	got, _ := repo.GetApplicationByID(ctx, healthy.ID)
	if got.Status != StatusHoursRejectionExpired {
		t.Errorf("healthy record Status = %s, want %s", got.Status, StatusHoursRejectionExpired)
	}
	got, _ = repo.GetApplicationByID(ctx, broken.ID)
	if got.Status != StatusHoursRejected {
		t.Errorf("broken record Status = %s, want %s", got.Status, StatusHoursRejected)
	}

	// next pass picks the failed record up again
	delete(repo.failUpdate, broken.ID)
	report, err = svc.Sweep(ctx, now)
	if err != nil {
		t.Fatalf("Sweep() failed: %v", err)
	}
	if report.Expired != 1 {
		t.Errorf("retry pass Expired = %d, want 1", report.Expired)
	}
}

func TestSweeper_StartStop(t *testing.T) {
	svc, repo, _ := newTestService(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	mockNow(t, now)

	past := now.Add(-1 * time.Hour)
	app := seedApplication(t, repo, StatusHoursRejected, &past, 1)

	conf := &core.Config{Sweep: core.SweepConfig{Interval: 5 * time.Millisecond, UrgentWindow: 6 * time.Hour}}
	sweeper := NewSweeper(svc, testutil.NewLogger(), conf)
	sweeper.Start()

	deadline := time.After(2 * time.Second)
	for {
		got, err := repo.GetApplicationByID(context.Background(), app.ID)
		if err != nil {
			t.Fatalf("GetApplicationByID() failed: %v", err)
		}
		if got.Status == StatusHoursRejectionExpired {
			break
		}
		select {
		case <-deadline:
			t.Fatal("sweeper never expired the overdue application")
		case <-time.After(5 * time.Millisecond):
		}
	}

	sweeper.Stop() // must return, not hang
}
