package award

import (
	"testing"
	"time"
)

func TestPriorityOf(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	deadline := func(h time.Duration) *time.Time {
		d := now.Add(h)
		return &d
	}

	tests := []struct {
		name string
		app  Application
		want Priority
	}{
		{name: "expired rejection is always P0", app: Application{Status: StatusHoursRejectionExpired}, want: P0},
		{name: "expired rejection with stale deadline is P0", app: Application{Status: StatusHoursRejectionExpired, StatusDeadline: deadline(500 * time.Hour)}, want: P0},

		// no deadline
		{name: "submitted without deadline is P2", app: Application{Status: StatusSubmitted}, want: P2},
		{name: "resubmitted without deadline is P2", app: Application{Status: StatusResubmitted}, want: P2},
		{name: "draft without deadline is P3", app: Application{Status: StatusDraft}, want: P3},
		{name: "verification without deadline is P3", app: Application{Status: StatusHoursVerification}, want: P3},

		// deadline buckets
		{name: "deadline in 10h is P0", app: Application{Status: StatusHoursRejected, StatusDeadline: deadline(10 * time.Hour)}, want: P0},
		{name: "past deadline is P0", app: Application{Status: StatusHoursRejected, StatusDeadline: deadline(-2 * time.Hour)}, want: P0},
		{name: "deadline in 48h is P1", app: Application{Status: StatusHoursRejected, StatusDeadline: deadline(48 * time.Hour)}, want: P1},
		{name: "deadline in 100h is P2", app: Application{Status: StatusDisbursementPending, StatusDeadline: deadline(100 * time.Hour)}, want: P2},
		{name: "deadline in 200h is P3", app: Application{Status: StatusDisbursementPending, StatusDeadline: deadline(200 * time.Hour)}, want: P3},

		// boundaries
		{name: "exactly 24h is P1", app: Application{Status: StatusHoursRejected, StatusDeadline: deadline(24 * time.Hour)}, want: P1},
		{name: "exactly 72h is P2", app: Application{Status: StatusHoursRejected, StatusDeadline: deadline(72 * time.Hour)}, want: P2},
		{name: "exactly 168h is P3", app: Application{Status: StatusDisbursementPending, StatusDeadline: deadline(168 * time.Hour)}, want: P3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PriorityOf(tt.app, now); got != tt.want {
				t.Errorf("PriorityOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

// A shrinking time-to-deadline must never lower the urgency.
func TestPriorityOf_monotonic(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	prev := P3
	for h := 300; h >= -24; h-- {
		d := now.Add(time.Duration(h) * time.Hour)
		app := Application{Status: StatusHoursRejected, StatusDeadline: &d}
		got := PriorityOf(app, now)
		if got > prev {
			t.Fatalf("priority dropped from %s to %s at %dh before deadline", prev, got, h)
		}
		prev = got
	}
}

func TestPriorityString(t *testing.T) {
	if P0.String() != "P0" || P3.String() != "P3" {
		t.Errorf("unexpected priority names: %s %s", P0, P3)
	}
	if Priority(42).String() != "unknown" {
		t.Errorf("Priority(42).String() = %s, want unknown", Priority(42))
	}
}
