package award

import (
	"testing"
)

func TestCanTransition(t *testing.T) {
	student := []string{"student:"}
	staff := []string{"staff:"}
	finance := []string{"staff:finance"}
	admin := []string{"admin:owner"}

	tests := []struct {
		name  string
		from  Status
		to    Status
		roles []string
		want  bool
	}{
		// applicant edges
		{name: "student submits draft", from: StatusDraft, to: StatusSubmitted, roles: student, want: true},
		{name: "admin submits draft", from: StatusDraft, to: StatusSubmitted, roles: admin, want: true},
		{name: "staff cannot submit draft", from: StatusDraft, to: StatusSubmitted, roles: staff, want: false},
		{name: "student withdraws submission", from: StatusSubmitted, to: StatusDraft, roles: student, want: true},
		{name: "student resubmits after rejection", from: StatusHoursRejected, to: StatusResubmitted, roles: student, want: true},

		// staff edges
		{name: "staff starts verification", from: StatusSubmitted, to: StatusHoursVerification, roles: staff, want: true},
		{name: "student cannot start verification", from: StatusSubmitted, to: StatusHoursVerification, roles: student, want: false},
		{name: "staff approves hours", from: StatusHoursVerification, to: StatusHoursApproved, roles: staff, want: true},
		{name: "staff rejects hours", from: StatusHoursVerification, to: StatusHoursRejected, roles: staff, want: true},
		{name: "student cannot reject hours", from: StatusHoursVerification, to: StatusHoursRejected, roles: student, want: false},
		{name: "staff queues disbursement", from: StatusHoursApproved, to: StatusDisbursementPending, roles: staff, want: true},
		{name: "finance starts disbursement", from: StatusDisbursementPending, to: StatusDisbursementProcessing, roles: finance, want: true},
		{name: "staff returns pending to verification", from: StatusDisbursementPending, to: StatusHoursVerification, roles: staff, want: true},
		{name: "staff sends to accounting", from: StatusDisbursementProcessing, to: StatusAccountingReview, roles: staff, want: true},
		{name: "staff approves payment", from: StatusAccountingReview, to: StatusAccountingApproved, roles: staff, want: true},
		{name: "staff returns to processing", from: StatusAccountingReview, to: StatusDisbursementProcessing, roles: staff, want: true},
		{name: "staff confirms disbursement", from: StatusAccountingApproved, to: StatusDisbursed, roles: staff, want: true},
		{name: "staff records returned funds", from: StatusDisbursed, to: StatusReturned, roles: staff, want: true},
		{name: "staff re-verifies resubmission", from: StatusResubmitted, to: StatusHoursVerification, roles: staff, want: true},

		// admin-only edges
		{name: "admin forces correction expiry", from: StatusHoursRejected, to: StatusHoursRejectionExpired, roles: admin, want: true},
		{name: "staff cannot force correction expiry", from: StatusHoursRejected, to: StatusHoursRejectionExpired, roles: staff, want: false},
		{name: "admin overrides expired rejection", from: StatusHoursRejectionExpired, to: StatusHoursVerification, roles: admin, want: true},
		{name: "staff cannot override expired rejection", from: StatusHoursRejectionExpired, to: StatusHoursVerification, roles: staff, want: false},
		{name: "admin cancels expired application", from: StatusHoursRejectionExpired, to: StatusCancelled, roles: admin, want: true},
		{name: "admin reopens cancelled application", from: StatusCancelled, to: StatusDraft, roles: admin, want: true},
		{name: "student cannot reopen cancelled application", from: StatusCancelled, to: StatusDraft, roles: student, want: false},

		// unmodeled edges
		{name: "no edge draft to verification", from: StatusDraft, to: StatusHoursVerification, roles: admin, want: false},
		{name: "no edge draft to disbursed", from: StatusDraft, to: StatusDisbursed, roles: admin, want: false},
		{name: "no edge approved back to rejected", from: StatusHoursApproved, to: StatusHoursRejected, roles: admin, want: false},
		{name: "returned is terminal", from: StatusReturned, to: StatusDraft, roles: admin, want: false},
		{name: "no edge disbursed to draft", from: StatusDisbursed, to: StatusDraft, roles: admin, want: false},

		// empty role set
		{name: "no roles never allowed", from: StatusDraft, to: StatusSubmitted, roles: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to, tt.roles); got != tt.want {
				t.Errorf("CanTransition(%s, %s, %v) = %v, want %v", tt.from, tt.to, tt.roles, got, tt.want)
			}
		})
	}
}

func TestEdgeFor_commentRequirements(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusHoursVerification, StatusHoursApproved, true},
		{StatusHoursVerification, StatusHoursRejected, true},
		{StatusHoursRejectionExpired, StatusHoursVerification, true},
		{StatusHoursRejectionExpired, StatusCancelled, true},
		{StatusDisbursementPending, StatusHoursVerification, true},
		{StatusAccountingReview, StatusDisbursementProcessing, true},
		{StatusDisbursed, StatusReturned, true},
		{StatusDraft, StatusSubmitted, false},
		{StatusHoursRejected, StatusResubmitted, false},
		{StatusCancelled, StatusDraft, false},
	}
	for _, tt := range tests {
		edge, ok := EdgeFor(tt.from, tt.to)
		if !ok {
			t.Errorf("EdgeFor(%s, %s): edge not found", tt.from, tt.to)
			continue
		}
		if edge.RequiresComment != tt.want {
			t.Errorf("EdgeFor(%s, %s).RequiresComment = %v, want %v", tt.from, tt.to, edge.RequiresComment, tt.want)
		}
	}
}

func TestEdgesFrom_coversAllStatuses(t *testing.T) {
	for _, s := range AllStatuses {
		if _, ok := transitionTable[s]; !ok {
			t.Errorf("transitionTable is missing status %s", s)
		}
	}
	if edges := EdgesFrom(StatusReturned); len(edges) != 0 {
		t.Errorf("EdgesFrom(returned) = %v, want none", edges)
	}
}

func TestEdgeLabels(t *testing.T) {
	labels := EdgeLabels(StatusHoursRejected, []string{"student:"})
	if len(labels) != 1 || labels[0] != "Resubmit corrected hours" {
		t.Errorf("EdgeLabels(hours_rejected, student) = %v", labels)
	}

	labels = EdgeLabels(StatusHoursRejected, []string{"admin:owner"})
	if len(labels) != 2 {
		t.Errorf("EdgeLabels(hours_rejected, admin) = %v, want 2 labels", labels)
	}

	if labels = EdgeLabels(StatusReturned, []string{"admin:owner"}); labels != nil {
		t.Errorf("EdgeLabels(returned, admin) = %v, want nil", labels)
	}
}
