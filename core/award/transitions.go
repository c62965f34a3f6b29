package award

import (
	"strings"

	"github.com/trezcool/msaada/core/user"
)

// Edge is a single permitted transition out of a status.
type Edge struct {
	Target          Status
	Roles           []string // allowed role prefixes, cf. user.RoleStartsWith
	Label           string
	RequiresComment bool
}

var (
	applicantRoles = []string{user.RoleStudent, user.RoleAdmin}
	staffRoles     = []string{user.RoleStaff, user.RoleAdmin}
	adminRoles     = []string{user.RoleAdmin}
)

// transitionTable is the fixed workflow definition: for every status, the
// outgoing edges with the roles allowed to take them. Guard checks are a
// plain table lookup; no business rules hide in control flow here.
var transitionTable = map[Status][]Edge{
	StatusDraft: {
		{Target: StatusSubmitted, Roles: applicantRoles, Label: "Submit application"},
	},
	StatusSubmitted: {
		{Target: StatusHoursVerification, Roles: staffRoles, Label: "Start hours verification"},
		{Target: StatusDraft, Roles: applicantRoles, Label: "Withdraw to draft"},
	},
	StatusHoursVerification: {
		{Target: StatusHoursApproved, Roles: staffRoles, Label: "Approve service hours", RequiresComment: true},
		{Target: StatusHoursRejected, Roles: staffRoles, Label: "Reject service hours", RequiresComment: true},
	},
	StatusHoursApproved: {
		{Target: StatusDisbursementPending, Roles: staffRoles, Label: "Queue for disbursement"},
	},
	StatusHoursRejected: {
		{Target: StatusResubmitted, Roles: applicantRoles, Label: "Resubmit corrected hours"},
		{Target: StatusHoursRejectionExpired, Roles: adminRoles, Label: "Force correction expiry"},
	},
	StatusResubmitted: {
		{Target: StatusHoursVerification, Roles: staffRoles, Label: "Re-verify hours"},
	},
	StatusHoursRejectionExpired: {
		{Target: StatusHoursVerification, Roles: adminRoles, Label: "Override and re-verify", RequiresComment: true},
		{Target: StatusCancelled, Roles: adminRoles, Label: "Cancel application", RequiresComment: true},
	},
	StatusDisbursementPending: {
		{Target: StatusDisbursementProcessing, Roles: staffRoles, Label: "Start disbursement"},
		{Target: StatusHoursVerification, Roles: staffRoles, Label: "Return for re-verification", RequiresComment: true},
	},
	StatusDisbursementProcessing: {
		{Target: StatusAccountingReview, Roles: staffRoles, Label: "Send to accounting"},
	},
	StatusAccountingReview: {
		{Target: StatusAccountingApproved, Roles: staffRoles, Label: "Approve for payment"},
		{Target: StatusDisbursementProcessing, Roles: staffRoles, Label: "Return to processing", RequiresComment: true},
	},
	StatusAccountingApproved: {
		{Target: StatusDisbursed, Roles: staffRoles, Label: "Confirm disbursement"},
	},
	StatusDisbursed: {
		{Target: StatusReturned, Roles: staffRoles, Label: "Record returned funds", RequiresComment: true},
	},
	StatusCancelled: {
		{Target: StatusDraft, Roles: adminRoles, Label: "Reopen application"},
	},
	StatusReturned: {}, // terminal
}

// handlers maps each status to the display label of the party responsible
// for moving the application along.
var handlers = map[Status]string{
	StatusDraft:                  "Applicant",
	StatusSubmitted:              "Support Office",
	StatusHoursVerification:      "Support Office",
	StatusHoursApproved:          "Support Office",
	StatusHoursRejected:          "Applicant",
	StatusResubmitted:            "Support Office",
	StatusHoursRejectionExpired:  "Administration",
	StatusDisbursementPending:    "Finance Office",
	StatusDisbursementProcessing: "Finance Office",
	StatusAccountingReview:       "Accounting",
	StatusAccountingApproved:     "Finance Office",
	StatusDisbursed:              "",
	StatusCancelled:              "",
	StatusReturned:               "",
}

// EdgeFor returns the modeled edge from one status to another, if any.
func EdgeFor(from, to Status) (Edge, bool) {
	for _, edge := range transitionTable[from] {
		if edge.Target == to {
			return edge, true
		}
	}
	return Edge{}, false
}

// EdgesFrom returns all outgoing edges of a status.
func EdgesFrom(from Status) []Edge {
	return transitionTable[from]
}

// CanTransition reports whether an edge from->to exists and any of the
// actor's roles is permitted to take it. It evaluates state+role legality
// only; comment requirements and the strike policy live elsewhere.
func CanTransition(from, to Status, roles []string) bool {
	edge, ok := EdgeFor(from, to)
	if !ok {
		return false
	}
	return anyRoleAllowed(edge.Roles, roles)
}

// HandlerFor returns the display label of whoever is responsible in a status.
func HandlerFor(s Status) string {
	return handlers[s]
}

func anyRoleAllowed(allowed, actorRoles []string) bool {
	for _, prefix := range allowed {
		for _, role := range actorRoles {
			if strings.HasPrefix(role, prefix) {
				return true
			}
		}
	}
	return false
}
