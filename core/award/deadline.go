package award

import "time"

// Service-level deadlines. Corrections get 3 days; internal disbursement
// processing gets 7. Only the correction deadline auto-escalates; the
// disbursement SLA is tracked for prioritization but expires manually.
const (
	CorrectionSLA   = 3 * 24 * time.Hour
	DisbursementSLA = 7 * 24 * time.Hour
)

// DeadlineFor maps a target status to its SLA deadline, or nil when the
// status carries none. The result replaces the application's deadline on
// every accepted transition.
func DeadlineFor(target Status, now time.Time) *time.Time {
	var delta time.Duration
	switch target {
	case StatusHoursRejected:
		delta = CorrectionSLA
	case StatusDisbursementPending:
		delta = DisbursementSLA
	default:
		return nil
	}
	deadline := now.Add(delta).UTC()
	return &deadline
}
