package award

import "time"

// Priority is the urgency bucket of an open application in the operations
// queue. P0 is the most urgent. It is display-only and never persisted.
type Priority int

const (
	P0 Priority = iota
	P1
	P2
	P3
)

var priorityNames = [...]string{"P0", "P1", "P2", "P3"}

func (p Priority) String() string {
	if p < P0 || p > P3 {
		return "unknown"
	}
	return priorityNames[p]
}

// Priority thresholds, in hours until deadline.
const (
	priorityP0Hours = 24
	priorityP1Hours = 72
	priorityP2Hours = 168
)

// PriorityOf buckets an open application by urgency at the given instant.
// Closed applications are not classified; callers must exclude them first.
func PriorityOf(app Application, now time.Time) Priority {
	if app.Status == StatusHoursRejectionExpired {
		return P0
	}

	if app.StatusDeadline == nil {
		if app.Status == StatusSubmitted || app.Status == StatusResubmitted {
			return P2
		}
		return P3
	}

	h := app.StatusDeadline.Sub(now).Hours()
	switch {
	case h < priorityP0Hours: // includes already past
		return P0
	case h < priorityP1Hours:
		return P1
	case h < priorityP2Hours:
		return P2
	default:
		return P3
	}
}
