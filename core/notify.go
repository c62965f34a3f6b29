package core

// Severity qualifies a notification for routing and display.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityUrgent
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityUrgent:
		return "urgent"
	}
	return "unknown"
}

// Notifier is any best-effort notification sink. Implementations must never
// return an error to the caller; a failed delivery is their own problem.
type Notifier interface {
	Notify(msg string, severity Severity)
}
