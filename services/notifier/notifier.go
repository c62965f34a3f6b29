// Package notifysvc delivers operational notifications raised by the award
// workflow. Everything is logged; urgent notifications are also emailed to
// the support office inbox.
package notifysvc

import (
	"net/mail"

	"github.com/trezcool/msaada/core"
)

type emailNotifier struct {
	logger   core.Logger
	mailSvc  core.EmailService
	opsEmail mail.Address
}

var _ core.Notifier = (*emailNotifier)(nil)

func NewEmailNotifier(logger core.Logger, mailSvc core.EmailService, conf *core.Config) *emailNotifier {
	return &emailNotifier{
		logger:   logger,
		mailSvc:  mailSvc,
		opsEmail: conf.OpsEmail,
	}
}

// Notify is best effort; failures are logged, never surfaced to callers.
func (n emailNotifier) Notify(msg string, severity core.Severity) {
	switch severity {
	case core.SeverityUrgent:
		n.logger.Warn(msg)
		n.mailSvc.SendMessages(&core.EmailMessage{
			To:      []mail.Address{n.opsEmail},
			Subject: "URGENT: " + msg,
			Body:    msg,
		})
	case core.SeverityWarning:
		n.logger.Warn(msg)
	default:
		n.logger.Info(msg)
	}
}

// RecordingNotifier captures notifications for assertions in tests.
type RecordingNotifier struct {
	Messages   []string
	Severities []core.Severity
}

var _ core.Notifier = (*RecordingNotifier)(nil)

func (n *RecordingNotifier) Notify(msg string, severity core.Severity) {
	n.Messages = append(n.Messages, msg)
	n.Severities = append(n.Severities, severity)
}
