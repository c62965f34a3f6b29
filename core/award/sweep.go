package award

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/msaada/core"
)

const expiryComment = "Deadline exceeded"

// Sweep runs one escalation pass over all applications at the given instant.
// Past-deadline corrections are auto-expired through the regular audited
// write path; imminent deadlines raise at most ONE urgent notification for
// the whole pass. A single record's failure is logged and skipped, never
// aborting the cycle. Re-running immediately is a no-op: the status check
// prevents re-expiring an already escalated record.
func (svc *Service) Sweep(ctx context.Context, now time.Time) (SweepReport, error) {
	apps, err := svc.repo.QueryAllApplications(ctx)
	if err != nil {
		return SweepReport{}, errors.Wrap(err, "loading applications")
	}

	var report SweepReport
	imminent := 0 // urgent deadlines seen this pass

	for _, app := range apps {
		// only the correction deadline auto-escalates; the disbursement SLA
		// is surfaced through the priority queue instead
		if app.Status != StatusHoursRejected || app.StatusDeadline == nil {
			continue
		}

		remaining := app.StatusDeadline.Sub(now)
		switch {
		case remaining <= 0:
			if err := svc.expire(ctx, app.ID, now); err != nil {
				svc.logger.Error(fmt.Sprintf("sweep: expiring application %s: %v", app.ID, err), err)
				continue
			}
			report.Expired++
		case remaining < svc.conf.Sweep.UrgentWindow:
			imminent++
		}
	}

	if imminent > 0 {
		msg := fmt.Sprintf("%d correction deadline(s) expire within %s", imminent, svc.conf.Sweep.UrgentWindow)
		svc.notifier.Notify(msg, core.SeverityUrgent)
		svc.logger.Warn("sweep: " + msg)
		report.Notified = true
	}
	return report, nil
}

// expire re-reads the record under its lock and escalates it if it is still
// past-deadline in HoursRejected; a concurrent manual transition wins.
func (svc *Service) expire(ctx context.Context, id string, now time.Time) error {
	lock := svc.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	app, err := svc.repo.GetApplicationByID(ctx, id)
	if err != nil {
		return err
	}
	if app.Status != StatusHoursRejected || app.StatusDeadline == nil || app.StatusDeadline.After(now) {
		return nil
	}

	_, err = svc.apply(ctx, app, StatusHoursRejectionExpired, expiryComment, SystemActor, now)
	return err
}

// Sweeper periodically runs Service.Sweep until stopped. Failures are
// logged and retried on the next interval.
type Sweeper struct {
	svc      *Service
	logger   core.Logger
	interval time.Duration
	done     chan struct{}
	stopped  chan struct{}
}

func NewSweeper(svc *Service, logger core.Logger, conf *core.Config) *Sweeper {
	return &Sweeper{
		svc:      svc,
		logger:   logger,
		interval: conf.Sweep.Interval,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	go func() {
		defer close(s.stopped)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				report, err := s.svc.Sweep(context.Background(), NowFunc().UTC())
				if err != nil {
					s.logger.Error(fmt.Sprintf("sweep failed (will retry): %v", err), err)
					continue
				}
				if report.Expired > 0 {
					s.logger.Info(fmt.Sprintf("sweep: auto-expired %d application(s)", report.Expired))
				}
			case <-s.done:
				return
			}
		}
	}()
}

// Stop halts the periodic sweep and waits for an in-flight pass to finish.
func (s *Sweeper) Stop() {
	close(s.done)
	<-s.stopped
}
