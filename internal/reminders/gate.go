package reminders

import (
	"context"
	"fmt"

	"github.com/2beens/lifedash/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Gate drops candidates that already fired within their horizon, records the
// rest in the ledger and hands them to the notifier.
type Gate struct {
	ledger         Ledger
	notifier       Notifier
	metricsManager *metrics.Manager
}

func NewGate(ledger Ledger, notifier Notifier, metricsManager *metrics.Manager) *Gate {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Gate{
		ledger:         ledger,
		notifier:       notifier,
		metricsManager: metricsManager,
	}
}

type GateResult struct {
	Emitted    []Reminder
	Suppressed int
}

// Emit processes the candidates in order. view is updated as entries are
// appended, so two candidates with the same key in one pass emit once.
// A failed ledger append skips that reminder; it will be retried next pass.
func (g *Gate) Emit(ctx context.Context, view *LedgerView, candidates []Candidate) (GateResult, error) {
	var res GateResult
	var err error

	for _, c := range candidates {
		if view.Covered(c.Key, c.Horizon) {
			log.Tracef("reminder [%s] suppressed, already fired within horizon", c.Key)
			res.Suppressed++
			if g.metricsManager != nil {
				g.metricsManager.CounterRemindersSuppressed.WithLabelValues(string(c.Reminder.Kind)).Inc()
			}
			continue
		}

		entry := NewEntry(c.Key, c.Reminder.RuleID, c.Reminder.FiredAt)
		if appendErr := g.ledger.Append(ctx, entry); appendErr != nil {
			err = multierr.Append(err, fmt.Errorf("ledger append [%s]: %w", c.Key, appendErr))
			if g.metricsManager != nil {
				g.metricsManager.CounterEvaluationErrors.WithLabelValues("ledger").Inc()
			}
			continue
		}
		view.Record(entry)

		if notifyErr := g.notifier.Notify(ctx, c.Reminder); notifyErr != nil {
			log.Errorf("notify reminder [%s]: %s", c.Key, notifyErr)
			if g.metricsManager != nil {
				g.metricsManager.CounterNotifyFailures.WithLabelValues(fmt.Sprintf("%T", g.notifier)).Inc()
			}
		}

		res.Emitted = append(res.Emitted, c.Reminder)
		if g.metricsManager != nil {
			g.metricsManager.CounterRemindersFired.WithLabelValues(string(c.Reminder.Kind)).Inc()
		}
	}

	return res, err
}
