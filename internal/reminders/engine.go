package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/lifedash/internal/records"
	"github.com/2beens/lifedash/internal/telemetry/metrics"
	"github.com/2beens/lifedash/internal/telemetry/tracing"
	"github.com/2beens/lifedash/internal/timeseries"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
)

type settingsSource interface {
	Load(ctx context.Context) (Settings, error)
}

type recordsRepo interface {
	TimeBlocks(ctx context.Context) ([]records.TimeBlock, error)
	CalendarEvents(ctx context.Context) ([]records.CalendarEvent, error)
	Habits(ctx context.Context) ([]records.Habit, error)
	Completions(ctx context.Context) ([]records.HabitCompletion, error)
	Meals(ctx context.Context) ([]records.Meal, error)
	Water(ctx context.Context) ([]records.WaterLog, error)
}

type EngineParams struct {
	Settings       settingsSource
	Repo           recordsRepo
	Ledger         Ledger
	Notifier       Notifier
	Location       *time.Location
	Retention      time.Duration
	MetricsManager *metrics.Manager
}

// Engine runs reminder evaluation passes. Passes must not overlap; the
// Scheduler guarantees that.
type Engine struct {
	settings       settingsSource
	repo           recordsRepo
	ledger         Ledger
	gate           *Gate
	loc            *time.Location
	retention      time.Duration
	metricsManager *metrics.Manager
}

func NewEngine(params EngineParams) *Engine {
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	retention := params.Retention
	if retention <= 0 {
		retention = DefaultLedgerRetention
	}
	return &Engine{
		settings:       params.Settings,
		repo:           params.Repo,
		ledger:         params.Ledger,
		gate:           NewGate(params.Ledger, params.Notifier, params.MetricsManager),
		loc:            loc,
		retention:      retention,
		metricsManager: params.MetricsManager,
	}
}

func (e *Engine) Ledger() Ledger {
	return e.ledger
}

type PassResult struct {
	At         time.Time  `json:"at"`
	Rules      int        `json:"rules"`
	Skipped    int        `json:"skipped"`
	Suppressed int        `json:"suppressed"`
	Pruned     int        `json:"pruned"`
	Emitted    []Reminder `json:"emitted"`
}

// RunPass evaluates every rule once at now. Failing to read the settings or
// the ledger abandons the pass. Rules that fail to decode are skipped. Any other failure only drops the rules it
// affects, and is returned combined with the rest.
func (e *Engine) RunPass(ctx context.Context, now time.Time) (_ *PassResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "reminders.engine.pass")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	started := time.Now()
	defer func() {
		if e.metricsManager != nil {
			e.metricsManager.HistEvaluationDuration.Observe(time.Since(started).Seconds())
		}
	}()

	now = now.In(e.loc)
	res := &PassResult{At: now, Emitted: []Reminder{}}

	settings, settingsErr := e.settings.Load(ctx)
	if settingsErr != nil {
		e.countError("settings")
		return res, settingsErr
	}

	rules := settings.SortedRules()
	res.Rules = len(rules) + len(settings.Undecodable)
	for _, u := range settings.Undecodable {
		log.Debugf("reminder rule skipped: %s", u.Error())
		res.Skipped++
		e.countSkipped(u.Kind)
	}

	in, loadErrs := e.loadInputs(ctx, now, rules)
	err = multierr.Append(err, loadErrs.combined())

	// event alert leads are unknown without the events
	if loadErrs.events == nil {
		pruned, pruneErr := e.ledger.Prune(ctx, e.pruneCutoff(now, rules, in.Events))
		if pruneErr != nil {
			err = multierr.Append(err, fmt.Errorf("prune ledger: %w", pruneErr))
			e.countError("ledger")
		} else {
			res.Pruned = pruned
			if e.metricsManager != nil {
				e.metricsManager.CounterLedgerPruned.Add(float64(pruned))
			}
		}
	}

	entries, ledgerErr := e.ledger.Entries(ctx)
	if ledgerErr != nil {
		e.countError("ledger")
		return res, multierr.Append(err, fmt.Errorf("read ledger: %w", ledgerErr))
	}
	view := NewLedgerView(entries)
	in.Ledger = view

	var candidates []Candidate
	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		if failed := loadErrs.affects(rule); failed {
			log.Debugf("reminder rule [%s] skipped, its records could not be read", rule.ID)
			continue
		}
		ruleCandidates, evalErr := Evaluate(rule, in)
		if evalErr != nil {
			log.Debugf("reminder rule skipped: %s", evalErr)
			res.Skipped++
			e.countSkipped(rule.Kind)
			continue
		}
		candidates = append(candidates, ruleCandidates...)
	}

	gateRes, gateErr := e.gate.Emit(ctx, view, candidates)
	err = multierr.Append(err, gateErr)
	res.Suppressed = gateRes.Suppressed
	if gateRes.Emitted != nil {
		res.Emitted = gateRes.Emitted
	}

	if e.metricsManager != nil {
		if all, err := e.ledger.Entries(ctx); err == nil {
			e.metricsManager.GaugeLedgerSize.Set(float64(len(all)))
		}
	}

	span.SetAttributes(
		attribute.Int("rules", res.Rules),
		attribute.Int("emitted", len(res.Emitted)),
		attribute.Int("suppressed", res.Suppressed),
	)

	return res, err
}

// pruneCutoff keeps every entry a valid rule may still consult: at least the
// retention, and never less than the longest dedup horizon among the rules
// and the per-event alert leads.
func (e *Engine) pruneCutoff(now time.Time, rules []Rule, events []records.CalendarEvent) time.Time {
	keep := e.retention
	for _, r := range rules {
		if r.Validate() != nil {
			continue
		}
		if h := r.maxHorizon(); h > keep {
			keep = h
		}
		if r.Kind != KindEventAlert {
			continue
		}
		for _, ev := range events {
			if ev.ReminderMinutes == nil {
				continue
			}
			if lead := time.Duration(*ev.ReminderMinutes) * time.Minute; lead > keep {
				keep = lead
			}
		}
	}
	return now.Add(-keep)
}

type loadErrors struct {
	blocks, events, digest error
}

func (le loadErrors) combined() error {
	return multierr.Combine(le.blocks, le.events, le.digest)
}

func (le loadErrors) affects(rule Rule) bool {
	blocks, events, digest := rule.needs()
	return (blocks && le.blocks != nil) ||
		(events && le.events != nil) ||
		(digest && le.digest != nil)
}

// loadInputs reads only the collections that enabled rules need.
func (e *Engine) loadInputs(ctx context.Context, now time.Time, rules []Rule) (Input, loadErrors) {
	var needBlocks, needEvents, needDigest bool
	for _, r := range rules {
		if !r.Enabled {
			continue
		}
		b, ev, d := r.needs()
		needBlocks = needBlocks || b
		needEvents = needEvents || ev
		needDigest = needDigest || d
	}

	in := Input{Now: now}
	var errs loadErrors

	if needBlocks {
		blocks, err := e.repo.TimeBlocks(ctx)
		if err != nil {
			errs.blocks = fmt.Errorf("load time blocks: %w", err)
			e.countError("time_blocks")
		}
		in.Blocks = blocks
	}
	if needEvents {
		events, err := e.repo.CalendarEvents(ctx)
		if err != nil {
			errs.events = fmt.Errorf("load calendar events: %w", err)
			e.countError("calendar_events")
		}
		in.Events = events
	}
	if needDigest {
		digest, err := e.loadDigest(ctx, timeseries.DayKey(now))
		if err != nil {
			errs.digest = fmt.Errorf("load digest: %w", err)
			e.countError("digest")
		}
		in.Digest = digest
	}

	return in, errs
}

func (e *Engine) loadDigest(ctx context.Context, dayKey string) (*DigestData, error) {
	var in DigestInput
	var err error
	if in.Habits, err = e.repo.Habits(ctx); err != nil {
		return nil, err
	}
	if in.Completions, err = e.repo.Completions(ctx); err != nil {
		return nil, err
	}
	if in.Meals, err = e.repo.Meals(ctx); err != nil {
		return nil, err
	}
	if in.Water, err = e.repo.Water(ctx); err != nil {
		return nil, err
	}
	return BuildDigest(dayKey, in), nil
}

func (e *Engine) countSkipped(kind Kind) {
	if e.metricsManager == nil {
		return
	}
	label := string(kind)
	if label == "" {
		label = "unknown"
	}
	e.metricsManager.CounterRulesSkipped.WithLabelValues(label).Inc()
}

func (e *Engine) countError(component string) {
	if e.metricsManager != nil {
		e.metricsManager.CounterEvaluationErrors.WithLabelValues(component).Inc()
	}
}
