package reminders

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/2beens/lifedash/internal/records"
	"github.com/2beens/lifedash/internal/timeseries"
)

// Reminder is what the notifier receives.
type Reminder struct {
	RuleID  string    `json:"ruleId"`
	Kind    Kind      `json:"kind"`
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	FiredAt time.Time `json:"firedAt"`
}

// Horizon is the dedup window of a candidate: an earlier firing of the same
// key at or after From (strictly after, when Exclusive) makes it a duplicate.
type Horizon struct {
	From      time.Time
	Exclusive bool
}

func (h Horizon) Covers(firedAt time.Time) bool {
	if h.Exclusive {
		return firedAt.After(h.From)
	}
	return !firedAt.Before(h.From)
}

// Candidate is a reminder that a rule wants to fire, before the dedup gate.
type Candidate struct {
	Key      string
	Horizon  Horizon
	Reminder Reminder
}

// epoch is the last firing time of a rule that never fired.
var epoch = time.Unix(0, 0).UTC()

// Input is the per-pass snapshot every rule is evaluated against.
type Input struct {
	Now    time.Time
	Ledger *LedgerView
	Blocks []records.TimeBlock
	Events []records.CalendarEvent
	Digest *DigestData
}

// Evaluate runs one rule. It returns ErrInvalidRule for a misconfigured rule
// and never fires a disabled one.
func Evaluate(rule Rule, in Input) ([]Candidate, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}
	if !rule.Enabled {
		return nil, nil
	}
	if in.Ledger == nil {
		in.Ledger = NewLedgerView(nil)
	}

	switch rule.Kind {
	case KindInterval:
		return single(evaluateInterval(rule, in))
	case KindFixedTime:
		return single(evaluateFixedTime(rule, in))
	case KindWindow:
		return evaluateWindow(rule, in), nil
	case KindEventAlert:
		return evaluateEventAlerts(rule, in), nil
	}
	return nil, nil
}

func single(c Candidate, fire bool) ([]Candidate, error) {
	if !fire {
		return nil, nil
	}
	return []Candidate{c}, nil
}

func evaluateInterval(rule Rule, in Input) (Candidate, bool) {
	interval := time.Duration(rule.Config.IntervalMinutes) * time.Minute
	lastFired, ok := in.Ledger.LastFired(rule.ID)
	if !ok {
		lastFired = epoch
	}
	if in.Now.Sub(lastFired) < interval {
		return Candidate{}, false
	}

	return Candidate{
		Key:     rule.ID,
		Horizon: Horizon{From: in.Now.Add(-interval), Exclusive: true},
		Reminder: Reminder{
			RuleID:  rule.ID,
			Kind:    rule.Kind,
			Title:   orDefault(rule.Config.Title, "Reminder"),
			Body:    orDefault(rule.Config.Body, fmt.Sprintf("It has been %d minutes.", rule.Config.IntervalMinutes)),
			FiredAt: in.Now,
		},
	}, true
}

func evaluateFixedTime(rule Rule, in Input) (Candidate, bool) {
	sched, err := rule.schedule()
	if err != nil {
		return Candidate{}, false
	}
	slot := in.Now.Truncate(time.Minute)
	if !sched.Next(slot.Add(-time.Second)).Equal(slot) {
		return Candidate{}, false
	}

	// a clock rule fires once per day, a cron rule once per matched minute
	horizon := Horizon{From: timeseries.StartOfDay(in.Now)}
	if rule.Config.Cron != "" {
		horizon = Horizon{From: slot}
	}
	if lastFired, ok := in.Ledger.LastFired(rule.ID); ok && horizon.Covers(lastFired) {
		return Candidate{}, false
	}

	body := rule.Config.Body
	if rule.Config.Digest {
		body = in.Digest.Body()
	}

	return Candidate{
		Key:     rule.ID,
		Horizon: horizon,
		Reminder: Reminder{
			RuleID:  rule.ID,
			Kind:    rule.Kind,
			Title:   orDefault(rule.Config.Title, "Daily reminder"),
			Body:    body,
			FiredAt: in.Now,
		},
	}, true
}

// evaluateWindow fires when the minutes elapsed since the start of an active
// block are a positive multiple of the interval. Every multiple is its own
// occurrence, so a long block gets one reminder per interval.
func evaluateWindow(rule Rule, in Input) []Candidate {
	interval := rule.Config.IntervalMinutes
	today := timeseries.DayKey(in.Now)

	type activeBlock struct {
		block      records.TimeBlock
		start, end time.Time
	}
	var active []activeBlock
	for _, b := range timeseries.OnDay(in.Blocks, today) {
		if !strings.EqualFold(strings.TrimSpace(b.Category), strings.TrimSpace(rule.Config.Category)) {
			continue
		}
		start, end, err := b.Span(in.Now.Location())
		if err != nil {
			continue
		}
		if in.Now.Before(start) || !in.Now.Before(end) {
			continue
		}
		active = append(active, activeBlock{block: b, start: start, end: end})
	}
	sort.Slice(active, func(i, j int) bool {
		if !active[i].start.Equal(active[j].start) {
			return active[i].start.Before(active[j].start)
		}
		return active[i].block.ID < active[j].block.ID
	})

	var candidates []Candidate
	for _, a := range active {
		elapsed := int(in.Now.Sub(a.start) / time.Minute)
		if elapsed <= 0 || elapsed%interval != 0 {
			continue
		}

		blockID := a.block.ID
		if blockID == "" {
			blockID = a.block.Start + "-" + a.block.End
		}
		candidates = append(candidates, Candidate{
			Key:     fmt.Sprintf("%s|%s|%d", rule.ID, blockID, elapsed/interval),
			Horizon: Horizon{From: a.start},
			Reminder: Reminder{
				RuleID:  rule.ID,
				Kind:    rule.Kind,
				Title:   orDefault(rule.Config.Title, "Time for a break"),
				Body:    orDefault(rule.Config.Body, fmt.Sprintf("%d minutes into %s.", elapsed, orDefault(a.block.Title, a.block.Category))),
				FiredAt: in.Now,
			},
		})
	}
	return candidates
}

// evaluateEventAlerts fires for every open, timed event whose alert window
// [eventAt - lead, eventAt) contains now. The event's own lead wins over the rule's.
func evaluateEventAlerts(rule Rule, in Input) []Candidate {
	type dueEvent struct {
		event records.CalendarEvent
		at    time.Time
		lead  int
	}
	var due []dueEvent
	for _, e := range timeseries.Valid(in.Events) {
		if e.Completed {
			continue
		}
		at, ok := e.At(in.Now.Location())
		if !ok {
			continue
		}
		lead := rule.Config.LeadMinutes
		if e.ReminderMinutes != nil && *e.ReminderMinutes > 0 {
			lead = *e.ReminderMinutes
		}
		if lead <= 0 {
			continue
		}
		alertFrom := at.Add(-time.Duration(lead) * time.Minute)
		if in.Now.Before(alertFrom) || !in.Now.Before(at) {
			continue
		}
		due = append(due, dueEvent{event: e, at: at, lead: lead})
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].at.Equal(due[j].at) {
			return due[i].at.Before(due[j].at)
		}
		return due[i].event.ID < due[j].event.ID
	})

	candidates := make([]Candidate, 0, len(due))
	for _, d := range due {
		eventID := d.event.ID
		if eventID == "" {
			eventID = d.event.Date + "T" + d.event.Time + "|" + d.event.Title
		}
		minutesLeft := int(d.at.Sub(in.Now).Round(time.Minute) / time.Minute)
		candidates = append(candidates, Candidate{
			Key:     rule.ID + "|" + eventID,
			Horizon: Horizon{From: d.at.Add(-time.Duration(d.lead) * time.Minute)},
			Reminder: Reminder{
				RuleID:  rule.ID,
				Kind:    rule.Kind,
				Title:   orDefault(d.event.Title, orDefault(rule.Config.Title, "Upcoming event")),
				Body:    fmt.Sprintf("Starts at %s (in %d min).", d.at.Format("15:04"), minutesLeft),
				FiredAt: in.Now,
			},
		})
	}
	return candidates
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
