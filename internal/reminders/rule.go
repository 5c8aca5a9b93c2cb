package reminders

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/2beens/lifedash/internal/timeseries"

	"github.com/robfig/cron/v3"
)

var ErrInvalidRule = errors.New("invalid reminder rule")

type Kind string

const (
	// KindInterval fires every IntervalMinutes (e.g. hydration).
	KindInterval Kind = "interval"
	// KindFixedTime fires once a day at At (HH:mm), or on every minute matched
	// by the Cron spec.
	KindFixedTime Kind = "fixedTime"
	// KindWindow fires every IntervalMinutes while inside a scheduled block of Category.
	KindWindow Kind = "window"
	// KindEventAlert fires ahead of timed calendar events.
	KindEventAlert Kind = "eventAlert"
)

type Config struct {
	IntervalMinutes int    `json:"intervalMinutes,omitempty" yaml:"intervalMinutes,omitempty"`
	At              string `json:"at,omitempty" yaml:"at,omitempty"`
	Cron            string `json:"cron,omitempty" yaml:"cron,omitempty"` // five field spec, e.g. "0 9 * * 1-5"
	Category        string `json:"category,omitempty" yaml:"category,omitempty"`
	LeadMinutes     int    `json:"leadMinutes,omitempty" yaml:"leadMinutes,omitempty"`
	Title           string `json:"title,omitempty" yaml:"title,omitempty"`
	Body            string `json:"body,omitempty" yaml:"body,omitempty"`
	// Digest makes a fixedTime rule summarize the day's records.
	Digest bool `json:"digest,omitempty" yaml:"digest,omitempty"`
}

type Rule struct {
	ID      string `json:"id" yaml:"id"`
	Kind    Kind   `json:"kind" yaml:"kind"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Config  Config `json:"config" yaml:"config"`
}

func (r Rule) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidRule)
	}

	switch r.Kind {
	case KindInterval:
		if r.Config.IntervalMinutes <= 0 {
			return fmt.Errorf("%w [%s]: interval must be positive, got %d", ErrInvalidRule, r.ID, r.Config.IntervalMinutes)
		}
	case KindFixedTime:
		if r.Config.At != "" && r.Config.Cron != "" {
			return fmt.Errorf("%w [%s]: set either at or cron, not both", ErrInvalidRule, r.ID)
		}
		if _, err := r.schedule(); err != nil {
			return fmt.Errorf("%w [%s]: %s", ErrInvalidRule, r.ID, err)
		}
	case KindWindow:
		if r.Config.IntervalMinutes <= 0 {
			return fmt.Errorf("%w [%s]: interval must be positive, got %d", ErrInvalidRule, r.ID, r.Config.IntervalMinutes)
		}
		if strings.TrimSpace(r.Config.Category) == "" {
			return fmt.Errorf("%w [%s]: window rule needs a block category", ErrInvalidRule, r.ID)
		}
	case KindEventAlert:
		if r.Config.LeadMinutes < 0 {
			return fmt.Errorf("%w [%s]: lead must not be negative, got %d", ErrInvalidRule, r.ID, r.Config.LeadMinutes)
		}
	default:
		return fmt.Errorf("%w [%s]: unknown kind [%s]", ErrInvalidRule, r.ID, r.Kind)
	}

	return nil
}

// needs reports which record collections the rule reads.
func (r Rule) needs() (blocks, events, digest bool) {
	switch r.Kind {
	case KindWindow:
		return true, false, false
	case KindEventAlert:
		return false, true, false
	case KindFixedTime:
		return false, false, r.Config.Digest
	default:
		return false, false, false
	}
}

// schedule returns the firing schedule of a fixedTime rule. An At clock is
// the daily spec "mm HH * * *".
func (r Rule) schedule() (cron.Schedule, error) {
	if r.Config.Cron != "" {
		sched, err := cron.ParseStandard(r.Config.Cron)
		if err != nil {
			return nil, fmt.Errorf("parse cron [%s]: %w", r.Config.Cron, err)
		}
		return sched, nil
	}
	at, err := timeseries.ParseClock(r.Config.At)
	if err != nil {
		return nil, err
	}
	return cron.ParseStandard(fmt.Sprintf("%d %d * * *", at%60, at/60))
}

// maxHorizon is how far back the rule's dedup horizon can reach. Ledger
// entries younger than that must survive pruning.
func (r Rule) maxHorizon() time.Duration {
	// a calendar day lasts up to 25h across a DST change
	const day = 25 * time.Hour
	switch r.Kind {
	case KindInterval:
		return time.Duration(r.Config.IntervalMinutes) * time.Minute
	case KindFixedTime, KindWindow:
		return day
	case KindEventAlert:
		return time.Duration(r.Config.LeadMinutes) * time.Minute
	}
	return 0
}
