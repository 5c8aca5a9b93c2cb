package timeseries

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidPeriod = errors.New("invalid period")

type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// WeekStart is the first day of a "week" window.
const WeekStart = time.Sunday

func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case PeriodWeek:
		return PeriodWeek, nil
	case PeriodMonth:
		return PeriodMonth, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidPeriod, s)
	}
}

// FixedLength is the nominal period length used as the divisor for
// period-length averages: 7 for a week, 30 for a month.
func (p Period) FixedLength() int {
	switch p {
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return 30
	default:
		return 0
	}
}

// Window is a half-open civil day range [Start, End).
type Window struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Period Period    `json:"period"`
}

// NewWindow returns the week or month window containing anchor.
func NewWindow(period Period, anchor time.Time) (Window, error) {
	switch period {
	case PeriodWeek:
		return WeekOf(anchor), nil
	case PeriodMonth:
		return MonthOf(anchor), nil
	default:
		return Window{}, fmt.Errorf("%w: %s", ErrInvalidPeriod, period)
	}
}

// WeekOf returns the Sunday-started week containing day.
func WeekOf(day time.Time) Window {
	day = DayOf(day)
	offset := (int(day.Weekday()) - int(WeekStart) + 7) % 7
	start := AddDays(day, -offset)
	return Window{
		Start:  start,
		End:    AddDays(start, 7),
		Period: PeriodWeek,
	}
}

// MonthOf returns the calendar month containing day.
func MonthOf(day time.Time) Window {
	day = DayOf(day)
	start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Window{
		Start:  start,
		End:    start.AddDate(0, 1, 0),
		Period: PeriodMonth,
	}
}

// LastDays returns the window of n days ending with (and including) day.
// Its Period is empty; it is used for rolling views, not period stats.
func LastDays(day time.Time, n int) Window {
	end := AddDays(day, 1)
	if n < 0 {
		n = 0
	}
	return Window{
		Start: AddDays(end, -n),
		End:   end,
	}
}

// Contains reports whether start <= day < end.
func (w Window) Contains(day time.Time) bool {
	day = DayOf(day)
	return !day.Before(w.Start) && day.Before(w.End)
}

// Days returns the number of civil days in the window (0 for an empty or inverted window).
func (w Window) Days() int {
	if !w.End.After(w.Start) {
		return 0
	}
	return int(w.End.Sub(w.Start).Hours() / 24)
}

// DayKeys lists every day of the window as yyyy-MM-dd, oldest first.
func (w Window) DayKeys() []string {
	keys := make([]string, 0, w.Days())
	for d := w.Start; d.Before(w.End); d = d.AddDate(0, 0, 1) {
		keys = append(keys, d.Format(DayLayout))
	}
	return keys
}

func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(DayLayout), w.End.Format(DayLayout))
}
