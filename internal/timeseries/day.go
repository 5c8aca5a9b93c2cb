package timeseries

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the ISO calendar day format used as the join key by every dated record.
const DayLayout = "2006-01-02"

// ParseDay parses a yyyy-MM-dd string into a civil day (midnight UTC).
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	day, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date [%s]: %w", s, err)
	}
	return day, nil
}

// DayOf maps a wall-clock instant to its civil day, using the calendar fields
// of t in its own location (so 23:30 in Berlin stays on the Berlin date).
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey formats the civil day of t as yyyy-MM-dd.
func DayKey(t time.Time) string {
	return DayOf(t).Format(DayLayout)
}

// AddDays moves a civil day n days forward (or backward for negative n).
func AddDays(day time.Time, n int) time.Time {
	return DayOf(day).AddDate(0, 0, n)
}

// StartOfDay returns midnight of t's calendar day in t's own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseClock parses an HH:mm time of day and returns minutes since midnight.
func ParseClock(s string) (int, error) {
	clock, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse time of day [%s]: %w", s, err)
	}
	return clock.Hour()*60 + clock.Minute(), nil
}

// MinuteOfDay returns minutes elapsed since midnight for t in its own location.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// At combines a civil day and a minute-of-day into an instant in loc.
func At(day time.Time, minuteOfDay int, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), minuteOfDay/60, minuteOfDay%60, 0, 0, loc)
}
