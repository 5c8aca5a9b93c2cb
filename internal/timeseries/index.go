package timeseries

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// Dated is any record tied to a calendar day via a yyyy-MM-dd string.
type Dated interface {
	DateKey() string
}

// Valid returns the records whose dates parse. Malformed or missing dates are
// dropped with a data-quality warning so one bad record cannot break an aggregate.
func Valid[T Dated](records []T) []T {
	valid := make([]T, 0, len(records))
	for _, r := range records {
		if _, ok := parse(r); ok {
			valid = append(valid, r)
		}
	}
	return valid
}

// OnDay returns the records dated exactly day (yyyy-MM-dd).
func OnDay[T Dated](records []T, day string) []T {
	var matching []T
	for _, r := range records {
		if _, ok := parse(r); !ok {
			continue
		}
		if r.DateKey() == day {
			matching = append(matching, r)
		}
	}
	return matching
}

// InWindow returns the records with start <= date < end.
func InWindow[T Dated](records []T, w Window) []T {
	var matching []T
	for _, r := range records {
		day, ok := parse(r)
		if !ok {
			continue
		}
		if w.Contains(day) {
			matching = append(matching, r)
		}
	}
	return matching
}

// GroupByDay groups the records with valid dates by their yyyy-MM-dd key.
func GroupByDay[T Dated](records []T) map[string][]T {
	day2records := make(map[string][]T)
	for _, r := range records {
		day, ok := parse(r)
		if !ok {
			continue
		}
		key := day.Format(DayLayout)
		day2records[key] = append(day2records[key], r)
	}
	return day2records
}

func parse[T Dated](r T) (time.Time, bool) {
	day, err := ParseDay(r.DateKey())
	if err != nil {
		log.WithField("date", r.DateKey()).Warnf("skipping record with invalid date: %s", err)
		return time.Time{}, false
	}
	// re-format to reject lenient inputs like " 2024-01-05"
	if day.Format(DayLayout) != r.DateKey() {
		log.WithField("date", r.DateKey()).Warnln("skipping record with non-canonical date")
		return time.Time{}, false
	}
	return day, true
}
