package reminders

import (
	"fmt"
	"math"

	"github.com/2beens/lifedash/internal/analytics"
	"github.com/2beens/lifedash/internal/records"
	"github.com/2beens/lifedash/internal/timeseries"
)

// DigestData is today's progress, used as the body of digest reminders.
type DigestData struct {
	HabitsCompleted int
	HabitsDefined   int
	Kcal            float64
	Protein         float64
	WaterMl         float64
}

type DigestInput struct {
	Habits      []records.Habit
	Completions []records.HabitCompletion
	Meals       []records.Meal
	Water       []records.WaterLog
}

func BuildDigest(dayKey string, in DigestInput) *DigestData {
	items := analytics.ResolveTrackedItems(in.Habits, nil)
	idx := analytics.NewCompletionIndex(timeseries.OnDay(in.Completions, dayKey))

	d := &DigestData{HabitsDefined: len(items)}
	for _, item := range items {
		if idx.Completed(item.ID, dayKey) {
			d.HabitsCompleted++
		}
	}
	for _, m := range timeseries.OnDay(in.Meals, dayKey) {
		d.Kcal += float64(m.Kcal)
		d.Protein += float64(m.Protein)
	}
	for _, w := range timeseries.OnDay(in.Water, dayKey) {
		d.WaterMl += float64(w.Ml)
	}
	return d
}

func (d *DigestData) Body() string {
	if d == nil {
		return "No data for today yet."
	}
	return fmt.Sprintf(
		"Habits %d/%d done, %.0f kcal, %.0f g protein, %.0f ml water.",
		d.HabitsCompleted, d.HabitsDefined,
		math.Round(d.Kcal), math.Round(d.Protein), math.Round(d.WaterMl),
	)
}
