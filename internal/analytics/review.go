package analytics

import (
	"time"

	"github.com/2beens/lifedash/internal/records"
	"github.com/2beens/lifedash/internal/timeseries"
)

// WeeklyReview combines the stats of the Sunday-started week containing the
// anchor with the streaks as of the anchor day.
type WeeklyReview struct {
	Week      timeseries.Window `json:"week"`
	Summary   StatsSummary      `json:"summary"`
	Streaks   []ItemStreak      `json:"streaks"`
	MaxStreak int               `json:"maxStreak"`
	// BestItem is the tracked item with the highest completion rate this week.
	BestItem *ItemRate `json:"bestItem,omitempty"`
	// Incomplete lists the collections that could not be read.
	Incomplete []string `json:"incomplete,omitempty"`
}

type ReviewInput struct {
	Items       []TrackedItem
	Completions []records.HabitCompletion
	Meals       []records.Meal
	Water       []records.WaterLog
	Workouts    []records.WorkoutSet
	AverageMode AverageMode
}

func BuildWeeklyReview(anchor time.Time, in ReviewInput) WeeklyReview {
	week := timeseries.WeekOf(anchor)
	summary := Aggregate(PeriodInput{
		Window:      week,
		Items:       in.Items,
		Completions: in.Completions,
		Meals:       in.Meals,
		Water:       in.Water,
		Workouts:    in.Workouts,
		AverageMode: in.AverageMode,
	})

	items := dedupItems(in.Items)
	idx := NewCompletionIndex(in.Completions)
	streaks := idx.ItemStreaks(items, anchor)

	review := WeeklyReview{
		Week:    week,
		Summary: summary,
		Streaks: streaks,
	}
	if len(streaks) > 0 {
		review.MaxStreak = streaks[0].Streak
	}
	if len(summary.TopItems) > 0 {
		best := summary.TopItems[0]
		review.BestItem = &best
	}
	return review
}
