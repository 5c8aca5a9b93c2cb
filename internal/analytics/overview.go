package analytics

import (
	"strings"
	"time"

	"github.com/2beens/lifedash/internal/records"
	"github.com/2beens/lifedash/internal/timeseries"
)

const (
	overviewWorkoutDays = 30
	overviewSeriesDays  = 7
)

type WorkoutOverview struct {
	Entries         int     `json:"entries"`
	TotalVolume     float64 `json:"totalVolume"`
	UniqueExercises int     `json:"uniqueExercises"`
}

type BookOverview struct {
	Completed     int     `json:"completed"`
	Reading       int     `json:"reading"`
	AverageRating float64 `json:"averageRating"`
}

type DayPoint struct {
	Date            string  `json:"date"`
	Kcal            float64 `json:"kcal"`
	Protein         float64 `json:"protein"`
	HabitsCompleted int     `json:"habitsCompleted"`
	Workouts        int     `json:"workouts"`
	Volume          float64 `json:"volume"`
}

// Overview is the dashboard summary: last 30 days of training, reading
// progress, and a 7-day daily series ending at the anchor.
type Overview struct {
	Anchor   string          `json:"anchor"`
	Workouts WorkoutOverview `json:"workouts"`
	Books    BookOverview    `json:"books"`
	Series   []DayPoint      `json:"series"`
	// Incomplete lists the collections that could not be read.
	Incomplete []string `json:"incomplete,omitempty"`
}

type OverviewInput struct {
	Completions []records.HabitCompletion
	Meals       []records.Meal
	Workouts    []records.WorkoutSet
	Books       []records.Book
}

func BuildOverview(anchor time.Time, in OverviewInput) Overview {
	overview := Overview{
		Anchor:   timeseries.DayKey(anchor),
		Workouts: workoutOverview(timeseries.InWindow(in.Workouts, timeseries.LastDays(anchor, overviewWorkoutDays))),
		Books:    bookOverview(in.Books),
	}

	idx := NewCompletionIndex(in.Completions)
	meals := timeseries.GroupByDay(in.Meals)
	workouts := timeseries.GroupByDay(in.Workouts)

	for _, dayKey := range timeseries.LastDays(anchor, overviewSeriesDays).DayKeys() {
		point := DayPoint{
			Date:            dayKey,
			HabitsCompleted: idx.CountOnDay(dayKey),
			Workouts:        len(workouts[dayKey]),
		}

		var kcal, protein, volume []float64
		for _, m := range meals[dayKey] {
			kcal = append(kcal, float64(m.Kcal))
			protein = append(protein, float64(m.Protein))
		}
		for _, w := range workouts[dayKey] {
			volume = append(volume, w.Volume())
		}
		point.Kcal = round1(sum(kcal))
		point.Protein = round1(sum(protein))
		point.Volume = round1(sum(volume))

		overview.Series = append(overview.Series, point)
	}

	return overview
}

func workoutOverview(sets []records.WorkoutSet) WorkoutOverview {
	exercises := make(map[string]bool)
	volumes := make([]float64, 0, len(sets))
	for _, s := range sets {
		volumes = append(volumes, s.Volume())
		if name := strings.ToLower(strings.TrimSpace(s.Exercise)); name != "" {
			exercises[name] = true
		}
	}
	return WorkoutOverview{
		Entries:         len(sets),
		TotalVolume:     round1(sum(volumes)),
		UniqueExercises: len(exercises),
	}
}

func bookOverview(books []records.Book) BookOverview {
	var overview BookOverview
	var ratings []float64
	for _, b := range books {
		switch b.Status {
		case records.BookCompleted:
			overview.Completed++
			if b.Rating > 0 {
				ratings = append(ratings, float64(b.Rating))
			}
		case records.BookReading:
			overview.Reading++
		}
	}
	if len(ratings) > 0 {
		overview.AverageRating = round1(sum(ratings) / float64(len(ratings)))
	}
	return overview
}
