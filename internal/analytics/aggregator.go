package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/2beens/lifedash/internal/records"
	"github.com/2beens/lifedash/internal/timeseries"
)

const UncategorizedCategory = "uncategorized"

type AverageMode string

const (
	// AverageByPeriodLength divides by 7 for a week and 30 for a month,
	// so sparse periods under-report rather than over-report.
	AverageByPeriodLength AverageMode = "period_length"
	// AverageByDaysWithData divides by the number of days that had any data.
	AverageByDaysWithData AverageMode = "days_with_data"
)

func ParseAverageMode(s string) (AverageMode, error) {
	switch AverageMode(strings.TrimSpace(s)) {
	case "", AverageByPeriodLength:
		return AverageByPeriodLength, nil
	case AverageByDaysWithData:
		return AverageByDaysWithData, nil
	default:
		return "", fmt.Errorf("unknown average mode: %s", s)
	}
}

// TrackedItem is a habit (or any completion-tracked item) selected for stats.
type TrackedItem struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category"`
}

type CategoryStats struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

type ItemRate struct {
	ID        string  `json:"id"`
	Name      string  `json:"name,omitempty"`
	Category  string  `json:"category"`
	Completed int     `json:"completed"`
	Rate      float64 `json:"rate"`
}

type Metric struct {
	Total        float64 `json:"total"`
	Average      float64 `json:"average"`
	DaysWithData int     `json:"daysWithData"`
}

// StatsSummary is derived on demand and never persisted.
type StatsSummary struct {
	Window           timeseries.Window `json:"window"`
	Days             int               `json:"days"`
	TrackedItems     int               `json:"trackedItems"`
	CompletedEntries int               `json:"completedEntries"`
	PossibleEntries  int               `json:"possibleEntries"`
	// CompletionRate is the raw percentage, not clamped.
	CompletionRate    float64                  `json:"completionRate"`
	CategoryBreakdown map[string]CategoryStats `json:"categoryBreakdown"`
	TopItems          []ItemRate               `json:"topItems"`
	AverageMode       AverageMode              `json:"averageMode"`
	Calories          Metric                   `json:"calories"`
	Protein           Metric                   `json:"protein"`
	WaterMl           Metric                   `json:"waterMl"`
	WorkoutVolume     Metric                   `json:"workoutVolume"`
	WorkoutEntries    int                      `json:"workoutEntries"`
	// Incomplete lists the collections that could not be read.
	Incomplete []string `json:"incomplete,omitempty"`
}

// DisplayCompletionRate clamps the completion rate to [0, 100] with one decimal.
func (s StatsSummary) DisplayCompletionRate() float64 {
	return round1(math.Max(0, math.Min(100, s.CompletionRate)))
}

type PeriodInput struct {
	Window      timeseries.Window
	Items       []TrackedItem
	Completions []records.HabitCompletion
	Meals       []records.Meal
	Water       []records.WaterLog
	Workouts    []records.WorkoutSet
	// TopN limits TopItems, 0 keeps all.
	TopN        int
	AverageMode AverageMode
}

// Aggregate computes the period statistics. It is a pure function of its input:
// the order of the record collections does not change the result.
func Aggregate(in PeriodInput) StatsSummary {
	items := dedupItems(in.Items)
	days := in.Window.Days()
	mode := in.AverageMode
	if mode == "" {
		mode = AverageByPeriodLength
	}

	summary := StatsSummary{
		Window:            in.Window,
		Days:              days,
		TrackedItems:      len(items),
		PossibleEntries:   len(items) * days,
		CategoryBreakdown: make(map[string]CategoryStats),
		TopItems:          []ItemRate{},
		AverageMode:       mode,
	}

	idx := NewCompletionIndex(timeseries.InWindow(in.Completions, in.Window))
	rates := make([]ItemRate, 0, len(items))
	for _, item := range items {
		completed := idx.CountInWindow(item.ID, in.Window)
		summary.CompletedEntries += completed

		cat := summary.CategoryBreakdown[item.Category]
		cat.Completed += completed
		cat.Total += days
		summary.CategoryBreakdown[item.Category] = cat

		rates = append(rates, ItemRate{
			ID:        item.ID,
			Name:      item.Name,
			Category:  item.Category,
			Completed: completed,
			Rate:      round1(percentage(completed, days)),
		})
	}
	summary.CompletionRate = percentage(summary.CompletedEntries, summary.PossibleEntries)
	summary.TopItems = topItems(rates, in.TopN)

	meals := timeseries.InWindow(in.Meals, in.Window)
	summary.Calories = metric(in.Window, mode, meals, func(m records.Meal) float64 { return float64(m.Kcal) })
	summary.Protein = metric(in.Window, mode, meals, func(m records.Meal) float64 { return float64(m.Protein) })
	summary.WaterMl = metric(in.Window, mode, timeseries.InWindow(in.Water, in.Window), func(w records.WaterLog) float64 { return float64(w.Ml) })

	workouts := timeseries.InWindow(in.Workouts, in.Window)
	summary.WorkoutEntries = len(workouts)
	summary.WorkoutVolume = metric(in.Window, mode, workouts, records.WorkoutSet.Volume)

	return summary
}

// dedupItems drops repeated ids (first one wins) and fills empty categories.
func dedupItems(items []TrackedItem) []TrackedItem {
	seen := make(map[string]bool, len(items))
	res := make([]TrackedItem, 0, len(items))
	for _, item := range items {
		if item.ID == "" || seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		if strings.TrimSpace(item.Category) == "" {
			item.Category = UncategorizedCategory
		}
		res = append(res, item)
	}
	return res
}

func topItems(rates []ItemRate, topN int) []ItemRate {
	sort.SliceStable(rates, func(i, j int) bool {
		if rates[i].Rate != rates[j].Rate {
			return rates[i].Rate > rates[j].Rate
		}
		return rates[i].ID < rates[j].ID
	})
	if topN > 0 && len(rates) > topN {
		rates = rates[:topN]
	}
	return rates
}

func metric[T timeseries.Dated](w timeseries.Window, mode AverageMode, rs []T, value func(T) float64) Metric {
	values := make([]float64, 0, len(rs))
	daysWithData := make(map[string]bool)
	for _, r := range rs {
		values = append(values, value(r))
		daysWithData[r.DateKey()] = true
	}

	m := Metric{
		Total:        sum(values),
		DaysWithData: len(daysWithData),
	}

	divisor := 0
	switch mode {
	case AverageByDaysWithData:
		divisor = m.DaysWithData
	default:
		divisor = w.Period.FixedLength()
		if divisor == 0 {
			// rolling windows have no nominal length
			divisor = w.Days()
		}
	}
	if divisor > 0 {
		m.Average = round1(m.Total / float64(divisor))
	}
	m.Total = round1(m.Total)
	return m
}

// sum adds the values in sorted order so the result does not depend on input order.
func sum(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	total := 0.0
	for _, v := range sorted {
		total += v
	}
	return total
}

func percentage(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
