package analytics

import (
	"sort"
	"time"

	"github.com/2beens/lifedash/internal/records"
	"github.com/2beens/lifedash/internal/timeseries"
)

// maxStreakDays bounds the backward walk for predicates that never turn false.
const maxStreakDays = 100 * 366

// Predicate reports whether an item counts as completed on a civil day.
type Predicate func(day time.Time) bool

// Streak walks backward from anchor while completed holds and returns the
// number of consecutive days. An incomplete anchor day gives 0; gaps are not skipped.
func Streak(completed Predicate, anchor time.Time) int {
	day := timeseries.DayOf(anchor)
	streak := 0
	for streak < maxStreakDays && completed(day) {
		streak++
		day = timeseries.AddDays(day, -1)
	}
	return streak
}

// CompletionIndex is the set of (item, day) pairs with a completed entry.
type CompletionIndex map[string]map[string]struct{}

// NewCompletionIndex indexes completed entries. Entries with bad dates are
// skipped; duplicates for the same item and day collapse into one.
func NewCompletionIndex(completions []records.HabitCompletion) CompletionIndex {
	idx := make(CompletionIndex)
	for _, c := range timeseries.Valid(completions) {
		if !c.IsCompleted() || c.HabitID == "" {
			continue
		}
		days, ok := idx[c.HabitID]
		if !ok {
			days = make(map[string]struct{})
			idx[c.HabitID] = days
		}
		days[c.Date] = struct{}{}
	}
	return idx
}

func (idx CompletionIndex) Completed(itemID, dayKey string) bool {
	_, ok := idx[itemID][dayKey]
	return ok
}

// CountInWindow counts the days of w on which the item was completed.
func (idx CompletionIndex) CountInWindow(itemID string, w timeseries.Window) int {
	count := 0
	for dayKey := range idx[itemID] {
		day, err := timeseries.ParseDay(dayKey)
		if err != nil {
			continue
		}
		if w.Contains(day) {
			count++
		}
	}
	return count
}

// CountOnDay counts the distinct items completed on a day.
func (idx CompletionIndex) CountOnDay(dayKey string) int {
	count := 0
	for _, days := range idx {
		if _, ok := days[dayKey]; ok {
			count++
		}
	}
	return count
}

func (idx CompletionIndex) Predicate(itemID string) Predicate {
	return func(day time.Time) bool {
		return idx.Completed(itemID, timeseries.DayKey(day))
	}
}

func (idx CompletionIndex) Streak(itemID string, anchor time.Time) int {
	// a run can never be longer than the number of completed days
	days := idx[itemID]
	if len(days) == 0 {
		return 0
	}
	return Streak(idx.Predicate(itemID), anchor)
}

// MaxStreak is the plain maximum of the per-item streaks (0 for no items).
func (idx CompletionIndex) MaxStreak(itemIDs []string, anchor time.Time) int {
	longest := 0
	for _, id := range itemIDs {
		if s := idx.Streak(id, anchor); s > longest {
			longest = s
		}
	}
	return longest
}

type ItemStreak struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category"`
	Streak   int    `json:"streak"`
}

// ItemStreaks computes the streak of every item, longest first, ties by id.
func (idx CompletionIndex) ItemStreaks(items []TrackedItem, anchor time.Time) []ItemStreak {
	streaks := make([]ItemStreak, 0, len(items))
	for _, item := range items {
		streaks = append(streaks, ItemStreak{
			ID:       item.ID,
			Name:     item.Name,
			Category: item.Category,
			Streak:   idx.Streak(item.ID, anchor),
		})
	}
	sort.SliceStable(streaks, func(i, j int) bool {
		if streaks[i].Streak != streaks[j].Streak {
			return streaks[i].Streak > streaks[j].Streak
		}
		return streaks[i].ID < streaks[j].ID
	})
	return streaks
}
