package analytics

import (
	"sort"
	"strings"

	"github.com/2beens/lifedash/internal/records"
	"github.com/2beens/lifedash/internal/timeseries"
)

type PersonalRecord struct {
	Exercise     string  `json:"exercise"`
	Estimated1RM float64 `json:"estimated1RM"`
	Weight       float64 `json:"weight"`
	Reps         int     `json:"reps"`
	Date         string  `json:"date"`
}

// EstimateOneRepMax uses the Epley formula, weight x (1 + reps/30), rounded to one decimal.
func EstimateOneRepMax(weight float64, reps int) float64 {
	return round1(weight * (1 + float64(reps)/30))
}

// PersonalRecords returns the best estimated set per exercise over the whole history.
// On an exact estimate tie the earlier-logged set wins: earlier date, then earlier
// creation time, then the one seen first.
func PersonalRecords(sets []records.WorkoutSet) map[string]PersonalRecord {
	best := make(map[string]PersonalRecord)
	bestSet := make(map[string]records.WorkoutSet)

	for _, set := range timeseries.Valid(sets) {
		exercise := strings.TrimSpace(set.Exercise)
		if exercise == "" || set.Reps <= 0 || set.Weight <= 0 {
			continue
		}

		estimate := EstimateOneRepMax(float64(set.Weight), set.Reps)
		current, found := best[exercise]
		if found {
			if estimate < current.Estimated1RM {
				continue
			}
			if estimate == current.Estimated1RM && !loggedBefore(set, bestSet[exercise]) {
				continue
			}
		}

		best[exercise] = PersonalRecord{
			Exercise:     exercise,
			Estimated1RM: estimate,
			Weight:       float64(set.Weight),
			Reps:         set.Reps,
			Date:         set.Date,
		}
		bestSet[exercise] = set
	}

	return best
}

func loggedBefore(a, b records.WorkoutSet) bool {
	if a.Date != b.Date {
		// both dates are canonical yyyy-MM-dd, so string order is date order
		return a.Date < b.Date
	}
	if a.CreatedAt != nil && b.CreatedAt != nil {
		return a.CreatedAt.Before(*b.CreatedAt)
	}
	return false
}

// TopPersonalRecords sorts by estimate descending, ties by exercise name; n <= 0 keeps all.
func TopPersonalRecords(prs map[string]PersonalRecord, n int) []PersonalRecord {
	list := make([]PersonalRecord, 0, len(prs))
	for _, pr := range prs {
		list = append(list, pr)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Estimated1RM != list[j].Estimated1RM {
			return list[i].Estimated1RM > list[j].Estimated1RM
		}
		return list[i].Exercise < list[j].Exercise
	})
	if n > 0 && len(list) > n {
		list = list[:n]
	}
	return list
}
