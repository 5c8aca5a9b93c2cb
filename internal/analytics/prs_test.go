package analytics_test

import (
	"testing"
	"time"

	"github.com/2beens/lifedash/internal/analytics"
	"github.com/2beens/lifedash/internal/records"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateOneRepMax(t *testing.T) {
	assert.Equal(t, 180.0, analytics.EstimateOneRepMax(135, 10))
	assert.Equal(t, 177.3, analytics.EstimateOneRepMax(140, 8))
	assert.Equal(t, 103.3, analytics.EstimateOneRepMax(100, 1))
}

func TestPersonalRecords_BenchPress(t *testing.T) {
	sets := []records.WorkoutSet{
		{Date: "2024-03-01", Exercise: "Bench Press", Sets: 3, Reps: 10, Weight: 135},
		{Date: "2024-03-03", Exercise: "Bench Press", Sets: 3, Reps: 8, Weight: 140},
	}
	prs := analytics.PersonalRecords(sets)
	require.Len(t, prs, 1)
	assert.Equal(t, analytics.PersonalRecord{
		Exercise:     "Bench Press",
		Estimated1RM: 180.0,
		Weight:       135,
		Reps:         10,
		Date:         "2024-03-01",
	}, prs["Bench Press"])
}

func TestPersonalRecords_TieGoesToEarlierSet(t *testing.T) {
	// 150 x 5 and 125 x 12 both estimate to 175.0
	early := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	sets := []records.WorkoutSet{
		{Date: "2024-03-02", Exercise: "Squat", Reps: 5, Weight: 150, Sets: 1},
		{Date: "2024-03-01", Exercise: "Squat", Reps: 12, Weight: 125, Sets: 1},
	}
	pr := analytics.PersonalRecords(sets)["Squat"]
	assert.Equal(t, 175.0, pr.Estimated1RM)
	assert.Equal(t, "2024-03-01", pr.Date)
	assert.Equal(t, 12, pr.Reps)

	sameDay := []records.WorkoutSet{
		{Date: "2024-03-01", Exercise: "Squat", Reps: 5, Weight: 150, CreatedAt: &late},
		{Date: "2024-03-01", Exercise: "Squat", Reps: 12, Weight: 125, CreatedAt: &early},
	}
	assert.Equal(t, 12, analytics.PersonalRecords(sameDay)["Squat"].Reps)

	// no way to tell them apart: first seen wins
	noTimestamps := []records.WorkoutSet{
		{Date: "2024-03-01", Exercise: "Squat", Reps: 5, Weight: 150},
		{Date: "2024-03-01", Exercise: "Squat", Reps: 12, Weight: 125},
	}
	assert.Equal(t, 5, analytics.PersonalRecords(noTimestamps)["Squat"].Reps)
}

func TestPersonalRecords_SkipsInvalidSets(t *testing.T) {
	sets := []records.WorkoutSet{
		{Date: "2024-03-01", Exercise: "  ", Reps: 5, Weight: 100},
		{Date: "2024-03-01", Exercise: "Row", Reps: 0, Weight: 100},
		{Date: "2024-03-01", Exercise: "Row", Reps: 5, Weight: 0},
		{Date: "not a date", Exercise: "Row", Reps: 5, Weight: 500},
		{Date: "2024-03-01", Exercise: " Row ", Reps: 5, Weight: 60},
	}
	prs := analytics.PersonalRecords(sets)
	require.Len(t, prs, 1)
	assert.Equal(t, 70.0, prs["Row"].Estimated1RM)
}

func TestPersonalRecords_IdempotentAndOrderIndependent(t *testing.T) {
	f := gofakeit.New(11)
	var sets []records.WorkoutSet
	for i := 0; i < 300; i++ {
		sets = append(sets, records.WorkoutSet{
			Date:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i).Format("2006-01-02"),
			Exercise: f.RandomString([]string{"Squat", "Bench Press", "Deadlift", "Row"}),
			Sets:     f.Number(1, 5),
			Reps:     f.Number(1, 15),
			Weight:   records.Number(f.Number(20, 200)),
		})
	}

	want := analytics.PersonalRecords(sets)
	assert.Equal(t, want, analytics.PersonalRecords(sets))
	for i := 0; i < 5; i++ {
		f.ShuffleAnySlice(sets)
		assert.Equal(t, want, analytics.PersonalRecords(sets))
	}
}

func TestTopPersonalRecords(t *testing.T) {
	prs := map[string]analytics.PersonalRecord{
		"Squat":    {Exercise: "Squat", Estimated1RM: 200},
		"Deadlift": {Exercise: "Deadlift", Estimated1RM: 250},
		"Bench":    {Exercise: "Bench", Estimated1RM: 200},
		"Curl":     {Exercise: "Curl", Estimated1RM: 40},
	}

	top := analytics.TopPersonalRecords(prs, 3)
	require.Len(t, top, 3)
	assert.Equal(t, "Deadlift", top[0].Exercise)
	assert.Equal(t, "Bench", top[1].Exercise)
	assert.Equal(t, "Squat", top[2].Exercise)

	assert.Len(t, analytics.TopPersonalRecords(prs, 0), 4)
	assert.Empty(t, analytics.TopPersonalRecords(nil, 5))
}
