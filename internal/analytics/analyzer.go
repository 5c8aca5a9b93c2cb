package analytics

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/2beens/lifedash/internal/records"
	"github.com/2beens/lifedash/internal/telemetry/tracing"
	"github.com/2beens/lifedash/internal/timeseries"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=$GOFILE -destination=analyzer_mocks_test.go -package=analytics_test
type recordsRepo interface {
	Habits(ctx context.Context) ([]records.Habit, error)
	Completions(ctx context.Context) ([]records.HabitCompletion, error)
	Workouts(ctx context.Context) ([]records.WorkoutSet, error)
	Meals(ctx context.Context) ([]records.Meal, error)
	Water(ctx context.Context) ([]records.WaterLog, error)
	Books(ctx context.Context) ([]records.Book, error)
}

// Analyzer loads the record collections and runs the pure calculators over them.
type Analyzer struct {
	repo        recordsRepo
	averageMode AverageMode
}

func NewAnalyzer(repo recordsRepo, averageMode AverageMode) *Analyzer {
	if averageMode == "" {
		averageMode = AverageByPeriodLength
	}
	return &Analyzer{
		repo:        repo,
		averageMode: averageMode,
	}
}

type StreaksReport struct {
	Anchor    string       `json:"anchor"`
	Items     []ItemStreak `json:"items"`
	MaxStreak int          `json:"maxStreak"`
}

// Streaks computes the streak of every defined habit as of anchor.
func (a *Analyzer) Streaks(ctx context.Context, anchor time.Time) (_ *StreaksReport, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.analytics.streaks")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var habits []records.Habit
	var completions []records.HabitCompletion
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		habits, err = a.repo.Habits(gctx)
		return err
	})
	g.Go(func() (err error) {
		completions, err = a.repo.Completions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := ResolveTrackedItems(habits, nil)
	streaks := NewCompletionIndex(completions).ItemStreaks(items, anchor)
	report := &StreaksReport{
		Anchor: timeseries.DayKey(anchor),
		Items:  streaks,
	}
	if len(streaks) > 0 {
		report.MaxStreak = streaks[0].Streak
	}
	span.SetAttributes(attribute.Int("max_streak", report.MaxStreak))

	return report, nil
}

type PeriodParams struct {
	Period timeseries.Period
	Anchor time.Time
	// ItemIDs selects the tracked items; nil means every defined habit,
	// an empty non-nil slice means none.
	ItemIDs []string
	TopN    int
}

func (a *Analyzer) Period(ctx context.Context, params PeriodParams) (_ *StatsSummary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.analytics.period")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("period", string(params.Period)))

	window, err := timeseries.NewWindow(params.Period, params.Anchor)
	if err != nil {
		return nil, err
	}

	data, incomplete, err := a.loadPeriodData(ctx)
	if data == nil {
		return nil, err
	}

	summary := Aggregate(PeriodInput{
		Window:      window,
		Items:       ResolveTrackedItems(data.habits, params.ItemIDs),
		Completions: data.completions,
		Meals:       data.meals,
		Water:       data.water,
		Workouts:    data.workouts,
		TopN:        params.TopN,
		AverageMode: a.averageMode,
	})
	summary.Incomplete = incomplete
	return &summary, err
}

func (a *Analyzer) PersonalRecords(ctx context.Context, topN int) (_ []PersonalRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.analytics.prs")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workouts, err := a.repo.Workouts(ctx)
	if err != nil {
		return nil, err
	}

	prs := TopPersonalRecords(PersonalRecords(workouts), topN)
	span.SetAttributes(attribute.Int("exercises", len(prs)))
	return prs, nil
}

func (a *Analyzer) Overview(ctx context.Context, anchor time.Time) (_ *Overview, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.analytics.overview")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var in OverviewInput
	loader := &partialLoader{}
	loader.load(records.KeyCompletions, func() (err error) {
		in.Completions, err = a.repo.Completions(ctx)
		return err
	})
	loader.load(records.KeyMeals, func() (err error) {
		in.Meals, err = a.repo.Meals(ctx)
		return err
	})
	loader.load(records.KeyWorkouts, func() (err error) {
		in.Workouts, err = a.repo.Workouts(ctx)
		return err
	})
	loader.load(records.KeyBooks, func() (err error) {
		in.Books, err = a.repo.Books(ctx)
		return err
	})
	incomplete, err := loader.wait()
	if loader.allFailed() {
		return nil, err
	}

	overview := BuildOverview(anchor, in)
	overview.Incomplete = incomplete
	return &overview, err
}

func (a *Analyzer) WeeklyReview(ctx context.Context, anchor time.Time) (_ *WeeklyReview, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.analytics.weekly-review")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	data, incomplete, err := a.loadPeriodData(ctx)
	if data == nil {
		return nil, err
	}

	review := BuildWeeklyReview(anchor, ReviewInput{
		Items:       ResolveTrackedItems(data.habits, nil),
		Completions: data.completions,
		Meals:       data.meals,
		Water:       data.water,
		Workouts:    data.workouts,
		AverageMode: a.averageMode,
	})
	review.Incomplete = incomplete
	return &review, err
}

type periodData struct {
	habits      []records.Habit
	completions []records.HabitCompletion
	meals       []records.Meal
	water       []records.WaterLog
	workouts    []records.WorkoutSet
}

// loadPeriodData reads every collection independently. It returns the keys
// that failed along with their combined error, and nil data only when none
// could be read.
func (a *Analyzer) loadPeriodData(ctx context.Context) (*periodData, []string, error) {
	data := &periodData{}
	loader := &partialLoader{}
	loader.load(records.KeyHabits, func() (err error) {
		data.habits, err = a.repo.Habits(ctx)
		return err
	})
	loader.load(records.KeyCompletions, func() (err error) {
		data.completions, err = a.repo.Completions(ctx)
		return err
	})
	loader.load(records.KeyMeals, func() (err error) {
		data.meals, err = a.repo.Meals(ctx)
		return err
	})
	loader.load(records.KeyWater, func() (err error) {
		data.water, err = a.repo.Water(ctx)
		return err
	})
	loader.load(records.KeyWorkouts, func() (err error) {
		data.workouts, err = a.repo.Workouts(ctx)
		return err
	})
	incomplete, err := loader.wait()
	if loader.allFailed() {
		return nil, incomplete, err
	}
	return data, incomplete, err
}

// partialLoader runs collection reads concurrently without cancelling the
// others when one fails.
type partialLoader struct {
	g      errgroup.Group
	mu     sync.Mutex
	total  int
	failed []string
	err    error
}

func (l *partialLoader) load(key string, read func() error) {
	l.total++
	l.g.Go(func() error {
		if err := read(); err != nil {
			l.mu.Lock()
			defer l.mu.Unlock()
			l.failed = append(l.failed, key)
			l.err = multierr.Append(l.err, err)
		}
		return nil
	})
}

// wait returns the sorted keys that failed and their combined error.
func (l *partialLoader) wait() ([]string, error) {
	_ = l.g.Wait()
	sort.Strings(l.failed)
	return l.failed, l.err
}

func (l *partialLoader) allFailed() bool {
	return l.total > 0 && len(l.failed) == l.total
}

// ResolveTrackedItems turns the selection into tracked items. A nil selection
// tracks every habit, sorted by id. Selected ids without a definition (e.g. a
// deleted habit that still has completions) are kept as uncategorized.
func ResolveTrackedItems(habits []records.Habit, selected []string) []TrackedItem {
	byID := make(map[string]records.Habit, len(habits))
	for _, h := range habits {
		if h.ID == "" {
			continue
		}
		if _, ok := byID[h.ID]; !ok {
			byID[h.ID] = h
		}
	}

	toItem := func(h records.Habit) TrackedItem {
		category := strings.TrimSpace(h.Category)
		if category == "" {
			category = UncategorizedCategory
		}
		return TrackedItem{ID: h.ID, Name: h.Name, Category: category}
	}

	if selected == nil {
		items := make([]TrackedItem, 0, len(byID))
		for _, h := range byID {
			items = append(items, toItem(h))
		}
		sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
		return items
	}

	items := make([]TrackedItem, 0, len(selected))
	for _, id := range selected {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if h, ok := byID[id]; ok {
			items = append(items, toItem(h))
			continue
		}
		items = append(items, TrackedItem{ID: id, Category: UncategorizedCategory})
	}
	return items
}
