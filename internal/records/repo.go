package records

import (
	"context"
	"fmt"

	"github.com/2beens/lifedash/internal/store"
	"github.com/2beens/lifedash/internal/telemetry/metrics"
	"github.com/2beens/lifedash/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// Repo reads typed collections from the record store. It never writes.
type Repo struct {
	store          store.RecordStore
	metricsManager *metrics.Manager
}

func NewRepo(s store.RecordStore, metricsManager *metrics.Manager) *Repo {
	return &Repo{
		store:          s,
		metricsManager: metricsManager,
	}
}

func load[T any](ctx context.Context, r *Repo, key string) (_ []T, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.load")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("collection", key))

	raw, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read [%s]: %w", key, err)
	}

	items, skipped, err := decodeCollection[T](key, raw)
	if err != nil {
		return nil, err
	}
	if skipped > 0 && r.metricsManager != nil {
		r.metricsManager.CounterMalformedRecords.WithLabelValues(key).Add(float64(skipped))
	}
	span.SetAttributes(attribute.Int("records", len(items)))

	return items, nil
}

func (r *Repo) Habits(ctx context.Context) ([]Habit, error) {
	return load[Habit](ctx, r, KeyHabits)
}

func (r *Repo) Completions(ctx context.Context) ([]HabitCompletion, error) {
	return load[HabitCompletion](ctx, r, KeyCompletions)
}

func (r *Repo) Workouts(ctx context.Context) ([]WorkoutSet, error) {
	return load[WorkoutSet](ctx, r, KeyWorkouts)
}

func (r *Repo) Meals(ctx context.Context) ([]Meal, error) {
	return load[Meal](ctx, r, KeyMeals)
}

func (r *Repo) Water(ctx context.Context) ([]WaterLog, error) {
	return load[WaterLog](ctx, r, KeyWater)
}

func (r *Repo) TimeBlocks(ctx context.Context) ([]TimeBlock, error) {
	return load[TimeBlock](ctx, r, KeyTimeBlocks)
}

func (r *Repo) CalendarEvents(ctx context.Context) ([]CalendarEvent, error) {
	return load[CalendarEvent](ctx, r, KeyCalendarEvents)
}

func (r *Repo) Books(ctx context.Context) ([]Book, error) {
	return load[Book](ctx, r, KeyBooks)
}
