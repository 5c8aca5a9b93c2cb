package stats

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/lifedash/internal/analytics"
	"github.com/2beens/lifedash/internal/clock"
	"github.com/2beens/lifedash/internal/middleware"
	"github.com/2beens/lifedash/internal/reminders"
	"github.com/2beens/lifedash/internal/telemetry/metrics"
	"github.com/2beens/lifedash/internal/telemetry/tracing"
	"github.com/2beens/lifedash/internal/timeseries"
	"github.com/2beens/lifedash/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const maxTopN = 1000

var errBadRequest = errors.New("bad request")

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=stats_test
type analyzer interface {
	Streaks(ctx context.Context, anchor time.Time) (*analytics.StreaksReport, error)
	Period(ctx context.Context, params analytics.PeriodParams) (*analytics.StatsSummary, error)
	PersonalRecords(ctx context.Context, topN int) ([]analytics.PersonalRecord, error)
	Overview(ctx context.Context, anchor time.Time) (*analytics.Overview, error)
	WeeklyReview(ctx context.Context, anchor time.Time) (*analytics.WeeklyReview, error)
}

type remindersState interface {
	Load(ctx context.Context) (reminders.Settings, error)
	Entries(ctx context.Context) ([]reminders.Entry, error)
	LastResult() *reminders.PassResult
}

type PeriodResponse struct {
	*analytics.StatsSummary
	DisplayCompletionRate float64 `json:"displayCompletionRate"`
}

type PersonalRecordsResponse struct {
	Records []analytics.PersonalRecord `json:"records"`
}

type RulesResponse struct {
	Rules []reminders.RuleStatus `json:"rules"`
}

type LedgerResponse struct {
	Entries  []reminders.Entry     `json:"entries"`
	LastPass *reminders.PassResult `json:"lastPass,omitempty"`
}

type Handler struct {
	analyzer  analyzer
	reminders remindersState
	clock     clock.Clock
}

func NewHandler(analyzer analyzer, reminders remindersState, clk clock.Clock) *Handler {
	if clk == nil {
		clk = clock.NewReal(time.UTC)
	}
	return &Handler{
		analyzer:  analyzer,
		reminders: reminders,
		clock:     clk,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	metricsManager *metrics.Manager,
	allowedPerMin int,
) {
	statsRouter := mainRouter.PathPrefix("/stats").Subrouter()
	statsRouter.HandleFunc("/streaks", handler.HandleStreaks).Methods("GET", "OPTIONS").Name("streaks")
	statsRouter.HandleFunc("/period/{period}", handler.HandlePeriod).Methods("GET", "OPTIONS").Name("period")
	statsRouter.HandleFunc("/prs", handler.HandlePersonalRecords).Methods("GET", "OPTIONS").Name("prs")
	statsRouter.HandleFunc("/overview", handler.HandleOverview).Methods("GET", "OPTIONS").Name("overview")
	statsRouter.HandleFunc("/review", handler.HandleWeeklyReview).Methods("GET", "OPTIONS").Name("review")
	// aggregates read every collection, so they are limited on a shared budget
	statsRouter.Use(middleware.RateLimit(rateLimiter, "stats", allowedPerMin, metricsManager))

	if handler.reminders != nil {
		mainRouter.HandleFunc("/reminders/rules", handler.HandleRules).Methods("GET", "OPTIONS").Name("reminder-rules")
		mainRouter.HandleFunc("/reminders/ledger", handler.HandleLedger).Methods("GET", "OPTIONS").Name("reminder-ledger")
	}
}

func (handler *Handler) HandleStreaks(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.streaks")
	defer span.End()

	anchor, err := handler.anchor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := handler.analyzer.Streaks(ctx, anchor)
	if err != nil {
		log.Errorf("get streaks for %s: %s", timeseries.DayKey(anchor), err)
		http.Error(w, "failed to compute streaks", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, report)
}

func (handler *Handler) HandlePeriod(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.period")
	defer span.End()

	period, err := timeseries.ParsePeriod(mux.Vars(r)["period"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	anchor, err := handler.anchor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	topN, err := parseTop(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := analytics.PeriodParams{
		Period:  period,
		Anchor:  anchor,
		ItemIDs: parseItems(r),
		TopN:    topN,
	}
	span.SetAttributes(
		attribute.String("period", string(period)),
		attribute.Int("items", len(params.ItemIDs)),
	)

	summary, err := handler.analyzer.Period(ctx, params)
	if err != nil && summary == nil {
		log.Errorf("get %s stats for %s: %s", period, timeseries.DayKey(anchor), err)
		http.Error(w, "failed to compute period stats", http.StatusInternalServerError)
		return
	}
	if err != nil {
		log.Warnf("partial result, %s: %s", strings.Join(summary.Incomplete, ","), err)
	}

	pkg.WriteJSON(w, http.StatusOK, PeriodResponse{
		StatsSummary:          summary,
		DisplayCompletionRate: summary.DisplayCompletionRate(),
	})
}

func (handler *Handler) HandlePersonalRecords(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.prs")
	defer span.End()

	topN, err := parseTop(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	prs, err := handler.analyzer.PersonalRecords(ctx, topN)
	if err != nil {
		log.Errorf("get personal records: %s", err)
		http.Error(w, "failed to compute personal records", http.StatusInternalServerError)
		return
	}
	if prs == nil {
		prs = []analytics.PersonalRecord{}
	}

	pkg.WriteJSON(w, http.StatusOK, PersonalRecordsResponse{Records: prs})
}

func (handler *Handler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.overview")
	defer span.End()

	anchor, err := handler.anchor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	overview, err := handler.analyzer.Overview(ctx, anchor)
	if err != nil && overview == nil {
		log.Errorf("get overview for %s: %s", timeseries.DayKey(anchor), err)
		http.Error(w, "failed to compute overview", http.StatusInternalServerError)
		return
	}
	if err != nil {
		log.Warnf("partial result, %s: %s", strings.Join(overview.Incomplete, ","), err)
	}

	pkg.WriteJSON(w, http.StatusOK, overview)
}

func (handler *Handler) HandleWeeklyReview(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.review")
	defer span.End()

	anchor, err := handler.anchor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	review, err := handler.analyzer.WeeklyReview(ctx, anchor)
	if err != nil && review == nil {
		log.Errorf("get weekly review for %s: %s", timeseries.DayKey(anchor), err)
		http.Error(w, "failed to compute weekly review", http.StatusInternalServerError)
		return
	}
	if err != nil {
		log.Warnf("partial result, %s: %s", strings.Join(review.Incomplete, ","), err)
	}

	pkg.WriteJSON(w, http.StatusOK, review)
}

func (handler *Handler) HandleRules(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.reminders.rules")
	defer span.End()

	settings, err := handler.reminders.Load(ctx)
	if err != nil {
		log.Errorf("load reminder settings: %s", err)
		http.Error(w, "failed to load reminder settings", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, RulesResponse{Rules: settings.Statuses()})
}

func (handler *Handler) HandleLedger(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.reminders.ledger")
	defer span.End()

	entries, err := handler.reminders.Entries(ctx)
	if err != nil {
		log.Errorf("read reminders ledger: %s", err)
		http.Error(w, "failed to read reminders ledger", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []reminders.Entry{}
	}

	pkg.WriteJSON(w, http.StatusOK, LedgerResponse{
		Entries:  entries,
		LastPass: handler.reminders.LastResult(),
	})
}

// anchor reads the anchor day from the query, defaulting to today on the
// handler's clock.
func (handler *Handler) anchor(r *http.Request) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("anchor"))
	if raw == "" {
		return timeseries.DayOf(handler.clock.Now()), nil
	}
	day, err := timeseries.ParseDay(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid anchor, expected yyyy-MM-dd", errBadRequest)
	}
	return day, nil
}

// parseItems returns nil when the items param is absent (every habit) and an
// empty slice when it is present but empty (no habit).
func parseItems(r *http.Request) []string {
	values, ok := r.URL.Query()["items"]
	if !ok {
		return nil
	}
	items := []string{}
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				items = append(items, id)
			}
		}
	}
	return items
}

func parseTop(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("top")
	if raw == "" {
		return 0, nil
	}
	topN, err := strconv.Atoi(raw)
	if err != nil || topN < 0 || topN > maxTopN {
		return 0, fmt.Errorf("%w: top must be between 0 and %d", errBadRequest, maxTopN)
	}
	return topN, nil
}
