package stats_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/2beens/lifedash/internal/analytics"
	"github.com/2beens/lifedash/internal/clock"
	"github.com/2beens/lifedash/internal/records"
	"github.com/2beens/lifedash/internal/reminders"
	"github.com/2beens/lifedash/internal/stats"
	"github.com/2beens/lifedash/internal/store"
	"github.com/2beens/lifedash/internal/telemetry/metrics"
	"github.com/2beens/lifedash/internal/timeseries"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var now = time.Date(2024, 3, 6, 18, 30, 0, 0, time.UTC)

func newRouter(h *stats.Handler) *mux.Router {
	r := mux.NewRouter()
	h.SetupRoutes(r, nil, metrics.NewTestManager(), 0)
	return r
}

func get(t *testing.T, r http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestHandler_Streaks_DefaultsAnchorToToday(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzerMock := NewMockanalyzer(ctrl)
	r := newRouter(stats.NewHandler(analyzerMock, nil, clock.NewManual(now)))

	today, err := timeseries.ParseDay("2024-03-06")
	require.NoError(t, err)
	analyzerMock.EXPECT().Streaks(gomock.Any(), today).Return(&analytics.StreaksReport{
		Anchor:    "2024-03-06",
		Items:     []analytics.ItemStreak{{ID: "run", Streak: 4}},
		MaxStreak: 4,
	}, nil)

	rr := get(t, r, "/stats/streaks")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var report analytics.StreaksReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, 4, report.MaxStreak)
}

func TestHandler_BadAnchor(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := newRouter(stats.NewHandler(NewMockanalyzer(ctrl), nil, clock.NewManual(now)))

	for _, target := range []string{
		"/stats/streaks?anchor=06.03.2024",
		"/stats/overview?anchor=yesterday",
		"/stats/review?anchor=2024-02-30",
		"/stats/period/week?anchor=2024",
	} {
		assert.Equal(t, http.StatusBadRequest, get(t, r, target).Code, target)
	}
}

func TestHandler_Period(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzerMock := NewMockanalyzer(ctrl)
	r := newRouter(stats.NewHandler(analyzerMock, nil, clock.NewManual(now)))

	anchor, err := timeseries.ParseDay("2024-03-01")
	require.NoError(t, err)
	analyzerMock.EXPECT().
		Period(gomock.Any(), analytics.PeriodParams{
			Period:  timeseries.PeriodMonth,
			Anchor:  anchor,
			ItemIDs: []string{"run", "read"},
			TopN:    3,
		}).
		Return(&analytics.StatsSummary{CompletionRate: 104.26}, nil)

	rr := get(t, r, "/stats/period/month?anchor=2024-03-01&items=run,%20read,&top=3")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 104.26, resp["completionRate"])
	assert.Equal(t, 100.0, resp["displayCompletionRate"])
}

func TestHandler_Period_ItemsParam(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzerMock := NewMockanalyzer(ctrl)
	r := newRouter(stats.NewHandler(analyzerMock, nil, clock.NewManual(now)))

	// absent means every habit, present and empty means none
	analyzerMock.EXPECT().
		Period(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params analytics.PeriodParams) (*analytics.StatsSummary, error) {
			assert.Nil(t, params.ItemIDs)
			return &analytics.StatsSummary{}, nil
		})
	analyzerMock.EXPECT().
		Period(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params analytics.PeriodParams) (*analytics.StatsSummary, error) {
			assert.NotNil(t, params.ItemIDs)
			assert.Empty(t, params.ItemIDs)
			return &analytics.StatsSummary{}, nil
		})

	assert.Equal(t, http.StatusOK, get(t, r, "/stats/period/week").Code)
	assert.Equal(t, http.StatusOK, get(t, r, "/stats/period/week?items=").Code)
}

func TestHandler_Period_BadParams(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := newRouter(stats.NewHandler(NewMockanalyzer(ctrl), nil, clock.NewManual(now)))

	assert.Equal(t, http.StatusBadRequest, get(t, r, "/stats/period/year").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, r, "/stats/period/week?top=-1").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, r, "/stats/period/week?top=many").Code)
}

func TestHandler_PersonalRecords(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzerMock := NewMockanalyzer(ctrl)
	r := newRouter(stats.NewHandler(analyzerMock, nil, clock.NewManual(now)))

	analyzerMock.EXPECT().PersonalRecords(gomock.Any(), 0).Return(nil, nil)
	rr := get(t, r, "/stats/prs")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"records":[]}`, rr.Body.String())

	analyzerMock.EXPECT().PersonalRecords(gomock.Any(), 5).Return(nil, errors.New("store down"))
	assert.Equal(t, http.StatusInternalServerError, get(t, r, "/stats/prs?top=5").Code)
}

func TestHandler_AnalyzerErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzerMock := NewMockanalyzer(ctrl)
	r := newRouter(stats.NewHandler(analyzerMock, nil, clock.NewManual(now)))

	storeErr := errors.New("store down")
	analyzerMock.EXPECT().Streaks(gomock.Any(), gomock.Any()).Return(nil, storeErr)
	analyzerMock.EXPECT().Overview(gomock.Any(), gomock.Any()).Return(nil, storeErr)
	analyzerMock.EXPECT().WeeklyReview(gomock.Any(), gomock.Any()).Return(nil, storeErr)
	analyzerMock.EXPECT().Period(gomock.Any(), gomock.Any()).Return(nil, storeErr)

	for _, target := range []string{"/stats/streaks", "/stats/overview", "/stats/review", "/stats/period/week"} {
		assert.Equal(t, http.StatusInternalServerError, get(t, r, target).Code, target)
	}
}

func TestHandler_PartialResults(t *testing.T) {
	ctrl := gomock.NewController(t)
	analyzerMock := NewMockanalyzer(ctrl)
	r := newRouter(stats.NewHandler(analyzerMock, nil, clock.NewManual(now)))

	booksErr := errors.New("read [books:notes]: timeout")
	analyzerMock.EXPECT().Overview(gomock.Any(), gomock.Any()).Return(&analytics.Overview{
		Anchor:     "2024-03-06",
		Incomplete: []string{records.KeyBooks},
	}, booksErr)
	analyzerMock.EXPECT().Period(gomock.Any(), gomock.Any()).Return(&analytics.StatsSummary{
		Days:       7,
		Incomplete: []string{records.KeyMeals},
	}, booksErr)

	rr := get(t, r, "/stats/overview")
	require.Equal(t, http.StatusOK, rr.Code)
	var overview analytics.Overview
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &overview))
	assert.Equal(t, []string{records.KeyBooks}, overview.Incomplete)

	rr = get(t, r, "/stats/period/week")
	require.Equal(t, http.StatusOK, rr.Code)
	var summary map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, []any{records.KeyMeals}, summary["incomplete"])
}

func TestHandler_Rules_ListsUndecodableRules(t *testing.T) {
	ctrl := gomock.NewController(t)
	stateMock := NewMockremindersState(ctrl)
	r := newRouter(stats.NewHandler(NewMockanalyzer(ctrl), stateMock, clock.NewManual(now)))

	settings, err := reminders.ParseSettings("rules.json", []byte(`{"rules":[
		{"id":"water","kind":"interval","enabled":true,"config":{"intervalMinutes":120}},
		{"id":"hourly","kind":"interval","enabled":true,"config":{"intervalMinutes":"60"}}
	]}`))
	require.NoError(t, err)
	stateMock.EXPECT().Load(gomock.Any()).Return(settings, nil)

	rr := get(t, r, "/reminders/rules")
	require.Equal(t, http.StatusOK, rr.Code)
	var rules stats.RulesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rules))
	require.Len(t, rules.Rules, 2)
	assert.Equal(t, "hourly", rules.Rules[0].ID)
	assert.Contains(t, rules.Rules[0].Error, "decode rule #1")
	assert.Equal(t, "water", rules.Rules[1].ID)
	assert.Empty(t, rules.Rules[1].Error)
}

func TestHandler_Reminders(t *testing.T) {
	ctrl := gomock.NewController(t)
	stateMock := NewMockremindersState(ctrl)
	r := newRouter(stats.NewHandler(NewMockanalyzer(ctrl), stateMock, clock.NewManual(now)))

	stateMock.EXPECT().Load(gomock.Any()).Return(reminders.Settings{Rules: []reminders.Rule{
		{ID: "water", Kind: reminders.KindInterval, Enabled: true, Config: reminders.Config{IntervalMinutes: 120}},
		{ID: "bad", Kind: reminders.KindWindow, Enabled: true},
	}}, nil)

	rr := get(t, r, "/reminders/rules")
	require.Equal(t, http.StatusOK, rr.Code)
	var rules stats.RulesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rules))
	require.Len(t, rules.Rules, 2)
	assert.Equal(t, "bad", rules.Rules[0].ID)
	assert.NotEmpty(t, rules.Rules[0].Error)
	assert.Empty(t, rules.Rules[1].Error)

	stateMock.EXPECT().Entries(gomock.Any()).Return(nil, nil)
	stateMock.EXPECT().LastResult().Return(&reminders.PassResult{At: now, Rules: 2})
	rr = get(t, r, "/reminders/ledger")
	require.Equal(t, http.StatusOK, rr.Code)
	var ledger stats.LedgerResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ledger))
	assert.NotNil(t, ledger.Entries)
	assert.Empty(t, ledger.Entries)
	require.NotNil(t, ledger.LastPass)
	assert.Equal(t, 2, ledger.LastPass.Rules)

	stateMock.EXPECT().Entries(gomock.Any()).Return(nil, errors.New("redis down"))
	assert.Equal(t, http.StatusInternalServerError, get(t, r, "/reminders/ledger").Code)
}

func TestHandler_NoReminderRoutesWithoutState(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := newRouter(stats.NewHandler(NewMockanalyzer(ctrl), nil, clock.NewManual(now)))
	assert.Equal(t, http.StatusNotFound, get(t, r, "/reminders/rules").Code)
}

func TestHandler_WithAnalyzerOverStore(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, store.SetJSON(ctx, s, records.KeyHabits, []records.Habit{
		{ID: "run", Name: "Run", Category: "health"},
	}))
	require.NoError(t, store.SetJSON(ctx, s, records.KeyCompletions, []records.HabitCompletion{
		{HabitID: "run", Date: "2024-03-04"},
		{HabitID: "run", Date: "2024-03-05"},
		{HabitID: "run", Date: "2024-03-06"},
	}))
	require.NoError(t, store.SetJSON(ctx, s, records.KeyWorkouts, []records.WorkoutSet{
		{Date: "2024-03-05", Exercise: "Squat", Sets: 3, Reps: 5, Weight: 100},
	}))

	analyzer := analytics.NewAnalyzer(records.NewRepo(s, nil), analytics.AverageByPeriodLength)
	r := newRouter(stats.NewHandler(analyzer, nil, clock.NewManual(now)))

	rr := get(t, r, "/stats/streaks")
	require.Equal(t, http.StatusOK, rr.Code)
	var report analytics.StreaksReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &report))
	assert.Equal(t, 3, report.MaxStreak)

	rr = get(t, r, "/stats/period/week?anchor=2024-03-06&items=")
	require.Equal(t, http.StatusOK, rr.Code)
	var summary map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.Equal(t, 0.0, summary["completionRate"])

	rr = get(t, r, "/stats/prs")
	require.Equal(t, http.StatusOK, rr.Code)
	var prs stats.PersonalRecordsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &prs))
	require.Len(t, prs.Records, 1)
	assert.Equal(t, "Squat", prs.Records[0].Exercise)
}
