package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests            *prometheus.CounterVec
	CounterHandleRequestPanic  prometheus.Counter
	CounterRateLimitedRequests prometheus.Counter
	CounterRemindersFired      *prometheus.CounterVec
	CounterRemindersSuppressed *prometheus.CounterVec
	CounterRulesSkipped        *prometheus.CounterVec
	CounterEvaluationErrors    *prometheus.CounterVec
	CounterNotifyFailures      *prometheus.CounterVec
	CounterMalformedRecords    *prometheus.CounterVec
	CounterLedgerPruned        prometheus.Counter

	// gauges
	GaugeRequests   prometheus.Gauge
	GaugeLifeSignal prometheus.Gauge
	GaugeLedgerSize prometheus.Gauge

	// histograms
	HistEvaluationDuration   prometheus.Histogram
	HistogramRequestDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("lifedash", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("lifedash", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterHandleRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})
	counterRateLimitedRequests := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "rate_limited_requests",
		Help:      "The total number of rate limited requests",
	})
	counterRemindersFired := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "reminders_fired",
		Help:      "Reminders that passed the dedup gate and were sent to the notifier",
	}, []string{"kind"})
	counterRemindersSuppressed := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "reminders_suppressed",
		Help:      "Reminders dropped by the dedup gate as duplicates within their horizon",
	}, []string{"kind"})
	counterRulesSkipped := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "reminder_rules_skipped",
		Help:      "Rule evaluations skipped because of invalid configuration",
	}, []string{"kind"})
	counterEvaluationErrors := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "reminder_evaluation_errors",
		Help:      "Failures inside a reminder evaluation pass, per component",
	}, []string{"component"})
	counterNotifyFailures := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "notify_failures",
		Help:      "Notifier deliveries that failed (fire-and-forget, ledger unaffected)",
	}, []string{"notifier"})
	counterMalformedRecords := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "malformed_records",
		Help:      "Stored records skipped because they could not be decoded",
	}, []string{"collection"})
	counterLedgerPruned := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "ledger_pruned",
		Help:      "Firing ledger entries pruned after the retention period",
	})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})
	gaugeLifeSignal := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "life_signal",
		Help:      "Shows whether the service is alive",
	})
	gaugeLedgerSize := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "ledger_size",
		Help:      "Number of firing ledger entries after the last pass",
	})

	histEvaluationDuration := factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "reminder_pass_duration_seconds",
		Help:      "Duration of a single reminder evaluation pass in seconds",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})
	histogramRequestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Histogram of response time for requests in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"route", "method", "status_code"})

	return &Manager{
		CounterRequests:            counterRequests,
		CounterHandleRequestPanic:  counterHandleRequestPanic,
		CounterRateLimitedRequests: counterRateLimitedRequests,
		CounterRemindersFired:      counterRemindersFired,
		CounterRemindersSuppressed: counterRemindersSuppressed,
		CounterRulesSkipped:        counterRulesSkipped,
		CounterEvaluationErrors:    counterEvaluationErrors,
		CounterNotifyFailures:      counterNotifyFailures,
		CounterMalformedRecords:    counterMalformedRecords,
		CounterLedgerPruned:        counterLedgerPruned,
		GaugeRequests:              gaugeRequests,
		GaugeLifeSignal:            gaugeLifeSignal,
		GaugeLedgerSize:            gaugeLedgerSize,
		HistEvaluationDuration:     histEvaluationDuration,
		HistogramRequestDuration:   histogramRequestDuration,
	}
}
