package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Event Metrics
var (
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventsPublished,
			Help: HelpTextEventsPublished,
		},
		[]string{LabelType},
	)

	EventHandlerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameEventHandlerErrors,
			Help: HelpTextEventHandlerErrors,
		},
		[]string{LabelType},
	)
)

// Business Metrics
var (
	DuelTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameDuelTransitions,
			Help: HelpTextDuelTransitions,
		},
		[]string{LabelType},
	)

	DuelOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameDuelOutcomes,
			Help: HelpTextDuelOutcomes,
		},
		[]string{LabelWinner},
	)

	ReconcilePassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    MetricNameReconcilePassDuration,
			Help:    HelpTextReconcilePassDuration,
			Buckets: ReconcileBuckets,
		},
	)

	PointsAwarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNamePointsAwarded,
			Help: HelpTextPointsAwarded,
		},
	)

	JudgeAPIErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameJudgeAPIErrors,
			Help: HelpTextJudgeAPIErrors,
		},
		[]string{LabelMethod},
	)

	MonthlyResets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameMonthlyResets,
			Help: HelpTextMonthlyResets,
		},
	)
)
