package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Business metric names
const (
	MetricNameDuelTransitions       = "duel_transitions_total"
	MetricNameDuelOutcomes          = "duel_outcomes_total"
	MetricNameReconcilePassDuration = "reconcile_pass_duration_seconds"
	MetricNamePointsAwarded         = "points_awarded_total"
	MetricNameJudgeAPIErrors        = "judge_api_errors_total"
	MetricNameMonthlyResets         = "monthly_resets_total"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Business metric help text
const (
	HelpTextDuelTransitions       = "Total number of duel lifecycle transitions"
	HelpTextDuelOutcomes          = "Total number of completed duels by winner"
	HelpTextReconcilePassDuration = "Duration of submission reconciliation passes in seconds"
	HelpTextPointsAwarded         = "Total points awarded from judge submissions"
	HelpTextJudgeAPIErrors        = "Total number of judge API calls that failed after retries"
	HelpTextMonthlyResets         = "Total number of community balance resets"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod = "method"
	LabelPath   = "path"
	LabelStatus = "status"
	LabelType   = "type"
	LabelWinner = "winner"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds, from 1ms to 10s
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// ReconcileBuckets covers passes from one second to ten minutes
var ReconcileBuckets = []float64{1, 5, 15, 30, 60, 120, 300, 600}

// ============================================================================
// Log Messages
// ============================================================================

// Debug log messages
const (
	LogMsgEventPayloadUnreadable = "Event payload could not be decoded"
	LogMsgMetricsRecorded        = "Metrics recorded for event"
)
