package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Webhook metrics
	WebhookRequestsTotal   *prometheus.CounterVec
	WebhookDurationSeconds *prometheus.HistogramVec

	// Completion metrics
	CompletionRequestsTotal   *prometheus.CounterVec
	CompletionDurationSeconds *prometheus.HistogramVec

	// Session metrics
	SessionsActive     prometheus.Gauge
	SessionOutcomes    *prometheus.CounterVec
	ParsedCandidates   prometheus.Histogram
	SummariesExtracted prometheus.Counter

	// Quota metrics
	QuotaRejectionsTotal prometheus.Counter

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		WebhookRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipebot_webhook_requests_total",
				Help: "Total number of webhook events by event type and status",
			},
			[]string{"event_type", "status"}, // status: success, error
		),

		WebhookDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recipebot_webhook_duration_seconds",
				Help:    "Webhook event processing duration in seconds by event type",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 20, 30},
			},
			[]string{"event_type"},
		),

		CompletionRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipebot_completion_requests_total",
				Help: "Total number of completion API calls by kind and status",
			},
			[]string{"kind", "status"}, // kind: suggest, detail
		),

		CompletionDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "recipebot_completion_duration_seconds",
				Help:    "Completion API call duration in seconds by kind",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"kind"},
		),

		SessionsActive: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "recipebot_sessions_active",
				Help: "Number of users currently awaiting a selection",
			},
		),

		SessionOutcomes: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipebot_session_outcomes_total",
				Help: "Session resolution outcomes",
			},
			[]string{"outcome"}, // outcome: resolved, replaced, expired, miss
		),

		ParsedCandidates: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "recipebot_parsed_candidates",
				Help:    "Number of candidates extracted per suggestion completion",
				Buckets: []float64{0, 1, 2, 3, 4, 5},
			},
		),

		SummariesExtracted: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "recipebot_summaries_extracted_total",
				Help: "Total number of suggestion sets with a trailing summary line",
			},
		),

		QuotaRejectionsTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "recipebot_quota_rejections_total",
				Help: "Total number of requests rejected by the daily quota",
			},
		),

		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipebot_http_errors_total",
				Help: "Total HTTP errors by type",
			},
			[]string{"error_type"}, // error_type: invalid_signature, parse_error
		),
	}

	return m
}

// RecordWebhook records a processed webhook event
func (m *Metrics) RecordWebhook(eventType, status string, duration float64) {
	m.WebhookRequestsTotal.WithLabelValues(eventType, status).Inc()
	m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(duration)
}

// RecordWebhookReceived counts a delivery at receipt, before any processing.
// Counter only; receipt has no duration to observe.
func (m *Metrics) RecordWebhookReceived() {
	m.WebhookRequestsTotal.WithLabelValues("batch", "received").Inc()
}

// RecordCompletion records a completion API call
func (m *Metrics) RecordCompletion(kind, status string, duration float64) {
	m.CompletionRequestsTotal.WithLabelValues(kind, status).Inc()
	m.CompletionDurationSeconds.WithLabelValues(kind).Observe(duration)
}

// RecordSessionOutcome records a session resolution outcome
func (m *Metrics) RecordSessionOutcome(outcome string) {
	m.SessionOutcomes.WithLabelValues(outcome).Inc()
}

// SetActiveSessions updates the active session gauge
func (m *Metrics) SetActiveSessions(count int) {
	m.SessionsActive.Set(float64(count))
}

// RecordParsedCandidates records how many candidates one completion yielded
func (m *Metrics) RecordParsedCandidates(count int, hasSummary bool) {
	m.ParsedCandidates.Observe(float64(count))
	if hasSummary {
		m.SummariesExtracted.Inc()
	}
}

// RecordQuotaRejection records a request rejected by the daily quota
func (m *Metrics) RecordQuotaRejection() {
	m.QuotaRejectionsTotal.Inc()
}

// RecordHTTPError records an HTTP-level error
func (m *Metrics) RecordHTTPError(errorType string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType).Inc()
}
