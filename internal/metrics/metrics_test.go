package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordWebhook(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordWebhook("message", "success", 0.2)
	m.RecordWebhook("message", "error", 1.5)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.WebhookRequestsTotal.WithLabelValues("message", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.WebhookRequestsTotal.WithLabelValues("message", "error")))
}

func TestRecordWebhookReceivedSkipsDurationHistogram(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordWebhookReceived()
	m.RecordWebhookReceived()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.WebhookRequestsTotal.WithLabelValues("batch", "received")))
	// Receipt must not push observations into the duration histogram.
	assert.Equal(t, 0, testutil.CollectAndCount(m.WebhookDurationSeconds))
}

func TestRecordCompletion(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordCompletion("suggest", "success", 3.1)
	m.RecordCompletion("detail", "error", 0.4)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.CompletionRequestsTotal.WithLabelValues("suggest", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CompletionRequestsTotal.WithLabelValues("detail", "error")))
}

func TestSessionAndQuotaMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.SetActiveSessions(3)
	m.RecordSessionOutcome("resolved")
	m.RecordQuotaRejection()
	m.RecordParsedCandidates(5, true)

	assert.Equal(t, float64(3), testutil.ToFloat64(m.SessionsActive))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SessionOutcomes.WithLabelValues("resolved")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.QuotaRejectionsTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SummariesExtracted))
}

func TestMetricsRegisterOnce(t *testing.T) {
	registry := prometheus.NewRegistry()
	require.NotPanics(t, func() { New(registry) })
	// Registering the same names twice on one registry must panic.
	require.Panics(t, func() { New(registry) })
}
