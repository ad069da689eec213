package monitoring

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCollector() *MetricsCollector {
	reg := prometheus.NewRegistry()
	return NewMetricsCollector(reg, reg, zap.NewNop())
}

func TestMetricsCollector_Counters(t *testing.T) {
	m := newTestCollector()

	m.ObserveAIRequest("search_blends", "gemini", "success", time.Second)
	m.ObserveAIRequest("search_blends", "gemini", "success", time.Second)
	m.ObserveAIRequest("search_blends", "catalog", "fallback", time.Millisecond)
	m.RecordStateMutation("set_units", nil)
	m.RecordStateMutation("set_units", errors.New("disk full"))
	m.RecordHTTPRequest(http.MethodGet, "/api/v1/state", http.StatusOK, 10*time.Millisecond, 512)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.aiRequestsTotal.WithLabelValues("search_blends", "gemini", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.aiRequestsTotal.WithLabelValues("search_blends", "catalog", "fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stateMutationsTotal.WithLabelValues("set_units", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/api/v1/state", "200")))
}

func TestMetricsCollector_Handler(t *testing.T) {
	m := newTestCollector()
	m.RecordBatchWeight(4200)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "blendcalc_batch_weight_grams_count 1")
}

func TestNewTracingProvider(t *testing.T) {
	disabled, err := NewTracingProvider(context.Background(), TracingConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, disabled.Shutdown(context.Background()))

	enabled, err := NewTracingProvider(context.Background(), TracingConfig{
		Enabled:      true,
		ServiceName:  "blendcalc",
		SamplingRate: 1,
	}, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, enabled.Shutdown(context.Background()))
}
