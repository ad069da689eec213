package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/burgermaster/blendcalc/internal/ports/outbound"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "blendcalc"

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	logger   *zap.Logger
	gatherer prometheus.Gatherer

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// AI metrics
	aiRequestsTotal   *prometheus.CounterVec
	aiRequestDuration *prometheus.HistogramVec

	// Business metrics
	stateMutationsTotal *prometheus.CounterVec
	batchWeightGrams    prometheus.Histogram
}

var _ outbound.AIMetrics = (*MetricsCollector)(nil)

// NewMetricsCollector creates a new metrics collector registered on reg
func NewMetricsCollector(reg prometheus.Registerer, gatherer prometheus.Gatherer, logger *zap.Logger) *MetricsCollector {
	factory := promauto.With(reg)

	return &MetricsCollector{
		logger:   logger.Named("metrics"),
		gatherer: gatherer,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		httpResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "route"},
		),

		aiRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ai_requests_total",
				Help:      "Total number of AI requests",
			},
			[]string{"operation", "provider", "status"},
		),
		aiRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ai_request_duration_seconds",
				Help:      "AI request duration in seconds",
				Buckets:   []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"operation", "provider"},
		),

		stateMutationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "state_mutations_total",
				Help:      "Total number of calculator state changes",
			},
			[]string{"operation", "outcome"},
		),
		batchWeightGrams: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "batch_weight_grams",
				Help:      "Nominal batch weight of computed calculations",
				Buckets:   prometheus.ExponentialBuckets(500, 2, 10),
			},
		),
	}
}

// RecordHTTPRequest records one served request
func (m *MetricsCollector) RecordHTTPRequest(method, route string, status int, duration time.Duration, size int) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.httpResponseSize.WithLabelValues(method, route).Observe(float64(size))
}

// ObserveAIRequest records one AI collaborator call
func (m *MetricsCollector) ObserveAIRequest(operation, provider, status string, duration time.Duration) {
	m.aiRequestsTotal.WithLabelValues(operation, provider, status).Inc()
	m.aiRequestDuration.WithLabelValues(operation, provider).Observe(duration.Seconds())
}

// RecordStateMutation counts a state change attempt
func (m *MetricsCollector) RecordStateMutation(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.stateMutationsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordBatchWeight observes the nominal weight of a calculated batch
func (m *MetricsCollector) RecordBatchWeight(grams float64) {
	m.batchWeightGrams.Observe(grams)
}

// Handler exposes the collected metrics
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
