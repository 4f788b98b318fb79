// Package metrics provides Prometheus metrics for the bfhl service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// latencyBucketsMs suits sub-millisecond arithmetic up to multi-second AI calls.
var latencyBucketsMs = []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000} //nolint:gochecknoglobals // constant bucket layout

// Manager manages all Prometheus metrics for the bfhl service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Operation Metrics - one series per bfhl key
	operations       *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec

	// AI Provider Metrics
	aiRequests    *prometheus.CounterVec
	aiLatency     *prometheus.HistogramVec
	aiRateLimited *prometheus.CounterVec

	// Compute Pool Metrics
	computeInFlight prometheus.Gauge
	computeTimeouts prometheus.Counter

	// Error Metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure replaces the global manager with one built from opts on a fresh
// registry, which GetRegistry then returns. Call it once at startup, before
// any handler records or exposes metrics.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	globalManager = NewManager(append(append([]Option(nil), opts...), WithPrometheusRegistry(registry))...)
	customRegistry = registry
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "bfhl",
		subsystem:        "api",
		histogramBuckets: latencyBucketsMs,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(base string) string {
	if m.metricPrefix == "" {
		return base
	}
	return m.metricPrefix + "_" + base
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.operations = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("operations_total"),
			Help:        "Dispatched operations by name and outcome (success, invalid, failed)",
			ConstLabels: labels,
		},
		[]string{"operation", "outcome"},
	)

	m.operationLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("operation_latency_milliseconds"),
			Help:        "Operation execution time in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"operation"},
	)

	m.aiRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("ai_requests_total"),
			Help:        "Outbound AI provider calls by provider and outcome",
			ConstLabels: labels,
		},
		[]string{"provider", "outcome"},
	)

	m.aiLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("ai_latency_milliseconds"),
			Help:        "Outbound AI provider latency in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: labels,
		},
		[]string{"provider"},
	)

	m.aiRateLimited = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("ai_rate_limited_total"),
			Help:        "AI calls rejected by the outbound rate limiter",
			ConstLabels: labels,
		},
		[]string{"provider"},
	)

	m.computeInFlight = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("compute_in_flight"),
		Help:        "Arithmetic jobs currently running in a compute pool worker",
		ConstLabels: labels,
	})

	m.computeTimeouts = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("compute_timeouts_total"),
		Help:        "Arithmetic jobs that exceeded the compute timeout",
		ConstLabels: labels,
	})

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_type_total"),
			Help:        "Errors by type and severity",
			ConstLabels: labels,
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_endpoint_total"),
			Help:        "Errors by endpoint, method and error type",
			ConstLabels: labels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        m.name("memory_usage_bytes"),
		Help:        "Heap bytes allocated",
		ConstLabels: labels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        m.name("goroutines"),
		Help:        "Number of goroutines",
		ConstLabels: labels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "system",
		Name:        m.name("gc_pause_milliseconds"),
		Help:        "Average GC pause time in milliseconds",
		Buckets:     []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50},
		ConstLabels: labels,
	})
}

// Enabled reports whether recording is switched on.
func (m *Manager) Enabled() bool { return m.enabled }

// RefreshInterval is how often gauge-style system metrics should be sampled.
func (m *Manager) RefreshInterval() time.Duration { return m.refreshInterval }

// RecordHTTPRequest records an HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordOperation records a dispatched operation.
func (m *Manager) RecordOperation(operation, outcome string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.operationLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordAIRequest records an outbound AI call.
func (m *Manager) RecordAIRequest(provider, outcome string, latencyMs float64) {
	if !m.enabled {
		return
	}
	m.aiRequests.WithLabelValues(provider, outcome).Inc()
	m.aiLatency.WithLabelValues(provider).Observe(latencyMs)
}

// RecordAIRateLimited counts a call refused by the outbound limiter.
func (m *Manager) RecordAIRateLimited(provider string) {
	if !m.enabled {
		return
	}
	m.aiRateLimited.WithLabelValues(provider).Inc()
}

// AddComputeInFlight moves the in-flight gauge by delta.
func (m *Manager) AddComputeInFlight(delta int) {
	if !m.enabled {
		return
	}
	m.computeInFlight.Add(float64(delta))
}

// RecordComputeTimeout counts a compute job that timed out.
func (m *Manager) RecordComputeTimeout() {
	if !m.enabled {
		return
	}
	m.computeTimeouts.Inc()
}

// RecordErrorByType records an error with type and severity labels.
func (m *Manager) RecordErrorByType(errorType, severity string) {
	if !m.enabled {
		return
	}
	m.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func (m *Manager) RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !m.enabled {
		return
	}
	m.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystem samples memory, goroutine and GC figures.
func (m *Manager) UpdateSystem(memoryBytes uint64, goroutines int, avgGCPauseMs float64) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(memoryBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
	if avgGCPauseMs > 0 {
		m.systemGCPauseTime.Observe(avgGCPauseMs)
	}
}

// Package-level helpers operating on the global manager.

// RecordHTTPRequest records an HTTP request and its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordOperation records a dispatched operation.
func RecordOperation(operation, outcome string, latencyMs float64) {
	globalManager.RecordOperation(operation, outcome, latencyMs)
}

// RecordAIRequest records an outbound AI call.
func RecordAIRequest(provider, outcome string, latencyMs float64) {
	globalManager.RecordAIRequest(provider, outcome, latencyMs)
}

// RecordAIRateLimited counts a call refused by the outbound limiter.
func RecordAIRateLimited(provider string) {
	globalManager.RecordAIRateLimited(provider)
}

// AddComputeInFlight moves the in-flight gauge by delta.
func AddComputeInFlight(delta int) {
	globalManager.AddComputeInFlight(delta)
}

// RecordComputeTimeout counts a compute job that timed out.
func RecordComputeTimeout() {
	globalManager.RecordComputeTimeout()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.RecordErrorByType(errorType, severity)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(endpoint, method, errorType)
}

// UpdateSystem samples memory, goroutine and GC figures on the global manager.
func UpdateSystem(memoryBytes uint64, goroutines int, avgGCPauseMs float64) {
	globalManager.UpdateSystem(memoryBytes, goroutines, avgGCPauseMs)
}

// RefreshInterval returns the global manager's sampling interval.
func RefreshInterval() time.Duration {
	return globalManager.RefreshInterval()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
