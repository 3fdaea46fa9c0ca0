// Package metrics provides Prometheus metrics for the production dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline run outcomes.
const (
	OutcomeOK     = "ok"
	OutcomeNoData = "no_data"
	OutcomeError  = "error"
)

// Alert label values.
const (
	AlertDuration      = "duration"
	AlertRejectionRate = "rejection_rate"
)

// Manager holds every Prometheus collector of the dashboard.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Pipeline metrics - one observation per load/normalize/filter/compute run
	pipelineRuns     *prometheus.CounterVec
	pipelineLatency  prometheus.Histogram
	recordsLoaded    *prometheus.CounterVec
	coercionFailures *prometheus.CounterVec
	storeMisses      *prometheus.CounterVec
	filteredEvents   prometheus.Gauge

	// Last computed snapshot
	rejectionRate        prometheus.Gauge
	acceptedMeanDuration prometheus.Gauge
	alertActive          *prometheus.GaugeVec

	exports *prometheus.CounterVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "prodboard",
		subsystem:        "dashboard",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.constLabels,
	})
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.pipelineRuns = m.counterVec("pipeline_runs_total",
		"Dashboard pipeline runs by outcome", "outcome")
	m.pipelineLatency = m.histogram("pipeline_latency_milliseconds",
		"Latency of a full load, normalize, filter and compute run", m.histogramBuckets)
	m.recordsLoaded = m.counterVec("records_loaded_total",
		"Raw records read from machine stores", "machine")
	m.coercionFailures = m.counterVec("coercion_failures_total",
		"Record fields that could not be coerced and were left empty", "field")
	m.storeMisses = m.counterVec("store_misses_total",
		"Selected machines that had no store", "machine")
	m.filteredEvents = m.gauge("filtered_events",
		"Events left after filtering in the last run")

	m.rejectionRate = m.gauge("rejection_rate_percent",
		"Rejection rate of the last computed snapshot")
	m.acceptedMeanDuration = m.gauge("accepted_mean_duration_minutes",
		"Accepted mean duration of the last computed snapshot")
	m.alertActive = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "alert_active",
		Help:        "1 when the last snapshot exceeded the alert ceiling",
		ConstLabels: m.constLabels,
	}, []string{"alert"})

	m.exports = m.counterVec("exports_total", "Documents exported by format", "format")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = m.counterVec("errors_by_component_total",
		"Total number of errors by component", "component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordPipelineRun counts a run with its outcome and observes its latency.
func RecordPipelineRun(outcome string, latencyMs float64) {
	globalManager.pipelineRuns.WithLabelValues(outcome).Inc()
	globalManager.pipelineLatency.Observe(latencyMs)
}

// RecordRecordsLoaded adds n records read for machine.
func RecordRecordsLoaded(machine string, n int) {
	globalManager.recordsLoaded.WithLabelValues(machine).Add(float64(n))
}

// RecordCoercionFailures adds n coercion failures for field.
func RecordCoercionFailures(field string, n int) {
	if n <= 0 {
		return
	}
	globalManager.coercionFailures.WithLabelValues(field).Add(float64(n))
}

// RecordStoreMiss counts a selected machine without a store.
func RecordStoreMiss(machine string) {
	globalManager.storeMisses.WithLabelValues(machine).Inc()
}

// UpdateFilteredEvents sets the filtered event count of the last run.
func UpdateFilteredEvents(n int) {
	globalManager.filteredEvents.Set(float64(n))
}

// UpdateSnapshot publishes the headline KPIs and alert flags of the last run.
func UpdateSnapshot(rejectionRate, acceptedMeanDuration float64, durationAlert, rejectionAlert bool) {
	globalManager.rejectionRate.Set(rejectionRate)
	globalManager.acceptedMeanDuration.Set(acceptedMeanDuration)
	globalManager.alertActive.WithLabelValues(AlertDuration).Set(boolGauge(durationAlert))
	globalManager.alertActive.WithLabelValues(AlertRejectionRate).Set(boolGauge(rejectionAlert))
}

// RecordExport counts an exported document.
func RecordExport(format string) {
	globalManager.exports.WithLabelValues(format).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
