// Package metrics provides Prometheus metrics for the talentlens service.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the talentlens service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Ingestion
	attemptsProcessed prometheus.Counter
	attemptsDuplicate prometheus.Counter
	attemptsRejected  prometheus.Counter

	// Profiles
	profileAssemblyLatency prometheus.Histogram
	profileAssemblyErrors  prometheus.Counter
	profileCacheHits       prometheus.Counter
	profileCacheMisses     prometheus.Counter
	profileCacheEntries    prometheus.Gauge

	// Cohort
	cohortUpdates   prometheus.Counter
	cohortSize      prometheus.Gauge
	platformAverage prometheus.Gauge
	candidatesTotal prometheus.Gauge

	// Repository
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
	errorsByType      *prometheus.CounterVec
	errorsByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

type global struct {
	manager  *Manager
	registry *prometheus.Registry
}

// Current manager and the private registry it registers with; default Go collectors stay out.
var current atomic.Pointer[global] //nolint:gochecknoglobals // intentional global for singleton metrics manager

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	Configure()
}

// Configure replaces the global manager with one built from opts on a fresh
// registry. Call it before GetRegistry is handed to an HTTP handler.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	m := NewManager(append(opts, WithPrometheusRegistry(registry))...)
	current.Store(&global{manager: m, registry: registry})
}

func globalManager() *Manager {
	return current.Load().manager
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "talentlens",
		subsystem:        "profiles",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	})
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

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.attemptsProcessed = m.counter("attempts_processed_total", "Total number of attempt writes applied")
	m.attemptsDuplicate = m.counter("attempts_duplicate_total", "Total number of duplicate attempt submissions")
	m.attemptsRejected = m.counter("attempts_rejected_total", "Total number of attempt writes rejected by the store")

	m.profileAssemblyLatency = m.histogram("profile_assembly_latency_milliseconds",
		"Histogram of profile assembly latency in milliseconds", m.histogramBuckets)
	m.profileAssemblyErrors = m.counter("profile_assembly_errors_total", "Total number of failed profile assemblies")
	m.profileCacheHits = m.counter("profile_cache_hits_total", "Total number of profiles served from cache")
	m.profileCacheMisses = m.counter("profile_cache_misses_total", "Total number of profiles assembled on demand")
	m.profileCacheEntries = m.gauge("profile_cache_entries", "Current number of cached profiles")

	m.cohortUpdates = m.counter("cohort_updates_total", "Total number of cohort score changes")
	m.cohortSize = m.gauge("cohort_size", "Number of candidates with a cohort score")
	m.platformAverage = m.gauge("platform_average_score", "Mean of all cohort scores")
	m.candidatesTotal = m.gauge("candidates_total", "Number of registered candidates")

	m.repositoryUpdateLatency = m.histogram("repository_update_latency_milliseconds",
		"Repository write latency in milliseconds", m.histogramBuckets)
	m.repositoryQueryLatency = m.histogram("repository_query_latency_milliseconds",
		"Repository read latency in milliseconds", m.histogramBuckets)

	m.queueSize = m.gauge("queue_size", "Current size of the attempt queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum capacity of the attempt queue")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (0-1)")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Total number of enqueued attempt events")
	m.queueDequeued = m.counter("queue_dequeued_total", "Total number of dequeued attempt events")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueues")

	m.workerCount = m.gauge("worker_count", "Configured number of workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of workers currently processing")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Worker processing latency in milliseconds", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Total number of worker errors")

	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = m.counterVec("errors_by_component_total",
		"Total number of errors by component", "component", "error_type")
	m.errorsByType = m.counterVec("errors_by_type_total",
		"Total number of errors by type", "error_type", "severity")
	m.errorsByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordAttemptProcessed increments the applied attempts counter.
func RecordAttemptProcessed() {
	globalManager().attemptsProcessed.Inc()
}

// RecordAttemptDuplicate increments the duplicate submissions counter.
func RecordAttemptDuplicate() {
	globalManager().attemptsDuplicate.Inc()
}

// RecordAttemptRejected increments the rejected writes counter.
func RecordAttemptRejected() {
	globalManager().attemptsRejected.Inc()
}

// RecordProfileAssemblyLatency records profile assembly latency in milliseconds.
func RecordProfileAssemblyLatency(latencyMs float64) {
	globalManager().profileAssemblyLatency.Observe(latencyMs)
}

// RecordProfileAssemblyError increments the failed assemblies counter.
func RecordProfileAssemblyError() {
	globalManager().profileAssemblyErrors.Inc()
}

// RecordProfileCacheHit increments the cache hit counter.
func RecordProfileCacheHit() {
	globalManager().profileCacheHits.Inc()
}

// RecordProfileCacheMiss increments the cache miss counter.
func RecordProfileCacheMiss() {
	globalManager().profileCacheMisses.Inc()
}

// UpdateProfileCacheEntries sets the number of cached profiles.
func UpdateProfileCacheEntries(count int) {
	globalManager().profileCacheEntries.Set(float64(count))
}

// RecordCohortUpdate increments the cohort change counter.
func RecordCohortUpdate() {
	globalManager().cohortUpdates.Inc()
}

// UpdateCohortSize sets the number of scored candidates.
func UpdateCohortSize(count int) {
	globalManager().cohortSize.Set(float64(count))
}

// UpdatePlatformAverage sets the platform average score.
func UpdatePlatformAverage(avg float64) {
	globalManager().platformAverage.Set(avg)
}

// UpdateCandidatesTotal sets the number of registered candidates.
func UpdateCandidatesTotal(count int) {
	globalManager().candidatesTotal.Set(float64(count))
}

// RecordRepositoryUpdateLatency records repository write latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager().repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records repository read latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager().repositoryQueryLatency.Observe(latencyMs)
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager().queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager().queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager().queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager().queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager().queueDequeued.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager().queueEnqueueErrors.Inc()
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager().workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager().workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager().workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager().workerErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager().httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager().httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager().errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager().errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager().errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager().systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager().systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager().systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return current.Load().registry
}
