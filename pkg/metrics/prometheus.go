// Package metrics provides Prometheus metrics for the scorecard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the scorecard service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Engine outcomes
	scoresComputed     *prometheus.CounterVec
	scoreCacheHits     prometheus.Counter
	abTrackEvents      *prometheus.CounterVec
	abTestsCompleted   *prometheus.CounterVec
	forecastsGenerated *prometheus.CounterVec
	behaviorAccepted   prometheus.Counter
	behaviorIngested   prometheus.Counter
	behaviorDuplicate  prometheus.Counter
	rankedEntities     prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Workers
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// Repository
	repositoryUpdateLatency *prometheus.HistogramVec
	repositoryQueryLatency  *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegisterer(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "scorecard",
		subsystem:        "engine",
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
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.scoresComputed = m.counterVec("scores_computed_total", "Entity scores computed by entity type and grade", "entity_type", "grade")
	m.scoreCacheHits = m.counter("score_cache_hits_total", "Score requests answered from a recent stored score")
	m.abTrackEvents = m.counterVec("ab_track_events_total", "A/B impressions and conversions by variant", "kind", "variant")
	m.abTestsCompleted = m.counterVec("ab_tests_completed_total", "A/B tests completed by winner", "winner")
	m.forecastsGenerated = m.counterVec("forecasts_generated_total", "Sales forecasts generated by model", "model")
	m.behaviorAccepted = m.counter("behavior_events_accepted_total", "Behavior events queued for storage")
	m.behaviorIngested = m.counter("behavior_events_ingested_total", "Behavior events persisted")
	m.behaviorDuplicate = m.counter("behavior_events_duplicate_total", "Behavior events rejected as duplicates")
	m.rankedEntities = m.gauge("ranked_entities", "Entities held in the score ranking index")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		"endpoint", "method", "status_code")

	m.queueSize = m.gauge("queue_size", "Current size of the behavior event queue")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum capacity of the behavior event queue")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (0-1)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of enqueue operations")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of dequeue operations")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of rejected enqueue operations")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds", "Enqueue latency in milliseconds", m.histogramBuckets)

	m.workerActiveCount = m.gauge("worker_active_count", "Number of active ingestion workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Per-event worker latency in milliseconds", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Total number of worker processing errors")

	m.repositoryUpdateLatency = m.histogramVec("repository_update_latency_milliseconds", "Repository write latency in milliseconds", "operation")
	m.repositoryQueryLatency = m.histogramVec("repository_query_latency_milliseconds", "Repository read latency in milliseconds", "operation")

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordScoreComputed counts a freshly computed score.
func RecordScoreComputed(entityType, grade string) {
	globalManager.scoresComputed.WithLabelValues(entityType, grade).Inc()
}

// RecordScoreCacheHit counts a score served from storage.
func RecordScoreCacheHit() {
	globalManager.scoreCacheHits.Inc()
}

// RecordABTrack counts an impression or conversion for a variant.
func RecordABTrack(kind, variant string) {
	globalManager.abTrackEvents.WithLabelValues(kind, variant).Inc()
}

// RecordABTestCompleted counts a completed test by its winner.
func RecordABTestCompleted(winner string) {
	globalManager.abTestsCompleted.WithLabelValues(winner).Inc()
}

// RecordForecastGenerated counts a forecast by model.
func RecordForecastGenerated(model string) {
	globalManager.forecastsGenerated.WithLabelValues(model).Inc()
}

// RecordBehaviorAccepted counts an event accepted onto the ingest queue.
func RecordBehaviorAccepted() {
	globalManager.behaviorAccepted.Inc()
}

// RecordBehaviorIngested counts a persisted behavior event.
func RecordBehaviorIngested() {
	globalManager.behaviorIngested.Inc()
}

// RecordBehaviorDuplicate counts a duplicate behavior event.
func RecordBehaviorDuplicate() {
	globalManager.behaviorDuplicate.Inc()
}

// UpdateRankedEntities sets the size of the ranking index.
func UpdateRankedEntities(count int) {
	globalManager.rankedEntities.Set(float64(count))
}

// RecordHTTPRequest increments the HTTP requests counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateQueueSize updates the queue size gauge.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records enqueue latency in milliseconds.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records per-event worker latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordRepositoryUpdateLatency records a write latency for an operation.
func RecordRepositoryUpdateLatency(operation string, latencyMs float64) {
	globalManager.repositoryUpdateLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordRepositoryQueryLatency records a read latency for an operation.
func RecordRepositoryQueryLatency(operation string, latencyMs float64) {
	globalManager.repositoryQueryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordErrorByComponent records an error for a component.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records an average GC pause.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry served on /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
