// Package metrics provides Prometheus metrics for the firstlevel design service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      map[string]string
	registry         prometheus.Registerer

	// Event table ingestion
	recordsParsed   prometheus.Counter
	recordsRejected *prometheus.CounterVec

	// Design building
	designsBuilt         prometheus.Counter
	designsFailed        *prometheus.CounterVec
	conditionsPerDesign  prometheus.Histogram
	groupingLatency      prometheus.Histogram
	duplicateUploads     prometheus.Counter
	designsStored        prometheus.Gauge
	workerProcessLatency prometheus.Histogram
	workerCount          prometheus.Gauge

	// Build queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Process
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "firstlevel",
		subsystem:        "design",
		histogramBuckets: prometheus.DefBuckets,
		constLabels:      make(map[string]string),
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
		ConstLabels: m.constLabels,
		Buckets:     buckets,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	m.recordsParsed = m.counter("records_parsed_total", "Total number of event table rows parsed into trial records")
	m.recordsRejected = m.counterVec("records_rejected_total", "Event table rows rejected by reason", "reason")

	m.designsBuilt = m.counter("designs_built_total", "Total number of condition models built")
	m.designsFailed = m.counterVec("designs_failed_total", "Design builds that failed by reason", "reason")
	m.conditionsPerDesign = m.histogram("conditions_per_design", "Number of conditions in each built design",
		[]float64{1, 2, 3, 4, 6, 8, 12, 16, 32})
	m.groupingLatency = m.histogram("grouping_latency_milliseconds", "Time spent grouping records into a condition model", m.histogramBuckets)
	m.duplicateUploads = m.counter("duplicate_uploads_total", "Uploads matching an already submitted event table")
	m.designsStored = m.gauge("designs_stored", "Number of designs held in the repository")
	m.workerProcessLatency = m.histogram("worker_processing_latency_milliseconds", "End-to-end time a worker spends on one build job", m.histogramBuckets)
	m.workerCount = m.gauge("worker_count", "Number of build workers")

	m.queueSize = m.gauge("queue_size", "Current number of pending build jobs")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum number of pending build jobs")
	m.queueEnqueued = m.counter("queue_enqueued_total", "Build jobs accepted by the queue")
	m.queueEnqueueErrors = m.counterVec("queue_enqueue_errors_total", "Build jobs refused by the queue by reason", "reason")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method",
		"endpoint", "method", "status_code")
	m.httpRequestDuration = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		ConstLabels: m.constLabels,
		Buckets:     m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordRecordsParsed adds n successfully parsed rows.
func RecordRecordsParsed(n int) {
	globalManager.recordsParsed.Add(float64(n))
}

// RecordRecordRejected counts a rejected row.
func RecordRecordRejected(reason string) {
	globalManager.recordsRejected.WithLabelValues(reason).Inc()
}

// RecordDesignBuilt records a successful build and its shape.
func RecordDesignBuilt(conditions int, groupingMs float64) {
	globalManager.designsBuilt.Inc()
	globalManager.conditionsPerDesign.Observe(float64(conditions))
	globalManager.groupingLatency.Observe(groupingMs)
}

// RecordDesignFailed counts a failed build.
func RecordDesignFailed(reason string) {
	globalManager.designsFailed.WithLabelValues(reason).Inc()
}

// RecordDuplicateUpload counts an upload answered from the dedupe cache.
func RecordDuplicateUpload() {
	globalManager.duplicateUploads.Inc()
}

// UpdateDesignsStored sets the repository size.
func UpdateDesignsStored(count int) {
	globalManager.designsStored.Set(float64(count))
}

// RecordWorkerProcessingLatency records the time spent on one job.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessLatency.Observe(latencyMs)
}

// UpdateWorkerCount sets the number of build workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateQueueSize sets the number of pending jobs.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue bound.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue counts an accepted job.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueEnqueueError counts a refused job.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateSystemMemoryUsage sets heap bytes in use.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the registry backing the global metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
