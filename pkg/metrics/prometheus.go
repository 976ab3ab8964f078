// Package metrics provides Prometheus metrics for the Strava integration service.
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
	enabled          bool
	registry         prometheus.Registerer

	// Fetch pipeline
	fetchesTotal        prometheus.Counter
	fetchErrors         prometheus.Counter
	fetchLatency        prometheus.Histogram
	activitiesFetched   prometheus.Counter
	activitiesPublished prometheus.Counter
	geocodeErrors       prometheus.Counter

	// Webhook endpoint
	webhookChallenges    prometheus.Counter
	webhookNotifications *prometheus.CounterVec

	// Subscription reconciliation
	reconcileRuns   *prometheus.CounterVec
	reconcileErrors prometheus.Counter

	// Trigger queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueues      prometheus.Counter
	queueDequeues      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker
	workerLatency prometheus.Histogram
	workerErrors  prometheus.Counter

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
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
		namespace:        "hastrava",
		subsystem:        "integration",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.fetchesTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetches_total",
		Help:      "Total activity fetch attempts.",
	})
	m.fetchErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_errors_total",
		Help:      "Fetch attempts that failed before publishing.",
	})
	m.fetchLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_latency_ms",
		Help:      "End-to-end fetch latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
	m.activitiesFetched = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "activities_fetched_total",
		Help:      "Activities returned by the remote API.",
	})
	m.activitiesPublished = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "activities_published_total",
		Help:      "Activities republished on the event bus.",
	})
	m.geocodeErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "geocode_errors_total",
		Help:      "Reverse geocode lookups that fell back to the placeholder.",
	})

	m.webhookChallenges = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "webhook_challenges_total",
		Help:      "Subscription verification challenges answered.",
	})
	m.webhookNotifications = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "webhook_notifications_total",
		Help:      "Inbound webhook notifications by outcome.",
	}, []string{"outcome"})

	m.reconcileRuns = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reconcile_runs_total",
		Help:      "Subscription reconciliation runs by outcome.",
	}, []string{"outcome"})
	m.reconcileErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reconcile_errors_total",
		Help:      "Reconciliation runs aborted by an error.",
	})

	m.queueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current number of queued fetch triggers.",
	})
	m.queueCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured trigger queue capacity.",
	})
	m.queueEnqueues = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Fetch triggers enqueued.",
	})
	m.queueDequeues = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Fetch triggers dequeued.",
	})
	m.queueEnqueueErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Fetch triggers dropped (queue full or closed).",
	})

	m.workerLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_latency_ms",
		Help:      "Trigger processing latency in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
	m.workerErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Trigger processing failures.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers on the global manager.

func RecordFetch()                  { globalManager.fetchesTotal.Inc() }
func RecordFetchError()             { globalManager.fetchErrors.Inc() }
func RecordFetchLatency(ms float64) { globalManager.fetchLatency.Observe(ms) }
func RecordActivitiesFetched(n int) {
	globalManager.activitiesFetched.Add(float64(n))
}
func RecordActivitiesPublished(n int) {
	globalManager.activitiesPublished.Add(float64(n))
}
func RecordGeocodeError() { globalManager.geocodeErrors.Inc() }

func RecordWebhookChallenge() { globalManager.webhookChallenges.Inc() }

// RecordWebhookNotification counts an inbound notification; outcome is
// "dispatched" or "ignored".
func RecordWebhookNotification(outcome string) {
	globalManager.webhookNotifications.WithLabelValues(outcome).Inc()
}

// RecordReconcile counts a reconciliation run; outcome is one of
// "created", "recreated", "noop".
func RecordReconcile(outcome string) {
	globalManager.reconcileRuns.WithLabelValues(outcome).Inc()
}
func RecordReconcileError() { globalManager.reconcileErrors.Inc() }

func UpdateQueueSize(n int)      { globalManager.queueSize.Set(float64(n)) }
func UpdateQueueCapacity(n int)  { globalManager.queueCapacity.Set(float64(n)) }
func RecordQueueEnqueue()        { globalManager.queueEnqueues.Inc() }
func RecordQueueDequeue()        { globalManager.queueDequeues.Inc() }
func RecordQueueEnqueueError()   { globalManager.queueEnqueueErrors.Inc() }

func RecordWorkerLatency(ms float64) { globalManager.workerLatency.Observe(ms) }
func RecordWorkerError()             { globalManager.workerErrors.Inc() }

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}
