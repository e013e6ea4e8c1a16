// Package observability exposes Prometheus metrics for the live chat service.
package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livechat_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "livechat_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Chat metrics
	sessionsStartedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "livechat_sessions_started_total",
			Help: "Total number of chat sessions started",
		},
	)

	sessionsArchivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livechat_sessions_archived_total",
			Help: "Total number of chat sessions archived",
		},
		[]string{"status"},
	)

	repliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livechat_replies_total",
			Help: "Total number of agent replies by source and category",
		},
		[]string{"source", "category"},
	)

	completionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "livechat_completion_duration_seconds",
			Help:    "Remote completion call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	eventSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "livechat_event_subscribers",
			Help: "Number of connected event stream subscribers",
		},
	)

	panicsRecoveredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "livechat_panics_recovered_total",
			Help: "Handler panics recovered by the HTTP server",
		},
		[]string{"route"},
	)

	initOnce sync.Once
)

// InitMetrics registers the collectors with the default registry.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			sessionsStartedTotal,
			sessionsArchivedTotal,
			repliesTotal,
			completionDuration,
			eventSubscribers,
			panicsRecoveredTotal,
		)
	})
}

// MetricsHandler returns an HTTP handler for Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records HTTP request metrics.
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordSessionStarted counts a new chat session.
func RecordSessionStarted() {
	sessionsStartedTotal.Inc()
}

// RecordSessionArchived counts an archived session by archive status.
func RecordSessionArchived(status string) {
	sessionsArchivedTotal.WithLabelValues(status).Inc()
}

// RecordReply counts an agent reply.
func RecordReply(source, category string) {
	repliesTotal.WithLabelValues(source, category).Inc()
}

// RecordCompletion observes a remote completion call. Outcome is "ok",
// "error" or "empty".
func RecordCompletion(outcome string, duration time.Duration) {
	completionDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// SubscriberConnected increments the event subscriber gauge.
func SubscriberConnected() {
	eventSubscribers.Inc()
}

// SubscriberDisconnected decrements the event subscriber gauge.
func SubscriberDisconnected() {
	eventSubscribers.Dec()
}

// RecordPanic counts a recovered handler panic by route template.
func RecordPanic(route string) {
	panicsRecoveredTotal.WithLabelValues(route).Inc()
}
