package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "crewdesk"

// Notification outcomes recorded by RecordNotification.
const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
	OutcomeDropped = "dropped"
)

// Metrics holds the application collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	notifications     *prometheus.CounterVec
	rateLimitRequests *prometheus.CounterVec
	rateLimitBlocked  *prometheus.CounterVec
}

// New creates the collectors and registers them, together with the Go runtime
// and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Telegram notifications by event type and outcome.",
		}, []string{"event", "outcome"}),
		rateLimitRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limiter_requests_total",
			Help:      "Requests allowed by the rate limiter.",
		}, []string{"endpoint"}),
		rateLimitBlocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limiter_blocked_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{"endpoint"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.notifications,
		m.rateLimitRequests,
		m.rateLimitBlocked,
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTPRequest records one finished request.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordNotification counts one notification attempt for eventType.
func (m *Metrics) RecordNotification(eventType, outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(eventType, outcome).Inc()
}

// RecordRateLimit counts a rate limiter decision for endpoint.
func (m *Metrics) RecordRateLimit(endpoint string, blocked bool) {
	if m == nil {
		return
	}
	if blocked {
		m.rateLimitBlocked.WithLabelValues(endpoint).Inc()
		return
	}
	m.rateLimitRequests.WithLabelValues(endpoint).Inc()
}
