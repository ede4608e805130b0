package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec
	socketEvents *prometheus.CounterVec
	socketTiming *prometheus.HistogramVec
	socketConns  prometheus.Gauge
}

// Socket event outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)

// NewMetrics registers collectors on a dedicated registry.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"path", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "HTTP errors by route, method and error code.",
		}, []string{"path", "method", "code"}),
		socketEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "socket_events_total",
			Help:      "Socket request events by name and outcome.",
		}, []string{"event", "outcome"}),
		socketTiming: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "socket_event_duration_seconds",
			Help:      "Socket request handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event"}),
		socketConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "socket_clients",
			Help:      "Currently connected socket clients.",
		}),
	}
	reg.MustRegister(
		m.httpRequests, m.httpDuration, m.httpErrors,
		m.socketEvents, m.socketTiming, m.socketConns,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(path, method, code).Inc()
}

// RecordSocketEvent tracks one handled socket request.
func (m *Metrics) RecordSocketEvent(event, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.socketEvents.WithLabelValues(event, outcome).Inc()
	m.socketTiming.WithLabelValues(event).Observe(duration.Seconds())
}

// ClientConnected adjusts the connected clients gauge.
func (m *Metrics) ClientConnected() {
	if m == nil {
		return
	}
	m.socketConns.Inc()
}

// ClientDisconnected adjusts the connected clients gauge.
func (m *Metrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.socketConns.Dec()
}
