package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Error type labels for app_errors_total.
const (
	ErrorTypeNotFound   = "not_found"
	ErrorTypeInternal   = "internal_error"
	ErrorTypeTimeout    = "timeout"
	ErrorTypeValidation = "validation"
)

// Metrics owns the Prometheus registry and the application collectors.
type Metrics struct {
	registry        *prometheus.Registry
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	activeOrders    prometheus.Gauge
	errorCount      *prometheus.CounterVec
}

// NewMetrics builds a dedicated registry with the app collectors plus the
// standard Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "app_requests_total",
				Help: "Total request count",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "app_request_duration_seconds",
				Help:    "Request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		activeOrders: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "app_active_orders",
				Help: "Number of active orders",
			},
		),
		errorCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "app_errors_total",
				Help: "Total error count",
			},
			[]string{"type"},
		),
	}

	m.registry.MustRegister(
		m.requestCount,
		m.requestDuration,
		m.activeOrders,
		m.errorCount,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordRequest observes the latency for path and counts the (method, path, status) outcome.
func (m *Metrics) RecordRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(path).Observe(duration.Seconds())
	m.requestCount.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// RecordError increments the error counter for the given type label.
func (m *Metrics) RecordError(errorType string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(errorType).Inc()
}

// OrderAdded counts one more order in the store. Paired with OrderRemoved the
// gauge converges on the store size whatever order concurrent calls land in.
func (m *Metrics) OrderAdded() {
	if m == nil {
		return
	}
	m.activeOrders.Inc()
}

// OrderRemoved counts one order less in the store.
func (m *Metrics) OrderRemoved() {
	if m == nil {
		return
	}
	m.activeOrders.Dec()
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler renders the registry in the Prometheus text exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
