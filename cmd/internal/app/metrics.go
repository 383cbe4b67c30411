package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server-wide Prometheus instruments.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight prometheus.Gauge
}

// NewMetrics builds a dedicated registry with process/runtime collectors
// and the HTTP instruments.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gatehouse",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route, and status class.",
		}, []string{"method", "route", "class"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gatehouse",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		requestsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "gatehouse",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Instrument wraps an http.Handler and records per-request metrics.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		m.requestsInFlight.Inc()
		defer m.requestsInFlight.Dec()

		lrw := &loggingResponseWriter{
			ResponseWriter: w,
			status:         http.StatusOK,
		}
		next.ServeHTTP(lrw, r)

		route := normalizeRoute(r.URL.Path)
		m.requestsTotal.WithLabelValues(r.Method, route, statusClass(lrw.status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// normalizeRoute collapses request paths onto the fixed route set to
// keep label cardinality bounded.
func normalizeRoute(path string) string {
	switch path {
	case "/auth", "/auth/login", "/auth/register", "/auth/logout",
		"/healthz", "/readyz", "/metrics":
		return path
	}
	if strings.HasPrefix(path, "/dashboard/") || path == "/dashboard" {
		return "/dashboard/"
	}
	return "other"
}
