// Package obs exposes Prometheus metrics for the HTTP surface and the
// report pipeline.
package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	reportsCompiled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reports_compiled_total",
			Help: "Report compile runs by outcome.",
		},
		[]string{"outcome"},
	)

	oauthStatesConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oauth_states_consumed_total",
			Help: "OAuth state consumption attempts by outcome.",
		},
		[]string{"outcome"},
	)
)

// Init registers the metrics with the default registry. Call once at
// startup.
func Init() {
	prometheus.MustRegister(
		httpInFlight,
		httpRequestsTotal,
		httpRequestDuration,
		reportsCompiled,
		oauthStatesConsumed,
	)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ReportCompiled records one compile run. outcome is "sent" or "failed".
func ReportCompiled(outcome string) {
	reportsCompiled.WithLabelValues(outcome).Inc()
}

// StateConsumed records one consume attempt. outcome is "ok" or "miss".
func StateConsumed(outcome string) {
	oauthStatesConsumed.WithLabelValues(outcome).Inc()
}

// Instrument wraps a handler with RPS, latency, and in-flight measurement.
// The path label uses the routing pattern when available so high-cardinality
// ids stay out of the label set.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		path := r.Pattern
		if path == "" {
			path = r.URL.Path
		}

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
