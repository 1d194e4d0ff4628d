// Package metrics provides Prometheus instrumentation for report refreshes
// and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ReportRecomputes counts full analytics.Compute runs.
	ReportRecomputes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradestats_report_recomputes_total",
		Help: "Reports computed from a trade log",
	})

	// ReportCacheHits counts refreshes answered from the fingerprint cache.
	ReportCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradestats_report_cache_hits_total",
		Help: "Refreshes served from the report cache",
	})

	// RefreshThrottled counts refreshes skipped by the minimum interval.
	RefreshThrottled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradestats_refresh_throttled_total",
		Help: "Refreshes that returned the previous report without reloading",
	})

	RefreshErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tradestats_refresh_errors_total",
		Help: "Refreshes that failed to load trades or compute a report",
	})

	ComputeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tradestats_report_compute_seconds",
		Help:    "Time spent in analytics.Compute",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	// TradesLoaded is the size of the last trade log loaded.
	TradesLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tradestats_trades_loaded",
		Help: "Trades in the most recently loaded log",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tradestats_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tradestats_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		path := routePattern(r)
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern labels by chi route rather than raw path to bound cardinality.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
