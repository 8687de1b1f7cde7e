// Package observability exposes Prometheus metrics for HTTP traffic and
// permission decisions.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/diewo77/go-adopt/gate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Permission metrics
	PermissionChecksTotal *prometheus.CounterVec
	PermissionErrorsTotal *prometheus.CounterVec

	// Subject cache metrics
	SubjectCacheHitsTotal   prometheus.Counter
	SubjectCacheMissesTotal prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adopt_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "adopt_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		PermissionChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adopt_permission_checks_total",
				Help: "Total number of permission checks by outcome",
			},
			[]string{"role", "permission", "allowed"},
		),
		PermissionErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "adopt_permission_errors_total",
				Help: "Permission checks that failed on a configuration or predicate error",
			},
			[]string{"permission", "error_type"},
		),
		SubjectCacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "adopt_subject_cache_hits_total",
			Help: "Subject cache hits",
		}),
		SubjectCacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "adopt_subject_cache_misses_total",
			Help: "Subject cache misses",
		}),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.PermissionChecksTotal,
		m.PermissionErrorsTotal,
		m.SubjectCacheHitsTotal,
		m.SubjectCacheMissesTotal,
	)

	return m
}

// ObserveDecision records one permission decision. It matches the
// gate.WithDecisionHook signature.
func (m *Metrics) ObserveDecision(d gate.Decision) {
	if m == nil {
		return
	}
	m.PermissionChecksTotal.WithLabelValues(d.Role, d.Permission.String(), strconv.FormatBool(d.Allowed)).Inc()
	if d.Err != nil {
		m.PermissionErrorsTotal.WithLabelValues(d.Permission.String(), errorType(d.Err)).Inc()
	}
}

// CacheHit and CacheMiss count subject cache lookups.
func (m *Metrics) CacheHit() {
	if m != nil {
		m.SubjectCacheHitsTotal.Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.SubjectCacheMissesTotal.Inc()
	}
}

func errorType(err error) string {
	switch err.(type) {
	case *gate.ConfigError:
		return "configuration"
	case *gate.PredicateError:
		return "predicate"
	default:
		return "other"
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics.
// Requests are labelled with the matched route pattern to keep cardinality
// bounded; unmatched requests share the "unmatched" label.
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			status := strconv.Itoa(rw.statusCode)
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
