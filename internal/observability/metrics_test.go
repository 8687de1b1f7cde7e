package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/go-adopt/gate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveDecision(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveDecision(gate.Decision{Role: "donor", Permission: "animals:update", Allowed: true})
	m.ObserveDecision(gate.Decision{Role: "donor", Permission: "animals:update", Allowed: false,
		Err: &gate.PredicateError{Permission: "animals:update", Value: "boom"}})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PermissionChecksTotal.WithLabelValues("donor", "animals:update", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PermissionChecksTotal.WithLabelValues("donor", "animals:update", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PermissionErrorsTotal.WithLabelValues("animals:update", "predicate")))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.ObserveDecision(gate.Decision{})
	m.CacheHit()
	m.CacheMiss()
}

func TestHTTPMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/animals/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := HTTPMetricsMiddleware(m)(mux)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/animals/123", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "GET /api/animals/{id}", "418")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}

func TestHandler(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.CacheHit()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "adopt_subject_cache_hits_total 1"))
}
