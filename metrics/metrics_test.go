package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareRecordsRouteTemplate(t *testing.T) {
	m := New()

	router := mux.NewRouter()
	router.Use(m.Middleware)
	router.HandleFunc("/tickets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tickets/"+id, nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/tickets/{id}", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInFlight))
}

func TestMiddlewareRecordsUnmatched(t *testing.T) {
	m := New()

	router := mux.NewRouter()
	router.Use(m.Middleware)
	router.NotFoundHandler = m.Middleware(http.NotFoundHandler())
	router.MethodNotAllowedHandler = m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	router.HandleFunc("/tickets/{id}", func(w http.ResponseWriter, r *http.Request) {}).Methods(http.MethodGet)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/tickets/1", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("DELETE", "unmatched", "405")))
}

func TestHIVCounters(t *testing.T) {
	m := New()
	m.RecordHIVCheck(OutcomePositive)
	m.RecordHIVCheck(OutcomePositive)
	m.RecordHIVCheck(OutcomeError)
	m.RecordCacheHit()
	m.SetTicketsLoaded(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.hivChecks.WithLabelValues(OutcomePositive)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.hivChecks.WithLabelValues(OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheHits))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.ticketsTotal))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RecordHIVCheck(OutcomeNegative)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `orchestrate_hiv_checks_total{outcome="negative"} 1`))
}
