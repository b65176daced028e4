package obs_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-tax/internal/obs"
)

func TestHTTPMetricsLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("tax", []float64{10, 1}, registry)

	router := chi.NewRouter()
	router.Use(obs.HTTPObs{Metrics: metrics}.Middleware)
	router.Get("/api/tax-subsections/{sectionId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/tax-subsections/42", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
	total := testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodGet, "/api/tax-subsections/{sectionId}", "204"))
	require.Equal(t, float64(1), total)
	require.NotZero(t, testutil.CollectAndCount(metrics.ReqDur))
	require.Zero(t, testutil.ToFloat64(metrics.InFlight))
}

func TestHTTPMetricsReuseRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := obs.NewHTTPMetrics("tax", nil, registry)
	second := obs.NewHTTPMetrics("tax", nil, registry)
	require.Same(t, first.ReqTotal, second.ReqTotal)
}

func TestParseBucketsCSV(t *testing.T) {
	require.Nil(t, obs.ParseBucketsCSV("  "))
	require.Equal(t, []float64{5, 10, 2.5}, obs.ParseBucketsCSV("5, 10,abc,-1,,2.5"))
}

func TestRequestLoggerWritesRouteAndStoresScopedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var scoped bool
	router := chi.NewRouter()
	router.Use(obs.RequestLogger{Logger: logger}.Middleware)
	router.Get("/api/tax-categories/{subSectionId}", func(w http.ResponseWriter, r *http.Request) {
		scoped = obs.Logger(r.Context()).GetLevel() != zerolog.Disabled
		w.WriteHeader(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/tax-categories/7", nil))

	require.True(t, scoped)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "http_request", entry["message"])
	require.Equal(t, "/api/tax-categories/{subSectionId}", entry["route"])
	require.Equal(t, float64(200), entry["status"])
}

func TestQueryName(t *testing.T) {
	require.Equal(t, "ListSections", obs.QueryName("-- name: ListSections :many\nSELECT id, name FROM tax_sections"))
	require.Empty(t, obs.QueryName("SELECT 1"))
}
