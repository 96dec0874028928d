package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-site/pkg/metrics"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRecorders(t *testing.T) {
	metrics.RecordTransition("loading", "loaded")
	metrics.RecordPreflight("posterOnly", true)
	metrics.RecordContact("accepted")
	metrics.RecordContact("bogus")

	out := scrape(t)
	assert.Contains(t, out, `portfolio_playback_transitions_total{from="loading",to="loaded"}`)
	assert.Contains(t, out, `portfolio_preflight_outcomes_total{fallback="true",phase="posterOnly"}`)
	assert.Contains(t, out, `portfolio_contact_submissions_total{result="accepted"}`)
	assert.Contains(t, out, `portfolio_contact_submissions_total{result="error"}`)
}

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.Middleware())
	r.Get("/api/assets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/assets/hero_primary", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	out := scrape(t)
	assert.Contains(t, out, `route="/api/assets/{id}"`)
	assert.NotContains(t, out, `route="/api/assets/hero_primary"`)
}
