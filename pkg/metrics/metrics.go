// Package metrics exposes the Prometheus collectors of the site.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	playbackTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_playback_transitions_total",
		Help: "Playback controller phase transitions by source and target phase",
	}, []string{"from", "to"})

	preflightOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_preflight_outcomes_total",
		Help: "Preflight checks by final phase and whether the fallback asset was used",
	}, []string{"phase", "fallback"})

	contactSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_contact_submissions_total",
		Help: "Contact form submissions by result",
	}, []string{"result"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "portfolio_http_request_duration_seconds",
		Help:    "HTTP request latency by method, route pattern and status",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// RecordTransition counts one playback phase change
func RecordTransition(from, to string) {
	playbackTransitions.WithLabelValues(from, to).Inc()
}

// RecordPreflight counts one finished preflight check
func RecordPreflight(phase string, usedFallback bool) {
	preflightOutcomes.WithLabelValues(phase, strconv.FormatBool(usedFallback)).Inc()
}

// RecordContact counts a contact submission; result is accepted, invalid or error
func RecordContact(result string) {
	switch result {
	case "accepted", "invalid":
	default:
		result = "error"
	}
	contactSubmissions.WithLabelValues(result).Inc()
}

// Middleware records request latency labelled with the chi route pattern
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			httpRequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
		})
	}
}
