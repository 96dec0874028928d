package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"portfolio-site/pkg/log"
	"portfolio-site/pkg/metrics"
)

// NewRouter mounts every route of the site
func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(log.Middleware())
	r.Use(metrics.Middleware())
	r.Use(middleware.Recoverer)

	r.Get("/", h.IndexHandler)
	r.Get("/healthz", h.HealthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/assets", h.AssetsHandler)
		r.Get("/assets/fallback", h.FallbackHandler)
		r.Get("/assets/{id}", h.AssetHandler)
		r.Get("/playback/{id}", h.PlaybackHandler)

		r.With(rateLimit(h.config.ContactRateLimit, time.Minute)).Post("/contact", h.SubmitContactHandler)
		r.Get("/contacts", h.ListContactsHandler)
		r.Get("/contact/{id}", h.GetContactHandler)
		r.Patch("/contact/{id}/status", h.UpdateContactStatusHandler)

		r.Get("/preflight", h.PreflightResultsHandler)
		r.Post("/preflight", h.BulkPreflightHandler)
		r.Post("/preflight/{id}", h.PreflightHandler)
	})

	fs := http.FileServer(http.Dir(h.config.PublicDir))
	r.Handle("/public/*", http.StripPrefix("/public/", fs))
	return r
}

// HealthHandler reports whether the asset registry can be served
func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	reg, err := h.assets.Registry(r.Context())
	if err != nil {
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]any{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	body := map[string]any{
		"status":   "ok",
		"assets":   len(reg.All()),
		"backups":  len(reg.Backups()),
		"contacts": len(h.contacts.List()),
	}
	if h.preflight != nil {
		body["preflight"] = len(h.preflight.Outcomes())
	}
	writeJSON(w, r, http.StatusOK, body)
}
