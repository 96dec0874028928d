package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"portfolio-site/pkg/log"
	"portfolio-site/pkg/models"
)

// envelope is the response body of the contact endpoints
type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Errors  []models.FieldError `json:"errors,omitempty"`
	Count   *int                `json:"count,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger := log.FromContext(r.Context())
		logger.Error().Err(err).Int("status", status).Msg("failed to encode response")
	}
}

// writeProblem writes an RFC 7807 problem details response
func writeProblem(w http.ResponseWriter, r *http.Request, status int, code, detail string) {
	res := map[string]any{
		"type":     "portfolio/" + code,
		"title":    http.StatusText(status),
		"status":   status,
		"code":     code,
		"instance": r.URL.EscapedPath(),
	}
	if detail != "" {
		res["detail"] = detail
	}
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		res["request_id"] = reqID
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		logger := log.FromContext(r.Context())
		logger.Error().Err(err).Str("code", code).Msg("failed to encode problem response")
	}
}

// rateLimit allows limit requests per window per client IP
func rateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			writeJSON(w, r, http.StatusTooManyRequests, envelope{
				Success: false,
				Message: "Too many submissions. Please try again later.",
			})
		}),
	)
}
