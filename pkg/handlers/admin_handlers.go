package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"portfolio-site/pkg/log"
	"portfolio-site/pkg/models"
	"portfolio-site/pkg/services"
)

// ListContactsHandler returns every stored contact, newest first
func (h *Handlers) ListContactsHandler(w http.ResponseWriter, r *http.Request) {
	contacts := h.contacts.List()
	count := len(contacts)
	writeJSON(w, r, http.StatusOK, envelope{
		Success: true,
		Data:    contacts,
		Count:   &count,
	})
}

// GetContactHandler returns one contact
func (h *Handlers) GetContactHandler(w http.ResponseWriter, r *http.Request) {
	contact, err := h.contacts.Get(chi.URLParam(r, "id"))
	if errors.Is(err, services.ErrContactNotFound) {
		writeJSON(w, r, http.StatusNotFound, envelope{Success: false, Message: "Contact not found"})
		return
	}
	if err != nil {
		writeJSON(w, r, http.StatusInternalServerError, envelope{Success: false, Message: "Internal server error"})
		return
	}
	writeJSON(w, r, http.StatusOK, envelope{Success: true, Data: contact})
}

// UpdateContactStatusHandler changes the follow-up status of a contact
func (h *Handlers) UpdateContactStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status models.ContactStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, envelope{Success: false, Message: "Invalid status"})
		return
	}

	contact, err := h.contacts.UpdateStatus(chi.URLParam(r, "id"), req.Status)
	switch {
	case errors.Is(err, services.ErrInvalidStatus):
		writeJSON(w, r, http.StatusBadRequest, envelope{Success: false, Message: "Invalid status"})
		return
	case errors.Is(err, services.ErrContactNotFound):
		writeJSON(w, r, http.StatusNotFound, envelope{Success: false, Message: "Contact not found"})
		return
	case err != nil:
		writeJSON(w, r, http.StatusInternalServerError, envelope{Success: false, Message: "Internal server error"})
		return
	}
	writeJSON(w, r, http.StatusOK, envelope{
		Success: true,
		Message: "Contact status updated successfully",
		Data:    contact,
	})
}

// PreflightResultsHandler lists the cached preflight outcomes
func (h *Handlers) PreflightResultsHandler(w http.ResponseWriter, r *http.Request) {
	if h.preflight == nil {
		writeProblem(w, r, http.StatusNotFound, "preflight_disabled", "")
		return
	}
	writeJSON(w, r, http.StatusOK, h.preflight.Outcomes())
}

// BulkPreflightHandler re-checks every primary asset
func (h *Handlers) BulkPreflightHandler(w http.ResponseWriter, r *http.Request) {
	if h.preflight == nil {
		writeProblem(w, r, http.StatusNotFound, "preflight_disabled", "")
		return
	}
	logger := log.FromContext(r.Context())
	logger.Info().Msg("bulk preflight requested")

	outcomes, err := h.preflight.Warm(r.Context())
	if err != nil {
		logger.Error().Err(err).Msg("bulk preflight failed")
		writeProblem(w, r, http.StatusBadGateway, "preflight_failed", err.Error())
		return
	}

	fallbacks, posterOnly := 0, 0
	for _, o := range outcomes {
		if o.UsedFallback {
			fallbacks++
		}
		if !o.Playable() {
			posterOnly++
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"message":    "Preflight completed",
		"checked":    len(outcomes),
		"fallbacks":  fallbacks,
		"posterOnly": posterOnly,
		"outcomes":   outcomes,
	})
}

// PreflightHandler re-checks a single asset
func (h *Handlers) PreflightHandler(w http.ResponseWriter, r *http.Request) {
	if h.preflight == nil {
		writeProblem(w, r, http.StatusNotFound, "preflight_disabled", "")
		return
	}
	out, err := h.preflight.Check(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		logger := log.FromContext(r.Context())
		logger.Error().Err(err).Msg("preflight failed")
		writeProblem(w, r, http.StatusBadGateway, "preflight_failed", err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, out)
}
