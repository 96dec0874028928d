package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"portfolio-site/pkg/log"
	"portfolio-site/pkg/models"
	"portfolio-site/pkg/services"
)

const maxContactBody = 64 << 10

// SubmitContactHandler accepts a contact form submission
func (h *Handlers) SubmitContactHandler(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxContactBody)
	form, err := decodeContactForm(r)
	if err != nil {
		logger.Debug().Err(err).Msg("invalid contact body")
		writeJSON(w, r, http.StatusBadRequest, envelope{
			Success: false,
			Message: "Validation failed",
			Errors:  []models.FieldError{{Field: "body", Message: "Request body must be a JSON object or form data"}},
		})
		return
	}

	contact, err := h.contacts.Submit(form)
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, r, http.StatusBadRequest, envelope{
			Success: false,
			Message: "Validation failed",
			Errors:  verr.Fields,
		})
		return
	case err != nil:
		logger.Error().Err(err).Msg("storing contact failed")
		writeJSON(w, r, http.StatusInternalServerError, envelope{
			Success: false,
			Message: "Internal server error",
		})
		return
	}

	writeJSON(w, r, http.StatusCreated, envelope{
		Success: true,
		Message: "Contact form submitted successfully",
		Data: struct {
			ID          string    `json:"id"`
			SubmittedAt time.Time `json:"submittedAt"`
		}{contact.ID, contact.SubmittedAt},
	})
}

// decodeContactForm reads a JSON body, or the url-encoded body a plain HTML form posts
func decodeContactForm(r *http.Request) (models.ContactForm, error) {
	var form models.ContactForm
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/x-www-form-urlencoded" && mediaType != "multipart/form-data" {
		err := json.NewDecoder(r.Body).Decode(&form)
		return form, err
	}

	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxContactBody)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return form, err
	}
	v := r.PostForm
	form = models.ContactForm{
		FirstName:      v.Get("firstName"),
		LastName:       v.Get("lastName"),
		Email:          v.Get("email"),
		Phone:          v.Get("phone"),
		Company:        v.Get("company"),
		Industry:       v.Get("industry"),
		CompanySize:    v.Get("companySize"),
		Service:        v.Get("service"),
		ProjectType:    v.Get("projectType"),
		BudgetRange:    v.Get("budgetRange"),
		Timeline:       v.Get("timeline"),
		ContactMethod:  v.Get("contactMethod"),
		Subject:        v.Get("subject"),
		Message:        v.Get("message"),
		HearAboutUs:    v.Get("hearAboutUs"),
		Newsletter:     checked(v.Get("newsletter")),
		PrivacyConsent: checked(v.Get("privacyConsent")),
	}
	return form, nil
}

// checked reports whether a checkbox value means ticked
func checked(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
