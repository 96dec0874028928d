package models

import "time"

// Theme is the presentation category of a background asset
type Theme string

const (
	ThemeAbstract     Theme = "abstract"
	ThemeProfessional Theme = "professional"
	ThemeCorporate    Theme = "corporate"
	ThemeFinance      Theme = "finance"
)

// Themes lists every known theme in display order
var Themes = []Theme{ThemeFinance, ThemeCorporate, ThemeAbstract, ThemeProfessional}

// Valid reports whether t is one of the known themes
func (t Theme) Valid() bool {
	for _, known := range Themes {
		if t == known {
			return true
		}
	}
	return false
}

// VideoAsset is a named bundle of media URLs used as a page background.
// Values are never mutated once registered.
type VideoAsset struct {
	ID           string `json:"id" yaml:"id"`
	Title        string `json:"title" yaml:"title"`
	PrimaryURL   string `json:"primaryUrl" yaml:"mp4"`
	AlternateURL string `json:"alternateUrl,omitempty" yaml:"webm,omitempty"`
	PosterURL    string `json:"posterUrl" yaml:"poster"`
	Duration     int    `json:"duration,omitempty" yaml:"duration,omitempty"`
	Theme        Theme  `json:"theme" yaml:"theme"`
}

// ThemeGroup is a theme with the primary assets registered under it
type ThemeGroup struct {
	Theme  Theme        `json:"theme"`
	Assets []VideoAsset `json:"assets"`
}

// Hero is the data bound to the landing page template
type Hero struct {
	Title            string
	AssetID          string
	AssetTitle       string
	Phase            string
	PosterURL        string
	PosterOpacity    float64
	ShowVideo        bool
	PrimaryURL       string
	AlternateURL     string
	OverlayOpacity   float64
	PauseWhenHidden  bool
	BackgroundEffect bool

	// Inline styles derived from the opacities above
	PosterStyle  string
	VideoStyle   string
	OverlayStyle string
}

// Index represents the main index page data
type Index struct {
	SiteTitle string
	Hero      Hero
	Services  []ServiceOption
}

// ServiceOption is a selectable service offered on the contact form
type ServiceOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ContactStatus tracks the follow-up state of a submission
type ContactStatus string

const (
	StatusNew       ContactStatus = "new"
	StatusReviewed  ContactStatus = "reviewed"
	StatusContacted ContactStatus = "contacted"
	StatusClosed    ContactStatus = "closed"
)

// Valid reports whether s is a known contact status
func (s ContactStatus) Valid() bool {
	switch s {
	case StatusNew, StatusReviewed, StatusContacted, StatusClosed:
		return true
	}
	return false
}

// ContactForm is the payload posted by the contact section
type ContactForm struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	Company        string `json:"company,omitempty"`
	Industry       string `json:"industry,omitempty"`
	CompanySize    string `json:"companySize,omitempty"`
	Service        string `json:"service"`
	ProjectType    string `json:"projectType,omitempty"`
	BudgetRange    string `json:"budgetRange,omitempty"`
	Timeline       string `json:"timeline,omitempty"`
	ContactMethod  string `json:"contactMethod"`
	Subject        string `json:"subject"`
	Message        string `json:"message"`
	HearAboutUs    string `json:"hearAboutUs,omitempty"`
	Newsletter     bool   `json:"newsletter"`
	PrivacyConsent bool   `json:"privacyConsent"`
}

// Contact is a stored contact form submission
type Contact struct {
	ContactForm
	ID          string        `json:"id"`
	SubmittedAt time.Time     `json:"submittedAt"`
	Status      ContactStatus `json:"status"`
}

// FieldError describes a single rejected form field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
