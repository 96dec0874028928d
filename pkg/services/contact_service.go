package services

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"portfolio-site/pkg/log"
	"portfolio-site/pkg/metrics"
	"portfolio-site/pkg/models"
)

var (
	// ErrContactNotFound is returned for unknown contact ids
	ErrContactNotFound = errors.New("contact not found")
	// ErrInvalidStatus is returned when a status update names an unknown status
	ErrInvalidStatus = errors.New("invalid status")
)

// ValidationError carries every rejected field of a submission
type ValidationError struct {
	Fields []models.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ContactStore persists contact submissions
type ContactStore interface {
	Create(c models.Contact) error
	Get(id string) (models.Contact, error)
	List() []models.Contact
	UpdateStatus(id string, status models.ContactStatus) (models.Contact, error)
}

// MemStore keeps contacts in memory; contents are lost on restart
type MemStore struct {
	mu       sync.RWMutex
	contacts map[string]models.Contact
}

// NewMemStore returns an empty store
func NewMemStore() *MemStore {
	return &MemStore{contacts: make(map[string]models.Contact)}
}

// Create stores c under its id, replacing any previous entry
func (s *MemStore) Create(c models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[c.ID] = c
	return nil
}

// Get returns the contact stored under id
func (s *MemStore) Get(id string) (models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[id]
	if !ok {
		return models.Contact{}, ErrContactNotFound
	}
	return c, nil
}

// List returns all contacts, newest first
func (s *MemStore) List() []models.Contact {
	s.mu.RLock()
	out := make([]models.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		out = append(out, c)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out
}

// UpdateStatus sets the status of an existing contact
func (s *MemStore) UpdateStatus(id string, status models.ContactStatus) (models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contacts[id]
	if !ok {
		return models.Contact{}, ErrContactNotFound
	}
	c.Status = status
	s.contacts[id] = c
	return c, nil
}

// ContactService validates and stores contact form submissions
type ContactService struct {
	store ContactStore
	now   func() time.Time
	newID func() string
}

// NewContactService returns a service writing to store
func NewContactService(store ContactStore) *ContactService {
	return &ContactService{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Submit validates form and stores it with status new.
// Invalid input yields a *ValidationError listing every bad field.
func (s *ContactService) Submit(form models.ContactForm) (models.Contact, error) {
	logger := log.WithComponent("contact")
	form = normalizeForm(form)
	if fields := ValidateContact(form); len(fields) > 0 {
		metrics.RecordContact("invalid")
		return models.Contact{}, &ValidationError{Fields: fields}
	}

	c := models.Contact{
		ContactForm: form,
		ID:          s.newID(),
		SubmittedAt: s.now().UTC(),
		Status:      models.StatusNew,
	}
	if err := s.store.Create(c); err != nil {
		metrics.RecordContact("error")
		return models.Contact{}, fmt.Errorf("store contact: %w", err)
	}
	metrics.RecordContact("accepted")
	logger.Info().
		Str(log.FieldContactID, c.ID).
		Str("service", c.Service).
		Str("contact_method", c.ContactMethod).
		Msg("contact form submitted")
	return c, nil
}

// Get returns a stored contact
func (s *ContactService) Get(id string) (models.Contact, error) {
	return s.store.Get(id)
}

// List returns all contacts, newest first
func (s *ContactService) List() []models.Contact {
	return s.store.List()
}

// UpdateStatus changes the follow-up status of a contact
func (s *ContactService) UpdateStatus(id string, status models.ContactStatus) (models.Contact, error) {
	if !status.Valid() {
		return models.Contact{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	c, err := s.store.UpdateStatus(id, status)
	if err != nil {
		return models.Contact{}, err
	}
	logger := log.WithComponent("contact")
	logger.Info().Str(log.FieldContactID, id).Str("status", string(status)).Msg("contact status updated")
	return c, nil
}

// serviceOptions are the services offered on the contact form, in display order
var serviceOptions = []models.ServiceOption{
	{Value: "financial-analysis", Label: "Financial Analysis & Reporting"},
	{Value: "tax-planning", Label: "Tax Planning & Strategy"},
	{Value: "risk-management", Label: "Risk Assessment & Management"},
	{Value: "investment-planning", Label: "Investment Planning & Advisory"},
	{Value: "business-consulting", Label: "Business Strategy Consulting"},
	{Value: "accounting-services", Label: "Accounting & Bookkeeping Services"},
	{Value: "compliance-audit", Label: "Compliance & Audit Services"},
	{Value: "other", Label: "Other Services"},
}

// ServiceOptions returns the selectable services of the contact form
func ServiceOptions() []models.ServiceOption {
	out := make([]models.ServiceOption, len(serviceOptions))
	copy(out, serviceOptions)
	return out
}

var (
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s\-']+$`)
	phonePattern = regexp.MustCompile(`^[\+]?[\d\s\-\(\)\.]+$`)

	industries     = []string{"technology", "healthcare", "finance", "real-estate", "manufacturing", "retail", "consulting", "education", "non-profit", "startup", "other"}
	companySizes   = []string{"1-10", "11-50", "51-200", "201-500", "501-1000", "1000+"}
	projectTypes   = []string{"one-time", "ongoing", "consultation", "audit", "analysis", "planning"}
	budgetRanges   = []string{"under-5k", "5k-15k", "15k-50k", "50k-100k", "100k-250k", "250k+"}
	timelines      = []string{"asap", "1-month", "1-3-months", "3-6-months", "6-12-months", "flexible"}
	contactMethods = []string{"email", "phone", "meeting"}
	referrers      = []string{"google", "linkedin", "referral", "website", "social-media", "other"}
)

func normalizeForm(f models.ContactForm) models.ContactForm {
	trim := strings.TrimSpace
	f.FirstName = trim(f.FirstName)
	f.LastName = trim(f.LastName)
	f.Email = strings.ToLower(trim(f.Email))
	f.Phone = trim(f.Phone)
	f.Company = trim(f.Company)
	f.Subject = trim(f.Subject)
	f.Message = trim(f.Message)
	return f
}

// ValidateContact returns one error per rejected field, in form order
func ValidateContact(f models.ContactForm) []models.FieldError {
	var errs []models.FieldError
	add := func(field, msg string) {
		errs = append(errs, models.FieldError{Field: field, Message: msg})
	}

	validateName(f.FirstName, "firstName", "First name", add)
	validateName(f.LastName, "lastName", "Last name", add)

	switch {
	case f.Email == "":
		add("email", "Email address is required")
	case !validEmail(f.Email):
		add("email", "Please enter a valid email address")
	case utf8.RuneCountInString(f.Email) > 100:
		add("email", "Email address cannot exceed 100 characters")
	}

	if f.Phone != "" {
		n := utf8.RuneCountInString(f.Phone)
		switch {
		case n < 10:
			add("phone", "Phone number must be at least 10 digits")
		case n > 20:
			add("phone", "Phone number cannot exceed 20 characters")
		case !phonePattern.MatchString(f.Phone):
			add("phone", "Please enter a valid phone number")
		}
	}

	if f.Company != "" {
		n := utf8.RuneCountInString(f.Company)
		switch {
		case n < 2:
			add("company", "Company name must be at least 2 characters")
		case n > 100:
			add("company", "Company name cannot exceed 100 characters")
		}
	}

	optionalEnum(f.Industry, industries, "industry", "Please select a valid industry", add)
	optionalEnum(f.CompanySize, companySizes, "companySize", "Please select a valid company size", add)

	if !validService(f.Service) {
		add("service", "Please select a service")
	}

	optionalEnum(f.ProjectType, projectTypes, "projectType", "Please select a valid project type", add)
	optionalEnum(f.BudgetRange, budgetRanges, "budgetRange", "Please select a valid budget range", add)
	optionalEnum(f.Timeline, timelines, "timeline", "Please select a valid timeline", add)

	if !contains(contactMethods, f.ContactMethod) {
		add("contactMethod", "Please select a preferred contact method")
	}

	switch n := utf8.RuneCountInString(f.Subject); {
	case n < 5:
		add("subject", "Subject must be at least 5 characters")
	case n > 100:
		add("subject", "Subject cannot exceed 100 characters")
	}

	switch n := utf8.RuneCountInString(f.Message); {
	case n < 20:
		add("message", "Message must be at least 20 characters")
	case n > 2000:
		add("message", "Message cannot exceed 2000 characters")
	}

	optionalEnum(f.HearAboutUs, referrers, "hearAboutUs", "Please select how you heard about us", add)

	if !f.PrivacyConsent {
		add("privacyConsent", "You must agree to the privacy policy")
	}
	return errs
}

func validateName(value, field, label string, add func(string, string)) {
	switch n := utf8.RuneCountInString(value); {
	case n < 2:
		add(field, label+" must be at least 2 characters")
	case n > 50:
		add(field, label+" cannot exceed 50 characters")
	case !namePattern.MatchString(value):
		add(field, label+" can only contain letters, spaces, hyphens, and apostrophes")
	}
}

func optionalEnum(value string, allowed []string, field, msg string, add func(string, string)) {
	if value != "" && !contains(allowed, value) {
		add(field, msg)
	}
}

func validService(value string) bool {
	for _, opt := range serviceOptions {
		if opt.Value == value {
			return true
		}
	}
	return false
}

func validEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	return err == nil && addr.Address == value && strings.Contains(value[strings.LastIndex(value, "@"):], ".")
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
