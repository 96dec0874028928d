package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-site/pkg/models"
)

func validForm() models.ContactForm {
	return models.ContactForm{
		FirstName:      "Ada",
		LastName:       "O'Neil-Smith",
		Email:          "ada@example.com",
		Phone:          "+1 (555) 123-4567",
		Company:        "Acme Holdings",
		Industry:       "finance",
		CompanySize:    "11-50",
		Service:        "tax-planning",
		ProjectType:    "ongoing",
		BudgetRange:    "15k-50k",
		Timeline:       "1-3-months",
		ContactMethod:  "email",
		Subject:        "Quarterly tax review",
		Message:        "We need help planning for next year's tax filing.",
		HearAboutUs:    "linkedin",
		PrivacyConsent: true,
	}
}

func fieldsOf(errs []models.FieldError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field)
	}
	return out
}

func TestValidateContact_Valid(t *testing.T) {
	assert.Empty(t, ValidateContact(validForm()))

	minimal := validForm()
	minimal.Phone, minimal.Company, minimal.Industry, minimal.CompanySize = "", "", "", ""
	minimal.ProjectType, minimal.BudgetRange, minimal.Timeline, minimal.HearAboutUs = "", "", "", ""
	assert.Empty(t, ValidateContact(minimal))
}

func TestValidateContact_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.ContactForm)
		field  string
		msg    string
	}{
		{"short first name", func(f *models.ContactForm) { f.FirstName = "A" }, "firstName", "First name must be at least 2 characters"},
		{"digits in last name", func(f *models.ContactForm) { f.LastName = "Smith2" }, "lastName", "Last name can only contain letters, spaces, hyphens, and apostrophes"},
		{"long last name", func(f *models.ContactForm) { f.LastName = strings.Repeat("a", 51) }, "lastName", "Last name cannot exceed 50 characters"},
		{"missing email", func(f *models.ContactForm) { f.Email = "" }, "email", "Email address is required"},
		{"bad email", func(f *models.ContactForm) { f.Email = "ada@" }, "email", "Please enter a valid email address"},
		{"short phone", func(f *models.ContactForm) { f.Phone = "555-1234" }, "phone", "Phone number must be at least 10 digits"},
		{"letters in phone", func(f *models.ContactForm) { f.Phone = "555-123-ABCD" }, "phone", "Please enter a valid phone number"},
		{"short company", func(f *models.ContactForm) { f.Company = "A" }, "company", "Company name must be at least 2 characters"},
		{"long phone", func(f *models.ContactForm) { f.Phone = strings.Repeat("5", 21) }, "phone", "Phone number cannot exceed 20 characters"},
		{"long company", func(f *models.ContactForm) { f.Company = strings.Repeat("c", 101) }, "company", "Company name cannot exceed 100 characters"},
		{"long subject", func(f *models.ContactForm) { f.Subject = strings.Repeat("s", 101) }, "subject", "Subject cannot exceed 100 characters"},
		{"unknown industry", func(f *models.ContactForm) { f.Industry = "mining" }, "industry", "Please select a valid industry"},
		{"missing service", func(f *models.ContactForm) { f.Service = "" }, "service", "Please select a service"},
		{"unknown budget", func(f *models.ContactForm) { f.BudgetRange = "1m+" }, "budgetRange", "Please select a valid budget range"},
		{"missing contact method", func(f *models.ContactForm) { f.ContactMethod = "fax" }, "contactMethod", "Please select a preferred contact method"},
		{"short subject", func(f *models.ContactForm) { f.Subject = "Hi" }, "subject", "Subject must be at least 5 characters"},
		{"short message", func(f *models.ContactForm) { f.Message = "Call me" }, "message", "Message must be at least 20 characters"},
		{"long message", func(f *models.ContactForm) { f.Message = strings.Repeat("x", 2001) }, "message", "Message cannot exceed 2000 characters"},
		{"no consent", func(f *models.ContactForm) { f.PrivacyConsent = false }, "privacyConsent", "You must agree to the privacy policy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)
			errs := ValidateContact(f)
			require.Len(t, errs, 1, "%v", errs)
			assert.Equal(t, tt.field, errs[0].Field)
			assert.Equal(t, tt.msg, errs[0].Message)
		})
	}
}

func TestValidateContact_CollectsAllFields(t *testing.T) {
	errs := ValidateContact(models.ContactForm{})
	assert.Equal(t, []string{"firstName", "lastName", "email", "service", "contactMethod", "subject", "message", "privacyConsent"}, fieldsOf(errs))
}

func newTestContactService(t *testing.T) (*ContactService, *MemStore) {
	t.Helper()
	store := NewMemStore()
	svc := NewContactService(store)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	svc.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
	ids := 0
	svc.newID = func() string {
		ids++
		return fmt.Sprintf("contact-%d", ids)
	}
	return svc, store
}

func TestContactService_SubmitAndList(t *testing.T) {
	svc, _ := newTestContactService(t)

	first, err := svc.Submit(validForm())
	require.NoError(t, err)
	assert.Equal(t, models.StatusNew, first.Status)
	assert.Equal(t, "contact-1", first.ID)

	f := validForm()
	f.Email = "  Grace@Example.COM "
	f.FirstName = " Grace "
	second, err := svc.Submit(f)
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", second.Email)
	assert.Equal(t, "Grace", second.FirstName)

	list := svc.List()
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, first.ID, list[1].ID)

	got, err := svc.Get(first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got)
}

func TestContactService_SubmitInvalid(t *testing.T) {
	svc, store := newTestContactService(t)
	f := validForm()
	f.Subject = ""

	_, err := svc.Submit(f)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"subject"}, fieldsOf(verr.Fields))
	assert.Contains(t, err.Error(), "subject: Subject must be at least 5 characters")
	assert.Empty(t, store.List())
}

func TestContactService_UpdateStatus(t *testing.T) {
	svc, _ := newTestContactService(t)
	c, err := svc.Submit(validForm())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(c.ID, models.StatusContacted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusContacted, updated.Status)

	got, err := svc.Get(c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusContacted, got.Status)

	_, err = svc.UpdateStatus(c.ID, "archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = svc.UpdateStatus("missing", models.StatusClosed)
	assert.ErrorIs(t, err, ErrContactNotFound)

	_, err = svc.Get("missing")
	assert.ErrorIs(t, err, ErrContactNotFound)
}

func TestMemStore_ConcurrentWrites(t *testing.T) {
	store := NewMemStore()
	svc := NewContactService(store)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(validForm())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list := store.List()
	assert.Len(t, list, 20)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].SubmittedAt.After(list[i-1].SubmittedAt))
	}
}

func TestServiceOptions_ReturnsCopy(t *testing.T) {
	opts := ServiceOptions()
	require.Len(t, opts, 8)
	assert.Equal(t, "Financial Analysis & Reporting", opts[0].Label)
	assert.Equal(t, "Tax Planning & Strategy", opts[1].Label)
	assert.Equal(t, "Other Services", opts[len(opts)-1].Label)
	opts[0].Label = "changed"
	assert.Equal(t, "Financial Analysis & Reporting", ServiceOptions()[0].Label)
}
