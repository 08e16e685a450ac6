package forms

import (
	"testing"
	"time"

	"go-registration-portal/cities"
	"go-registration-portal/models"

	"github.com/stretchr/testify/require"
)

var testCities = cities.NewSet("Pune", "Delhi", "Mumbai")

type formOpt func(*models.FormValues)

// newForm returns a registration form that passes every rule, ready to be
// broken one field at a time.
func newForm(opts ...formOpt) *models.FormValues {
	f := models.FormValues{
		FullName:        "Alice Johnson",
		Username:        "alic3",
		Email:           "alice@example.com",
		Password:        "Secret1",
		ConfirmPassword: "Secret1",
		Address: models.Address{
			AddressLine1: "12 Main Street",
			City:         "Pune",
			ZipCode:      "411001",
		},
		Phone:    "+31612345678",
		UserType: models.UserTypeGeneral,
		Dob:      dateYearsAgo(30),
	}
	for _, o := range opts {
		o(&f)
	}
	return &f
}

func asStudent() formOpt {
	return func(f *models.FormValues) {
		f.UserType = models.UserTypeStudent
		f.Dob = dateYearsAgo(20)
		f.School = models.School{
			Name:   "City College",
			Id:     "CC-2041",
			Proof:  []models.FileValue{models.UploadedFile("card.pdf", 1024, "application/pdf")},
			Expiry: dateDaysFromNow(120),
		}
	}
}

func asPensioner() formOpt {
	return func(f *models.FormValues) {
		f.UserType = models.UserTypePension
		f.Dob = dateYearsAgo(66)
		f.NationalId = "NID-5521"
		f.NationalIdProof = []models.FileValue{models.UploadedFile("nid.pdf", 1024, "application/pdf")}
	}
}

func dateYearsAgo(years int) string {
	return time.Now().UTC().AddDate(-years, 0, 0).Format(models.DateLayout)
}

func dateDaysFromNow(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format(models.DateLayout)
}

// dateYearsPlusDays shifts today by whole years and then by days, which keeps
// boundary tests clear of timezone and leap-day effects.
func dateYearsPlusDays(years, days int) string {
	return time.Now().UTC().AddDate(years, 0, days).Format(models.DateLayout)
}

// requireFieldMessage asserts the first failing message recorded for a
// field, or that the field has no error when want is empty.
func requireFieldMessage(t *testing.T, result Result, field, want string) {
	t.Helper()
	if want == "" {
		require.NotContains(t, result, field, "unexpected error for %s: %q", field, result[field])
		return
	}
	require.Equal(t, want, result[field])
}
