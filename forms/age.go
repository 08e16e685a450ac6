package forms

import (
	"time"

	"go-registration-portal/models"
)

// PensionAge is the age from which registration as a pensioner is required.
const PensionAge = 60

// ComputeAge returns the whole years between dob and asOf, counted the way
// birthdays are: the year difference drops by one until the birthday has
// passed in asOf's year.
func ComputeAge(dob, asOf time.Time) int {
	age := asOf.Year() - dob.Year()
	if asOf.Month() < dob.Month() || (asOf.Month() == dob.Month() && asOf.Day() < dob.Day()) {
		age--
	}
	return age
}

func parseDate(value string) (time.Time, bool) {
	t, err := time.Parse(models.DateLayout, value)
	return t, err == nil
}

// currentAge reports the applicant's age when the dob field holds a valid
// date. Rules that depend on the age are skipped otherwise.
func currentAge(f *models.FormValues) (int, bool) {
	dob, ok := parseDate(f.Dob)
	if !ok {
		return 0, false
	}
	return ComputeAge(dob, time.Now().UTC()), true
}

// beforeToday reports whether t falls on a calendar day before today (UTC).
func beforeToday(t time.Time) bool {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return t.Before(today)
}
