package forms

import (
	"testing"

	"go-registration-portal/cities"
	"go-registration-portal/models"

	"github.com/stretchr/testify/require"
)

func TestRegistrationValidatorAcceptsCompleteForms(t *testing.T) {
	v := NewRegistrationValidator(testCities)

	variants := map[string]*models.FormValues{
		"general":   newForm(),
		"student":   newForm(asStudent()),
		"pensioner": newForm(asPensioner()),
	}

	for name, form := range variants {
		t.Run(name, func(t *testing.T) {
			result := v.Validate(form)
			require.True(t, result.Valid(), "unexpected errors: %v", result)
		})
	}
}

func TestRegistrationRequiresPasswords(t *testing.T) {
	f := newForm()
	f.Password = ""
	f.ConfirmPassword = ""

	result := NewRegistrationValidator(testCities).Validate(f)

	require.Equal(t, "Password is required", result["password"])
	require.Equal(t, "Please confirm your password", result["confirmPassword"])
}

func TestProfileValidatorSkipsPasswords(t *testing.T) {
	f := newForm()
	f.Password = ""
	f.ConfirmPassword = ""

	result := NewProfileValidator(testCities).Validate(f)

	require.True(t, result.Valid(), "unexpected errors: %v", result)
}

func TestValidatorReportsAllBrokenFields(t *testing.T) {
	f := newForm()
	f.Username = "nope"
	f.Email = "not-an-email"
	f.Address.ZipCode = "41"

	result := NewRegistrationValidator(testCities).Validate(f)

	require.Len(t, result, 3)
	require.Equal(t, "Username must be exactly 5 characters", result["username"])
	require.Equal(t, "Invalid email address", result["email"])
	require.Equal(t, "Zip code must be between 3 and 10 characters", result["address.zipCode"])
}

func TestValidatorUsesProvidedCities(t *testing.T) {
	v := NewRegistrationValidator(cities.NewSet("Delft"))

	f := newForm()
	requireFieldMessage(t, v.Validate(f), "address.city", "Please select a valid city")

	f.Address.City = "Delft"
	requireFieldMessage(t, v.Validate(f), "address.city", "")
}

func TestNormalize(t *testing.T) {
	studentSchool := models.School{
		Name:   "City College",
		Id:     "CC-2041",
		Proof:  []models.FileValue{models.UploadedFile("card.pdf", 1024, "application/pdf")},
		Expiry: dateDaysFromNow(120),
	}

	t.Run("general user loses both blocks", func(t *testing.T) {
		f := newForm()
		f.School = studentSchool
		f.NationalId = "NID-5521"
		f.NationalIdProof = []models.FileValue{models.UploadedFile("nid.pdf", 1024, "application/pdf")}

		Normalize(f)

		require.Equal(t, models.School{}, f.School)
		require.Empty(t, f.NationalId)
		require.Nil(t, f.NationalIdProof)
	})

	t.Run("student keeps school and loses national id", func(t *testing.T) {
		f := newForm(asStudent())
		school := f.School
		f.NationalId = "NID-5521"
		f.NationalIdProof = []models.FileValue{models.UploadedFile("nid.pdf", 1024, "application/pdf")}

		Normalize(f)

		require.Equal(t, school, f.School)
		require.Empty(t, f.NationalId)
		require.Nil(t, f.NationalIdProof)
	})

	t.Run("pensioner keeps national id and loses school", func(t *testing.T) {
		f := newForm(asPensioner())
		f.School = studentSchool

		Normalize(f)

		require.Equal(t, models.School{}, f.School)
		require.Equal(t, "NID-5521", f.NationalId)
		require.Len(t, f.NationalIdProof, 1)
	})

	t.Run("unknown type treated as general", func(t *testing.T) {
		f := newForm()
		f.UserType = "admin"
		f.School = studentSchool
		f.NationalId = "NID-5521"

		Normalize(f)

		require.Equal(t, models.School{}, f.School)
		require.Empty(t, f.NationalId)
	})
}
