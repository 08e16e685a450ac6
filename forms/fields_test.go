package forms

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFullNameRules(t *testing.T) {
	v := NewRegistrationValidator(testCities)

	tests := []struct {
		name    string
		value   string
		wantMsg string
	}{
		{"two words", "Alice Johnson", ""},
		{"three words", "Mary Jane Watson", ""},
		{"surrounding whitespace is ignored", "  Alice Johnson  ", ""},
		{"empty", "", "Full name is required"},
		{"whitespace only", "   ", "Full name is required"},
		{"single word", "Alice", "Please enter your full name"},
		{"digits in name", "Alice J0hnson", "Please enter your full name"},
		{"double space between words", "Alice  Johnson", "Please enter your full name"},
		{"punctuation", "Alice O'Brien", "Please enter your full name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newForm()
			f.FullName = tt.value
			requireFieldMessage(t, v.Validate(f), "fullName", tt.wantMsg)
		})
	}
}

func TestUsernameRules(t *testing.T) {
	v := NewRegistrationValidator(testCities)

	tests := []struct {
		name    string
		value   string
		wantMsg string
	}{
		{"letters and digit", "alic3", ""},
		{"digit heavy", "12a34", ""},
		{"empty", "", "Username is required"},
		{"too short", "ali3", "Username must be exactly 5 characters"},
		{"too long", "alice3", "Username must be exactly 5 characters"},
		{"uppercase", "Alic3", "Username must be lowercase alphanumeric"},
		{"contains space", "al c3", "Username must be lowercase alphanumeric"},
		{"no digit", "alice", "Username must contain at least one number"},
		{"no letter", "12345", "Username must contain at least one letter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newForm()
			f.Username = tt.value
			requireFieldMessage(t, v.Validate(f), "username", tt.wantMsg)
		})
	}
}

func TestEmailRules(t *testing.T) {
	v := NewRegistrationValidator(testCities)

	tests := []struct {
		name    string
		value   string
		wantMsg string
	}{
		{"plain address", "alice@example.com", ""},
		{"plus addressing", "alice+forms@example.com", ""},
		{"empty", "", "Email is required"},
		{"no at sign", "alice.example.com", "Invalid email address"},
		{"missing local part", "@example.com", "Invalid email address"},
		{"display name form", "Alice <alice@example.com>", "Invalid email address"},
		{"trailing junk", "alice@example.com extra", "Invalid email address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newForm()
			f.Email = tt.value
			requireFieldMessage(t, v.Validate(f), "email", tt.wantMsg)
		})
	}
}

func TestPasswordRules(t *testing.T) {
	v := NewRegistrationValidator(testCities)

	tests := []struct {
		name    string
		value   string
		wantMsg string
	}{
		{"meets every requirement", "Secret1", ""},
		{"exactly six characters", "Abcde1", ""},
		{"empty", "", "Password is required"},
		{"too short", "Ab1", "Password must be at least 6 characters"},
		{"no uppercase", "secret1", "Password must contain an uppercase letter, a lowercase letter and a number"},
		{"no lowercase", "SECRET1", "Password must contain an uppercase letter, a lowercase letter and a number"},
		{"no digit", "Secrets", "Password must contain an uppercase letter, a lowercase letter and a number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newForm()
			f.Password = tt.value
			f.ConfirmPassword = tt.value
			requireFieldMessage(t, v.Validate(f), "password", tt.wantMsg)
		})
	}
}

func TestConfirmPasswordRules(t *testing.T) {
	v := NewRegistrationValidator(testCities)

	t.Run("matching confirmation passes", func(t *testing.T) {
		requireFieldMessage(t, v.Validate(newForm()), "confirmPassword", "")
	})

	t.Run("empty confirmation", func(t *testing.T) {
		f := newForm()
		f.ConfirmPassword = ""
		requireFieldMessage(t, v.Validate(f), "confirmPassword", "Please confirm your password")
	})

	t.Run("mismatch", func(t *testing.T) {
		f := newForm()
		f.ConfirmPassword = "Different1"
		requireFieldMessage(t, v.Validate(f), "confirmPassword", "Passwords must match")
	})
}

func TestAddressRules(t *testing.T) {
	v := NewRegistrationValidator(testCities)

	t.Run("line one required", func(t *testing.T) {
		f := newForm()
		f.Address.AddressLine1 = "   "
		requireFieldMessage(t, v.Validate(f), "address.addressLine1", "Address is required")
	})

	t.Run("line two is optional and unchecked", func(t *testing.T) {
		f := newForm()
		f.Address.AddressLine2 = strings.Repeat("x", 500)
		result := v.Validate(f)
		require.True(t, result.Valid(), "unexpected errors: %v", result)
	})
}

func TestCityRules(t *testing.T) {
	v := NewRegistrationValidator(testCities)

	tests := []struct {
		name    string
		value   string
		wantMsg string
	}{
		{"listed city", "Pune", ""},
		{"case insensitive", "pune", ""},
		{"surrounding whitespace", " Pune ", ""},
		{"empty", "", "City is required"},
		{"whitespace only", "  ", "City is required"},
		{"unknown city", "Atlantis", "Please select a valid city"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newForm()
			f.Address.City = tt.value
			requireFieldMessage(t, v.Validate(f), "address.city", tt.wantMsg)
		})
	}
}

func TestZipCodeRules(t *testing.T) {
	v := NewRegistrationValidator(testCities)

	tests := []struct {
		name    string
		value   string
		wantMsg string
	}{
		{"six digits", "411001", ""},
		{"minimum length", "411", ""},
		{"maximum length", "4110012345", ""},
		{"empty", "", "Zip code is required"},
		{"too short", "41", "Zip code must be between 3 and 10 characters"},
		{"too long", "41100123456", "Zip code must be between 3 and 10 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newForm()
			f.Address.ZipCode = tt.value
			requireFieldMessage(t, v.Validate(f), "address.zipCode", tt.wantMsg)
		})
	}
}

func TestPhoneRules(t *testing.T) {
	v := NewRegistrationValidator(testCities)

	tests := []struct {
		name    string
		value   string
		wantMsg string
	}{
		{"international prefix", "+31612345678", ""},
		{"digits only", "0612345678", ""},
		{"empty", "", "Phone number is required"},
		{"plus without digits", "+", "Phone number is not valid"},
		{"contains letters", "call me", "Phone number is not valid"},
		{"contains hyphen", "06-1234567", "Phone number is not valid"},
		{"contains spaces", "+31 6 12345678", "Phone number is not valid"},
		{"plus in the middle", "06+1234567", "Phone number is not valid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newForm()
			f.Phone = tt.value
			requireFieldMessage(t, v.Validate(f), "phone", tt.wantMsg)
		})
	}
}

func TestDobRules(t *testing.T) {
	v := NewRegistrationValidator(testCities)

	tests := []struct {
		name    string
		value   string
		wantMsg string
	}{
		{"adult birth date", dateYearsAgo(30), ""},
		{"born recently", dateDaysFromNow(-2), ""},
		{"empty", "", "Date of birth is required"},
		{"wrong layout", "15-06-1990", "Invalid date"},
		{"impossible date", "2020-13-40", "Invalid date"},
		{"not a date", "junk", "Invalid date"},
		{"in the future", dateDaysFromNow(2), "Date of birth cannot be in the future"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newForm()
			f.Dob = tt.value
			requireFieldMessage(t, v.Validate(f), "dob", tt.wantMsg)
		})
	}
}
