package forms

import (
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode"

	"go-registration-portal/cities"
	"go-registration-portal/models"
)

var (
	// Two or more letter-only words separated by single spaces.
	fullNamePattern = regexp.MustCompile(`^[A-Za-z]+( [A-Za-z]+)+$`)
	usernamePattern = regexp.MustCompile(`^[a-z0-9]+$`)
	// An optional leading + followed by digits. A lone + has no digits and
	// fails on its own.
	phonePattern    = regexp.MustCompile(`^\+?[0-9]+$`)
	schoolIdPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
)

const UsernameLength = 5

const (
	MinPasswordLength = 6
	MinZipCodeLength  = 3
	MaxZipCodeLength  = 10
)

func validEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	return err == nil && addr.Address == value
}

// passwordFlags walks the password once and reports which character classes
// it contains.
func passwordFlags(value string) (hasUpper, hasLower, hasDigit bool) {
	for _, r := range value {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasUpper, hasLower, hasDigit
}

func containsLetter(value string) bool {
	return strings.ContainsFunc(value, unicode.IsLetter)
}

func containsDigit(value string) bool {
	return strings.ContainsFunc(value, unicode.IsDigit)
}

func fullNameChain() Chain {
	return Chain{
		Field: "fullName",
		Checks: []Check{
			{
				Passes:  func(f *models.FormValues) bool { return strings.TrimSpace(f.FullName) != "" },
				Message: "Full name is required",
			},
			{
				Passes:  func(f *models.FormValues) bool { return fullNamePattern.MatchString(strings.TrimSpace(f.FullName)) },
				Message: "Please enter your full name",
			},
		},
	}
}

func usernameChain() Chain {
	return Chain{
		Field: "username",
		Checks: []Check{
			{
				Passes:  func(f *models.FormValues) bool { return f.Username != "" },
				Message: "Username is required",
			},
			{
				Passes:  func(f *models.FormValues) bool { return len(f.Username) == UsernameLength },
				Message: "Username must be exactly 5 characters",
			},
			{
				Passes:  func(f *models.FormValues) bool { return usernamePattern.MatchString(f.Username) },
				Message: "Username must be lowercase alphanumeric",
			},
			{
				Passes:  func(f *models.FormValues) bool { return containsLetter(f.Username) },
				Message: "Username must contain at least one letter",
			},
			{
				Passes:  func(f *models.FormValues) bool { return containsDigit(f.Username) },
				Message: "Username must contain at least one number",
			},
		},
	}
}

func emailChain() Chain {
	return Chain{
		Field: "email",
		Checks: []Check{
			{
				Passes:  func(f *models.FormValues) bool { return f.Email != "" },
				Message: "Email is required",
			},
			{
				Passes:  func(f *models.FormValues) bool { return validEmail(f.Email) },
				Message: "Invalid email address",
			},
		},
	}
}

func passwordChain() Chain {
	return Chain{
		Field: "password",
		Checks: []Check{
			{
				Passes:  func(f *models.FormValues) bool { return f.Password != "" },
				Message: "Password is required",
			},
			{
				Passes:  func(f *models.FormValues) bool { return len(f.Password) >= MinPasswordLength },
				Message: "Password must be at least 6 characters",
			},
			{
				Passes: func(f *models.FormValues) bool {
					hasUpper, hasLower, hasDigit := passwordFlags(f.Password)
					return hasUpper && hasLower && hasDigit
				},
				Message: "Password must contain an uppercase letter, a lowercase letter and a number",
			},
		},
	}
}

func confirmPasswordChain() Chain {
	return Chain{
		Field: "confirmPassword",
		Checks: []Check{
			{
				Passes:  func(f *models.FormValues) bool { return f.ConfirmPassword != "" },
				Message: "Please confirm your password",
			},
			{
				Passes:  func(f *models.FormValues) bool { return f.ConfirmPassword == f.Password },
				Message: "Passwords must match",
			},
		},
	}
}

func addressLine1Chain() Chain {
	return Chain{
		Field: "address.addressLine1",
		Checks: []Check{
			{
				Passes:  func(f *models.FormValues) bool { return strings.TrimSpace(f.Address.AddressLine1) != "" },
				Message: "Address is required",
			},
		},
	}
}

func cityChain(citySet *cities.Set) Chain {
	return Chain{
		Field: "address.city",
		Checks: []Check{
			{
				Passes:  func(f *models.FormValues) bool { return strings.TrimSpace(f.Address.City) != "" },
				Message: "City is required",
			},
			{
				Passes:  func(f *models.FormValues) bool { return citySet.Contains(f.Address.City) },
				Message: "Please select a valid city",
			},
		},
	}
}

func zipCodeChain() Chain {
	return Chain{
		Field: "address.zipCode",
		Checks: []Check{
			{
				Passes:  func(f *models.FormValues) bool { return strings.TrimSpace(f.Address.ZipCode) != "" },
				Message: "Zip code is required",
			},
			{
				Passes: func(f *models.FormValues) bool {
					zip := strings.TrimSpace(f.Address.ZipCode)
					return len(zip) >= MinZipCodeLength && len(zip) <= MaxZipCodeLength
				},
				Message: "Zip code must be between 3 and 10 characters",
			},
		},
	}
}

func phoneChain() Chain {
	return Chain{
		Field: "phone",
		Checks: []Check{
			{
				Passes:  func(f *models.FormValues) bool { return f.Phone != "" },
				Message: "Phone number is required",
			},
			{
				Passes:  func(f *models.FormValues) bool { return phonePattern.MatchString(f.Phone) },
				Message: "Phone number is not valid",
			},
		},
	}
}

func dobChain() Chain {
	return Chain{
		Field: "dob",
		Checks: []Check{
			{
				Passes:  func(f *models.FormValues) bool { return f.Dob != "" },
				Message: "Date of birth is required",
			},
			{
				Passes: func(f *models.FormValues) bool {
					_, ok := parseDate(f.Dob)
					return ok
				},
				Message: "Invalid date",
			},
			{
				Passes: func(f *models.FormValues) bool {
					dob, _ := parseDate(f.Dob)
					return !dob.After(time.Now().UTC())
				},
				Message: "Date of birth cannot be in the future",
			},
		},
	}
}
