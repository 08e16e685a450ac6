package main

import (
	"testing"

	"go-registration-portal/models"

	"github.com/stretchr/testify/require"
)

func TestRequestValidatorAcceptsValidResetRequest(t *testing.T) {
	rv := newRequestValidator()

	fieldErrors := rv.FieldErrors(models.PasswordResetRequest{
		Email:       "alice@example.com",
		RedirectUrl: "https://portal.example/reset",
	})

	require.Empty(t, fieldErrors)
}

func TestRequestValidatorRedirectUrlOptional(t *testing.T) {
	rv := newRequestValidator()

	fieldErrors := rv.FieldErrors(models.PasswordResetRequest{Email: "alice@example.com"})

	require.Empty(t, fieldErrors)
}

func TestRequestValidatorFieldMessages(t *testing.T) {
	rv := newRequestValidator()

	tests := []struct {
		name     string
		request  models.PasswordResetRequest
		field    string
		expected string
	}{
		{
			"missing email",
			models.PasswordResetRequest{},
			"email",
			"This field is required",
		},
		{
			"malformed email",
			models.PasswordResetRequest{Email: "not-an-email"},
			"email",
			"Invalid email address",
		},
		{
			"malformed redirect url",
			models.PasswordResetRequest{Email: "alice@example.com", RedirectUrl: "not a url"},
			"redirect_url",
			"Invalid url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fieldErrors := rv.FieldErrors(tt.request)
			require.Equal(t, tt.expected, fieldErrors[tt.field])
		})
	}
}

func TestRequestValidatorUsesJsonFieldNames(t *testing.T) {
	rv := newRequestValidator()

	fieldErrors := rv.FieldErrors(models.EmailLookupRequest{})

	require.Contains(t, fieldErrors, "email")
	require.NotContains(t, fieldErrors, "Email")
}
