package models

import "time"

// RegistrationResponse is returned when a registration is accepted.
type RegistrationResponse struct {
	SubmissionId string `json:"submission_id"`
	Receipt      string `json:"receipt"`
	UserType     string `json:"user_type"`
}

// ValidationFailureResponse carries the first failing message per field path.
type ValidationFailureResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// ProfileFormResponse wraps the edit form initial values for one profile.
type ProfileFormResponse struct {
	ProfileId string     `json:"profile_id"`
	Form      FormValues `json:"form"`
}

type PasswordResetRequest struct {
	Email       string `json:"email" validate:"required,email"`
	RedirectUrl string `json:"redirect_url" validate:"omitempty,url"`
}

type PasswordResetResponse struct {
	Sent     bool   `json:"sent"`
	Provider string `json:"provider,omitempty"`
}

type EmailLookupRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ProviderLookup is the identity service's answer to an email lookup. Both
// fields are nil when no account exists for the email.
type ProviderLookup struct {
	Email    *string `json:"email"`
	Provider *string `json:"provider"`
}

type AvatarUploadResponse struct {
	AvatarUrl string `json:"avatar_url"`
	Thumbnail string `json:"thumbnail,omitempty"` // base64 encoded PNG
}

// AcceptedRegistration is the event published for downstream consumers when
// a registration is accepted. It never contains credentials.
type AcceptedRegistration struct {
	SubmissionId string        `json:"submission_id"`
	Profile      StoredProfile `json:"profile"`
	AcceptedAt   time.Time     `json:"accepted_at"`
}
