package main

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// requestValidator checks transport-level request shapes (the reset and
// lookup payloads). Form submissions are validated by the forms package
// ruleset instead, which owns the user-facing field messages.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{validate: validate}
}

// FieldErrors returns a field-to-message map, empty when the value is valid.
// Fields are named by their json tags.
func (rv *requestValidator) FieldErrors(value any) map[string]string {
	err := rv.validate.Struct(value)
	if err == nil {
		return nil
	}

	fieldErrors := map[string]string{}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fe := range validationErrors {
			fieldErrors[fe.Field()] = messageForTag(fe)
		}
		return fieldErrors
	}

	fieldErrors["request"] = "Invalid request"
	return fieldErrors
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email address"
	case "url":
		return "Invalid url"
	default:
		return "Invalid value"
	}
}
