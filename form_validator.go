package main

import (
	"go-registration-portal/cities"
	"go-registration-portal/forms"
	"go-registration-portal/models"
)

// FormValidator runs the form ruleset against a submission. The city set is
// passed per call so every request sees the current directory snapshot.
type FormValidator interface {
	ValidateRegistration(f *models.FormValues, citySet *cities.Set) forms.Result
	ValidateProfile(f *models.FormValues, citySet *cities.Set) forms.Result
}

type formValidatorImpl struct{}

func (formValidatorImpl) ValidateRegistration(f *models.FormValues, citySet *cities.Set) forms.Result {
	return forms.NewRegistrationValidator(citySet).Validate(f)
}

func (formValidatorImpl) ValidateProfile(f *models.FormValues, citySet *cities.Set) forms.Result {
	return forms.NewProfileValidator(citySet).Validate(f)
}
