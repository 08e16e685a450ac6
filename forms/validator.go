package forms

import (
	"go-registration-portal/cities"
	"go-registration-portal/models"
)

type ruleOptions struct {
	requirePassword  bool
	strictFileShapes bool
}

func newValidator(citySet *cities.Set, opts ruleOptions) *Validator {
	chains := []Chain{
		profilePicChain(opts),
		fullNameChain(),
		usernameChain(),
		emailChain(),
	}
	if opts.requirePassword {
		chains = append(chains, passwordChain(), confirmPasswordChain())
	}
	chains = append(chains,
		addressLine1Chain(),
		cityChain(citySet),
		zipCodeChain(),
		phoneChain(),
		userTypeChain(),
		dobChain(),
		nationalIdChain(),
		schoolNameChain(),
		schoolIdChain(),
		schoolProofChain(opts),
		schoolExpiryChain(),
		nationalIdProofChain(opts),
	)
	return &Validator{chains: chains}
}

// NewRegistrationValidator builds the ruleset for the registration form:
// password fields are present and malformed file values are rejected.
func NewRegistrationValidator(citySet *cities.Set) *Validator {
	return newValidator(citySet, ruleOptions{requirePassword: true, strictFileShapes: true})
}

// NewProfileValidator builds the ruleset for the profile edit form. That
// form has no password fields, and stored file references pass through
// without the strict shape check.
func NewProfileValidator(citySet *cities.Set) *Validator {
	return newValidator(citySet, ruleOptions{})
}

// Normalize clears the fields the declared user type does not use, so
// inactive blocks never reach storage. Call it after validation passed.
func Normalize(f *models.FormValues) {
	switch DeriveProfile(f.UserType) {
	case ProfileStudent:
		f.NationalId = ""
		f.NationalIdProof = nil
	case ProfilePension:
		f.School = models.School{}
	default:
		f.NationalId = ""
		f.NationalIdProof = nil
		f.School = models.School{}
	}
}
