// Package forms holds the validation rulesets for the registration and
// profile edit forms. Every rule is an explicit predicate with a fixed
// message, evaluated in a fixed order per field.
package forms

import (
	"go-registration-portal/models"
)

// Check is one predicate over a form snapshot together with the message
// reported when it fails. MessageFunc wins over Message when set, for the
// few rules whose message depends on the snapshot.
type Check struct {
	Passes      func(f *models.FormValues) bool
	Message     string
	MessageFunc func(f *models.FormValues) string
}

func (c Check) message(f *models.FormValues) string {
	if c.MessageFunc != nil {
		return c.MessageFunc(f)
	}
	return c.Message
}

// Chain is the ordered list of checks guarding a single field path. Checks
// run first to last and stop at the first failure, so later checks may
// assume everything before them held.
type Chain struct {
	Field  string
	Checks []Check
}

// Evaluate returns the message of the first failing check, or "" when the
// chain passes.
func (c Chain) Evaluate(f *models.FormValues) string {
	for _, check := range c.Checks {
		if !check.Passes(f) {
			return check.message(f)
		}
	}
	return ""
}

// Result maps field paths to the first failing message for that field.
type Result map[string]string

func (r Result) Valid() bool {
	return len(r) == 0
}

// Validator evaluates a fixed set of chains against one snapshot. Chains
// are independent of each other: a failure in one never suppresses another.
type Validator struct {
	chains []Chain
}

func (v *Validator) Validate(f *models.FormValues) Result {
	result := Result{}
	for _, chain := range v.chains {
		if msg := chain.Evaluate(f); msg != "" {
			result[chain.Field] = msg
		}
	}
	return result
}
