package forms

import (
	"fmt"
	"strings"

	"go-registration-portal/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Profile is the requirement profile derived from the declared user type.
// It is computed once per rule evaluation, every conditional rule keys off
// it instead of re-inspecting the raw string.
type Profile int

const (
	ProfileGeneral Profile = iota
	ProfileStudent
	ProfilePension
)

// DeriveProfile maps the declared user type onto a requirement profile.
// Unknown types fall back to the general profile, the userType chain
// reports them separately.
func DeriveProfile(userType string) Profile {
	switch userType {
	case models.UserTypeStudent:
		return ProfileStudent
	case models.UserTypePension:
		return ProfilePension
	}
	return ProfileGeneral
}

const (
	MsgInvalidUserType     = "Invalid user type"
	MsgPensionUnderAge     = "Age is less than 60 for Pension User."
	MsgSchoolOnlyStudents  = "School details are only allowed for student users"
	MsgProofOnlyPensioners = "National ID Proof is only allowed for pensioners."
)

func isStudent(f *models.FormValues) bool {
	return DeriveProfile(f.UserType) == ProfileStudent
}

func isPensioner(f *models.FormValues) bool {
	return DeriveProfile(f.UserType) == ProfilePension
}

func titleCase(value string) string {
	return cases.Title(language.English).String(value)
}

func userTypeChain() Chain {
	return Chain{
		Field: "userType",
		Checks: []Check{
			{
				Passes: func(f *models.FormValues) bool {
					switch f.UserType {
					case models.UserTypeGeneral, models.UserTypeStudent, models.UserTypePension:
						return true
					}
					return false
				},
				Message: MsgInvalidUserType,
			},
			{
				Passes: func(f *models.FormValues) bool {
					age, known := currentAge(f)
					if !known {
						return true
					}
					return !isPensioner(f) || age >= PensionAge
				},
				Message: MsgPensionUnderAge,
			},
			{
				Passes: func(f *models.FormValues) bool {
					age, known := currentAge(f)
					if !known {
						return true
					}
					return isPensioner(f) || age < PensionAge
				},
				MessageFunc: func(f *models.FormValues) string {
					return fmt.Sprintf("Age is %d or above for %s User.", PensionAge, titleCase(f.UserType))
				},
			},
		},
	}
}

func nationalIdChain() Chain {
	return Chain{
		Field: "nationalId",
		Checks: []Check{
			{
				Passes: func(f *models.FormValues) bool {
					return !isPensioner(f) || strings.TrimSpace(f.NationalId) != ""
				},
				Message: "National ID is required",
			},
		},
	}
}

func nationalIdProofChain(opts ruleOptions) Chain {
	return Chain{
		Field: "nationalIdProof",
		Checks: []Check{
			{
				Passes: func(f *models.FormValues) bool {
					return isPensioner(f) || len(f.NationalIdProof) == 0
				},
				Message: MsgProofOnlyPensioners,
			},
			{
				Passes: func(f *models.FormValues) bool {
					return !isPensioner(f) || len(f.NationalIdProof) > 0
				},
				Message: "National ID proof is required",
			},
			{
				Passes: func(f *models.FormValues) bool {
					return CheckProofFiles(f.NationalIdProof, opts.strictFileShapes) == ""
				},
				MessageFunc: func(f *models.FormValues) string {
					return CheckProofFiles(f.NationalIdProof, opts.strictFileShapes)
				},
			},
		},
	}
}

func schoolNameChain() Chain {
	return Chain{
		Field: "school.name",
		Checks: []Check{
			{
				Passes: func(f *models.FormValues) bool {
					return isStudent(f) || strings.TrimSpace(f.School.Name) == ""
				},
				Message: MsgSchoolOnlyStudents,
			},
			{
				Passes: func(f *models.FormValues) bool {
					return !isStudent(f) || strings.TrimSpace(f.School.Name) != ""
				},
				Message: "School name is required",
			},
			{
				Passes: func(f *models.FormValues) bool {
					return !isStudent(f) || len(strings.TrimSpace(f.School.Name)) >= 2
				},
				Message: "School name must be at least 2 characters",
			},
		},
	}
}

func schoolIdChain() Chain {
	return Chain{
		Field: "school.id",
		Checks: []Check{
			{
				Passes: func(f *models.FormValues) bool {
					return isStudent(f) || strings.TrimSpace(f.School.Id) == ""
				},
				Message: MsgSchoolOnlyStudents,
			},
			{
				Passes: func(f *models.FormValues) bool {
					return !isStudent(f) || strings.TrimSpace(f.School.Id) != ""
				},
				Message: "School ID is required",
			},
			{
				Passes: func(f *models.FormValues) bool {
					return !isStudent(f) || schoolIdPattern.MatchString(strings.TrimSpace(f.School.Id))
				},
				Message: "Invalid school ID",
			},
		},
	}
}

func schoolProofChain(opts ruleOptions) Chain {
	return Chain{
		Field: "school.proof",
		Checks: []Check{
			{
				Passes: func(f *models.FormValues) bool {
					return isStudent(f) || len(f.School.Proof) == 0
				},
				Message: MsgSchoolOnlyStudents,
			},
			{
				Passes: func(f *models.FormValues) bool {
					return !isStudent(f) || len(f.School.Proof) > 0
				},
				Message: "School ID proof is required",
			},
			{
				Passes: func(f *models.FormValues) bool {
					return CheckProofFiles(f.School.Proof, opts.strictFileShapes) == ""
				},
				MessageFunc: func(f *models.FormValues) string {
					return CheckProofFiles(f.School.Proof, opts.strictFileShapes)
				},
			},
		},
	}
}

func schoolExpiryChain() Chain {
	return Chain{
		Field: "school.expiry",
		Checks: []Check{
			{
				Passes: func(f *models.FormValues) bool {
					return isStudent(f) || f.School.Expiry == ""
				},
				Message: MsgSchoolOnlyStudents,
			},
			{
				Passes: func(f *models.FormValues) bool {
					return !isStudent(f) || f.School.Expiry != ""
				},
				Message: "School ID expiry date is required",
			},
			{
				Passes: func(f *models.FormValues) bool {
					if !isStudent(f) {
						return true
					}
					_, ok := parseDate(f.School.Expiry)
					return ok
				},
				Message: "Invalid date",
			},
			{
				Passes: func(f *models.FormValues) bool {
					if !isStudent(f) {
						return true
					}
					expiry, _ := parseDate(f.School.Expiry)
					return !beforeToday(expiry)
				},
				Message: "School ID expiry date cannot be in the past",
			},
		},
	}
}
