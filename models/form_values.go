package models

// DateLayout is the wire format for the dates sent by the frontend date
// pickers.
const DateLayout = "2006-01-02"

// User types understood by the portal.
const (
	UserTypeGeneral = "general"
	UserTypeStudent = "student"
	UserTypePension = "pension"
)

type Address struct {
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	ZipCode      string `json:"zipCode"`
}

// School is the block of fields shown to student users.
type School struct {
	Name   string      `json:"name"`
	Id     string      `json:"id"`
	Proof  []FileValue `json:"proof"`
	Expiry string      `json:"expiry"`
}

// FormValues is one snapshot of the registration or profile edit form,
// exactly as the frontend submits it. The password fields only exist on the
// registration form.
type FormValues struct {
	ProfilePic      FileValue   `json:"profilePic"`
	FullName        string      `json:"fullName"`
	Username        string      `json:"username"`
	Email           string      `json:"email"`
	Password        string      `json:"password,omitempty"`
	ConfirmPassword string      `json:"confirmPassword,omitempty"`
	Address         Address     `json:"address"`
	Phone           string      `json:"phone"`
	UserType        string      `json:"userType"`
	Dob             string      `json:"dob"`
	NationalId      string      `json:"nationalId"`
	School          School      `json:"school"`
	NationalIdProof []FileValue `json:"nationalIdProof"`
}

// DefaultFormValues returns the initial values of a blank registration form.
func DefaultFormValues() FormValues {
	return FormValues{UserType: UserTypeGeneral}
}
