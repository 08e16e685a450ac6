package models

// StoredProfile is the profile record as the portal persists it. The json
// names follow the column names of the original profile table, so proof
// fields keep their singular names even though they hold lists.
type StoredProfile struct {
	AvatarUrl           string   `json:"avatar_url,omitempty"`
	FullName            string   `json:"full_name"`
	UserName            string   `json:"user_name"`
	Email               string   `json:"email"`
	AddressLine1        string   `json:"address_line1"`
	AddressLine2        string   `json:"address_line2,omitempty"`
	City                string   `json:"city"`
	ZipCode             string   `json:"zip_code"`
	PhoneNumber         string   `json:"phone_number"`
	UserType            string   `json:"user_type"`
	DateOfBirth         string   `json:"date_of_birth"`
	NationalId          string   `json:"national_id,omitempty"`
	SchoolName          string   `json:"school_name,omitempty"`
	SchoolId            string   `json:"school_id,omitempty"`
	StudentProofUrls    []string `json:"student_proof_url,omitempty"`
	SchoolExpiry        string   `json:"school_expiry,omitempty"`
	NationalIdProofUrls []string `json:"national_id_proof_url,omitempty"`
}

// FormValuesFromProfile maps a stored profile onto edit form initial values.
// Missing optional fields become empty strings, a missing user type falls
// back to general, and stored file URLs become existing file references.
func FormValuesFromProfile(p StoredProfile) FormValues {
	userType := p.UserType
	if userType == "" {
		userType = UserTypeGeneral
	}

	return FormValues{
		ProfilePic: fileFromRef(p.AvatarUrl),
		FullName:   p.FullName,
		Username:   p.UserName,
		Email:      p.Email,
		Address: Address{
			AddressLine1: p.AddressLine1,
			AddressLine2: p.AddressLine2,
			City:         p.City,
			ZipCode:      p.ZipCode,
		},
		Phone:      p.PhoneNumber,
		UserType:   userType,
		Dob:        p.DateOfBirth,
		NationalId: p.NationalId,
		School: School{
			Name:   p.SchoolName,
			Id:     p.SchoolId,
			Proof:  filesFromRefs(p.StudentProofUrls),
			Expiry: p.SchoolExpiry,
		},
		NationalIdProof: filesFromRefs(p.NationalIdProofUrls),
	}
}

// ToProfile maps accepted form values back onto the stored profile shape.
// Password fields are never part of the profile.
func (f FormValues) ToProfile() StoredProfile {
	return StoredProfile{
		AvatarUrl:           f.ProfilePic.StorageRef(),
		FullName:            f.FullName,
		UserName:            f.Username,
		Email:               f.Email,
		AddressLine1:        f.Address.AddressLine1,
		AddressLine2:        f.Address.AddressLine2,
		City:                f.Address.City,
		ZipCode:             f.Address.ZipCode,
		PhoneNumber:         f.Phone,
		UserType:            f.UserType,
		DateOfBirth:         f.Dob,
		NationalId:          f.NationalId,
		SchoolName:          f.School.Name,
		SchoolId:            f.School.Id,
		StudentProofUrls:    refsFromFiles(f.School.Proof),
		SchoolExpiry:        f.School.Expiry,
		NationalIdProofUrls: refsFromFiles(f.NationalIdProof),
	}
}

func fileFromRef(ref string) FileValue {
	if ref == "" {
		return FileValue{}
	}
	return ExistingFile(ref)
}

func filesFromRefs(refs []string) []FileValue {
	if len(refs) == 0 {
		return nil
	}
	files := make([]FileValue, 0, len(refs))
	for _, ref := range refs {
		files = append(files, ExistingFile(ref))
	}
	return files
}

func refsFromFiles(files []FileValue) []string {
	if len(files) == 0 {
		return nil
	}
	refs := make([]string, 0, len(files))
	for _, f := range files {
		if ref := f.StorageRef(); ref != "" {
			refs = append(refs, ref)
		}
	}
	if len(refs) == 0 {
		return nil
	}
	return refs
}
