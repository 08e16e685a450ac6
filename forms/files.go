package forms

import (
	"slices"

	"go-registration-portal/models"
)

// MaxUploadBytes is the size cap applied to every uploaded file.
const MaxUploadBytes = 2 * 1024 * 1024

// Messages shared between the file rules and the upload endpoint.
const (
	MsgNotAFile          = "Not a file"
	MsgFileTooLarge      = "File too large"
	MsgUnsupportedFormat = "Unsupported file format"
)

// Mime types accepted for pictures and for written proofs. The frontend
// sends image/jpg alongside image/jpeg, both stay on the list.
var (
	imageMimeTypes = []string{
		"image/jpg",
		"image/jpeg",
		"image/gif",
		"image/png",
	}
	proofMimeTypes = append([]string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"text/plain",
	}, imageMimeTypes...)
)

// checkFile validates a single file value against a mime allow list and
// returns "" when it passes. Absent files and stored references always
// pass, presence is the conditional rules' concern. strictShape controls
// whether malformed values are rejected or passed through untouched.
func checkFile(v models.FileValue, allowed []string, strictShape bool) string {
	switch v.Kind {
	case models.FileAbsent, models.FileExisting:
		return ""
	case models.FileUploaded:
		if v.Upload.Size > MaxUploadBytes {
			return MsgFileTooLarge
		}
		if !slices.Contains(allowed, v.Upload.Type) {
			return MsgUnsupportedFormat
		}
		return ""
	}
	if strictShape {
		return MsgNotAFile
	}
	return ""
}

// CheckImageFile validates an optional picture upload.
func CheckImageFile(v models.FileValue, strictShape bool) string {
	return checkFile(v, imageMimeTypes, strictShape)
}

// CheckProofFiles validates every entry of a proof list, first offending
// entry wins.
func CheckProofFiles(files []models.FileValue, strictShape bool) string {
	for _, v := range files {
		if msg := checkFile(v, proofMimeTypes, strictShape); msg != "" {
			return msg
		}
	}
	return ""
}

func profilePicChain(opts ruleOptions) Chain {
	return Chain{
		Field: "profilePic",
		Checks: []Check{
			{
				Passes: func(f *models.FormValues) bool {
					return CheckImageFile(f.ProfilePic, opts.strictFileShapes) == ""
				},
				MessageFunc: func(f *models.FormValues) string {
					return CheckImageFile(f.ProfilePic, opts.strictFileShapes)
				},
			},
		},
	}
}
