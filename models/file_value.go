package models

import (
	"bytes"
	"encoding/json"
)

// FileKind tags the JSON shape a file field arrived in.
type FileKind int

const (
	// FileAbsent is a missing or null file field.
	FileAbsent FileKind = iota
	// FileExisting is a string reference to an already stored file.
	FileExisting
	// FileUploaded is a freshly selected file described by name, size and type.
	FileUploaded
	// FileInvalid is any other JSON shape (number, bool, array, object
	// without a file name).
	FileInvalid
)

// FileUpload describes a file selected in the browser. Size is in bytes,
// Type is the mime type the browser reported.
type FileUpload struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// FileValue is a file form field. The frontend sends either nothing, a
// string reference to a stored file, or an object describing a new upload.
// The kind is fixed at decode time so the rules never probe the raw JSON.
// The zero value is an absent file.
type FileValue struct {
	Kind   FileKind
	Ref    string
	Upload *FileUpload
}

// ExistingFile returns a FileValue referencing an already stored file.
func ExistingFile(ref string) FileValue {
	return FileValue{Kind: FileExisting, Ref: ref}
}

// UploadedFile returns a FileValue describing a new upload.
func UploadedFile(name string, size int64, mimeType string) FileValue {
	return FileValue{
		Kind:   FileUploaded,
		Upload: &FileUpload{Name: name, Size: size, Type: mimeType},
	}
}

func (f FileValue) IsAbsent() bool {
	return f.Kind == FileAbsent
}

// StorageRef returns the reference to persist for this file. Uploads are
// referenced by filename until the storage layer assigns them a URL.
func (f FileValue) StorageRef() string {
	switch f.Kind {
	case FileExisting:
		return f.Ref
	case FileUploaded:
		return f.Upload.Name
	}
	return ""
}

func (f *FileValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = FileValue{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var ref string
		if err := json.Unmarshal(trimmed, &ref); err != nil {
			*f = FileValue{Kind: FileInvalid}
			return nil
		}
		*f = ExistingFile(ref)
		return nil
	case '{':
		var upload FileUpload
		// A file object always carries a name, anything else is not a file
		if err := json.Unmarshal(trimmed, &upload); err != nil || upload.Name == "" {
			*f = FileValue{Kind: FileInvalid}
			return nil
		}
		*f = FileValue{Kind: FileUploaded, Upload: &upload}
		return nil
	}

	*f = FileValue{Kind: FileInvalid}
	return nil
}

func (f FileValue) MarshalJSON() ([]byte, error) {
	switch f.Kind {
	case FileExisting:
		return json.Marshal(f.Ref)
	case FileUploaded:
		return json.Marshal(f.Upload)
	}
	// Absent and invalid values round-trip as null
	return []byte("null"), nil
}
