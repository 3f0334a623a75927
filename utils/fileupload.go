package utils

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// MaxFileSize is 10MB in bytes
	MaxFileSize = 10 * 1024 * 1024
)

// Media kinds accepted in order detail payloads
const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
)

var (
	// UploadDir is the directory where uploaded files are stored
	// Can be overridden for testing
	UploadDir = "./uploads"

	extensionPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9.+-]{0,15}$`)
)

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// DataURI is a decoded `data:<kind>/<subtype>;base64,<payload>` value
type DataURI struct {
	Kind        string // "image" or "video"
	Extension   string // ".png", ".mp4", ...
	ContentType string
	Data        []byte
}

// ParseDataURI decodes payload, which must be a base64 data URI of the given kind.
// A payload of another kind (e.g. data:application/pdf when an image is expected)
// yields an UNSUPPORTED_MEDIA_TYPE error so callers can skip it.
func ParseDataURI(payload, kind string) (*DataURI, error) {
	prefix := "data:" + kind + "/"
	if !strings.HasPrefix(payload, prefix) {
		return nil, &FileUploadError{
			Code:    "UNSUPPORTED_MEDIA_TYPE",
			Message: fmt.Sprintf("payload is not a %s data URI", kind),
		}
	}

	header, encoded, found := strings.Cut(payload, ",")
	if !found {
		return nil, &FileUploadError{Code: "INVALID_DATA_URI", Message: "data URI has no payload"}
	}

	params := strings.Split(strings.TrimPrefix(header, "data:"), ";")
	contentType := strings.ToLower(params[0])
	subtype := strings.TrimPrefix(contentType, kind+"/")
	if !extensionPattern.MatchString(subtype) {
		return nil, &FileUploadError{
			Code:    "UNSUPPORTED_MEDIA_TYPE",
			Message: fmt.Sprintf("unsupported %s type %q", kind, subtype),
		}
	}

	isBase64 := false
	for _, p := range params[1:] {
		if p == "base64" {
			isBase64 = true
		}
	}
	if !isBase64 {
		return nil, &FileUploadError{Code: "INVALID_DATA_URI", Message: "data URI must be base64 encoded"}
	}

	if base64.StdEncoding.DecodedLen(len(encoded)) > MaxFileSize {
		return nil, &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &FileUploadError{Code: "INVALID_DATA_URI", Message: "payload is not valid base64"}
	}

	return &DataURI{
		Kind:        kind,
		Extension:   "." + subtype,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// SaveFile writes data to uploadDir/relPath, creating directories as needed
func SaveFile(uploadDir, relPath string, data []byte) error {
	if strings.Contains(relPath, "..") {
		return &FileUploadError{Code: "INVALID_FILENAME", Message: "Invalid filename"}
	}

	fullPath := filepath.Join(uploadDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

// MediaFolder returns the storage folder for a media kind, e.g. "orders/images"
func MediaFolder(kind string) string {
	return "orders/" + kind + "s"
}

// GetMediaURL returns the URL path under which a locally stored file is served
func GetMediaURL(relPath string) string {
	if relPath == "" {
		return ""
	}
	return "/api/v1/uploads/" + strings.TrimPrefix(relPath, "/")
}
