// Package upload validates tenant-submitted files before they are forwarded
// to the backend. Content type is determined from the actual bytes, never
// from the client-provided file name or header.
package upload

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"dormgate/internal/metrics"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooManyFiles    = errors.New("too many files attached")
)

// Attachment is a validated file ready to be forwarded upstream.
type Attachment struct {
	FileName    string
	ContentType string
	Content     []byte
}

// Validator checks size and content type limits on submitted files.
type Validator struct {
	MaxFileBytes int64
	AllowedTypes []string
}

func NewValidator(maxFileBytes int64, allowedTypes []string) *Validator {
	return &Validator{MaxFileBytes: maxFileBytes, AllowedTypes: allowedTypes}
}

// Validate sniffs the content type and enforces the configured limits.
func (v *Validator) Validate(fileName string, content []byte) (*Attachment, error) {
	if len(content) == 0 {
		metrics.IncUploadRejection("empty")
		return nil, ErrEmptyFile
	}
	if v.MaxFileBytes > 0 && int64(len(content)) > v.MaxFileBytes {
		metrics.IncUploadRejection("too_large")
		return nil, fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, len(content), v.MaxFileBytes)
	}

	contentType := Sniff(content)
	if contentType == "" || !v.allowed(contentType) {
		metrics.IncUploadRejection("bad_type")
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	return &Attachment{FileName: fileName, ContentType: contentType, Content: content}, nil
}

func (v *Validator) allowed(contentType string) bool {
	for _, allowed := range v.AllowedTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}

var (
	pngMagic  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	gif87a    = []byte("GIF87a")
	gif89a    = []byte("GIF89a")
	pdfMagic  = []byte("%PDF-")
)

// Sniff identifies the file type from its leading bytes. Returns an empty
// string when the signature is not recognized.
func Sniff(content []byte) string {
	switch {
	case bytes.HasPrefix(content, pngMagic):
		return "image/png"
	case bytes.HasPrefix(content, jpegMagic):
		return "image/jpeg"
	case bytes.HasPrefix(content, gif87a), bytes.HasPrefix(content, gif89a):
		return "image/gif"
	case bytes.HasPrefix(content, pdfMagic):
		return "application/pdf"
	default:
		return ""
	}
}

// DecodeBase64 accepts either a bare base64 string or a data URL
// ("data:image/png;base64,...") and returns the raw bytes.
func DecodeBase64(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		idx := strings.Index(encoded, ",")
		if idx < 0 {
			return nil, errors.New("malformed data URL")
		}
		encoded = encoded[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 content: %w", err)
	}
	return raw, nil
}
