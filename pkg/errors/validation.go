package errors

import (
	"strings"
	"unicode"
)

// MaxQueryLength bounds the size of a chat or assistant query in bytes.
const MaxQueryLength = 8000

// ValidateQuery validates a chat or visual-assistant query.
// Whitespace-only queries count as empty.
func ValidateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return New(ErrCodeInvalidInput, "No query provided")
	}
	if len(query) > MaxQueryLength {
		return New(ErrCodeInvalidInput, "query too long (max %d bytes)", MaxQueryLength)
	}
	if strings.ContainsRune(query, '\x00') {
		return New(ErrCodeInvalidInput, "query contains a null byte")
	}
	return nil
}

// ValidateUploadFilename validates the client-supplied name of an uploaded file.
// It ensures the name is a simple basename without path components.
func ValidateUploadFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidInput, "No file selected")
	}

	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidPath, "filename cannot contain path separators")
	}

	for _, r := range filename {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "filename contains invalid control characters")
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
