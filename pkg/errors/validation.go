package errors

import (
	"strings"
	"unicode"
)

// ValidateID validates a session or snapshot ID received from a URL or
// request body. IDs end up in storage keys and file names, so the rules
// are intentionally conservative:
//   - No empty IDs
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
//
// Generated IDs are UUIDs and always pass; this guards the ones clients
// send back.
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "ID cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidID, "ID too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "ID contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidID, "ID contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateName validates a user-supplied display name for a snapshot or
// script. Names are stored and echoed back, never used as paths, so only
// length and control characters are restricted.
func ValidateName(name string) error {
	if len(name) > 200 {
		return New(ErrCodeInvalidInput, "name too long (max 200 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) && r != '\n' {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}
	return nil
}
