package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePath validates a local file path given on the command line or in
// the config file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// stateStringRegex matches unpadded base64url text.
var stateStringRegex = regexp.MustCompile(`^[A-Za-z0-9_-]*$`)

// ValidateStateString validates an encoded view state before decoding.
// A leading '#' (as copied from a browser address bar) is accepted.
func ValidateStateString(s string) error {
	s = strings.TrimPrefix(s, "#")
	if s == "" {
		return New(ErrCodeInvalidState, "state cannot be empty")
	}

	const maxStateLength = 64 * 1024
	if len(s) > maxStateLength {
		return New(ErrCodeInvalidState, "state too long (max %d characters)", maxStateLength)
	}

	if !stateStringRegex.MatchString(s) {
		return New(ErrCodeInvalidState, "state must be base64url without padding")
	}

	return nil
}

// ValidateColumn checks a 1-based sheet column index used in an edit payload.
func ValidateColumn(col, max int) error {
	if col < 1 || col > max {
		return New(ErrCodeInvalidInput, "column %d out of range (1-%d)", col, max)
	}
	return nil
}

// memberIDRegex matches member node ids produced by the row parser.
var memberIDRegex = regexp.MustCompile(`^mem_[0-9]+$`)

// ValidateMemberID validates that id names a member node (not a union).
func ValidateMemberID(id string) error {
	if !memberIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid member id: %q", id)
	}
	return nil
}
