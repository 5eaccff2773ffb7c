package errors

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits on collaborator input. A path is a short human-readable chain, so
// anything beyond these is rejected before a simulation is created.
const (
	MaxPathEntries = 256
	MaxWordLength  = 64
)

// ValidateWord checks a single path entry. Empty entries are allowed here;
// the graph builder skips them.
func ValidateWord(w string) error {
	if !utf8.ValidString(w) {
		return New(ErrCodeInvalidInput, "path entry is not valid UTF-8")
	}
	if utf8.RuneCountInString(w) > MaxWordLength {
		return New(ErrCodeInvalidInput, "path entry too long (max %d characters)", MaxWordLength)
	}
	for _, r := range w {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path entry %q contains control characters", w)
		}
	}
	return nil
}

// ValidatePathEntries checks a whole word path.
func ValidatePathEntries(path []string) error {
	if len(path) > MaxPathEntries {
		return New(ErrCodeInvalidInput, "path too long (%d entries, max %d)", len(path), MaxPathEntries)
	}
	for _, w := range path {
		if err := ValidateWord(w); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePath validates a relative file path, such as an output name
// derived from user input.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}
	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}
	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}
	return nil
}
