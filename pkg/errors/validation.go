package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateName validates a layer or table name for safety and correctness.
// Names end up in URLs and cache keys, so they are kept conservative:
//   - No empty names
//   - No control characters
//   - No slashes or backslashes
//   - Maximum length of 128 characters
func ValidateName(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "%s name cannot be empty", kind)
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidInput, "%s name too long (max 128 characters)", kind)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s name contains invalid control characters", kind)
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "%s name cannot contain path separators: %q", kind, name)
	}

	return nil
}

// attributeKeyRegex matches property keys written by the hexagon aggregation
// (e.g. "s_mean_21", "mean").
var attributeKeyRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateAttributeKey validates a feature attribute key.
func ValidateAttributeKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidLayer, "attribute key cannot be empty")
	}
	if !attributeKeyRegex.MatchString(key) {
		return New(ErrCodeInvalidLayer, "invalid attribute key: %q", key)
	}
	return nil
}

// ValidatePath validates a data file path referenced from configuration.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
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
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateResolution validates an H3 resolution level.
func ValidateResolution(res int) error {
	if res < 0 || res > 15 {
		return New(ErrCodeInvalidInput, "hexagon resolution %d out of range [0,15]", res)
	}
	return nil
}
