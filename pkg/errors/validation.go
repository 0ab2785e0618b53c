package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxIDLength bounds identifiers accepted from users (CLI flags, API paths).
const maxIDLength = 256

// ValidateID validates a node, edge or session identifier received from a user.
//
// The rules are conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "identifier cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidInput, "identifier too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "identifier contains invalid control characters")
		}
	}
	return nil
}

// ValidatePartition checks that p selects a partition of a document with
// count partitions. The value -1 selects all partitions.
func ValidatePartition(p, count int) error {
	if p == -1 {
		return nil
	}
	if p < 0 || p >= count {
		return New(ErrCodeInvalidPartition, "partition %d out of range (document has %d)", p, count)
	}
	return nil
}

// fieldRegex matches plausible record field names ("hostname", "src_port").
var fieldRegex = regexp.MustCompile(`^[a-z][a-z_]*$`)

// ValidateField validates a search field name.
func ValidateField(field string) error {
	if field == "" {
		return New(ErrCodeInvalidField, "search field cannot be empty")
	}
	if !fieldRegex.MatchString(field) {
		return New(ErrCodeInvalidField, "invalid search field: %q", field)
	}
	return nil
}

// CompilePattern compiles a search pattern, reporting failures as
// INVALID_PATTERN errors so callers can surface them to the user.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, Wrap(ErrCodeInvalidPattern, err, "invalid search pattern %q", pattern)
	}
	return re, nil
}

// ValidateFormats checks a list of output formats against the allowed set.
func ValidateFormats(formats []string, allowed map[string]bool) error {
	if len(formats) == 0 {
		return New(ErrCodeInvalidFormat, "at least one output format is required")
	}
	for _, f := range formats {
		if !allowed[strings.TrimSpace(f)] {
			return New(ErrCodeInvalidFormat, "unsupported output format: %q", f)
		}
	}
	return nil
}
