package errors

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance for boundary structs.
var validate = validator.New()

// ValidateOrganizationID validates an organization identifier before it is
// used as a URL segment, a cache key component or a file name.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateOrganizationID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidInput, "organization id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "organization id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "organization id contains invalid control characters")
		}
	}
	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "organization id contains invalid characters: %q", pattern)
		}
	}
	return nil
}

// ValidateNodeID validates a node id from external input (flags, query strings).
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "node id too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id contains invalid control characters")
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
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	return nil
}

// ValidateStruct checks v against its `validate` struct tags and reports the
// first failure as an *Error with the given code.
func ValidateStruct(code Code, v any) error {
	if err := validate.Struct(v); err != nil {
		return formatValidationError(code, err)
	}
	return nil
}

func formatValidationError(code Code, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return Wrap(code, err, "validation failed")
	}

	e := verrs[0]
	field := e.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	var msg string
	switch e.Tag() {
	case "required":
		msg = "field is required"
	case "min", "gte":
		msg = fmt.Sprintf("must be at least %s", e.Param())
	case "max", "lte":
		msg = fmt.Sprintf("must not exceed %s", e.Param())
	case "gt":
		msg = fmt.Sprintf("must be greater than %s", e.Param())
	case "gtfield":
		msg = fmt.Sprintf("must be greater than %s", e.Param())
	case "oneof":
		msg = fmt.Sprintf("must be one of [%s], got %v", e.Param(), e.Value())
	case "url":
		msg = "must be a valid URL"
	default:
		msg = fmt.Sprintf("failed %s validation", e.Tag())
	}
	return New(code, "%s: %s", field, msg)
}
