// Package apperr holds the error kinds shared by the stores and the API
// layer. Services return these (possibly wrapped); handlers map them to
// status codes in one place.
package apperr

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
)

// ValidationError reports field-level problems with caller input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// FromFields returns nil when fields is empty so callers can write
// `if err := apperr.FromFields(errs); err != nil`.
func FromFields(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// AsValidation unwraps err into a ValidationError if it is one.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
