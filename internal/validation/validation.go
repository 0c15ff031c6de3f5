package validation

import (
	"errors"
	"sort"
	"strings"
)

// ErrValidation is matched by every *Error through errors.Is.
var ErrValidation = errors.New("validation failed")

// Error captures field level validation issues that callers can surface to
// users next to the offending form field.
type Error struct {
	FieldErrors map[string]string `json:"field_errors"`
}

func (e *Error) Error() string {
	if e == nil || len(e.FieldErrors) == 0 {
		return ErrValidation.Error()
	}
	fields := make([]string, 0, len(e.FieldErrors))
	for f := range e.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e.FieldErrors[f])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *Error) Is(target error) bool {
	return target == ErrValidation
}

// Add records a field level validation error. The first message per field
// wins.
func (e *Error) Add(field, message string) {
	if e.FieldErrors == nil {
		e.FieldErrors = make(map[string]string)
	}
	if _, exists := e.FieldErrors[field]; !exists {
		e.FieldErrors[field] = message
	}
}

// HasErrors reports whether any field level issues were recorded.
func (e *Error) HasErrors() bool {
	return e != nil && len(e.FieldErrors) > 0
}

// Err returns the receiver as an error when it holds issues, otherwise nil.
func (e *Error) Err() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

// Required records an error when value is blank.
func (e *Error) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		e.Add(field, "is required")
	}
}
