package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced event or registration does not exist
	// (or, for registrations, is not owned by the caller).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyRegistered is returned when a user already holds a registration for an event.
	ErrAlreadyRegistered = errors.New("already registered for this event")
	// ErrInvalidCredentials is returned for any failed login, whatever the cause.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ValidationError carries per-field messages for malformed or mismatched input.
// The empty key holds form-level errors.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			parts = append(parts, e.Fields[k])
			continue
		}
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
