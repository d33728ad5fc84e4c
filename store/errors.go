package store

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a record doesn't exist.
	ErrNotFound = errors.New("roster: record not found")

	// ErrAlreadyExists is returned when attempting to create a record with an existing ID.
	ErrAlreadyExists = errors.New("roster: record already exists")

	// ErrDuplicateEmail is returned when an email is already claimed by
	// another record of the same type.
	ErrDuplicateEmail = errors.New("roster: email already in use")
)

// ValidationError reports field-level constraint failures. Fields maps each
// failed field's JSON name to a human-readable message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "roster: validation failed: " + strings.Join(names, ", ")
}
