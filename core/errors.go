// Package core defines the error kinds shared by the inventory engine
// components. All errors are local to a single operation; callers map them to
// transport-level responses.
package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound reports a missing shelf, material or inspection.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateShelf reports a (row, number) collision on shelf creation.
	ErrDuplicateShelf = errors.New("shelf with this row and number already exists")

	// ErrPositionNotFound reports an unknown position code on a shelf.
	ErrPositionNotFound = errors.New("position not found on shelf")
)

// ValidationError reports a missing or malformed required field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// Invalid builds a ValidationError for the given field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsUniqueViolation detects duplicate-key errors from common database drivers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") ||
		strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "already exists")
}
