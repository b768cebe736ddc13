package types

import (
	"errors"
	"fmt"
	"strings"
)

// Store operation errors. Structured errors below match these through
// errors.Is.
var (
	ErrValidation = errors.New("invalid contact")
	ErrNotFound   = errors.New("contact not found")
	ErrNotReady   = errors.New("store is not ready")
	ErrClosed     = errors.New("store is closed")
)

// Backend lifecycle errors.
var (
	ErrBackendDetached = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)

// FieldError describes one rejected field of a draft.
type FieldError struct {
	Field  string
	Reason string
}

func (f FieldError) String() string {
	return f.Field + ": " + f.Reason
}

// ValidationError is returned when a draft cannot become a Contact. It
// lists every offending field.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Has reports whether field was rejected.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// NotFoundError is returned when an operation names an ID that is not in
// the collection.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %q", ErrNotFound, e.ID)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NotReadyError is returned by a store using the reject policy when a
// mutation arrives before initialization has completed.
type NotReadyError struct {
	Op string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("%s: %s before initialization completed", ErrNotReady, e.Op)
}

// Is reports whether target is ErrNotReady.
func (e *NotReadyError) Is(target error) bool {
	return target == ErrNotReady
}
