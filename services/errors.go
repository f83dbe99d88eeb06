package services

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict is returned when a badge already has a credit attached.
	ErrConflict = errors.New("credit for badge already exists")

	// ErrImmutable is returned when a credit's terms are edited after it
	// has been issued to at least one user.
	ErrImmutable = errors.New("credit has been issued and can no longer be edited")

	// ErrNotFound is returned when the referenced credit or badge does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrForbidden is returned when the acting user lacks the manage-credits
	// capability.
	ErrForbidden = errors.New("user may not manage credits")
)

// ValidationError reports field-level input problems back to the form.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
