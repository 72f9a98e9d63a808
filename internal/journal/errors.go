package journal

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("entry not found")
	ErrValidation = errors.New("validation error")
)

// FieldError describes a problem with one input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every field problem found in one input.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
