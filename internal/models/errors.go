package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput matches every *InvalidInputError via errors.Is.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDegenerateField matches every *DegenerateFieldError via errors.Is.
	ErrDegenerateField = errors.New("degenerate scalar field")
)

// InvalidInputError reports an image or parameter the pipeline cannot accept.
type InvalidInputError struct {
	Operation string
	Reason    string
}

func NewInvalidInput(operation, format string, args ...interface{}) *InvalidInputError {
	return &InvalidInputError{Operation: operation, Reason: fmt.Sprintf(format, args...)}
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input for %s: %s", e.Operation, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// DegenerateFieldError is returned when a field whose maximum is zero is
// asked to be rescaled by that maximum.
type DegenerateFieldError struct {
	Operation string
	Rows      int
	Cols      int
}

func (e *DegenerateFieldError) Error() string {
	return fmt.Sprintf("%s: %dx%d field has zero maximum, cannot rescale", e.Operation, e.Cols, e.Rows)
}

func (e *DegenerateFieldError) Is(target error) bool {
	return target == ErrDegenerateField
}
