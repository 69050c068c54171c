package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("store: document not found")
	ErrValidation = errors.New("store: invalid request")
)

// ValidationError describes a request the gateway refuses to run.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "store: " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
