package core

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated = errors.New("session token required")
	ErrNotFound        = errors.New("transaction not found")
	ErrInvalidInput    = errors.New("invalid input")
)

// ValidationError describes a malformed field in a request. It matches
// ErrInvalidInput under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// ValidationErrors collects every field problem found in one request.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	switch len(v) {
	case 0:
		return "no validation errors"
	case 1:
		return v[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more)", v[0].Error(), len(v)-1)
	}
}

func (v ValidationErrors) Unwrap() error {
	return ErrInvalidInput
}

// Fields returns the individual problems of err, which may be a single
// ValidationError or a ValidationErrors list.
func Fields(err error) []*ValidationError {
	var many ValidationErrors
	if errors.As(err, &many) {
		return many
	}
	var one *ValidationError
	if errors.As(err, &one) {
		return []*ValidationError{one}
	}
	return nil
}
