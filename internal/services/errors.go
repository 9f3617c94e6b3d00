package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds. Concrete errors wrap one of these so callers can map them
// with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrAuth       = errors.New("unauthorized")
)

// Error carries a client-facing message alongside its kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

func notFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func conflict(msg string) error {
	return &Error{Kind: ErrConflict, Message: msg}
}

func authFailure(msg string) error {
	return &Error{Kind: ErrAuth, Message: msg}
}

// lookupErr turns gorm.ErrRecordNotFound into a NotFound error and wraps
// anything else as an internal failure.
func lookupErr(err error, msg, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(msg)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// wrapInternal annotates unexpected failures with op and passes typed
// errors through untouched.
func wrapInternal(err error, op string) error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
