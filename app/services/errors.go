package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds returned by the services. Match with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

// Error carries a client safe message and wraps one of the error kinds.
type Error struct {
	Kind    error
	Message string
	Fields  any
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func notFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Message: fmt.Sprintf(format, args...)}
}

func invalidInput(format string, args ...any) error {
	return &Error{Kind: ErrInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// InvalidInputWithFields builds an InvalidInput error that carries per-field details.
func InvalidInputWithFields(message string, fields any) error {
	return &Error{Kind: ErrInvalidInput, Message: message, Fields: fields}
}

// isNotFound reports whether err is a missing-row error from the store.
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// internal wraps unexpected store errors with the operation that failed.
func internal(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
