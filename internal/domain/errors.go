package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error a service returns to the API either wraps one of
// these or is treated as an internal failure.
var (
	ErrNotFound        = errors.New("not found")
	ErrBadRequest      = errors.New("bad request")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
)

// Error is a classified failure with a caller-facing message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func BadRequest(format string, args ...any) error {
	return newError(ErrBadRequest, format, args...)
}

func InvalidArgument(format string, args ...any) error {
	return newError(ErrInvalidArgument, format, args...)
}

func Conflict(format string, args ...any) error {
	return newError(ErrConflict, format, args...)
}

// Message returns the caller-facing text of err: the message of a classified
// error, or an empty string for anything else.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
