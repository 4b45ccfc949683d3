// Package apperr holds the error kinds that the HTTP layer maps to status codes.
package apperr

import "errors"

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrProvider     = errors.New("provider error")
)

// Error carries a user-facing message and, for provider failures, the provider payload verbatim.
type Error struct {
	Kind    error
	Message string
	Detail  string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func Validation(message string) *Error {
	return &Error{Kind: ErrValidation, Message: message}
}

func ValidationDetail(message, detail string) *Error {
	return &Error{Kind: ErrValidation, Message: message, Detail: detail}
}

func NotFound(message string) *Error {
	return &Error{Kind: ErrNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: ErrConflict, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: ErrUnauthorized, Message: message}
}

func Provider(message, detail string) *Error {
	return &Error{Kind: ErrProvider, Message: message, Detail: detail}
}
