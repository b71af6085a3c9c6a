package services

import "errors"

// Error kinds surfaced to API callers. Errors returned by the services wrap
// one of these so handlers can pick a status code with errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// requestError carries a user-facing message for one of the error kinds.
type requestError struct {
	kind    error
	message string
}

func (e *requestError) Error() string { return e.message }

func (e *requestError) Unwrap() error { return e.kind }

func validationError(message string) error {
	return &requestError{kind: ErrValidation, message: message}
}

func notFoundError(message string) error {
	return &requestError{kind: ErrNotFound, message: message}
}

func unauthorizedError(message string) error {
	return &requestError{kind: ErrUnauthorized, message: message}
}
