// Package domainerrors carries the error kinds from the error handling design
// as typed codes instead of ad-hoc strings, so handlers can translate them to
// HTTP responses without string matching.
package domainerrors

import "errors"

// Code classifies a domain error for HTTP status translation.
type Code string

const (
	CodeBadRequest   Code = "bad_request"
	CodeValidation   Code = "validation_error"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeNotFound     Code = "not_found"
	CodeAdmission    Code = "admission_rejected"
	CodeInternal     Code = "internal_error"
)

// Error is a domain error carrying a stable code plus a human message.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New constructs a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// HasCode reports whether err is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is reports whether err is a domain error with the given code.
// Alias of HasCode kept for call sites that read better with "Is".
func Is(err error, code Code) bool {
	return HasCode(err, code)
}
