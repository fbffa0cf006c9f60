// Package errors provides standardized domain errors with codes for the reychango API.
//
// Usage:
//
//	// In the repository - return typed errors
//	if len(matches) == 0 {
//	    return errors.NotFound("no photos reference this album")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrNotFound) {
//	    response.NotFound(w, err.Error(), logger)
//	    return
//	}
//
//	// Or switch on the Code directly
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodePermissionDenied:
//	        response.Forbidden(w, domainErr.Message, logger)
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
	New    = errors.New
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound              Code = "NOT_FOUND"
	CodeMethodNotAllowed      Code = "METHOD_NOT_ALLOWED"
	CodeUnauthorized          Code = "UNAUTHORIZED"
	CodeInvalidCredentials    Code = "INVALID_CREDENTIALS"
	CodeMissingRequiredFields Code = "MISSING_REQUIRED_FIELDS"
	CodeInvalidSlugFormat     Code = "INVALID_SLUG_FORMAT"
	CodeInvalidURLFormat      Code = "INVALID_URL_FORMAT"
	CodeValidation            Code = "VALIDATION"
	CodePermissionDenied      Code = "PERMISSION_DENIED"
	CodeTooManyRequests       Code = "TOO_MANY_REQUESTS"
	CodeDatabase              Code = "DATABASE_ERROR"
	CodeNetwork               Code = "NETWORK_ERROR"
	CodeInternal              Code = "INTERNAL_SERVER_ERROR"
	CodeNotImplemented        Code = "NOT_IMPLEMENTED"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeUnauthorized, CodeInvalidCredentials:
		return http.StatusUnauthorized
	case CodeMissingRequiredFields, CodeInvalidSlugFormat, CodeInvalidURLFormat, CodeValidation:
		return http.StatusBadRequest
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeNotImplemented:
		return http.StatusNotImplemented
	case CodeNetwork:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
	origin  *Error // set for errors made by Sentinel
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// A target made by Sentinel matches only itself and copies derived from it.
// Any other *Error target matches on Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if t.origin != nil {
		return e.origin == t.origin
	}
	return e.Code == t.Code
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
		origin:  e.origin,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
		origin:  e.origin,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound              = &Error{Code: CodeNotFound, Message: "not found"}
	ErrMethodNotAllowed      = &Error{Code: CodeMethodNotAllowed, Message: "method not allowed"}
	ErrUnauthorized          = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrInvalidCredentials    = &Error{Code: CodeInvalidCredentials, Message: "invalid credentials"}
	ErrMissingRequiredFields = &Error{Code: CodeMissingRequiredFields, Message: "missing required fields"}
	ErrInvalidSlugFormat     = &Error{Code: CodeInvalidSlugFormat, Message: "invalid slug format"}
	ErrInvalidURLFormat      = &Error{Code: CodeInvalidURLFormat, Message: "invalid url format"}
	ErrValidation            = &Error{Code: CodeValidation, Message: "validation error"}
	ErrPermissionDenied      = &Error{Code: CodePermissionDenied, Message: "permission denied"}
	ErrTooManyRequests       = &Error{Code: CodeTooManyRequests, Message: "too many requests"}
	ErrDatabase              = &Error{Code: CodeDatabase, Message: "database error"}
	ErrNetwork               = &Error{Code: CodeNetwork, Message: "network error"}
	ErrInternal              = &Error{Code: CodeInternal, Message: "internal server error"}
	ErrNotImplemented        = &Error{Code: CodeNotImplemented, Message: "not implemented"}
)

// Sentinel creates a named error that errors.Is tells apart from other errors
// sharing its code. It still matches the plain sentinel for its code, such as ErrNotFound.
func Sentinel(code Code, msg string) *Error {
	e := &Error{Code: code, Message: msg}
	e.origin = e
	return e
}

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

// InvalidCredentials creates an invalid credentials error.
func InvalidCredentials(msg string) *Error {
	return &Error{Code: CodeInvalidCredentials, Message: msg}
}

// MissingRequiredFields creates an error listing the absent fields.
func MissingRequiredFields(msg string, fields []string) *Error {
	return &Error{Code: CodeMissingRequiredFields, Message: msg, Details: fields}
}

// InvalidSlugFormat creates a slug format error.
func InvalidSlugFormat(msg string) *Error {
	return &Error{Code: CodeInvalidSlugFormat, Message: msg}
}

// InvalidURLFormat creates a url format error.
func InvalidURLFormat(msg string) *Error {
	return &Error{Code: CodeInvalidURLFormat, Message: msg}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// PermissionDenied creates a permission denied error.
func PermissionDenied(msg string) *Error {
	return &Error{Code: CodePermissionDenied, Message: msg}
}

// TooManyRequests creates a rate limit error.
func TooManyRequests(msg string) *Error {
	return &Error{Code: CodeTooManyRequests, Message: msg}
}

// Database creates a database error.
func Database(msg string) *Error {
	return &Error{Code: CodeDatabase, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// NotImplemented creates a not implemented error.
func NotImplemented(msg string) *Error {
	return &Error{Code: CodeNotImplemented, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}

// CodeOf returns the code carried by err, or CodeInternal when err is not a domain error.
func CodeOf(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}
