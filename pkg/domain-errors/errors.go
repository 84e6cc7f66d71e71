// Package domainerrors provides typed error codes for the governance core.
// Services wrap infrastructure errors into coded domain errors; handlers map
// codes to transport status codes without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies a domain error. Codes are stable identifiers used in API
// responses and audit records.
type Code string

const (
	CodeBadRequest       Code = "bad_request"
	CodeNotFound         Code = "not_found"
	CodeAlreadyExists    Code = "already_exists"
	CodeUnauthorized     Code = "unauthorized"
	CodeForbidden        Code = "forbidden"
	CodeInvalidConsent   Code = "invalid_consent"
	CodeMissingConsent   Code = "missing_consent"
	CodeApprovalRequired Code = "approval_required"
	CodeApprovalDenied   Code = "approval_denied"
	CodeBudgetExhausted  Code = "privacy_budget_exhausted"
	CodeTranslation      Code = "translation_failed"
	CodeStorage          Code = "storage_error"
	CodeTimeout          Code = "timeout"
	CodeInternal         Code = "internal"
)

// Error carries a code, a caller-safe message, structured details, and an
// optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error, preserving the
// cause for errors.Is/As chains.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// WithDetails returns a copy of the error carrying structured details, such
// as consent limitations or the failing pipeline stage.
func (e *Error) WithDetails(details map[string]any) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

// Is reports whether err (or anything it wraps) carries the given code.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, or CodeInternal when err is not a
// domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Retryable reports whether the error class may be retried. Only storage and
// timeout failures qualify; governance-state errors never do.
func Retryable(err error) bool {
	switch CodeOf(err) {
	case CodeStorage, CodeTimeout:
		return true
	}
	return false
}

// HTTPStatus maps a domain error code to a transport status code.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeBadRequest, CodeTranslation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden, CodeInvalidConsent, CodeMissingConsent, CodeApprovalDenied:
		return http.StatusForbidden
	case CodeApprovalRequired:
		return http.StatusConflict
	case CodeBudgetExhausted:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
