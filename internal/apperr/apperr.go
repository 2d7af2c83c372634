// Package apperr defines the closed error taxonomy shared by all client
// services and the mapping from transport failures into it. Callers match
// errors with errors.Is against the exported sentinel values; the paired
// message is what the shell shows to the user.
package apperr

import (
	"errors"
	"fmt"
)

// Code is a stable machine-readable error code.
type Code string

const (
	// Local validation, raised before any network call.
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidID       Code = "INVALID_ID"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Transport-level failure with no server response.
	CodeClientError Code = "CLIENT_ERROR"

	// Server responses.
	CodeBadRequest         Code = "BAD_REQUEST"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeForbidden          Code = "FORBIDDEN"
	CodeAccessDenied       Code = "ACCESS_DENIED"
	CodeNotFound           Code = "NOT_FOUND"
	CodeConflict           Code = "CONFLICT"
	CodeRateLimit          Code = "RATE_LIMIT"
	CodeServerError        Code = "SERVER_ERROR"
	CodeBadGateway         Code = "BAD_GATEWAY"
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"
	CodeGatewayTimeout     Code = "GATEWAY_TIMEOUT"

	// Catch-alls.
	CodeNetworkError Code = "NETWORK_ERROR"
	CodeUnknownError Code = "UNKNOWN_ERROR"
)

// Error is the typed error value surfaced to the UI layer.
//
// Message is human-readable and safe to show in a notification; Err keeps
// the underlying cause for logs and errors.Is/As chains.
type Error struct {
	Code    Code
	Message string
	Status  int // HTTP status that produced the error, 0 if local
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two *Error values by code, so tests and callers can write
// errors.Is(err, apperr.New(apperr.CodeInvalidID, "")).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New builds a local error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds a local error that keeps the underlying cause.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// FromStatus maps an HTTP status code to its taxonomy code and user-facing
// message. The mapping is pure: the same status always yields the same pair.
// Statuses outside the table fall through to NETWORK_ERROR.
func FromStatus(status int) *Error {
	var code Code
	var message string

	switch status {
	case 400:
		code, message = CodeBadRequest, "Invalid request. Please check your input."
	case 401:
		code, message = CodeUnauthorized, "Authentication required. Please log in."
	case 403:
		code, message = CodeForbidden, "Access denied. You don't have permission for this action."
	case 404:
		code, message = CodeNotFound, "Resource not found."
	case 409:
		code, message = CodeConflict, "Conflict detected. The resource may already exist."
	case 422:
		code, message = CodeValidationError, "Validation failed. Please check your input."
	case 429:
		code, message = CodeRateLimit, "Too many requests. Please try again later."
	case 500:
		code, message = CodeServerError, "Server error. Please try again later."
	case 502:
		code, message = CodeBadGateway, "Bad gateway. Please try again later."
	case 503:
		code, message = CodeServiceUnavailable, "Service unavailable. Please try again later."
	case 504:
		code, message = CodeGatewayTimeout, "Gateway timeout. Please try again later."
	default:
		code, message = CodeNetworkError, "Network error occurred."
	}

	return &Error{Code: code, Message: message, Status: status}
}

// Normalize coerces any error into a taxonomy error.
//
// Already-normalized errors pass through untouched. Anything else never
// produced a server response, so it becomes CLIENT_ERROR carrying the
// underlying local message.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{
		Code:    CodeClientError,
		Message: err.Error(),
		Err:     err,
	}
}

// ForAuth remaps generic credential-boundary statuses to their auth-specific
// codes: 401 becomes INVALID_CREDENTIALS and 403 becomes ACCESS_DENIED. Other
// errors are returned unchanged.
func ForAuth(e *Error) *Error {
	if e == nil {
		return nil
	}
	switch e.Code {
	case CodeUnauthorized:
		return &Error{Code: CodeInvalidCredentials, Message: "Invalid credentials", Status: e.Status, Err: e.Err}
	case CodeForbidden:
		return &Error{Code: CodeAccessDenied, Message: "Access denied", Status: e.Status, Err: e.Err}
	}
	return e
}
