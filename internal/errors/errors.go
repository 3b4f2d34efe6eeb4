// Package errors defines the service error taxonomy shared by both transport
// surfaces. Handlers classify failures into these codes; the HTTP adapter maps
// them to status codes and the RPC adapter to grpc codes. Internal detail
// (SQL text, wrapped causes) never crosses a transport boundary.
package errors

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Code identifies a class of failure.
type Code string

const (
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeDuplicateEmail     Code = "DUPLICATE_EMAIL"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeNotFound           Code = "NOT_FOUND"
	CodeValidation         Code = "VALIDATION_ERROR"
	CodeStore              Code = "STORE_ERROR"
	CodeInternal           Code = "INTERNAL_ERROR"
)

// ServiceError carries a user-facing message plus transport mappings. The
// wrapped cause is kept for logging only.
type ServiceError struct {
	Code       Code
	Message    string
	HTTPStatus int
	cause      error
}

func (e *ServiceError) Error() string { return e.Message }

// Unwrap exposes the cause for errors.Is checks in logs and tests.
func (e *ServiceError) Unwrap() error { return e.cause }

// GRPCStatus maps the error onto the RPC surface's status taxonomy.
func (e *ServiceError) GRPCStatus() *status.Status {
	var code codes.Code
	switch e.Code {
	case CodeInvalidCredentials, CodeUnauthorized:
		code = codes.Unauthenticated
	case CodeForbidden:
		code = codes.PermissionDenied
	case CodeNotFound:
		code = codes.NotFound
	case CodeDuplicateEmail:
		code = codes.AlreadyExists
	case CodeValidation:
		code = codes.InvalidArgument
	default:
		code = codes.Internal
	}
	return status.New(code, e.Message)
}

// InvalidCredentials is returned for both unknown emails and wrong passwords
// so callers cannot probe which emails exist.
func InvalidCredentials() *ServiceError {
	return &ServiceError{
		Code:       CodeInvalidCredentials,
		Message:    "invalid email or password",
		HTTPStatus: http.StatusUnauthorized,
	}
}

// DuplicateEmail reports a registration against an already-used email.
func DuplicateEmail() *ServiceError {
	return &ServiceError{
		Code:       CodeDuplicateEmail,
		Message:    "email already registered",
		HTTPStatus: http.StatusBadRequest,
	}
}

// Unauthorized reports a missing, malformed, expired or forged token.
func Unauthorized(message string) *ServiceError {
	if message == "" {
		message = "authentication required"
	}
	return &ServiceError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden reports a valid identity lacking the required role.
func Forbidden(message string) *ServiceError {
	if message == "" {
		message = "insufficient permissions"
	}
	return &ServiceError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NotFound reports an absent building, apartment, user or route.
func NotFound(message string) *ServiceError {
	if message == "" {
		message = "resource not found"
	}
	return &ServiceError{
		Code:       CodeNotFound,
		Message:    message,
		HTTPStatus: http.StatusNotFound,
	}
}

// Validation reports malformed or incomplete input.
func Validation(message string) *ServiceError {
	return &ServiceError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Store wraps a persistence failure behind a generic message.
func Store(cause error) *ServiceError {
	return &ServiceError{
		Code:       CodeStore,
		Message:    "storage operation failed",
		HTTPStatus: http.StatusInternalServerError,
		cause:      cause,
	}
}

// Internal wraps any other unexpected failure.
func Internal(cause error) *ServiceError {
	return &ServiceError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		cause:      cause,
	}
}

// GetServiceError normalises an arbitrary error into a ServiceError. Unknown
// errors become a generic internal error so their detail stays server-side.
func GetServiceError(err error) *ServiceError {
	if err == nil {
		return nil
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return Internal(err)
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Code == code
	}
	return false
}
