package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so wrapped clones still compare equal to the sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrUnauthenticated     = New("UNAUTHENTICATED", http.StatusUnauthorized, "user not authenticated")
	ErrPrincipalNotFound   = New("PRINCIPAL_NOT_FOUND", http.StatusUnauthorized, "user does not exist")
	ErrInvalidCredentials  = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid credentials")
	ErrTokenExpired        = New("TOKEN_EXPIRED", http.StatusUnauthorized, "token expired")
	ErrTokenInvalid        = New("TOKEN_INVALID", http.StatusUnauthorized, "token invalid")
	ErrForbidden           = New("FORBIDDEN", http.StatusForbidden, "not authorized")
	ErrNotFound            = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrAlreadyExists       = New("ALREADY_EXISTS", http.StatusConflict, "resource already exists")
	ErrInvalidState        = New("INVALID_STATE", http.StatusConflict, "invalid state")
	ErrValidation          = New("VALIDATION_ERROR", http.StatusUnprocessableEntity, "validation failed")
	ErrUpstreamUnavailable = New("UPSTREAM_UNAVAILABLE", http.StatusServiceUnavailable, "service temporarily unavailable")
	ErrInternal            = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Upstream wraps a collaborator failure without exposing its detail to clients.
func Upstream(err error, message string) *Error {
	return &Error{
		Code:    ErrUpstreamUnavailable.Code,
		Status:  ErrUpstreamUnavailable.Status,
		Message: ErrUpstreamUnavailable.Message,
		Err:     fmt.Errorf("%s: %w", message, err),
	}
}
