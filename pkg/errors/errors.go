package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error for transport mapping
type Kind int

// AppError represents an application error
type AppError struct {
	Kind    Kind   `json:"-"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind onto an HTTP status.
// Unknown doctors are a bad request, not a 404.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindValidation, KindNotFound:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error kinds
const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindConflict
	KindUpstream
	KindPersistence
)

// Error constructors
func Validation(message string, err error) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Err: err}
}

func Unauthorized(err error) *AppError {
	return &AppError{Kind: KindAuth, Message: "invalid credentials", Err: err}
}

func InvalidToken(err error) *AppError {
	return &AppError{Kind: KindAuth, Message: "invalid or expired token", Err: err}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource), Err: err}
}

func Conflict(message string, err error) *AppError {
	return &AppError{Kind: KindConflict, Message: message, Err: err}
}

// Upstream wraps a provider failure; the reason is part of the client message.
func Upstream(operation string, err error) *AppError {
	msg := fmt.Sprintf("%s failed", operation)
	if err != nil {
		msg = fmt.Sprintf("%s failed: %v", operation, err)
	}
	return &AppError{Kind: KindUpstream, Message: msg, Err: err}
}

func Persistence(err error) *AppError {
	return &AppError{Kind: KindPersistence, Message: "failed to persist data", Err: err}
}

func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "internal server error", Err: err}
}

// As extracts an AppError from err, wrapping unknown errors as internal.
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
