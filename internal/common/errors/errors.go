package errors

import (
	"fmt"
)

// ErrorCode classifies application errors for transport-level mapping.
type ErrorCode string

const (
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeConflict     ErrorCode = "CONFLICT"

	// Persistence and collaborator failures
	ErrCodeDatabase      ErrorCode = "DATABASE_ERROR"
	ErrCodeCache         ErrorCode = "CACHE_ERROR"
	ErrCodeAssetUpstream ErrorCode = "ASSET_UPSTREAM_ERROR"
)

// AppError is a typed application error with a human-readable message.
type AppError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsNotFound reports whether the error is a "not found" error.
func (e *AppError) IsNotFound() bool {
	return e.Code == ErrCodeNotFound
}

// IsValidation reports whether the error is a validation error.
func (e *AppError) IsValidation() bool {
	return e.Code == ErrCodeValidation
}

// IsAuth reports whether the error is an authentication or authorization error.
func (e *AppError) IsAuth() bool {
	return e.Code == ErrCodeUnauthorized || e.Code == ErrCodeForbidden
}

// IsInternal reports whether the error is an internal or collaborator failure.
func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal ||
		e.Code == ErrCodeDatabase ||
		e.Code == ErrCodeCache ||
		e.Code == ErrCodeAssetUpstream
}

// WithDetail attaches structured detail to the error.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an existing error with a code and message.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// NewValidationError creates a validation error.
func NewValidationError(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// NewNotFoundError creates a "not found" error for a resource.
func NewNotFoundError(resource string, id interface{}) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

// NewUnauthorizedError creates an authentication error.
func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, fmt.Sprintf("Unauthorized: %s", reason))
}

// NewForbiddenError creates an authorization error.
func NewForbiddenError(reason string) *AppError {
	return New(ErrCodeForbidden, fmt.Sprintf("Forbidden: %s", reason))
}

// NewConflictError creates a conflict error.
func NewConflictError(message string) *AppError {
	return New(ErrCodeConflict, message)
}

// NewDatabaseError wraps a persistence failure.
func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabase, fmt.Sprintf("Database operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// NewAssetError wraps an asset store upload/delete failure.
func NewAssetError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeAssetUpstream, fmt.Sprintf("Asset store operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// AsAppError casts err to AppError when possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil {
		appErr, _ = err.(*AppError)
	}
	return appErr, appErr != nil
}
