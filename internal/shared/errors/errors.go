// Package errors provides application-level error types and utilities.
// Use cases translate domain failures into AppError values and handlers
// map them onto HTTP status codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation         ErrorType = "validation_error"
	ErrorTypeNotFound           ErrorType = "not_found"
	ErrorTypeConflict           ErrorType = "conflict"
	ErrorTypeUnauthorized       ErrorType = "unauthorized"
	ErrorTypeForbidden          ErrorType = "forbidden"
	ErrorTypeInternal           ErrorType = "internal_error"
	ErrorTypeBadRequest         ErrorType = "bad_request"
	ErrorTypeQuotaExceeded      ErrorType = "quota_exceeded"
	ErrorTypeInvariantViolation ErrorType = "invariant_violation"
	ErrorTypeSignatureInvalid   ErrorType = "signature_invalid"
	ErrorTypeProvider           ErrorType = "provider_error"
	ErrorTypeTooManyRequests    ErrorType = "too_many_requests"
	ErrorTypeNoActivePlan       ErrorType = "no_active_plan"
)

// AppError represents an application error with additional context.
// Context carries structured, client-facing fields (e.g. quota figures).
type AppError struct {
	Type    ErrorType      `json:"type"`
	Message string         `json:"message"`
	Code    int            `json:"code"`
	Details string         `json:"details,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// WithContext attaches a structured field and returns the same error.
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func newAppError(t ErrorType, code int, message string, details []string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{
		Type:    t,
		Message: message,
		Code:    code,
		Details: detail,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, details)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, details)
}

// NewConflictError creates a new conflict error
func NewConflictError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeConflict, http.StatusConflict, message, details)
}

// NewUnauthorizedError creates a new unauthorized error
func NewUnauthorizedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeUnauthorized, http.StatusUnauthorized, message, details)
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeForbidden, http.StatusForbidden, message, details)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, details)
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeBadRequest, http.StatusBadRequest, message, details)
}

// NewInvariantViolationError reports a rejected state change such as
// deleting the only remaining form version.
func NewInvariantViolationError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInvariantViolation, http.StatusBadRequest, message, details)
}

// NewSignatureInvalidError reports a webhook payload whose signature
// could not be verified.
func NewSignatureInvalidError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeSignatureInvalid, http.StatusUnauthorized, message, details)
}

// NewProviderError reports a transient failure talking to the payment provider.
func NewProviderError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeProvider, http.StatusInternalServerError, message, details)
}

// NewTooManyRequestsError creates a rate limit error
func NewTooManyRequestsError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeTooManyRequests, http.StatusTooManyRequests, message, details)
}

// NewNoActivePlanError is returned when a quota check finds no ACTIVE subscription.
func NewNoActivePlanError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeNoActivePlan, http.StatusPaymentRequired, message, details)
}

// NewQuotaExceededError creates a payment-required error carrying the
// action, the usage at the time of the check and the plan limit.
func NewQuotaExceededError(action string, currentUsage, maxLimit float64) *AppError {
	err := newAppError(ErrorTypeQuotaExceeded, http.StatusPaymentRequired,
		fmt.Sprintf("quota exceeded for action %s", action), nil)
	return err.
		WithContext("actionType", action).
		WithContext("currentUsage", currentUsage).
		WithContext("maxLimit", maxLimit)
}

// IsAppError checks if the error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts AppError from error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func hasType(err error, t ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == t
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool { return hasType(err, ErrorTypeConflict) }

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool { return hasType(err, ErrorTypeNotFound) }

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool { return hasType(err, ErrorTypeValidation) }

// IsQuotaExceededError checks if the error is a quota exceeded error
func IsQuotaExceededError(err error) bool { return hasType(err, ErrorTypeQuotaExceeded) }

// IsInvariantViolationError checks if the error is an invariant violation
func IsInvariantViolationError(err error) bool { return hasType(err, ErrorTypeInvariantViolation) }

// IsDuplicateError checks if the error is a database duplicate key error
func IsDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// MySQL duplicate entry error
	if strings.Contains(errStr, "Duplicate entry") || strings.Contains(errStr, "duplicate key") {
		return true
	}
	// SQLite
	if strings.Contains(errStr, "UNIQUE constraint failed") {
		return true
	}
	// PostgreSQL unique violation
	return strings.Contains(errStr, "violates unique constraint")
}
