package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`

	cause *AppError
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel this error was derived from, so callers can
// match with errors.Is even when the message carries request detail.
func (e *AppError) Unwrap() error {
	if e.cause != nil {
		return e.cause
	}
	return nil
}

// WithMessagef returns a copy of the error carrying a detailed message while
// remaining matchable against the original sentinel.
func (e *AppError) WithMessagef(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: fmt.Sprintf(format, args...),
		cause:   e,
	}
}

// Common errors
var (
	ErrNotFound           = &AppError{Code: http.StatusNotFound, Message: "Resource not found"}
	ErrUnauthorized       = &AppError{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrForbidden          = &AppError{Code: http.StatusForbidden, Message: "Forbidden"}
	ErrBadRequest         = &AppError{Code: http.StatusBadRequest, Message: "Bad request"}
	ErrInternalServer     = &AppError{Code: http.StatusInternalServerError, Message: "Internal server error"}
	ErrConflict           = &AppError{Code: http.StatusConflict, Message: "Resource already exists"}
	ErrUnprocessable      = &AppError{Code: http.StatusUnprocessableEntity, Message: "Unprocessable entity"}
	ErrInvalidCredentials = &AppError{Code: http.StatusUnauthorized, Message: "Invalid username or password"}
	ErrTokenExpired       = &AppError{Code: http.StatusUnauthorized, Message: "Token has expired"}
	ErrInvalidToken       = &AppError{Code: http.StatusUnauthorized, Message: "Invalid token"}
)

// Reconciliation errors. These are the typed failures the settlement
// coordinator surfaces to its callers; none of them leaves partial state
// behind.
var (
	// ErrOrderState rejects an illegal order state transition or a mutation
	// not allowed in the order's current state.
	ErrOrderState = &AppError{Code: http.StatusConflict, Message: "Operation not allowed in the order's current state"}

	// ErrDivisionPartition rejects a division set that assigns an item to
	// more than one division, or leaves items unassigned when the order
	// requires a full partition.
	ErrDivisionPartition = &AppError{Code: http.StatusUnprocessableEntity, Message: "Invalid bill division: items are mis-assigned"}

	// ErrOverInvoicing rejects an invoice application that would push an
	// order's applied total past its net payable.
	ErrOverInvoicing = &AppError{Code: http.StatusConflict, Message: "Invoice would exceed the order's payable amount"}

	// ErrShiftAlreadyOpen rejects opening a second cash shift for the same
	// establishment and cashier.
	ErrShiftAlreadyOpen = &AppError{Code: http.StatusConflict, Message: "A cash shift is already open for this cashier"}

	// ErrShiftAlreadyClosed rejects operations on a shift that has been closed.
	ErrShiftAlreadyClosed = &AppError{Code: http.StatusConflict, Message: "Cash shift is already closed"}

	// ErrNoOpenShift rejects cash operations when the cashier has no open shift.
	ErrNoOpenShift = &AppError{Code: http.StatusConflict, Message: "No open cash shift for this cashier"}

	// ErrInvalidDenomination rejects denomination maps with negative counts
	// or unparseable face values.
	ErrInvalidDenomination = &AppError{Code: http.StatusUnprocessableEntity, Message: "Invalid denomination counts"}

	// ErrExternalPayment reports a payment gateway failure or timeout.
	ErrExternalPayment = &AppError{Code: http.StatusBadGateway, Message: "Electronic payment confirmation failed"}

	// ErrConcurrencyConflict reports a lost optimistic-lock write. Safe to
	// retry a bounded number of times.
	ErrConcurrencyConflict = &AppError{Code: http.StatusConflict, Message: "Concurrent modification detected, please retry"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Message: resource + " not found",
	}
}

// NewConflictError creates a conflict error with a custom message
func NewConflictError(message string) *AppError {
	return &AppError{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Message: err.Error(),
	}
}
