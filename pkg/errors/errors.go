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
	Source  string `json:"source,omitempty"`
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
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict     = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	// ErrSourceUnavailable marks a failed fetch against one owning service.
	// It is isolated per source and never aborts a whole aggregation batch.
	ErrSourceUnavailable = New("SOURCE_UNAVAILABLE", http.StatusBadGateway, "upstream source unavailable")

	// ErrReferenceUnresolved marks a dangling foreign reference. Read paths
	// substitute an Unknown placeholder instead of surfacing this directly.
	ErrReferenceUnresolved = New("REFERENCE_UNRESOLVED", http.StatusUnprocessableEntity, "reference could not be resolved")

	// ErrAggregationInput is programmer error: a malformed batch, an unknown
	// source name, or a join against a collection that was never fetched.
	ErrAggregationInput = New("AGGREGATION_INPUT", http.StatusInternalServerError, "invalid aggregation input")

	// ErrInvalidTransition rejects a lifecycle update out of a terminal state.
	ErrInvalidTransition = New("INVALID_TRANSITION", http.StatusConflict, "invalid lifecycle transition")

	// ErrHealthMiss signals that no status has been recorded for a source yet.
	ErrHealthMiss = New("HEALTH_MISS", http.StatusNotFound, "no recorded source status")
)

// ForSource tags a copy of err with the named source collection.
func ForSource(err *Error, source string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	clone.Source = source
	return &clone
}

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
