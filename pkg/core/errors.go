package core

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError reports a malformed search parameter. It is raised before
// any query executes and is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError builds a field-specific validation error.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// RateLimitedError is raised by the rate gate before a search executes.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter.Round(time.Millisecond))
}

// InternalError wraps an unrecoverable store failure. Its message is generic;
// the cause is kept for logging but never shown to callers, so driver and
// schema details do not leak upward.
type InternalError struct {
	cause error
}

func (e *InternalError) Error() string {
	return "internal search error"
}

// Unwrap exposes the cause for logging and errors.Is/As chains.
func (e *InternalError) Unwrap() error {
	return e.cause
}

// NewInternalError wraps a store failure.
func NewInternalError(cause error) *InternalError {
	return &InternalError{cause: cause}
}
