package shared

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError for callers deciding whether to retry.
type ErrorKind string

const (
	// KindValidation is caller input violating a rule. Never retried.
	KindValidation ErrorKind = "validation"
	// KindNotFound is a reference that does not resolve. Never retried.
	KindNotFound ErrorKind = "not_found"
	// KindConcurrency is a failed optimistic-concurrency precondition.
	// Safe to retry after re-reading the aggregate.
	KindConcurrency ErrorKind = "concurrency"
	// KindTransient is a timed out or failed infrastructure call.
	// Safe to retry with backoff.
	KindTransient ErrorKind = "transient"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Kind    ErrorKind `json:"-"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is reports equality by code so that errors.Is(err, ErrNotFound) matches
// every instance carrying the NOT_FOUND code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e == t || (t.Code != "" && e.Code == t.Code)
}

// Retryable reports whether the failed operation may be attempted again.
func (e *DomainError) Retryable() bool {
	return e.Kind == KindConcurrency || e.Kind == KindTransient
}

// WithCause returns a copy of the error wrapping cause
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{Code: e.Code, Message: e.Message, Kind: e.Kind, cause: cause}
}

// NewDomainError creates a business-rule error. Rule violations are
// validation failures unless a more specific constructor is used.
func NewDomainError(code, message string) *DomainError {
	return NewValidationError(code, message)
}

// NewValidationError creates a validation error
func NewValidationError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindValidation}
}

// NewNotFoundError creates a not-found error
func NewNotFoundError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindNotFound}
}

// NewConcurrencyError creates an optimistic-concurrency error
func NewConcurrencyError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindConcurrency}
}

// NewTransientError creates an infrastructure error wrapping cause
func NewTransientError(code, message string, cause error) *DomainError {
	return &DomainError{Code: code, Message: message, Kind: KindTransient, cause: cause}
}

// Common domain errors
var (
	ErrNotFound            = NewNotFoundError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewValidationError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewValidationError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewConcurrencyError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrTimeout             = NewTransientError("PERSISTENCE_TIMEOUT", "Persistence call timed out", nil)
	ErrUnavailable         = NewTransientError("PERSISTENCE_UNAVAILABLE", "Persistence layer unavailable", nil)
)

func kindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool { return kindOf(err) == KindValidation }

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool { return kindOf(err) == KindNotFound }

// IsConcurrency reports whether err is an optimistic-concurrency error
func IsConcurrency(err error) bool { return kindOf(err) == KindConcurrency }

// IsTransient reports whether err is a transient infrastructure error
func IsTransient(err error) bool { return kindOf(err) == KindTransient }

// IsRetryable reports whether err may be retried by the caller
func IsRetryable(err error) bool {
	k := kindOf(err)
	return k == KindConcurrency || k == KindTransient
}

// Classify maps a failure onto the error taxonomy. Domain errors pass
// through unchanged, expired or cancelled contexts become ErrTimeout and
// anything else raised below the domain becomes ErrUnavailable.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrTimeout.WithCause(err)
	}
	return ErrUnavailable.WithCause(err)
}
