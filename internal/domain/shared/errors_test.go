package shared

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Kinds(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		validation  bool
		notFound    bool
		concurrency bool
		transient   bool
		retryable   bool
	}{
		{"validation", NewValidationError("X", "bad"), true, false, false, false, false},
		{"rule violation defaults to validation", NewDomainError("X", "bad"), true, false, false, false, false},
		{"not found", ErrNotFound, false, true, false, false, false},
		{"concurrency", ErrConcurrencyConflict, false, false, true, false, true},
		{"transient", NewTransientError("T", "timeout", context.DeadlineExceeded), false, false, false, true, true},
		{"plain error", errors.New("boom"), false, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.validation, IsValidation(tt.err))
			assert.Equal(t, tt.notFound, IsNotFound(tt.err))
			assert.Equal(t, tt.concurrency, IsConcurrency(tt.err))
			assert.Equal(t, tt.transient, IsTransient(tt.err))
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
		})
	}
}

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewNotFoundError("NOT_FOUND", "Customer not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConcurrencyConflict))

	wrapped := fmt.Errorf("load: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.True(t, IsNotFound(wrapped))
}

func TestDomainError_Cause(t *testing.T) {
	err := ErrTimeout.WithCause(context.DeadlineExceeded)

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Contains(t, err.Error(), "Persistence call timed out")
	assert.Nil(t, ErrTimeout.Unwrap())
}

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify(nil))

	validation := NewValidationError("X", "bad")
	assert.Same(t, validation, Classify(validation))

	timeout := Classify(fmt.Errorf("query: %w", context.DeadlineExceeded))
	assert.True(t, IsTransient(timeout))
	assert.True(t, errors.Is(timeout, ErrTimeout))
	assert.True(t, errors.Is(timeout, context.DeadlineExceeded))

	assert.True(t, errors.Is(Classify(context.Canceled), ErrTimeout))

	down := Classify(errors.New("connection refused"))
	assert.True(t, errors.Is(down, ErrUnavailable))
	assert.True(t, IsRetryable(down))
}
