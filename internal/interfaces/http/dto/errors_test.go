package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/bizops/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		kind     shared.ErrorKind
		expected int
	}{
		{shared.KindValidation, http.StatusUnprocessableEntity},
		{shared.KindNotFound, http.StatusNotFound},
		{shared.KindConcurrency, http.StatusConflict},
		{shared.KindTransient, http.StatusServiceUnavailable},
		// Unknown kind should return 500
		{shared.ErrorKind("bogus"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.kind))
		})
	}
}

func TestNewDomainErrorResponse(t *testing.T) {
	resp := NewDomainErrorResponse(shared.ErrTimeout, "req-1")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "PERSISTENCE_TIMEOUT", resp.Error.Code)
	assert.Equal(t, "transient", resp.Error.Kind)
	assert.True(t, resp.Error.Retryable)
	assert.Equal(t, "req-1", resp.Error.RequestID)

	resp = NewDomainErrorResponse(shared.NewValidationError("INSUFFICIENT_STOCK", "Insufficient stock"), "")
	assert.Equal(t, "validation", resp.Error.Kind)
	assert.False(t, resp.Error.Retryable)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "name", Message: "This field is required"},
		{Field: "mobile", Message: "Must be at least 7 characters"},
	}

	resp := NewValidationErrorResponse("Request validation failed", "req-2", details)

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-2", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
}

func TestNewPaginatedResponse(t *testing.T) {
	page := shared.NewPaginated([]string{"a", "b"}, 5, 1, 2)

	resp := NewPaginatedResponse(&page)

	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(5), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.Equal(t, []string{"a", "b"}, resp.Data)
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID("CUSTOMER_NOT_FOUND", "Customer not found", "req-3")

	body, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.NotContains(t, decoded, "data")
	assert.NotContains(t, decoded, "meta")

	errInfo := decoded["error"].(map[string]any)
	assert.Equal(t, "CUSTOMER_NOT_FOUND", errInfo["code"])
	assert.Equal(t, "req-3", errInfo["request_id"])
	assert.NotContains(t, errInfo, "details")
}
