package dto

import (
	"net/http"

	"github.com/bizops/backend/internal/domain/shared"
)

// Error codes produced by the HTTP layer itself. Domain errors carry their
// own codes (INSUFFICIENT_STOCK, OVERPAYMENT, ...) and pass through as is.
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidJSON is used when the body cannot be decoded
	ErrCodeInvalidJSON = "INVALID_JSON"
	// ErrCodeInvalidID is used when a path id is not a UUID
	ErrCodeInvalidID = "INVALID_ID"
	// ErrCodeValidation is used when binding tags reject the request
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeRouteNotFound is used for unknown routes
	ErrCodeRouteNotFound = "ROUTE_NOT_FOUND"
	// ErrCodeRequestTooLarge is used when the body exceeds the limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
)

// KindHTTPStatus maps domain error kinds to HTTP status codes
var KindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindValidation:  http.StatusUnprocessableEntity,
	shared.KindNotFound:    http.StatusNotFound,
	shared.KindConcurrency: http.StatusConflict,
	shared.KindTransient:   http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error kind.
// Returns 500 Internal Server Error if the kind is not known.
func GetHTTPStatus(kind shared.ErrorKind) int {
	if status, ok := KindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}
