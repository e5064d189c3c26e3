package dto

import (
	"net/http"

	"github.com/inventra/backend/internal/domain/shared"
)

// HTTP-layer error codes that have no domain counterpart
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes.
//
// Validation failures are the client's fault (400); an invalid transition or
// insufficient stock is a well-formed request the domain refuses (422); a
// cross-tenant access is a permission problem (403); integrity errors mean
// stored data is corrupt, which is on us (500).
var errorCodeHTTPStatus = map[string]int{
	shared.ErrCodeValidation:          http.StatusBadRequest,
	shared.ErrCodeNotFound:            http.StatusNotFound,
	shared.ErrCodeCrossTenant:         http.StatusForbidden,
	shared.ErrCodeInvalidTransition:   http.StatusUnprocessableEntity,
	shared.ErrCodeInsufficientStock:   http.StatusUnprocessableEntity,
	shared.ErrCodeAlreadyExists:       http.StatusConflict,
	shared.ErrCodeConcurrencyConflict: http.StatusConflict,
	shared.ErrCodeIntegrity:           http.StatusInternalServerError,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeInternal:     http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for an error code, defaulting to 500
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
