package dto

import (
	"net/http"

	"github.com/handwerk/backoffice/internal/domain/shared"
)

// Error codes returned in the response envelope. Domain codes pass through unchanged.
const (
	ErrCodeNotFound        = shared.CodeNotFound
	ErrCodeInvalidArgument = shared.CodeInvalidArgument
	ErrCodeConflict        = shared.CodeConflict
	ErrCodeForbidden       = shared.CodeForbidden
	ErrCodeInvalidState    = shared.CodeInvalidState

	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeTokenExpired    = "TOKEN_EXPIRED"
	ErrCodeTokenRevoked    = "TOKEN_REVOKED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeInvalidArgument: http.StatusBadRequest,
	ErrCodeConflict:        http.StatusConflict,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodeInvalidState:    http.StatusUnprocessableEntity,

	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeTokenExpired:    http.StatusUnauthorized,
	ErrCodeTokenRevoked:    http.StatusUnauthorized,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
