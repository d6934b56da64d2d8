package dto

import (
	"net/http"

	"github.com/erp/consistency/internal/domain/shared"
)

// Codes the HTTP layer raises on its own, in addition to the domain codes
const (
	ErrCodeRateLimited = "RATE_LIMITED"
	ErrCodeTooLarge    = "REQUEST_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeValidation:   http.StatusBadRequest,
	shared.CodeBadRequest:   http.StatusBadRequest,
	shared.CodeNotFound:     http.StatusNotFound,
	shared.CodeUnauthorized: http.StatusUnauthorized,
	shared.CodeForbidden:    http.StatusForbidden,
	shared.CodeInternal:     http.StatusInternalServerError,
	ErrCodeRateLimited:      http.StatusTooManyRequests,
	ErrCodeTooLarge:         http.StatusRequestEntityTooLarge,
}

// GetHTTPStatus returns the HTTP status for code, 500 when unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
