package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/erp/consistency/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{shared.CodeValidation, http.StatusBadRequest},
		{shared.CodeBadRequest, http.StatusBadRequest},
		{shared.CodeNotFound, http.StatusNotFound},
		{shared.CodeUnauthorized, http.StatusUnauthorized},
		{shared.CodeForbidden, http.StatusForbidden},
		{shared.CodeInternal, http.StatusInternalServerError},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeTooLarge, http.StatusRequestEntityTooLarge},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestErrorEnvelope(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-1", []ValidationDetail{
		{Field: "acao", Message: "acao is required", Tag: "required"},
	})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": false,
		"error": {
			"code": "VALIDATION",
			"message": "Request validation failed",
			"requestId": "req-1",
			"details": [{"field": "acao", "message": "acao is required", "tag": "required"}]
		}
	}`, string(raw))
}

func TestSuccessEnvelopeOmitsError(t *testing.T) {
	raw, err := json.Marshal(NewSuccessResponse(map[string]int{"affected": 2}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success": true, "data": {"affected": 2}}`, string(raw))
}
