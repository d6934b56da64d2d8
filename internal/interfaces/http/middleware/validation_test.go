package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/consistency/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type correctionBody struct {
	Action string   `json:"acao" binding:"required,oneof=delete_duplicate move_to_order"`
	Reason string   `json:"reason" binding:"max=5"`
	Items  []string `json:"items" binding:"omitempty,min=2"`
	Ref    string   `json:"ref" binding:"omitempty,uuid"`
}

func bindRouter() *gin.Engine {
	SetupValidator()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		var req correctionBody
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	return r
}

func validationDetails(t *testing.T, body string) []dto.ValidationDetail {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, "req-v")
	bindRouter().ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Error   struct {
			Code      string                 `json:"code"`
			RequestID string                 `json:"requestId"`
			Details   []dto.ValidationDetail `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION", resp.Error.Code)
	assert.Equal(t, "req-v", resp.Error.RequestID)
	assert.False(t, resp.Success)
	return resp.Error.Details
}

func TestHandleValidationError(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		field   string
		tag     string
		message string
	}{
		{"required", `{}`, "acao", "required", "acao is required"},
		{"oneof", `{"acao":"drop"}`, "acao", "oneof", "acao must be one of: delete_duplicate move_to_order"},
		{"max", `{"acao":"move_to_order","reason":"too long"}`, "reason", "max", "reason must be at most 5 characters"},
		{"min on slice", `{"acao":"move_to_order","items":["a"]}`, "items", "min", "items must contain at least 2 entries"},
		{"uuid", `{"acao":"move_to_order","ref":"nope"}`, "ref", "uuid", "ref must be a UUID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := validationDetails(t, tt.body)
			require.Len(t, details, 1)
			assert.Equal(t, tt.field, details[0].Field)
			assert.Equal(t, tt.tag, details[0].Tag)
			assert.Equal(t, tt.message, details[0].Message)
		})
	}
}

func TestHandleValidationError_MalformedJSON(t *testing.T) {
	details := validationDetails(t, `{"acao":`)
	require.Len(t, details, 1)
	assert.Equal(t, "body", details[0].Field)
	assert.Empty(t, details[0].Tag)
}

func TestFormatValidationErrors_PlainError(t *testing.T) {
	resp := FormatValidationErrors(errors.New("boom"), "req-1")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-1", resp.Error.RequestID)
}
