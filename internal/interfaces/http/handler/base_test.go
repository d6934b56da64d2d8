package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/consistency/internal/domain/shared"
	"github.com/erp/consistency/internal/infrastructure/logger"
	"github.com/erp/consistency/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name:       "from context",
			setup:      func(c *gin.Context) { c.Set(logger.GinRequestIDKey, "ctx-request-id") },
			expectedID: "ctx-request-id",
		},
		{
			name:       "from header when context empty",
			setup:      func(c *gin.Context) { c.Request.Header.Set("X-Request-ID", "header-request-id") },
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
		{
			name: "context takes precedence over header",
			setup: func(c *gin.Context) {
				c.Set(logger.GinRequestIDKey, "ctx-id")
				c.Request.Header.Set("X-Request-ID", "header-id")
			},
			expectedID: "ctx-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(c)
			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestBaseHandlerHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"validation", shared.NewValidationError("tipo is required"), http.StatusBadRequest, "VALIDATION", "tipo is required"},
		{"bad request", shared.NewBadRequestError("order is %s", "DRAFT"), http.StatusBadRequest, "BAD_REQUEST", "order is DRAFT"},
		{"not found", shared.NewNotFoundError("sales order", uuid.Nil), http.StatusNotFound, "NOT_FOUND", ""},
		{"wrapped domain error", fmt.Errorf("load: %w", shared.NewBadRequestError("nope")), http.StatusBadRequest, "BAD_REQUEST", "nope"},
		{"plain error hidden", errors.New("pq: connection reset"), http.StatusInternalServerError, "ERROR", "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h := &BaseHandler{}
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			testutil.AssertErrorResponse(t, w, tt.wantCode)
			if tt.wantMsg != "" {
				errInfo := testutil.JSONBody(t, w)["error"].(map[string]any)
				assert.Equal(t, tt.wantMsg, errInfo["message"])
			}
		})
	}
}

func TestBaseHandlerHandleError_Nil(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	(&BaseHandler{}).HandleError(c, nil)
	assert.Zero(t, w.Body.Len())
}

func TestBaseHandlerSuccessAndCreated(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	(&BaseHandler{}).Created(c, gin.H{"id": "r-1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	data := testutil.AssertSuccessResponse(t, w).(map[string]any)
	assert.Equal(t, "r-1", data["id"])
}

func TestDateRange(t *testing.T) {
	parse := func(query string) (shared.DateRange, error) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
		return dateRange(c)
	}

	t.Run("open", func(t *testing.T) {
		rng, err := parse("")
		require.NoError(t, err)
		assert.True(t, rng.IsZero())
	})

	t.Run("to covers its whole day", func(t *testing.T) {
		rng, err := parse("from=2024-03-01&to=2024-03-31")
		require.NoError(t, err)
		require.NotNil(t, rng.From)
		require.NotNil(t, rng.To)
		assert.Equal(t, testutil.Date(2024, 3, 1), *rng.From)
		assert.True(t, rng.Contains(testutil.Date(2024, 3, 31).Add(23 * time.Hour)))
		assert.False(t, rng.Contains(testutil.Date(2024, 4, 1)))
	})

	for _, query := range []string{"from=01/03/2024", "to=2024-13-01", "from=2024-03-02&to=2024-03-01"} {
		t.Run("rejects "+query, func(t *testing.T) {
			_, err := parse(query)
			assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
		})
	}
}
