package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/erp/consistency/internal/domain/shared"
	"github.com/erp/consistency/internal/infrastructure/logger"
	"github.com/erp/consistency/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger checks a dependency is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthResponse is the body of a healthy /health
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}

// HealthHandler reports liveness of the service and its database
type HealthHandler struct {
	db        Pinger
	startTime time.Time
	timeout   time.Duration
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, startTime: time.Now(), timeout: 2 * time.Second}
}

// Health pings the database and answers 200 or 503
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		logger.GetGinLogger(c).Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable,
			dto.NewErrorResponse(shared.CodeInternal, "Database unavailable", getRequestID(c)))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(HealthResponse{
		Status:   "ok",
		Database: "up",
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
	}))
}
