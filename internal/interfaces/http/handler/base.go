// Package handler holds the gin handlers of the consistency API.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/erp/consistency/internal/domain/shared"
	"github.com/erp/consistency/internal/infrastructure/logger"
	"github.com/erp/consistency/internal/interfaces/http/dto"
	"github.com/erp/consistency/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// dateLayout is the format of from/to query parameters
const dateLayout = "2006-01-02"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(logger.GinRequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, message, getRequestID(c)))
}

// HandleError converts an error into the error envelope. Domain errors keep
// their code and message; anything else is logged and hidden behind ERROR.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.ErrorWithCode(c, domainErr.Code, domainErr.Message)
		return
	}

	logger.GetGinLogger(c).Error("unhandled error",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	h.ErrorWithCode(c, shared.CodeInternal, "An unexpected error occurred")
}

// pathUUID parses the named path parameter
func pathUUID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, shared.NewValidationError("%s must be a UUID", name)
	}
	return id, nil
}

// dateRange reads the optional from/to query parameters. Both are whole
// days in UTC and to includes its entire day.
func dateRange(c *gin.Context) (shared.DateRange, error) {
	var rng shared.DateRange
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(dateLayout, raw)
		if err != nil {
			return rng, shared.NewValidationError("from must be a date formatted as YYYY-MM-DD")
		}
		rng.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(dateLayout, raw)
		if err != nil {
			return rng, shared.NewValidationError("to must be a date formatted as YYYY-MM-DD")
		}
		end := to.Add(24*time.Hour - time.Nanosecond)
		rng.To = &end
	}
	if rng.From != nil && rng.To != nil && rng.To.Before(*rng.From) {
		return rng, shared.NewValidationError("from must not be after to")
	}
	return rng, nil
}
