package handler

import (
	"context"

	"github.com/erp/consistency/internal/application/returns"
	"github.com/erp/consistency/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReturnService creates and lists the returns of an order
type ReturnService interface {
	Create(ctx context.Context, salesOrderID uuid.UUID, req returns.CreateReturnRequest, actorID *uuid.UUID) (*returns.ProcessedReturnResponse, error)
	List(ctx context.Context, salesOrderID uuid.UUID) ([]returns.ReturnResponse, error)
}

// ReturnHandler handles sales returns scoped to an order
type ReturnHandler struct {
	BaseHandler
	service ReturnService
}

// NewReturnHandler creates a new ReturnHandler
func NewReturnHandler(service ReturnService) *ReturnHandler {
	return &ReturnHandler{service: service}
}

// Create processes a return for the order in the path
func (h *ReturnHandler) Create(c *gin.Context) {
	orderID, err := pathUUID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req returns.CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), orderID, req, middleware.ActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns the returns recorded against the order in the path
func (h *ReturnHandler) List(c *gin.Context) {
	orderID, err := pathUUID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	list, err := h.service.List(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, list)
}
