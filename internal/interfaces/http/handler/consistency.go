package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/erp/consistency/internal/application/consistency"
	"github.com/erp/consistency/internal/application/reporting"
	"github.com/erp/consistency/internal/domain/shared"
	"github.com/erp/consistency/internal/infrastructure/export"
	"github.com/erp/consistency/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ConsistencyReader is the read side the handler needs
type ConsistencyReader interface {
	Report(ctx context.Context, selector consistency.Selector, rng shared.DateRange) (any, error)
	Overview(ctx context.Context, rng shared.DateRange) (*reporting.Overview, error)
	ExportCash(ctx context.Context, rng shared.DateRange, w io.Writer) error
}

// Corrector applies one correction
type Corrector interface {
	Execute(ctx context.Context, req consistency.CorrectionRequest) (*consistency.CorrectionResult, error)
}

// CorrectionBody is the body of a correction POST
type CorrectionBody struct {
	Acao          string     `json:"acao" binding:"required"`
	TransactionID *uuid.UUID `json:"transactionId"`
	MovementID    *uuid.UUID `json:"movementId"`
	DePedidoID    *uuid.UUID `json:"dePedidoId"`
	ParaPedidoID  *uuid.UUID `json:"paraPedidoId"`
	SalesOrderID  *uuid.UUID `json:"salesOrderId"`
	ArID          *uuid.UUID `json:"arId"`
}

// ConsistencyHandler exposes detection, the overview, the cash export and corrections
type ConsistencyHandler struct {
	BaseHandler
	reports     ConsistencyReader
	corrections Corrector
}

// NewConsistencyHandler creates a new ConsistencyHandler
func NewConsistencyHandler(reports ConsistencyReader, corrections Corrector) *ConsistencyHandler {
	return &ConsistencyHandler{reports: reports, corrections: corrections}
}

// Detect runs the detector named by the tipo query parameter
func (h *ConsistencyHandler) Detect(c *gin.Context) {
	selector, err := consistency.ParseSelector(c.Query("tipo"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	rng, err := dateRange(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	report, err := h.reports.Report(c.Request.Context(), selector, rng)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// Overview returns one headline per detector
func (h *ConsistencyHandler) Overview(c *gin.Context) {
	rng, err := dateRange(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	overview, err := h.reports.Overview(c.Request.Context(), rng)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, overview)
}

// ExportCash downloads the cash reconciliation workbook. The workbook is
// rendered in full before the first byte goes out so failures still get
// the error envelope.
func (h *ConsistencyHandler) ExportCash(c *gin.Context) {
	rng, err := dateRange(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := h.reports.ExportCash(c.Request.Context(), rng, &buf); err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFilename(rng)))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func exportFilename(rng shared.DateRange) string {
	name := "caixa"
	if rng.From != nil {
		name += "_" + rng.From.Format(dateLayout)
	}
	if rng.To != nil {
		name += "_" + rng.To.Format(dateLayout)
	}
	return name + ".xlsx"
}

// Correct runs the correction named by acao on behalf of the caller
func (h *ConsistencyHandler) Correct(c *gin.Context) {
	var body CorrectionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	action, err := consistency.ParseAction(body.Acao)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.corrections.Execute(c.Request.Context(), consistency.CorrectionRequest{
		Action:        action,
		TransactionID: body.TransactionID,
		MovementID:    body.MovementID,
		FromOrderID:   body.DePedidoID,
		ToOrderID:     body.ParaPedidoID,
		SalesOrderID:  body.SalesOrderID,
		ReceivableID:  body.ArID,
		ActorID:       middleware.ActorID(c),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
