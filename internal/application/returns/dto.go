// Package returns processes customer returns against delivered orders:
// stock comes back in, and the refund is absorbed by the order's open
// receivables before any leftover becomes a customer credit.
package returns

import (
	"time"

	"github.com/erp/consistency/internal/domain/finance"
	"github.com/erp/consistency/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateReturnRequest represents a request to return part of a delivered order
type CreateReturnRequest struct {
	Items      []ReturnItemInput `json:"items" binding:"required,min=1,dive"`
	RefundType string            `json:"refundType" binding:"required,oneof=CREDIT ACCOUNT_RECEIVABLE"`
	Reason     string            `json:"reason" binding:"max=500"`
}

// ReturnItemInput is one requested line
type ReturnItemInput struct {
	SalesItemID uuid.UUID       `json:"salesItemId" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
}

// ReturnItemResponse is one processed line
type ReturnItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	SalesItemID uuid.UUID       `json:"salesItemId"`
	ProductID   uuid.UUID       `json:"productId"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Amount      decimal.Decimal `json:"amount"`
	IsService   bool            `json:"isService"`
}

// ReturnResponse represents a sales return in API responses
type ReturnResponse struct {
	ID           uuid.UUID            `json:"id"`
	SalesOrderID uuid.UUID            `json:"salesOrderId"`
	CustomerID   uuid.UUID            `json:"customerId"`
	Status       string               `json:"status"`
	RefundType   string               `json:"refundType"`
	Total        decimal.Decimal      `json:"total"`
	Reason       string               `json:"reason,omitempty"`
	Items        []ReturnItemResponse `json:"items"`
	CreatedByID  *uuid.UUID           `json:"createdById,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
	ProcessedAt  *time.Time           `json:"processedAt,omitempty"`
}

// AdjustmentResponse documents how one receivable absorbed part of the refund
type AdjustmentResponse struct {
	ReceivableID uuid.UUID       `json:"arId"`
	Before       decimal.Decimal `json:"before"`
	After        decimal.Decimal `json:"after"`
	Deducted     decimal.Decimal `json:"deducted"`
	Canceled     bool            `json:"canceled"`
}

// CreditResponse represents a customer credit created by a return
type CreditResponse struct {
	ID         uuid.UUID       `json:"id"`
	CustomerID uuid.UUID       `json:"customerId"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
}

// ProcessedReturnResponse is the outcome of creating a return
type ProcessedReturnResponse struct {
	Return      ReturnResponse       `json:"return"`
	Adjustments []AdjustmentResponse `json:"adjustments"`
	Credit      *CreditResponse      `json:"credit,omitempty"`
}

// ToReturnResponse converts a domain return to its response DTO
func ToReturnResponse(r *trade.SalesReturn) ReturnResponse {
	items := make([]ReturnItemResponse, len(r.Items))
	for i, item := range r.Items {
		items[i] = ReturnItemResponse{
			ID:          item.ID,
			SalesItemID: item.SalesItemID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount(),
			IsService:   item.IsService,
		}
	}
	return ReturnResponse{
		ID:           r.ID,
		SalesOrderID: r.SalesOrderID,
		CustomerID:   r.CustomerID,
		Status:       string(r.Status),
		RefundType:   string(r.RefundType),
		Total:        r.Total,
		Reason:       r.Reason,
		Items:        items,
		CreatedByID:  r.CreatedByID,
		CreatedAt:    r.CreatedAt,
		ProcessedAt:  r.ProcessedAt,
	}
}

func toAdjustmentResponse(d finance.RefundDeduction) AdjustmentResponse {
	return AdjustmentResponse{
		ReceivableID: d.ReceivableID,
		Before:       d.Before,
		After:        d.After,
		Deducted:     d.Deducted,
		Canceled:     d.Canceled,
	}
}

func toCreditResponse(c *finance.CustomerCredit) *CreditResponse {
	if c == nil {
		return nil
	}
	return &CreditResponse{
		ID:         c.ID,
		CustomerID: c.CustomerID,
		Amount:     c.Amount,
		Status:     string(c.Status),
	}
}
