package trade

import (
	"time"

	"github.com/erp/consistency/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReturnStatus represents the status of a sales return
type ReturnStatus string

const (
	ReturnStatusPending   ReturnStatus = "PENDING"
	ReturnStatusProcessed ReturnStatus = "PROCESSED"
	ReturnStatusCanceled  ReturnStatus = "CANCELED"
)

// IsValid checks if the status is a valid ReturnStatus
func (s ReturnStatus) IsValid() bool {
	switch s {
	case ReturnStatusPending, ReturnStatusProcessed, ReturnStatusCanceled:
		return true
	}
	return false
}

// String returns the string representation of ReturnStatus
func (s ReturnStatus) String() string {
	return string(s)
}

// RefundType selects where the value of a return goes
type RefundType string

const (
	// RefundTypeCredit creates a standing customer credit for the full total
	RefundTypeCredit RefundType = "CREDIT"
	// RefundTypeAccountReceivable deducts from the order's open receivables first
	RefundTypeAccountReceivable RefundType = "ACCOUNT_RECEIVABLE"
)

// IsValid checks if the refund type is known
func (r RefundType) IsValid() bool {
	switch r {
	case RefundTypeCredit, RefundTypeAccountReceivable:
		return true
	}
	return false
}

// String returns the string representation of RefundType
func (r RefundType) String() string {
	return string(r)
}

// ReturnLine is a requested return of part of one sales item
type ReturnLine struct {
	SalesItemID uuid.UUID
	Quantity    decimal.Decimal
}

// SalesReturnItem is one validated line of a return
type SalesReturnItem struct {
	ID            uuid.UUID
	SalesReturnID uuid.UUID
	SalesItemID   uuid.UUID
	ProductID     uuid.UUID
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	IsService     bool
}

// Amount returns quantity * unit price
func (i SalesReturnItem) Amount() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// SalesReturn is the aggregate root for a customer return against a delivered order
type SalesReturn struct {
	shared.BaseEntity
	SalesOrderID uuid.UUID
	CustomerID   uuid.UUID
	Status       ReturnStatus
	RefundType   RefundType
	Total        decimal.Decimal
	Reason       string
	Items        []SalesReturnItem
	CreatedByID  *uuid.UUID
	ProcessedAt  *time.Time
}

// ReturnedQuantities sums quantities per sales item across the returns that
// still count against the order. Canceled returns are ignored.
func ReturnedQuantities(returns []SalesReturn) map[uuid.UUID]decimal.Decimal {
	returned := make(map[uuid.UUID]decimal.Decimal)
	for _, r := range returns {
		if r.Status == ReturnStatusCanceled {
			continue
		}
		for _, item := range r.Items {
			returned[item.SalesItemID] = returned[item.SalesItemID].Add(item.Quantity)
		}
	}
	return returned
}

// NewSalesReturn validates the requested lines against the order and its
// prior returns, and builds a pending return priced at the original unit prices.
func NewSalesReturn(
	order *SalesOrder,
	priorReturns []SalesReturn,
	lines []ReturnLine,
	refundType RefundType,
	reason string,
	createdByID *uuid.UUID,
) (*SalesReturn, error) {
	if !refundType.IsValid() {
		return nil, shared.NewValidationError("refundType must be CREDIT or ACCOUNT_RECEIVABLE, got %q", refundType)
	}
	if len(lines) == 0 {
		return nil, shared.NewValidationError("at least one item is required")
	}

	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if line.SalesItemID == uuid.Nil {
			return nil, shared.NewValidationError("salesItemId is required")
		}
		if !line.Quantity.IsPositive() {
			return nil, shared.NewValidationError("quantity for item %s must be positive", line.SalesItemID)
		}
		if _, dup := seen[line.SalesItemID]; dup {
			return nil, shared.NewValidationError("item %s appears more than once", line.SalesItemID)
		}
		seen[line.SalesItemID] = struct{}{}
	}

	if order.Status != OrderStatusDelivered {
		return nil, shared.NewBadRequestError("only delivered orders accept returns, order is %s", order.Status)
	}

	ret := &SalesReturn{
		BaseEntity:   shared.NewBaseEntity(),
		SalesOrderID: order.ID,
		CustomerID:   order.CustomerID,
		Status:       ReturnStatusPending,
		RefundType:   refundType,
		Reason:       reason,
		Total:        decimal.Zero,
		CreatedByID:  createdByID,
	}

	returned := ReturnedQuantities(priorReturns)
	for _, line := range lines {
		item, ok := order.FindItem(line.SalesItemID)
		if !ok {
			return nil, shared.NewBadRequestError("item %s does not belong to order %s", line.SalesItemID, order.ID)
		}
		available := item.Quantity.Sub(returned[item.ID])
		if line.Quantity.GreaterThan(available) {
			return nil, shared.NewBadRequestError(
				"cannot return %s of item %s, only %s available to return",
				line.Quantity.String(), item.ID, available.String(),
			)
		}
		retItem := SalesReturnItem{
			ID:            uuid.New(),
			SalesReturnID: ret.ID,
			SalesItemID:   item.ID,
			ProductID:     item.ProductID,
			Quantity:      line.Quantity,
			UnitPrice:     item.UnitPrice,
			IsService:     item.IsService,
		}
		ret.Items = append(ret.Items, retItem)
		ret.Total = ret.Total.Add(retItem.Amount())
	}

	if ret.Total.IsZero() {
		return nil, shared.NewBadRequestError("return total cannot be zero")
	}
	return ret, nil
}

// PhysicalItems returns the returned lines that move stock
func (r *SalesReturn) PhysicalItems() []SalesReturnItem {
	physical := make([]SalesReturnItem, 0, len(r.Items))
	for _, item := range r.Items {
		if !item.IsService {
			physical = append(physical, item)
		}
	}
	return physical
}

// MarkProcessed completes a pending return
func (r *SalesReturn) MarkProcessed() error {
	if r.Status != ReturnStatusPending {
		return shared.NewBadRequestError("only pending returns can be processed, return is %s", r.Status)
	}
	now := time.Now()
	r.Status = ReturnStatusProcessed
	r.ProcessedAt = &now
	r.UpdatedAt = now
	return nil
}
