package trade

import (
	"time"

	"github.com/erp/consistency/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of a sales order
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusDelivered OrderStatus = "DELIVERED" // Stock debited
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// AllOrderStatuses lists every order status in lifecycle order.
var AllOrderStatuses = []OrderStatus{
	OrderStatusDraft,
	OrderStatusConfirmed,
	OrderStatusDelivered,
	OrderStatusCanceled,
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusDelivered, OrderStatusCanceled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// AllowsReceivables returns true if receivables may legitimately exist
// against an order in this status. Only delivered orders qualify.
func (s OrderStatus) AllowsReceivables() bool {
	switch s {
	case OrderStatusDelivered:
		return true
	case OrderStatusDraft, OrderStatusConfirmed, OrderStatusCanceled:
		return false
	}
	return false
}

// MisplacedReceivableStatuses are the order statuses under which a linked
// receivable is an inconsistency.
var MisplacedReceivableStatuses = []OrderStatus{
	OrderStatusCanceled,
	OrderStatusDraft,
	OrderStatusConfirmed,
}

// SalesItem is one line of a sales order
type SalesItem struct {
	ID           uuid.UUID
	SalesOrderID uuid.UUID
	ProductID    uuid.UUID
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	IsService    bool // Service lines never move stock
}

// Amount returns quantity * unit price
func (i SalesItem) Amount() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// Installment is one entry of a structured payment plan
type Installment struct {
	ID              uuid.UUID
	SalesOrderID    uuid.UUID
	Sequence        int
	DueDate         time.Time
	Amount          decimal.Decimal
	Description     string
	PaymentMethodID *uuid.UUID
}

// SalesOrder is the aggregate root for a customer sale
type SalesOrder struct {
	shared.BaseEntity
	CustomerID     uuid.UUID
	Status         OrderStatus
	Total          decimal.Decimal
	SaleDate       time.Time
	IsBonification bool
	Installments   []Installment
	Items          []SalesItem
}

// NewSalesOrder creates a draft order. The total is the sum of line amounts.
func NewSalesOrder(customerID uuid.UUID, saleDate time.Time, items []SalesItem) (*SalesOrder, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("customer is required")
	}
	if len(items) == 0 {
		return nil, shared.NewValidationError("order must have at least one item")
	}

	order := &SalesOrder{
		BaseEntity: shared.NewBaseEntity(),
		CustomerID: customerID,
		Status:     OrderStatusDraft,
		SaleDate:   saleDate,
		Total:      decimal.Zero,
	}
	for _, item := range items {
		if !item.Quantity.IsPositive() {
			return nil, shared.NewValidationError("item quantity must be positive")
		}
		if item.UnitPrice.IsNegative() {
			return nil, shared.NewValidationError("item unit price cannot be negative")
		}
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.SalesOrderID = order.ID
		order.Items = append(order.Items, item)
		order.Total = order.Total.Add(item.Amount())
	}
	return order, nil
}

// SetInstallments replaces the payment plan. Sequences are renumbered from 1.
func (o *SalesOrder) SetInstallments(plan []Installment) {
	o.Installments = make([]Installment, len(plan))
	for i, inst := range plan {
		if inst.ID == uuid.Nil {
			inst.ID = uuid.New()
		}
		inst.SalesOrderID = o.ID
		inst.Sequence = i + 1
		o.Installments[i] = inst
	}
}

// HasInstallmentPlan reports whether the order carries a structured plan
func (o *SalesOrder) HasInstallmentPlan() bool {
	return len(o.Installments) > 0
}

// FindItem returns the sales item with the given id
func (o *SalesOrder) FindItem(itemID uuid.UUID) (*SalesItem, bool) {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i], true
		}
	}
	return nil, false
}

// PhysicalItems returns the lines that move stock
func (o *SalesOrder) PhysicalItems() []SalesItem {
	physical := make([]SalesItem, 0, len(o.Items))
	for _, item := range o.Items {
		if !item.IsService {
			physical = append(physical, item)
		}
	}
	return physical
}

// Confirm moves a draft order to confirmed
func (o *SalesOrder) Confirm() error {
	if o.Status != OrderStatusDraft {
		return shared.NewBadRequestError("only draft orders can be confirmed, order is %s", o.Status)
	}
	o.Status = OrderStatusConfirmed
	o.Touch()
	return nil
}

// Deliver moves a confirmed order to delivered
func (o *SalesOrder) Deliver() error {
	if o.Status != OrderStatusConfirmed {
		return shared.NewBadRequestError("only confirmed orders can be delivered, order is %s", o.Status)
	}
	o.Status = OrderStatusDelivered
	o.Touch()
	return nil
}

// Cancel cancels an order that has not been delivered yet
func (o *SalesOrder) Cancel() error {
	switch o.Status {
	case OrderStatusDraft, OrderStatusConfirmed:
		o.Status = OrderStatusCanceled
		o.Touch()
		return nil
	case OrderStatusCanceled:
		return shared.NewBadRequestError("order is already canceled")
	case OrderStatusDelivered:
		return shared.NewBadRequestError("delivered orders cannot be canceled")
	}
	return shared.NewBadRequestError("unknown order status %s", o.Status)
}

// RevertCancellation moves a canceled order back to delivered
func (o *SalesOrder) RevertCancellation() error {
	if o.Status != OrderStatusCanceled {
		return shared.NewBadRequestError("only canceled orders can have their cancellation reversed, order is %s", o.Status)
	}
	o.Status = OrderStatusDelivered
	o.Touch()
	return nil
}
