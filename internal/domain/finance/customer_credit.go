package finance

import (
	"github.com/erp/consistency/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditStatus represents the status of a customer credit
type CreditStatus string

const (
	CreditStatusActive   CreditStatus = "ACTIVE"
	CreditStatusUsed     CreditStatus = "USED"
	CreditStatusCanceled CreditStatus = "CANCELED"
)

// IsValid checks if the status is known
func (s CreditStatus) IsValid() bool {
	switch s {
	case CreditStatusActive, CreditStatusUsed, CreditStatusCanceled:
		return true
	}
	return false
}

// CustomerCredit is a standing balance the customer can spend later
type CustomerCredit struct {
	shared.BaseEntity
	CustomerID    uuid.UUID
	SalesReturnID *uuid.UUID
	Amount        decimal.Decimal
	UsedAmount    decimal.Decimal
	Status        CreditStatus
}

// NewCustomerCredit creates an active credit
func NewCustomerCredit(customerID uuid.UUID, salesReturnID *uuid.UUID, amount decimal.Decimal) (*CustomerCredit, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("customer is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("credit amount must be positive")
	}
	return &CustomerCredit{
		BaseEntity:    shared.NewBaseEntity(),
		CustomerID:    customerID,
		SalesReturnID: salesReturnID,
		Amount:        amount,
		UsedAmount:    decimal.Zero,
		Status:        CreditStatusActive,
	}, nil
}

// Available returns the unspent amount
func (c *CustomerCredit) Available() decimal.Decimal {
	return c.Amount.Sub(c.UsedAmount)
}

// PaymentMethod is a lookup row used to resolve installment plans
type PaymentMethod struct {
	ID     uuid.UUID
	Name   string
	Active bool
}
