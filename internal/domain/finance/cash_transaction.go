package finance

import (
	"time"

	"github.com/erp/consistency/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashType is the direction of a cash transaction
type CashType string

const (
	CashTypeIn  CashType = "IN"
	CashTypeOut CashType = "OUT"
)

// IsValid checks if the type is known
func (t CashType) IsValid() bool {
	switch t {
	case CashTypeIn, CashTypeOut:
		return true
	}
	return false
}

// Opposite returns the reverse direction
func (t CashType) Opposite() CashType {
	if t == CashTypeIn {
		return CashTypeOut
	}
	return CashTypeIn
}

// String returns the string representation of CashType
func (t CashType) String() string {
	return string(t)
}

// CashOrigin identifies what produced a cash transaction
type CashOrigin string

const (
	CashOriginAR     CashOrigin = "AR"
	CashOriginAP     CashOrigin = "AP"
	CashOriginManual CashOrigin = "MANUAL"
)

// IsValid checks if the origin is known
func (o CashOrigin) IsValid() bool {
	switch o {
	case CashOriginAR, CashOriginAP, CashOriginManual:
		return true
	}
	return false
}

// String returns the string representation of CashOrigin
func (o CashOrigin) String() string {
	return string(o)
}

// ReversalPrefix starts the description of every reversal entry
const ReversalPrefix = "Reversal: "

// CashTransaction is an append-only cash ledger entry
type CashTransaction struct {
	ID          uuid.UUID
	Type        CashType
	Origin      CashOrigin
	OriginID    *uuid.UUID
	Amount      decimal.Decimal
	Date        time.Time
	Description string
	CategoryID  *uuid.UUID
	CreatedByID *uuid.UUID
	CreatedAt   time.Time
}

// NewCashTransaction creates a ledger entry
func NewCashTransaction(
	cashType CashType,
	origin CashOrigin,
	originID *uuid.UUID,
	amount decimal.Decimal,
	date time.Time,
	description string,
) (*CashTransaction, error) {
	if !cashType.IsValid() {
		return nil, shared.NewValidationError("invalid cash type %q", cashType)
	}
	if !origin.IsValid() {
		return nil, shared.NewValidationError("invalid cash origin %q", origin)
	}
	if amount.IsNegative() {
		return nil, shared.NewValidationError("cash amount cannot be negative")
	}
	return &CashTransaction{
		ID:          uuid.New(),
		Type:        cashType,
		Origin:      origin,
		OriginID:    originID,
		Amount:      amount,
		Date:        date,
		Description: description,
		CreatedAt:   time.Now(),
	}, nil
}

// NewReversal builds the compensating entry for tx. The original is never mutated.
func NewReversal(tx *CashTransaction, createdByID *uuid.UUID) *CashTransaction {
	originID := tx.ID
	now := time.Now()
	return &CashTransaction{
		ID:          uuid.New(),
		Type:        tx.Type.Opposite(),
		Origin:      CashOriginManual,
		OriginID:    &originID,
		Amount:      tx.Amount,
		Date:        now,
		Description: ReversalPrefix + tx.Description,
		CategoryID:  tx.CategoryID,
		CreatedByID: createdByID,
		CreatedAt:   now,
	}
}

// SignedAmount returns amount for IN and -amount for OUT
func (tx *CashTransaction) SignedAmount() decimal.Decimal {
	if tx.Type == CashTypeOut {
		return tx.Amount.Neg()
	}
	return tx.Amount
}

// IsTwinOf reports whether other records the same movement of money:
// same direction, origin and amount. Origin ids are compared by the caller.
func (tx *CashTransaction) IsTwinOf(other *CashTransaction) bool {
	return tx.ID != other.ID &&
		tx.Type == other.Type &&
		tx.Origin == other.Origin &&
		tx.Amount.Equal(other.Amount)
}
