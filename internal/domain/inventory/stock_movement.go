package inventory

import (
	"time"

	"github.com/erp/consistency/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType is the direction of a stock movement
type MovementType string

const (
	MovementTypeIn     MovementType = "IN"
	MovementTypeOut    MovementType = "OUT"
	MovementTypeAdjust MovementType = "ADJUST" // Write-off, reduces stock
)

// IsValid checks if the type is known
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjust:
		return true
	}
	return false
}

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// ReferenceType identifies what produced a stock movement
type ReferenceType string

const (
	ReferenceTypeSale     ReferenceType = "SALE"
	ReferenceTypePurchase ReferenceType = "PURCHASE"
	ReferenceTypeReturn   ReferenceType = "RETURN"
	ReferenceTypeManual   ReferenceType = "MANUAL"
)

// IsValid checks if the reference type is known
func (r ReferenceType) IsValid() bool {
	switch r {
	case ReferenceTypeSale, ReferenceTypePurchase, ReferenceTypeReturn, ReferenceTypeManual:
		return true
	}
	return false
}

// String returns the string representation of ReferenceType
func (r ReferenceType) String() string {
	return string(r)
}

// StockMovement is an append-only stock log entry. Quantity is always
// positive; the sign comes from the type.
type StockMovement struct {
	ID            uuid.UUID
	ProductID     uuid.UUID
	Type          MovementType
	Quantity      decimal.Decimal
	ReferenceType ReferenceType
	ReferenceID   *uuid.UUID
	Notes         string
	CreatedByID   *uuid.UUID
	CreatedAt     time.Time
}

// NewStockMovement creates a movement
func NewStockMovement(
	productID uuid.UUID,
	movementType MovementType,
	quantity decimal.Decimal,
	referenceType ReferenceType,
	referenceID *uuid.UUID,
	notes string,
) (*StockMovement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("product is required")
	}
	if !movementType.IsValid() {
		return nil, shared.NewValidationError("invalid movement type %q", movementType)
	}
	if !referenceType.IsValid() {
		return nil, shared.NewValidationError("invalid reference type %q", referenceType)
	}
	if !quantity.IsPositive() {
		return nil, shared.NewValidationError("movement quantity must be positive")
	}
	return &StockMovement{
		ID:            uuid.New(),
		ProductID:     productID,
		Type:          movementType,
		Quantity:      quantity,
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
		Notes:         notes,
		CreatedAt:     time.Now(),
	}, nil
}

// SignedDelta returns the effect of the movement on the balance
func (m *StockMovement) SignedDelta() decimal.Decimal {
	switch m.Type {
	case MovementTypeIn:
		return m.Quantity
	case MovementTypeOut, MovementTypeAdjust:
		return m.Quantity.Neg()
	}
	return decimal.Zero
}

// IsSaleExit returns true for OUT movements produced by a sale
func (m *StockMovement) IsSaleExit() bool {
	return m.Type == MovementTypeOut && m.ReferenceType == ReferenceTypeSale
}

// IsCompensationOf returns true if m is the manual IN that reverses exit
func (m *StockMovement) IsCompensationOf(exit *StockMovement) bool {
	return m.Type == MovementTypeIn &&
		m.ReferenceType == ReferenceTypeManual &&
		m.ReferenceID != nil &&
		*m.ReferenceID == exit.ID
}

// SumDeltas returns the signed sum of movements
func SumDeltas(movements []StockMovement) decimal.Decimal {
	total := decimal.Zero
	for i := range movements {
		total = total.Add(movements[i].SignedDelta())
	}
	return total
}
