package inventory

import (
	"time"

	"github.com/erp/consistency/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockBalance is the materialized on-hand quantity of one product.
// It must equal the signed sum of the product's movements.
type StockBalance struct {
	ProductID uuid.UUID
	Quantity  decimal.Decimal
	UpdatedAt time.Time
}

// NewStockBalance creates an empty balance row
func NewStockBalance(productID uuid.UUID) *StockBalance {
	return &StockBalance{
		ProductID: productID,
		Quantity:  decimal.Zero,
		UpdatedAt: time.Now(),
	}
}

// CanWithdraw reports whether quantity can leave stock
func (b *StockBalance) CanWithdraw(quantity decimal.Decimal) bool {
	return b.Quantity.GreaterThanOrEqual(quantity)
}

// Withdraw removes quantity, failing when the balance is too small
func (b *StockBalance) Withdraw(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewValidationError("quantity must be positive")
	}
	if !b.CanWithdraw(quantity) {
		return shared.NewBadRequestError(
			"insufficient stock for product %s: available %s, requested %s",
			b.ProductID, b.Quantity.String(), quantity.String(),
		)
	}
	b.Quantity = b.Quantity.Sub(quantity)
	b.UpdatedAt = time.Now()
	return nil
}

// Deposit adds quantity
func (b *StockBalance) Deposit(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewValidationError("quantity must be positive")
	}
	b.Quantity = b.Quantity.Add(quantity)
	b.UpdatedAt = time.Now()
	return nil
}
