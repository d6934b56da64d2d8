package inventory

import (
	"context"

	"github.com/erp/consistency/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockMovementRepository defines the interface for the stock movement log
type StockMovementRepository interface {
	// FindByID finds one movement
	FindByID(ctx context.Context, id uuid.UUID) (*StockMovement, error)

	// FindSaleExits returns OUT/SALE movements created in rng, oldest first
	FindSaleExits(ctx context.Context, rng shared.DateRange) ([]StockMovement, error)

	// FindSaleExitsByGroup returns the OUT/SALE movements of one (order, product) pair
	FindSaleExitsByGroup(ctx context.Context, salesOrderID, productID uuid.UUID) ([]StockMovement, error)

	// CountUncompensatedSaleExits counts OUT/SALE movements referencing the
	// order that have no compensating manual IN movement
	CountUncompensatedSaleExits(ctx context.Context, salesOrderID uuid.UUID) (int64, error)

	// FindCompensations returns the manual IN movements referencing any of exitIDs
	FindCompensations(ctx context.Context, exitIDs []uuid.UUID) ([]StockMovement, error)

	// FindByProduct returns all movements of a product
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]StockMovement, error)

	// SumByProduct returns the signed sum of movements per product
	SumByProduct(ctx context.Context) (map[uuid.UUID]decimal.Decimal, error)

	// Create appends a movement
	Create(ctx context.Context, movement *StockMovement) error

	// Delete removes a movement
	Delete(ctx context.Context, id uuid.UUID) error
}

// StockBalanceRepository defines the interface for materialized balances.
// Increase and Decrease are single read-modify-write statements and must run
// in the same unit of work as the movement they account for.
type StockBalanceRepository interface {
	// FindByProduct returns the balance row, NOT_FOUND if absent
	FindByProduct(ctx context.Context, productID uuid.UUID) (*StockBalance, error)

	// FindAll returns every balance row
	FindAll(ctx context.Context) ([]StockBalance, error)

	// Increase adds quantity, creating the row when absent
	Increase(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal) error

	// Decrease subtracts quantity when the balance covers it, otherwise it
	// fails with an insufficient stock error
	Decrease(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal) error
}
