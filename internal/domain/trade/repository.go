package trade

import (
	"context"

	"github.com/erp/consistency/internal/domain/shared"
	"github.com/google/uuid"
)

// SalesOrderRepository defines the interface for sales order persistence.
// Orders are always loaded with their items and installment plan.
type SalesOrderRepository interface {
	// FindByID finds an order by ID, NOT_FOUND when absent
	FindByID(ctx context.Context, id uuid.UUID) (*SalesOrder, error)

	// FindByIDs finds orders by IDs. Missing ids are silently skipped
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]SalesOrder, error)

	// FindByStatus finds orders in any of the given statuses whose sale date falls in rng
	FindByStatus(ctx context.Context, rng shared.DateRange, statuses ...OrderStatus) ([]SalesOrder, error)

	// Save creates or updates an order header
	Save(ctx context.Context, order *SalesOrder) error

	// UpdateStatus sets the status of one order
	UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) error
}

// SalesReturnRepository defines the interface for sales return persistence
type SalesReturnRepository interface {
	// FindByID finds a return with its items
	FindByID(ctx context.Context, id uuid.UUID) (*SalesReturn, error)

	// FindBySalesOrder finds all returns of an order, oldest first
	FindBySalesOrder(ctx context.Context, salesOrderID uuid.UUID) ([]SalesReturn, error)

	// Save creates or updates a return and its items
	Save(ctx context.Context, ret *SalesReturn) error
}
