package finance

import (
	"context"

	"github.com/erp/consistency/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountReceivableRepository defines the interface for receivable persistence
type AccountReceivableRepository interface {
	// FindByID finds a receivable by ID
	FindByID(ctx context.Context, id uuid.UUID) (*AccountReceivable, error)

	// FindByIDs finds receivables by IDs. Missing ids are skipped
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]AccountReceivable, error)

	// FindBySalesOrder finds the receivables of one order, ordered by due date
	// then creation. No statuses means every status.
	FindBySalesOrder(ctx context.Context, salesOrderID uuid.UUID, statuses ...ReceivableStatus) ([]AccountReceivable, error)

	// FindBySalesOrderIDs finds the receivables linked to any of the orders
	FindBySalesOrderIDs(ctx context.Context, salesOrderIDs []uuid.UUID) ([]AccountReceivable, error)

	// FindLinkedToOrders finds every receivable that has a sales order
	FindLinkedToOrders(ctx context.Context) ([]AccountReceivable, error)

	// Save creates or updates a receivable
	Save(ctx context.Context, ar *AccountReceivable) error

	// CancelOpenByIDs moves the OPEN rows among ids to CANCELED and returns how many changed.
	// Rows in any other status are left untouched.
	CancelOpenByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)

	// ReassignOrder moves the receivables of one order in the given statuses to
	// another order and forces them OPEN
	ReassignOrder(ctx context.Context, fromOrderID, toOrderID uuid.UUID, statuses []ReceivableStatus) (int64, error)
}

// AccountPayableRepository defines the interface for payable lookups
type AccountPayableRepository interface {
	// FindByIDs finds payables with their payment sources
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]AccountPayable, error)
}

// CashTransactionRepository defines the interface for the cash ledger
type CashTransactionRepository interface {
	// FindByID finds one entry
	FindByID(ctx context.Context, id uuid.UUID) (*CashTransaction, error)

	// FindChronological returns entries in rng ordered by date, creation time, then id
	FindChronological(ctx context.Context, rng shared.DateRange) ([]CashTransaction, error)

	// FindByOrigin returns entries of the origin whose origin id is one of originIDs
	FindByOrigin(ctx context.Context, origin CashOrigin, originIDs []uuid.UUID) ([]CashTransaction, error)

	// FindReversalOf returns the reversal entry pointing at id, if one exists
	FindReversalOf(ctx context.Context, id uuid.UUID) (*CashTransaction, error)

	// Create appends an entry
	Create(ctx context.Context, tx *CashTransaction) error

	// Delete removes an entry
	Delete(ctx context.Context, id uuid.UUID) error
}

// CustomerCreditRepository defines the interface for customer credit persistence
type CustomerCreditRepository interface {
	// FindBySalesReturn finds credits generated by a return
	FindBySalesReturn(ctx context.Context, salesReturnID uuid.UUID) ([]CustomerCredit, error)

	// Create stores a new credit
	Create(ctx context.Context, credit *CustomerCredit) error
}

// PaymentMethodRepository defines the interface for payment method lookups
type PaymentMethodRepository interface {
	// FindByIDs finds payment methods. Missing ids are skipped
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]PaymentMethod, error)
}
