package ledger

import (
	"context"

	"github.com/erp/consistency/internal/domain/finance"
	"github.com/erp/consistency/internal/domain/inventory"
	"github.com/erp/consistency/internal/domain/trade"
)

// TransactionScope groups ledger mutations into one atomic unit of work.
// All repository operations performed through the Repositories handed to fn
// are committed together or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories gives access to every ledger the engine reasons about.
// Within TransactionScope.Execute all of them share the same transaction.
type Repositories interface {
	SalesOrders() trade.SalesOrderRepository
	SalesReturns() trade.SalesReturnRepository
	Receivables() finance.AccountReceivableRepository
	Payables() finance.AccountPayableRepository
	CashTransactions() finance.CashTransactionRepository
	Credits() finance.CustomerCreditRepository
	PaymentMethods() finance.PaymentMethodRepository
	StockMovements() inventory.StockMovementRepository
	StockBalances() inventory.StockBalanceRepository
}
