package persistence

import (
	"context"

	"github.com/erp/consistency/internal/application/ledger"
	"github.com/erp/consistency/internal/domain/finance"
	"github.com/erp/consistency/internal/domain/inventory"
	"github.com/erp/consistency/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos ledger.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormRepositories(tx))
	})
}

// GormRepositories exposes every ledger repository over one *gorm.DB, which
// is either the connection pool or a transaction.
type GormRepositories struct {
	db *gorm.DB
}

// NewGormRepositories creates the repository set bound to db.
func NewGormRepositories(db *gorm.DB) *GormRepositories {
	return &GormRepositories{db: db}
}

// SalesOrders returns the sales order repository
func (r *GormRepositories) SalesOrders() trade.SalesOrderRepository {
	return NewGormSalesOrderRepository(r.db)
}

// SalesReturns returns the sales return repository
func (r *GormRepositories) SalesReturns() trade.SalesReturnRepository {
	return NewGormSalesReturnRepository(r.db)
}

// Receivables returns the account receivable repository
func (r *GormRepositories) Receivables() finance.AccountReceivableRepository {
	return NewGormAccountReceivableRepository(r.db)
}

// Payables returns the account payable repository
func (r *GormRepositories) Payables() finance.AccountPayableRepository {
	return NewGormAccountPayableRepository(r.db)
}

// CashTransactions returns the cash ledger repository
func (r *GormRepositories) CashTransactions() finance.CashTransactionRepository {
	return NewGormCashTransactionRepository(r.db)
}

// Credits returns the customer credit repository
func (r *GormRepositories) Credits() finance.CustomerCreditRepository {
	return NewGormCustomerCreditRepository(r.db)
}

// PaymentMethods returns the payment method lookup
func (r *GormRepositories) PaymentMethods() finance.PaymentMethodRepository {
	return NewGormPaymentMethodRepository(r.db)
}

// StockMovements returns the stock movement repository
func (r *GormRepositories) StockMovements() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.db)
}

// StockBalances returns the stock balance repository
func (r *GormRepositories) StockBalances() inventory.StockBalanceRepository {
	return NewGormStockBalanceRepository(r.db)
}

// Ensure GormTransactionScope implements TransactionScope
var _ ledger.TransactionScope = (*GormTransactionScope)(nil)

// Ensure GormRepositories implements Repositories
var _ ledger.Repositories = (*GormRepositories)(nil)
