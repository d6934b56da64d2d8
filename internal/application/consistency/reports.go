package consistency

import (
	"time"

	"github.com/erp/consistency/internal/domain/finance"
	"github.com/erp/consistency/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MisplacedReceivable is an AR linked to an order that is not delivered
type MisplacedReceivable struct {
	ReceivableID     uuid.UUID                `json:"receivableId"`
	SalesOrderID     uuid.UUID                `json:"salesOrderId"`
	CustomerID       uuid.UUID                `json:"customerId"`
	OrderStatus      trade.OrderStatus        `json:"orderStatus"`
	ReceivableStatus finance.ReceivableStatus `json:"receivableStatus"`
	Amount           decimal.Decimal          `json:"amount"`
	DueDate          time.Time                `json:"dueDate"`
}

// StatusBreakdown aggregates findings for one order status
type StatusBreakdown struct {
	Status trade.OrderStatus `json:"status"`
	Count  int               `json:"count"`
	Amount decimal.Decimal   `json:"amount"`
}

// MisplacedReceivablesReport is the result of the misplaced receivables detector
type MisplacedReceivablesReport struct {
	Count     int                   `json:"count"`
	OpenCount int                   `json:"openCount"`
	Total     decimal.Decimal       `json:"total"`
	ByStatus  []StatusBreakdown     `json:"byStatus"`
	Items     []MisplacedReceivable `json:"items"`
}

// CashFlag marks a suspicious ledger entry
type CashFlag string

// Cash flags
const (
	// FlagInvestorFundedPayable is a company outflow for a payable investors paid
	FlagInvestorFundedPayable CashFlag = "investor_funded_payable"
	// FlagCanceledOrderReceipt is an inflow for a receivable of a canceled order
	FlagCanceledOrderReceipt CashFlag = "canceled_order_receipt"
)

// CashLine is one ledger entry with the running balance after it
type CashLine struct {
	ID             uuid.UUID          `json:"id"`
	Type           finance.CashType   `json:"type"`
	Origin         finance.CashOrigin `json:"origin"`
	OriginID       *uuid.UUID         `json:"originId,omitempty"`
	Amount         decimal.Decimal    `json:"amount"`
	Date           time.Time          `json:"date"`
	Description    string             `json:"description"`
	RunningBalance decimal.Decimal    `json:"runningBalance"`
	Flags          []CashFlag         `json:"flags,omitempty"`
	SalesOrderID   *uuid.UUID         `json:"salesOrderId,omitempty"`
}

// CashReconciliation is the running balance of the cash ledger
type CashReconciliation struct {
	OpeningBalance  decimal.Decimal `json:"openingBalance"`
	TotalIn         decimal.Decimal `json:"totalIn"`
	TotalOut        decimal.Decimal `json:"totalOut"`
	DerivedBalance  decimal.Decimal `json:"derivedBalance"`
	FinalBalance    decimal.Decimal `json:"finalBalance"`
	SelfCheckOK     bool            `json:"selfCheckOk"`
	InvestorFunded  int             `json:"investorFundedCount"`
	CanceledReceipt int             `json:"canceledOrderReceiptCount"`
	Lines           []CashLine      `json:"lines"`
}

// Flagged returns the lines that carry at least one flag
func (r *CashReconciliation) Flagged() []CashLine {
	flagged := make([]CashLine, 0)
	for _, line := range r.Lines {
		if len(line.Flags) > 0 {
			flagged = append(flagged, line)
		}
	}
	return flagged
}

// Verdict classifies a group of repeated receipts
type Verdict string

// Receipt verdicts
const (
	VerdictPossibleDuplicate Verdict = "possible_duplicate"
	VerdictOK                Verdict = "ok (possibly an installment)"
)

// ReceiptGroup is a set of AR-origin inflows sharing an order or a receivable
type ReceiptGroup struct {
	SalesOrderID   *uuid.UUID      `json:"salesOrderId,omitempty"`
	ReceivableID   *uuid.UUID      `json:"receivableId,omitempty"`
	Expected       decimal.Decimal `json:"expected"`
	Received       decimal.Decimal `json:"received"`
	Count          int             `json:"count"`
	TransactionIDs []uuid.UUID     `json:"transactionIds"`
	Verdict        Verdict         `json:"verdict"`
}

// CashReport combines the reconciliation with both duplicate receipt views
type CashReport struct {
	Reconciliation       CashReconciliation `json:"reconciliation"`
	DuplicateReceipts    []ReceiptGroup     `json:"duplicateReceipts"`
	DuplicateSettlements []ReceiptGroup     `json:"duplicateSettlements"`
}

// PlanInstallment is an installment resolved against the payment method lookup
type PlanInstallment struct {
	Sequence                int             `json:"sequence"`
	DueDate                 time.Time       `json:"dueDate"`
	Amount                  decimal.Decimal `json:"amount"`
	Description             string          `json:"description"`
	PaymentMethodID         *uuid.UUID      `json:"paymentMethodId,omitempty"`
	PaymentMethodName       string          `json:"paymentMethodName,omitempty"`
	UnresolvedPaymentMethod bool            `json:"unresolvedPaymentMethod"`
}

// OrderWithoutReceivable is a delivered order that generated no AR
type OrderWithoutReceivable struct {
	SalesOrderID               uuid.UUID         `json:"salesOrderId"`
	CustomerID                 uuid.UUID         `json:"customerId"`
	Total                      decimal.Decimal   `json:"total"`
	SaleDate                   time.Time         `json:"saleDate"`
	Installments               []PlanInstallment `json:"installments"`
	HasUnresolvedPaymentMethod bool              `json:"hasUnresolvedPaymentMethod"`
}

// OrdersWithoutReceivableReport is the result of the missing receivables detector
type OrdersWithoutReceivableReport struct {
	Count  int                      `json:"count"`
	Total  decimal.Decimal          `json:"total"`
	Orders []OrderWithoutReceivable `json:"orders"`
}

// ReceivableRef summarizes one receivable
type ReceivableRef struct {
	ID      uuid.UUID                `json:"id"`
	Amount  decimal.Decimal          `json:"amount"`
	Status  finance.ReceivableStatus `json:"status"`
	DueDate time.Time                `json:"dueDate"`
}

// CanceledOrderWithReceivables is a transfer candidate
type CanceledOrderWithReceivables struct {
	SalesOrderID    uuid.UUID       `json:"salesOrderId"`
	CustomerID      uuid.UUID       `json:"customerId"`
	Total           decimal.Decimal `json:"total"`
	SaleDate        time.Time       `json:"saleDate"`
	Receivables     []ReceivableRef `json:"receivables"`
	ReceivableTotal decimal.Decimal `json:"receivableTotal"`
}

// CanceledWithReceivablesReport is the result of the canceled orders with AR detector
type CanceledWithReceivablesReport struct {
	Count  int                            `json:"count"`
	Total  decimal.Decimal                `json:"total"`
	Orders []CanceledOrderWithReceivables `json:"orders"`
}

// ExitRef summarizes one OUT/SALE movement
type ExitRef struct {
	MovementID   uuid.UUID       `json:"movementId"`
	SalesOrderID uuid.UUID       `json:"salesOrderId"`
	ProductID    uuid.UUID       `json:"productId"`
	Quantity     decimal.Decimal `json:"quantity"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// StaleSaleExitsReport lists un-reversed exits of canceled sales
type StaleSaleExitsReport struct {
	Count    int             `json:"count"`
	Quantity decimal.Decimal `json:"quantity"`
	Items    []ExitRef       `json:"items"`
}

// DuplicateExitGroup is one (order, product) pair with more than one exit
type DuplicateExitGroup struct {
	SalesOrderID  uuid.UUID       `json:"salesOrderId"`
	ProductID     uuid.UUID       `json:"productId"`
	Count         int             `json:"count"`
	TotalQuantity decimal.Decimal `json:"totalQuantity"`
	Movements     []ExitRef       `json:"movements"`
}

// DuplicateStockExitsReport is the result of the duplicate exits detector
type DuplicateStockExitsReport struct {
	Count  int                  `json:"count"`
	Groups []DuplicateExitGroup `json:"groups"`
}

// CanceledOrderView carries what the reverse cancellation correction needs
type CanceledOrderView struct {
	SalesOrderID   uuid.UUID           `json:"salesOrderId"`
	CustomerID     uuid.UUID           `json:"customerId"`
	Total          decimal.Decimal     `json:"total"`
	SaleDate       time.Time           `json:"saleDate"`
	IsBonification bool                `json:"isBonification"`
	Items          []trade.SalesItem   `json:"items"`
	Installments   []trade.Installment `json:"installments"`
}

// CanceledOrdersReport is the census of canceled orders
type CanceledOrdersReport struct {
	Count  int                 `json:"count"`
	Total  decimal.Decimal     `json:"total"`
	Orders []CanceledOrderView `json:"orders"`
}

// BalanceDrift is a product whose stored balance differs from its movements
type BalanceDrift struct {
	ProductID   uuid.UUID       `json:"productId"`
	Balance     decimal.Decimal `json:"balance"`
	MovementSum decimal.Decimal `json:"movementSum"`
	Drift       decimal.Decimal `json:"drift"`
}

// BalanceDriftReport is the result of the stock balance check
type BalanceDriftReport struct {
	Count    int            `json:"count"`
	Products []BalanceDrift `json:"products"`
}
