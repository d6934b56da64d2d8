package reporting

import (
	"time"

	"github.com/erp/consistency/internal/application/consistency"
	"github.com/erp/consistency/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderReceivables groups misplaced receivables of one order
type OrderReceivables struct {
	SalesOrderID  uuid.UUID         `json:"salesOrderId"`
	OrderStatus   trade.OrderStatus `json:"orderStatus"`
	Count         int               `json:"count"`
	OpenCount     int               `json:"openCount"`
	Amount        decimal.Decimal   `json:"amount"`
	ReceivableIDs []uuid.UUID       `json:"receivableIds"`
}

// MisplacedReceivablesView is the misplaced receivables report grouped by order
type MisplacedReceivablesView struct {
	*consistency.MisplacedReceivablesReport
	ByOrder []OrderReceivables `json:"byOrder"`
}

// OrderDuplicateExits groups duplicate exit groups of one order
type OrderDuplicateExits struct {
	SalesOrderID uuid.UUID   `json:"salesOrderId"`
	Products     []uuid.UUID `json:"products"`
	// Extra is how many exits exceed one per product
	Extra       int         `json:"extraMovements"`
	MovementIDs []uuid.UUID `json:"movementIds"`
}

// DuplicateStockExitsView is the duplicate exits report grouped by order
type DuplicateStockExitsView struct {
	*consistency.DuplicateStockExitsReport
	ByOrder []OrderDuplicateExits `json:"byOrder"`
}

// Headline summarizes one detection selector
type Headline struct {
	Selector consistency.Selector `json:"tipo"`
	Findings int                  `json:"findings"`
	Amount   *decimal.Decimal     `json:"amount,omitempty"`
}

// Overview is one headline per detection selector
type Overview struct {
	From          *time.Time `json:"from,omitempty"`
	To            *time.Time `json:"to,omitempty"`
	GeneratedAt   time.Time  `json:"generatedAt"`
	TotalFindings int        `json:"totalFindings"`
	Headlines     []Headline `json:"headlines"`
}
