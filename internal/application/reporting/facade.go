// Package reporting assembles operator-facing views on top of the detectors.
package reporting

import (
	"context"
	"time"

	"github.com/erp/consistency/internal/application/consistency"
	"github.com/erp/consistency/internal/domain/finance"
	"github.com/erp/consistency/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Facade is the read side used by the HTTP surface and the CLI
type Facade struct {
	detect *consistency.DetectionService
	logger *zap.Logger
	now    func() time.Time
}

// NewFacade creates a new reporting Facade
func NewFacade(detect *consistency.DetectionService, logger *zap.Logger) *Facade {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Facade{detect: detect, logger: logger, now: time.Now}
}

// Report runs the detector for selector and decorates the result where an
// operator view exists. Other selectors return the detector report as is.
func (f *Facade) Report(ctx context.Context, selector consistency.Selector, rng shared.DateRange) (any, error) {
	report, err := f.detect.Detect(ctx, selector, rng)
	if err != nil {
		return nil, err
	}
	switch r := report.(type) {
	case *consistency.MisplacedReceivablesReport:
		return groupMisplacedReceivables(r), nil
	case *consistency.DuplicateStockExitsReport:
		return groupDuplicateExits(r), nil
	}
	return report, nil
}

// Overview runs every detector and returns one headline each
func (f *Facade) Overview(ctx context.Context, rng shared.DateRange) (*Overview, error) {
	overview := &Overview{
		From:        rng.From,
		To:          rng.To,
		GeneratedAt: f.now(),
		Headlines:   make([]Headline, 0, len(consistency.AllSelectors)),
	}
	for _, selector := range consistency.AllSelectors {
		report, err := f.detect.Detect(ctx, selector, rng)
		if err != nil {
			return nil, err
		}
		headline := Headline{Selector: selector, Findings: report.FindingCount(), Amount: amountOf(report)}
		overview.TotalFindings += headline.Findings
		overview.Headlines = append(overview.Headlines, headline)
	}
	f.logger.Debug("overview built", zap.Int("findings", overview.TotalFindings))
	return overview, nil
}

// amountOf returns the money at stake in a report, nil for stock reports
func amountOf(report consistency.Report) *decimal.Decimal {
	var amount decimal.Decimal
	switch r := report.(type) {
	case *consistency.MisplacedReceivablesReport:
		amount = r.Total
	case *consistency.CashReport:
		amount = decimal.Zero
		for _, line := range r.Reconciliation.Flagged() {
			amount = amount.Add(line.Amount)
		}
	case *consistency.OrdersWithoutReceivableReport:
		amount = r.Total
	case *consistency.CanceledWithReceivablesReport:
		amount = r.Total
	case *consistency.CanceledOrdersReport:
		amount = r.Total
	default:
		return nil
	}
	return &amount
}

func groupMisplacedReceivables(r *consistency.MisplacedReceivablesReport) *MisplacedReceivablesView {
	view := &MisplacedReceivablesView{MisplacedReceivablesReport: r, ByOrder: []OrderReceivables{}}
	index := make(map[uuid.UUID]int)
	for _, item := range r.Items {
		i, ok := index[item.SalesOrderID]
		if !ok {
			i = len(view.ByOrder)
			index[item.SalesOrderID] = i
			view.ByOrder = append(view.ByOrder, OrderReceivables{
				SalesOrderID: item.SalesOrderID,
				OrderStatus:  item.OrderStatus,
				Amount:       decimal.Zero,
			})
		}
		group := &view.ByOrder[i]
		group.Count++
		group.Amount = group.Amount.Add(item.Amount)
		group.ReceivableIDs = append(group.ReceivableIDs, item.ReceivableID)
		if item.ReceivableStatus == finance.ReceivableStatusOpen {
			group.OpenCount++
		}
	}
	return view
}

func groupDuplicateExits(r *consistency.DuplicateStockExitsReport) *DuplicateStockExitsView {
	view := &DuplicateStockExitsView{DuplicateStockExitsReport: r, ByOrder: []OrderDuplicateExits{}}
	index := make(map[uuid.UUID]int)
	for _, g := range r.Groups {
		i, ok := index[g.SalesOrderID]
		if !ok {
			i = len(view.ByOrder)
			index[g.SalesOrderID] = i
			view.ByOrder = append(view.ByOrder, OrderDuplicateExits{SalesOrderID: g.SalesOrderID})
		}
		group := &view.ByOrder[i]
		group.Products = append(group.Products, g.ProductID)
		group.Extra += g.Count - 1
		for _, m := range g.Movements {
			group.MovementIDs = append(group.MovementIDs, m.MovementID)
		}
	}
	return view
}
