package returns

import (
	"context"
	"fmt"

	"github.com/erp/consistency/internal/application/ledger"
	"github.com/erp/consistency/internal/domain/finance"
	"github.com/erp/consistency/internal/domain/inventory"
	"github.com/erp/consistency/internal/domain/shared"
	"github.com/erp/consistency/internal/domain/trade"
	"github.com/erp/consistency/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service creates and processes sales returns
type Service struct {
	scope   ledger.TransactionScope
	reads   ledger.Repositories
	logger  *zap.Logger
	metrics *telemetry.ConsistencyMetrics
}

// NewService creates a new returns Service
func NewService(
	scope ledger.TransactionScope,
	reads ledger.Repositories,
	logger *zap.Logger,
	metrics *telemetry.ConsistencyMetrics,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{scope: scope, reads: reads, logger: logger, metrics: metrics}
}

// Create validates a return against the order, then processes it in the
// same unit of work: stock comes back in and the refund is allocated.
func (s *Service) Create(ctx context.Context, salesOrderID uuid.UUID, req CreateReturnRequest, actorID *uuid.UUID) (*ProcessedReturnResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "returns", "Create",
		telemetry.SpanAttrOrderID, salesOrderID.String(),
	)
	defer span.End()

	lines := make([]trade.ReturnLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = trade.ReturnLine{SalesItemID: item.SalesItemID, Quantity: item.Quantity}
	}

	var (
		ret         *trade.SalesReturn
		adjustments []finance.RefundDeduction
		credit      *finance.CustomerCredit
	)
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		order, err := repos.SalesOrders().FindByID(ctx, salesOrderID)
		if err != nil {
			return err
		}
		prior, err := repos.SalesReturns().FindBySalesOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		ret, err = trade.NewSalesReturn(order, prior, lines, trade.RefundType(req.RefundType), req.Reason, actorID)
		if err != nil {
			return err
		}
		if err := repos.SalesReturns().Save(ctx, ret); err != nil {
			return err
		}

		if err := restock(ctx, repos, ret); err != nil {
			return err
		}

		adjustments, credit, err = allocateRefund(ctx, repos, ret)
		if err != nil {
			return err
		}

		if err := ret.MarkProcessed(); err != nil {
			return err
		}
		return repos.SalesReturns().Save(ctx, ret)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		if shared.CodeOf(err) == shared.CodeInternal {
			s.logger.Error("return failed", zap.String("sales_order_id", salesOrderID.String()), zap.Error(err))
		}
		return nil, err
	}

	s.metrics.RecordReturn(ctx, string(ret.RefundType), credit != nil)
	telemetry.SetAttributes(span, telemetry.SpanAttrAmount, ret.Total.String())
	s.logger.Info("return processed",
		zap.String("sales_order_id", salesOrderID.String()),
		zap.String("return_id", ret.ID.String()),
		zap.String("refund_type", string(ret.RefundType)),
		zap.String("total", ret.Total.StringFixed(2)),
		zap.Int("receivables_adjusted", len(adjustments)),
		zap.Bool("credit_issued", credit != nil),
	)

	resp := &ProcessedReturnResponse{
		Return:      ToReturnResponse(ret),
		Adjustments: make([]AdjustmentResponse, len(adjustments)),
		Credit:      toCreditResponse(credit),
	}
	for i, d := range adjustments {
		resp.Adjustments[i] = toAdjustmentResponse(d)
	}
	return resp, nil
}

// List returns the returns recorded against an order, oldest first
func (s *Service) List(ctx context.Context, salesOrderID uuid.UUID) ([]ReturnResponse, error) {
	if _, err := s.reads.SalesOrders().FindByID(ctx, salesOrderID); err != nil {
		return nil, err
	}
	found, err := s.reads.SalesReturns().FindBySalesOrder(ctx, salesOrderID)
	if err != nil {
		return nil, err
	}
	out := make([]ReturnResponse, len(found))
	for i := range found {
		out[i] = ToReturnResponse(&found[i])
	}
	return out, nil
}

// restock puts every returned physical item back into stock
func restock(ctx context.Context, repos ledger.Repositories, ret *trade.SalesReturn) error {
	returnID := ret.ID
	for _, item := range ret.PhysicalItems() {
		movement, err := inventory.NewStockMovement(item.ProductID, inventory.MovementTypeIn, item.Quantity,
			inventory.ReferenceTypeReturn, &returnID, fmt.Sprintf("Return %s of order %s", ret.ID, ret.SalesOrderID))
		if err != nil {
			return err
		}
		movement.CreatedByID = ret.CreatedByID
		if err := repos.StockMovements().Create(ctx, movement); err != nil {
			return err
		}
		if err := repos.StockBalances().Increase(ctx, item.ProductID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// allocateRefund sends the return total where its refund type says.
// ACCOUNT_RECEIVABLE drains the order's open receivables earliest due first
// and credits whatever is left beyond one cent. CREDIT credits the full total.
func allocateRefund(ctx context.Context, repos ledger.Repositories, ret *trade.SalesReturn) ([]finance.RefundDeduction, *finance.CustomerCredit, error) {
	remaining := ret.Total
	var adjustments []finance.RefundDeduction

	if ret.RefundType == trade.RefundTypeAccountReceivable {
		open, err := repos.Receivables().FindBySalesOrder(ctx, ret.SalesOrderID, finance.ReceivableStatusOpen)
		if err != nil {
			return nil, nil, err
		}
		adjustments, remaining, err = refundWaterfall(open, remaining, "return "+ret.ID.String())
		if err != nil {
			return nil, nil, err
		}
		// Deductions are positional, open[:len(adjustments)] are the touched rows
		for i := range adjustments {
			if err := repos.Receivables().Save(ctx, &open[i]); err != nil {
				return nil, nil, err
			}
		}
		if !shared.ExceedsByMoreThanCent(remaining, decimal.Zero) {
			return adjustments, nil, nil
		}
	}

	returnID := ret.ID
	credit, err := finance.NewCustomerCredit(ret.CustomerID, &returnID, remaining)
	if err != nil {
		return nil, nil, err
	}
	if err := repos.Credits().Create(ctx, credit); err != nil {
		return nil, nil, err
	}
	return adjustments, credit, nil
}

// refundWaterfall applies remaining to receivables in the order given, which
// must be earliest due date first. It mutates the receivables it touches and
// returns one deduction per touched row plus what is left unabsorbed.
func refundWaterfall(receivables []finance.AccountReceivable, remaining decimal.Decimal, reference string) ([]finance.RefundDeduction, decimal.Decimal, error) {
	deductions := make([]finance.RefundDeduction, 0, len(receivables))
	for i := range receivables {
		if !remaining.IsPositive() {
			break
		}
		d, err := receivables[i].ApplyRefund(remaining, reference)
		if err != nil {
			return nil, remaining, err
		}
		deductions = append(deductions, d)
		remaining = remaining.Sub(d.Deducted)
	}
	return deductions, remaining, nil
}
