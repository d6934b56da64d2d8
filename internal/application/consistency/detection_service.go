package consistency

import (
	"context"
	"sort"
	"time"

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

// Report is the typed result of one detector
type Report interface {
	// FindingCount is the number of inconsistencies the report carries
	FindingCount() int
}

// Detector runs one read-only check over the ledgers
type Detector func(ctx context.Context, rng shared.DateRange) (Report, error)

// DetectionService runs the read-only consistency checks.
// Detectors never mutate and never fail for an empty result.
type DetectionService struct {
	repos     ledger.Repositories
	logger    *zap.Logger
	metrics   *telemetry.ConsistencyMetrics
	detectors map[Selector]Detector
}

// NewDetectionService creates a DetectionService over read repositories
func NewDetectionService(repos ledger.Repositories, logger *zap.Logger, metrics *telemetry.ConsistencyMetrics) *DetectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &DetectionService{
		repos:   repos,
		logger:  logger,
		metrics: metrics,
	}
	s.detectors = map[Selector]Detector{
		SelectorMisplacedReceivables: func(ctx context.Context, rng shared.DateRange) (Report, error) {
			return s.MisplacedReceivables(ctx, rng)
		},
		SelectorCash: func(ctx context.Context, rng shared.DateRange) (Report, error) {
			return s.Cash(ctx, rng)
		},
		SelectorOrdersWithoutReceivable: func(ctx context.Context, rng shared.DateRange) (Report, error) {
			return s.OrdersWithoutReceivable(ctx, rng)
		},
		SelectorCanceledWithReceivables: func(ctx context.Context, rng shared.DateRange) (Report, error) {
			return s.CanceledWithReceivables(ctx, rng)
		},
		SelectorStaleSaleExits: func(ctx context.Context, rng shared.DateRange) (Report, error) {
			return s.StaleSaleExits(ctx, rng)
		},
		SelectorDuplicateStockExits: func(ctx context.Context, rng shared.DateRange) (Report, error) {
			return s.DuplicateStockExits(ctx, rng)
		},
		SelectorCanceledOrders: func(ctx context.Context, rng shared.DateRange) (Report, error) {
			return s.CanceledOrders(ctx, rng)
		},
		SelectorBalanceDrift: func(ctx context.Context, _ shared.DateRange) (Report, error) {
			return s.BalanceDrift(ctx)
		},
	}
	return s
}

// Detectors returns the registry keyed by selector
func (s *DetectionService) Detectors() map[Selector]Detector {
	registry := make(map[Selector]Detector, len(s.detectors))
	for k, v := range s.detectors {
		registry[k] = v
	}
	return registry
}

// Detect runs the detector registered for selector
func (s *DetectionService) Detect(ctx context.Context, selector Selector, rng shared.DateRange) (Report, error) {
	detector, ok := s.detectors[selector]
	if !ok {
		return nil, shared.NewValidationError("unknown tipo %q", selector)
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "detection", string(selector),
		telemetry.SpanAttrSelector, string(selector),
	)
	defer span.End()

	start := time.Now()
	report, err := detector(ctx, rng)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("detection failed", zap.String("selector", string(selector)), zap.Error(err))
		return nil, err
	}

	findings := report.FindingCount()
	telemetry.SetAttributes(span, telemetry.SpanAttrFindings, findings)
	s.metrics.RecordFindings(ctx, string(selector), findings)
	s.logger.Info("detection completed",
		zap.String("selector", string(selector)),
		zap.Int("findings", findings),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}

// MisplacedReceivables finds receivables linked to orders that are not delivered
func (s *DetectionService) MisplacedReceivables(ctx context.Context, rng shared.DateRange) (*MisplacedReceivablesReport, error) {
	orders, err := s.repos.SalesOrders().FindByStatus(ctx, rng, trade.MisplacedReceivableStatuses...)
	if err != nil {
		return nil, err
	}
	byID := indexOrders(orders)
	receivables, err := s.repos.Receivables().FindBySalesOrderIDs(ctx, orderIDs(orders))
	if err != nil {
		return nil, err
	}

	report := &MisplacedReceivablesReport{
		Total: decimal.Zero,
		Items: make([]MisplacedReceivable, 0, len(receivables)),
	}
	breakdown := make(map[trade.OrderStatus]*StatusBreakdown, len(trade.MisplacedReceivableStatuses))
	for _, status := range trade.MisplacedReceivableStatuses {
		breakdown[status] = &StatusBreakdown{Status: status, Amount: decimal.Zero}
	}

	for _, ar := range receivables {
		order := byID[*ar.SalesOrderID]
		report.Items = append(report.Items, MisplacedReceivable{
			ReceivableID:     ar.ID,
			SalesOrderID:     order.ID,
			CustomerID:       ar.CustomerID,
			OrderStatus:      order.Status,
			ReceivableStatus: ar.Status,
			Amount:           ar.Amount,
			DueDate:          ar.DueDate,
		})
		report.Count++
		report.Total = report.Total.Add(ar.Amount)
		if ar.IsOpen() {
			report.OpenCount++
		}
		if b, ok := breakdown[order.Status]; ok {
			b.Count++
			b.Amount = b.Amount.Add(ar.Amount)
		}
	}

	report.ByStatus = make([]StatusBreakdown, 0, len(breakdown))
	for _, status := range trade.MisplacedReceivableStatuses {
		report.ByStatus = append(report.ByStatus, *breakdown[status])
	}
	return report, nil
}

// cashLedger is the cash ledger in rng with every row it points at resolved
type cashLedger struct {
	opening     decimal.Decimal
	txs         []finance.CashTransaction
	receivables map[uuid.UUID]finance.AccountReceivable
	payables    map[uuid.UUID]finance.AccountPayable
	orders      map[uuid.UUID]trade.SalesOrder
}

// orderOf returns the order an AR-origin entry traces to
func (l *cashLedger) orderOf(tx *finance.CashTransaction) (*trade.SalesOrder, bool) {
	if tx.Origin != finance.CashOriginAR || tx.OriginID == nil {
		return nil, false
	}
	ar, ok := l.receivables[*tx.OriginID]
	if !ok || ar.SalesOrderID == nil {
		return nil, false
	}
	order, ok := l.orders[*ar.SalesOrderID]
	if !ok {
		return nil, false
	}
	return &order, true
}

func (s *DetectionService) loadCashLedger(ctx context.Context, rng shared.DateRange) (*cashLedger, error) {
	txs, err := s.repos.CashTransactions().FindChronological(ctx, rng)
	if err != nil {
		return nil, err
	}

	l := &cashLedger{opening: decimal.Zero, txs: txs}
	if rng.From != nil {
		before := rng.From.Add(-time.Nanosecond)
		prior, err := s.repos.CashTransactions().FindChronological(ctx, shared.DateRange{To: &before})
		if err != nil {
			return nil, err
		}
		for i := range prior {
			l.opening = l.opening.Add(prior[i].SignedAmount())
		}
	}

	var arIDs, apIDs []uuid.UUID
	for _, tx := range txs {
		if tx.OriginID == nil {
			continue
		}
		switch tx.Origin {
		case finance.CashOriginAR:
			arIDs = append(arIDs, *tx.OriginID)
		case finance.CashOriginAP:
			apIDs = append(apIDs, *tx.OriginID)
		case finance.CashOriginManual:
		}
	}

	receivables, err := s.repos.Receivables().FindByIDs(ctx, uniqueIDs(arIDs))
	if err != nil {
		return nil, err
	}
	l.receivables = make(map[uuid.UUID]finance.AccountReceivable, len(receivables))
	var salesOrderIDs []uuid.UUID
	for _, ar := range receivables {
		l.receivables[ar.ID] = ar
		if ar.SalesOrderID != nil {
			salesOrderIDs = append(salesOrderIDs, *ar.SalesOrderID)
		}
	}

	orders, err := s.repos.SalesOrders().FindByIDs(ctx, uniqueIDs(salesOrderIDs))
	if err != nil {
		return nil, err
	}
	l.orders = indexOrders(orders)

	payables, err := s.repos.Payables().FindByIDs(ctx, uniqueIDs(apIDs))
	if err != nil {
		return nil, err
	}
	l.payables = make(map[uuid.UUID]finance.AccountPayable, len(payables))
	for _, ap := range payables {
		l.payables[ap.ID] = ap
	}
	return l, nil
}

// Cash combines the reconciliation with both duplicate receipt views,
// loading the ledger once
func (s *DetectionService) Cash(ctx context.Context, rng shared.DateRange) (*CashReport, error) {
	l, err := s.loadCashLedger(ctx, rng)
	if err != nil {
		return nil, err
	}
	return &CashReport{
		Reconciliation:       reconcile(l),
		DuplicateReceipts:    receiptsByOrder(l),
		DuplicateSettlements: receiptsByReceivable(l),
	}, nil
}

// ReconcileCash computes the running balance over the ledger in rng
func (s *DetectionService) ReconcileCash(ctx context.Context, rng shared.DateRange) (*CashReconciliation, error) {
	l, err := s.loadCashLedger(ctx, rng)
	if err != nil {
		return nil, err
	}
	rec := reconcile(l)
	return &rec, nil
}

// DuplicateReceipts groups AR inflows by the order they trace to
func (s *DetectionService) DuplicateReceipts(ctx context.Context, rng shared.DateRange) ([]ReceiptGroup, error) {
	l, err := s.loadCashLedger(ctx, rng)
	if err != nil {
		return nil, err
	}
	return receiptsByOrder(l), nil
}

// DuplicateSettlements groups AR inflows by the receivable they settle
func (s *DetectionService) DuplicateSettlements(ctx context.Context, rng shared.DateRange) ([]ReceiptGroup, error) {
	l, err := s.loadCashLedger(ctx, rng)
	if err != nil {
		return nil, err
	}
	return receiptsByReceivable(l), nil
}

func reconcile(l *cashLedger) CashReconciliation {
	rec := CashReconciliation{
		OpeningBalance: l.opening,
		TotalIn:        decimal.Zero,
		TotalOut:       decimal.Zero,
		Lines:          make([]CashLine, 0, len(l.txs)),
	}
	running := l.opening

	for i := range l.txs {
		tx := &l.txs[i]
		running = running.Add(tx.SignedAmount())
		if tx.Type == finance.CashTypeIn {
			rec.TotalIn = rec.TotalIn.Add(tx.Amount)
		} else {
			rec.TotalOut = rec.TotalOut.Add(tx.Amount)
		}

		line := CashLine{
			ID:             tx.ID,
			Type:           tx.Type,
			Origin:         tx.Origin,
			OriginID:       tx.OriginID,
			Amount:         tx.Amount,
			Date:           tx.Date,
			Description:    tx.Description,
			RunningBalance: running,
		}

		if tx.Type == finance.CashTypeOut && tx.Origin == finance.CashOriginAP && tx.OriginID != nil {
			if ap, ok := l.payables[*tx.OriginID]; ok && ap.IsInvestorFunded() {
				line.Flags = append(line.Flags, FlagInvestorFundedPayable)
				rec.InvestorFunded++
			}
		}
		if order, ok := l.orderOf(tx); ok {
			id := order.ID
			line.SalesOrderID = &id
			if tx.Type == finance.CashTypeIn && order.Status == trade.OrderStatusCanceled {
				line.Flags = append(line.Flags, FlagCanceledOrderReceipt)
				rec.CanceledReceipt++
			}
		}
		rec.Lines = append(rec.Lines, line)
	}

	rec.FinalBalance = running
	rec.DerivedBalance = l.opening.Add(rec.TotalIn).Sub(rec.TotalOut)
	rec.SelfCheckOK = rec.DerivedBalance.Equal(rec.FinalBalance)
	return rec
}

// receiptGrouper accumulates receipt groups in first-seen order
type receiptGrouper struct {
	keys   []uuid.UUID
	groups map[uuid.UUID]*ReceiptGroup
}

func newReceiptGrouper() *receiptGrouper {
	return &receiptGrouper{groups: make(map[uuid.UUID]*ReceiptGroup)}
}

func (g *receiptGrouper) add(key uuid.UUID, tx *finance.CashTransaction, init func() *ReceiptGroup) {
	group, ok := g.groups[key]
	if !ok {
		group = init()
		group.Received = decimal.Zero
		g.groups[key] = group
		g.keys = append(g.keys, key)
	}
	group.Count++
	group.Received = group.Received.Add(tx.Amount)
	group.TransactionIDs = append(group.TransactionIDs, tx.ID)
}

// repeated returns the groups with more than one receipt, judged against expected
func (g *receiptGrouper) repeated() []ReceiptGroup {
	result := make([]ReceiptGroup, 0)
	for _, key := range g.keys {
		group := g.groups[key]
		if group.Count < 2 {
			continue
		}
		group.Verdict = VerdictOK
		if shared.ExceedsByMoreThanCent(group.Received, group.Expected) {
			group.Verdict = VerdictPossibleDuplicate
		}
		result = append(result, *group)
	}
	return result
}

func isReceipt(tx *finance.CashTransaction) bool {
	return tx.Type == finance.CashTypeIn && tx.Origin == finance.CashOriginAR && tx.OriginID != nil
}

func receiptsByOrder(l *cashLedger) []ReceiptGroup {
	g := newReceiptGrouper()
	for i := range l.txs {
		tx := &l.txs[i]
		if !isReceipt(tx) {
			continue
		}
		order, ok := l.orderOf(tx)
		if !ok {
			continue
		}
		g.add(order.ID, tx, func() *ReceiptGroup {
			id := order.ID
			return &ReceiptGroup{SalesOrderID: &id, Expected: order.Total}
		})
	}
	return g.repeated()
}

func receiptsByReceivable(l *cashLedger) []ReceiptGroup {
	g := newReceiptGrouper()
	for i := range l.txs {
		tx := &l.txs[i]
		if !isReceipt(tx) {
			continue
		}
		ar, ok := l.receivables[*tx.OriginID]
		if !ok {
			continue
		}
		g.add(ar.ID, tx, func() *ReceiptGroup {
			arID := ar.ID
			return &ReceiptGroup{ReceivableID: &arID, SalesOrderID: ar.SalesOrderID, Expected: ar.Amount}
		})
	}
	return g.repeated()
}

// OrdersWithoutReceivable finds delivered, non-bonification orders with no AR at all
func (s *DetectionService) OrdersWithoutReceivable(ctx context.Context, rng shared.DateRange) (*OrdersWithoutReceivableReport, error) {
	candidates, err := ordersMissingReceivables(ctx, s.repos, rng)
	if err != nil {
		return nil, err
	}
	methods, err := resolvePaymentMethods(ctx, s.repos.PaymentMethods(), candidates)
	if err != nil {
		return nil, err
	}

	report := &OrdersWithoutReceivableReport{
		Total:  decimal.Zero,
		Orders: make([]OrderWithoutReceivable, 0, len(candidates)),
	}
	for i := range candidates {
		order := &candidates[i]
		entry := OrderWithoutReceivable{
			SalesOrderID: order.ID,
			CustomerID:   order.CustomerID,
			Total:        order.Total,
			SaleDate:     order.SaleDate,
			Installments: make([]PlanInstallment, 0, len(order.Installments)),
		}
		for _, inst := range order.Installments {
			planned := PlanInstallment{
				Sequence:        inst.Sequence,
				DueDate:         inst.DueDate,
				Amount:          inst.Amount,
				Description:     inst.Description,
				PaymentMethodID: inst.PaymentMethodID,
			}
			if inst.PaymentMethodID != nil {
				if method, ok := methods[*inst.PaymentMethodID]; ok {
					planned.PaymentMethodName = method.Name
				} else {
					planned.UnresolvedPaymentMethod = true
					entry.HasUnresolvedPaymentMethod = true
				}
			}
			entry.Installments = append(entry.Installments, planned)
		}
		report.Orders = append(report.Orders, entry)
		report.Count++
		report.Total = report.Total.Add(order.Total)
	}
	return report, nil
}

// ordersMissingReceivables returns delivered, non-bonification orders in rng with zero AR rows
func ordersMissingReceivables(ctx context.Context, repos ledger.Repositories, rng shared.DateRange) ([]trade.SalesOrder, error) {
	delivered, err := repos.SalesOrders().FindByStatus(ctx, rng, trade.OrderStatusDelivered)
	if err != nil {
		return nil, err
	}
	eligible := make([]trade.SalesOrder, 0, len(delivered))
	for _, order := range delivered {
		if !order.IsBonification {
			eligible = append(eligible, order)
		}
	}

	receivables, err := repos.Receivables().FindBySalesOrderIDs(ctx, orderIDs(eligible))
	if err != nil {
		return nil, err
	}
	billed := make(map[uuid.UUID]struct{}, len(receivables))
	for _, ar := range receivables {
		billed[*ar.SalesOrderID] = struct{}{}
	}

	missing := make([]trade.SalesOrder, 0)
	for _, order := range eligible {
		if _, ok := billed[order.ID]; !ok {
			missing = append(missing, order)
		}
	}
	return missing, nil
}

// CanceledWithReceivables finds canceled orders still holding OPEN or CANCELED AR
func (s *DetectionService) CanceledWithReceivables(ctx context.Context, rng shared.DateRange) (*CanceledWithReceivablesReport, error) {
	orders, err := s.repos.SalesOrders().FindByStatus(ctx, rng, trade.OrderStatusCanceled)
	if err != nil {
		return nil, err
	}
	receivables, err := s.repos.Receivables().FindBySalesOrderIDs(ctx, orderIDs(orders))
	if err != nil {
		return nil, err
	}

	held := make(map[uuid.UUID][]finance.AccountReceivable)
	for _, ar := range receivables {
		if isTransferable(ar.Status) {
			held[*ar.SalesOrderID] = append(held[*ar.SalesOrderID], ar)
		}
	}

	report := &CanceledWithReceivablesReport{
		Total:  decimal.Zero,
		Orders: make([]CanceledOrderWithReceivables, 0, len(held)),
	}
	for _, order := range orders {
		rows, ok := held[order.ID]
		if !ok {
			continue
		}
		entry := CanceledOrderWithReceivables{
			SalesOrderID:    order.ID,
			CustomerID:      order.CustomerID,
			Total:           order.Total,
			SaleDate:        order.SaleDate,
			Receivables:     make([]ReceivableRef, 0, len(rows)),
			ReceivableTotal: finance.SumReceivables(rows),
		}
		for _, ar := range rows {
			entry.Receivables = append(entry.Receivables, ReceivableRef{
				ID:      ar.ID,
				Amount:  ar.Amount,
				Status:  ar.Status,
				DueDate: ar.DueDate,
			})
		}
		report.Orders = append(report.Orders, entry)
		report.Count++
		report.Total = report.Total.Add(entry.ReceivableTotal)
	}
	return report, nil
}

func isTransferable(status finance.ReceivableStatus) bool {
	for _, s := range finance.TransferableStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// StaleSaleExits finds sale exits of canceled orders that were never compensated
func (s *DetectionService) StaleSaleExits(ctx context.Context, rng shared.DateRange) (*StaleSaleExitsReport, error) {
	stale, err := staleSaleExits(ctx, s.repos, rng)
	if err != nil {
		return nil, err
	}
	report := &StaleSaleExitsReport{
		Quantity: decimal.Zero,
		Items:    make([]ExitRef, 0, len(stale)),
	}
	for i := range stale {
		report.Items = append(report.Items, exitRef(&stale[i]))
		report.Count++
		report.Quantity = report.Quantity.Add(stale[i].Quantity)
	}
	return report, nil
}

// canceledSaleExits returns the sale exits in rng whose order is CANCELED,
// compensated or not
func canceledSaleExits(ctx context.Context, repos ledger.Repositories, rng shared.DateRange) ([]inventory.StockMovement, error) {
	exits, err := repos.StockMovements().FindSaleExits(ctx, rng)
	if err != nil {
		return nil, err
	}
	var refs []uuid.UUID
	for _, m := range exits {
		if m.ReferenceID != nil {
			refs = append(refs, *m.ReferenceID)
		}
	}
	orders, err := repos.SalesOrders().FindByIDs(ctx, uniqueIDs(refs))
	if err != nil {
		return nil, err
	}
	byID := indexOrders(orders)

	canceled := make([]inventory.StockMovement, 0)
	for _, m := range exits {
		if m.ReferenceID == nil {
			continue
		}
		if order, ok := byID[*m.ReferenceID]; ok && order.Status == trade.OrderStatusCanceled {
			canceled = append(canceled, m)
		}
	}
	return canceled, nil
}

// staleSaleExits returns the canceled-sale exits without a compensating movement
func staleSaleExits(ctx context.Context, repos ledger.Repositories, rng shared.DateRange) ([]inventory.StockMovement, error) {
	candidates, err := canceledSaleExits(ctx, repos, rng)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(candidates))
	for _, m := range candidates {
		ids = append(ids, m.ID)
	}
	compensations, err := repos.StockMovements().FindCompensations(ctx, ids)
	if err != nil {
		return nil, err
	}
	compensated := make(map[uuid.UUID]struct{}, len(compensations))
	for _, c := range compensations {
		compensated[*c.ReferenceID] = struct{}{}
	}

	stale := make([]inventory.StockMovement, 0, len(candidates))
	for _, m := range candidates {
		if _, ok := compensated[m.ID]; !ok {
			stale = append(stale, m)
		}
	}
	return stale, nil
}

type exitKey struct {
	order   uuid.UUID
	product uuid.UUID
}

// DuplicateStockExits groups sale exits by (order, product) and keeps groups with more than one row
func (s *DetectionService) DuplicateStockExits(ctx context.Context, rng shared.DateRange) (*DuplicateStockExitsReport, error) {
	exits, err := s.repos.StockMovements().FindSaleExits(ctx, rng)
	if err != nil {
		return nil, err
	}

	var keys []exitKey
	groups := make(map[exitKey]*DuplicateExitGroup)
	for i := range exits {
		m := &exits[i]
		if m.ReferenceID == nil {
			continue
		}
		key := exitKey{order: *m.ReferenceID, product: m.ProductID}
		group, ok := groups[key]
		if !ok {
			group = &DuplicateExitGroup{SalesOrderID: key.order, ProductID: key.product, TotalQuantity: decimal.Zero}
			groups[key] = group
			keys = append(keys, key)
		}
		group.Count++
		group.TotalQuantity = group.TotalQuantity.Add(m.Quantity)
		group.Movements = append(group.Movements, exitRef(m))
	}

	report := &DuplicateStockExitsReport{Groups: make([]DuplicateExitGroup, 0)}
	for _, key := range keys {
		if group := groups[key]; group.Count > 1 {
			report.Groups = append(report.Groups, *group)
			report.Count++
		}
	}
	return report, nil
}

// CanceledOrders lists every canceled order with its items and plan
func (s *DetectionService) CanceledOrders(ctx context.Context, rng shared.DateRange) (*CanceledOrdersReport, error) {
	orders, err := s.repos.SalesOrders().FindByStatus(ctx, rng, trade.OrderStatusCanceled)
	if err != nil {
		return nil, err
	}
	report := &CanceledOrdersReport{
		Total:  decimal.Zero,
		Orders: make([]CanceledOrderView, 0, len(orders)),
	}
	for _, order := range orders {
		report.Orders = append(report.Orders, CanceledOrderView{
			SalesOrderID:   order.ID,
			CustomerID:     order.CustomerID,
			Total:          order.Total,
			SaleDate:       order.SaleDate,
			IsBonification: order.IsBonification,
			Items:          order.Items,
			Installments:   order.Installments,
		})
		report.Count++
		report.Total = report.Total.Add(order.Total)
	}
	return report, nil
}

// BalanceDrift compares every stored balance with the signed sum of its movements
func (s *DetectionService) BalanceDrift(ctx context.Context) (*BalanceDriftReport, error) {
	balances, err := s.repos.StockBalances().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	sums, err := s.repos.StockMovements().SumByProduct(ctx)
	if err != nil {
		return nil, err
	}

	stored := make(map[uuid.UUID]decimal.Decimal, len(balances))
	for _, b := range balances {
		stored[b.ProductID] = b.Quantity
	}
	products := make([]uuid.UUID, 0, len(stored)+len(sums))
	for id := range stored {
		products = append(products, id)
	}
	for id := range sums {
		if _, ok := stored[id]; !ok {
			products = append(products, id)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].String() < products[j].String() })

	report := &BalanceDriftReport{Products: make([]BalanceDrift, 0)}
	for _, id := range products {
		balance := stored[id]
		sum := sums[id]
		if balance.Equal(sum) {
			continue
		}
		report.Products = append(report.Products, BalanceDrift{
			ProductID:   id,
			Balance:     balance,
			MovementSum: sum,
			Drift:       balance.Sub(sum),
		})
		report.Count++
	}
	return report, nil
}

// FindingCount implements Report
func (r *MisplacedReceivablesReport) FindingCount() int { return r.Count }

// FindingCount counts flagged lines, suspected duplicates and a failed self-check
func (r *CashReport) FindingCount() int {
	n := r.Reconciliation.InvestorFunded + r.Reconciliation.CanceledReceipt
	for _, g := range r.DuplicateReceipts {
		if g.Verdict == VerdictPossibleDuplicate {
			n++
		}
	}
	for _, g := range r.DuplicateSettlements {
		if g.Verdict == VerdictPossibleDuplicate {
			n++
		}
	}
	if !r.Reconciliation.SelfCheckOK {
		n++
	}
	return n
}

// FindingCount implements Report
func (r *OrdersWithoutReceivableReport) FindingCount() int { return r.Count }

// FindingCount implements Report
func (r *CanceledWithReceivablesReport) FindingCount() int { return r.Count }

// FindingCount implements Report
func (r *StaleSaleExitsReport) FindingCount() int { return r.Count }

// FindingCount implements Report
func (r *DuplicateStockExitsReport) FindingCount() int { return r.Count }

// FindingCount implements Report
func (r *CanceledOrdersReport) FindingCount() int { return r.Count }

// FindingCount implements Report
func (r *BalanceDriftReport) FindingCount() int { return r.Count }

func exitRef(m *inventory.StockMovement) ExitRef {
	ref := ExitRef{
		MovementID: m.ID,
		ProductID:  m.ProductID,
		Quantity:   m.Quantity,
		CreatedAt:  m.CreatedAt,
	}
	if m.ReferenceID != nil {
		ref.SalesOrderID = *m.ReferenceID
	}
	return ref
}

func indexOrders(orders []trade.SalesOrder) map[uuid.UUID]trade.SalesOrder {
	byID := make(map[uuid.UUID]trade.SalesOrder, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
	}
	return byID
}

func orderIDs(orders []trade.SalesOrder) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	return ids
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}
