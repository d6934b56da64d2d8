package consistency

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

// CorrectionRequest selects a correction and the rows it targets.
// Which ids are required depends on the action.
type CorrectionRequest struct {
	Action        Action
	TransactionID *uuid.UUID
	MovementID    *uuid.UUID
	FromOrderID   *uuid.UUID
	ToOrderID     *uuid.UUID
	SalesOrderID  *uuid.UUID
	ReceivableID  *uuid.UUID
	ActorID       *uuid.UUID
}

// CorrectionResult reports what a correction changed
type CorrectionResult struct {
	Action   Action  `json:"action"`
	Outcome  Outcome `json:"outcome"`
	Affected int64   `json:"affected"`
	Details  any     `json:"details,omitempty"`
}

// CancelReceivablesDetails lists the receivables moved to CANCELED
type CancelReceivablesDetails struct {
	ReceivableIDs []uuid.UUID `json:"receivableIds"`
}

// ReceivableStatusDetails is the final status of one receivable
type ReceivableStatusDetails struct {
	ReceivableID uuid.UUID                `json:"receivableId"`
	Status       finance.ReceivableStatus `json:"status"`
}

// CashReversalDetails links a transaction to its reversal
type CashReversalDetails struct {
	TransactionID uuid.UUID `json:"transactionId"`
	ReversalID    uuid.UUID `json:"reversalId"`
}

// CashDeletionDetails names the deleted entry and the twin that stays
type CashDeletionDetails struct {
	DeletedID uuid.UUID `json:"deletedId"`
	TwinID    uuid.UUID `json:"twinId"`
}

// ExitDeletionDetails reports the quantity returned to stock
type ExitDeletionDetails struct {
	MovementID   uuid.UUID       `json:"movementId"`
	SalesOrderID uuid.UUID       `json:"salesOrderId"`
	ProductID    uuid.UUID       `json:"productId"`
	Restored     decimal.Decimal `json:"restored"`
	Balance      decimal.Decimal `json:"balance"`
}

// StockReversalDetails counts reversed and skipped exits
type StockReversalDetails struct {
	Reversed        int         `json:"reversed"`
	Skipped         int         `json:"skipped"`
	CompensationIDs []uuid.UUID `json:"compensationIds"`
}

// TransferDetails lists the receivables moved between orders
type TransferDetails struct {
	FromOrderID   uuid.UUID   `json:"dePedidoId"`
	ToOrderID     uuid.UUID   `json:"paraPedidoId"`
	ReceivableIDs []uuid.UUID `json:"receivableIds"`
}

// BackfilledOrder lists the receivables created for one order
type BackfilledOrder struct {
	SalesOrderID  uuid.UUID   `json:"salesOrderId"`
	ReceivableIDs []uuid.UUID `json:"receivableIds"`
}

// BackfillDetails lists every order that received receivables
type BackfillDetails struct {
	Orders []BackfilledOrder `json:"orders"`
}

// RevertCancellationDetails reports what reversing a cancellation touched
type RevertCancellationDetails struct {
	SalesOrderID          uuid.UUID `json:"salesOrderId"`
	ReceivablesReopened   int       `json:"receivablesReopened"`
	ReceivablesCreated    int       `json:"receivablesCreated"`
	StockMovementsCreated int       `json:"stockMovementsCreated"`
	StockSkipped          bool      `json:"stockSkipped"`
}

type correctionHandler func(ctx context.Context, req CorrectionRequest) (*CorrectionResult, error)

// CorrectionService applies compensating corrections. Each correction runs
// in one unit of work, checks its preconditions before writing, and reports
// ALREADY_APPLIED when the target state already holds.
type CorrectionService struct {
	scope          ledger.TransactionScope
	reads          ledger.Repositories
	logger         *zap.Logger
	metrics        *telemetry.ConsistencyMetrics
	defaultDueDays int
	locker         ledger.Locker
	handlers       map[Action]correctionHandler
}

// correctionLockTTL bounds how long a crashed replica can block a target
const correctionLockTTL = 30 * time.Second

// NewCorrectionService creates a CorrectionService.
// reads is used to select work that is then applied one unit of work at a time.
func NewCorrectionService(
	scope ledger.TransactionScope,
	reads ledger.Repositories,
	logger *zap.Logger,
	metrics *telemetry.ConsistencyMetrics,
	defaultDueDays int,
) *CorrectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultDueDays <= 0 {
		defaultDueDays = DefaultDueDays
	}
	s := &CorrectionService{
		scope:          scope,
		reads:          reads,
		logger:         logger,
		metrics:        metrics,
		defaultDueDays: defaultDueDays,
	}
	s.handlers = map[Action]correctionHandler{
		ActionCancelMisplacedReceivables: s.cancelMisplacedReceivables,
		ActionCancelReceivable:           s.cancelReceivable,
		ActionReverseCash:                s.reverseCash,
		ActionDeleteCash:                 s.deleteCash,
		ActionDeleteDuplicateExit:        s.deleteDuplicateExit,
		ActionReverseStaleExits:          s.reverseStaleExits,
		ActionTransferReceivables:        s.transferReceivables,
		ActionBackfillReceivables:        s.backfillReceivables,
		ActionRevertCancellation:         s.revertCancellation,
	}
	return s
}

// WithLocker serializes corrections on the same target across replicas.
// Without a locker only the database transaction guards concurrent calls.
func (s *CorrectionService) WithLocker(locker ledger.Locker) *CorrectionService {
	s.locker = locker
	return s
}

// lockKey names what req mutates: its target row, or the whole action for
// bulk corrections
func lockKey(req CorrectionRequest) string {
	for _, id := range []*uuid.UUID{req.TransactionID, req.MovementID, req.ReceivableID, req.FromOrderID, req.SalesOrderID} {
		if id != nil {
			return "correction:" + id.String()
		}
	}
	return "correction:" + string(req.Action)
}

func (s *CorrectionService) obtain(ctx context.Context, req CorrectionRequest) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	key := lockKey(req)
	release, err := s.locker.Obtain(ctx, key, correctionLockTTL)
	if errors.Is(err, ledger.ErrLockHeld) {
		return nil, shared.NewBadRequestError("another correction on %s is in progress", strings.TrimPrefix(key, "correction:"))
	}
	if err != nil {
		return nil, err
	}
	return release, nil
}

// Execute runs the correction registered for req.Action
func (s *CorrectionService) Execute(ctx context.Context, req CorrectionRequest) (*CorrectionResult, error) {
	handler, ok := s.handlers[req.Action]
	if !ok {
		return nil, shared.NewValidationError("unknown acao %q", req.Action)
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "correction", string(req.Action),
		telemetry.SpanAttrAction, string(req.Action),
	)
	defer span.End()
	for _, target := range []struct {
		key string
		id  *uuid.UUID
	}{
		{telemetry.SpanAttrCashTxID, req.TransactionID},
		{telemetry.SpanAttrMovementID, req.MovementID},
		{telemetry.SpanAttrReceivableID, req.ReceivableID},
		{telemetry.SpanAttrOrderID, req.SalesOrderID},
	} {
		if target.id != nil {
			telemetry.SetAttributes(span, target.key, target.id.String())
		}
	}

	start := time.Now()
	result, err := s.locked(ctx, req, handler)
	elapsed := time.Since(start)
	if err != nil {
		telemetry.RecordError(span, err)
		code := shared.CodeOf(err)
		s.metrics.RecordCorrection(ctx, string(req.Action), code, elapsed)
		if code == shared.CodeInternal {
			s.logger.Error("correction failed", zap.String("action", string(req.Action)), zap.Error(err))
		} else {
			s.logger.Warn("correction rejected",
				zap.String("action", string(req.Action)),
				zap.String("code", code),
				zap.String("reason", err.Error()),
			)
		}
		return nil, err
	}

	result.Action = req.Action
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOutcome, string(result.Outcome),
		telemetry.SpanAttrAffected, result.Affected,
	)
	s.metrics.RecordCorrection(ctx, string(req.Action), string(result.Outcome), elapsed)
	s.logger.Info("correction completed",
		zap.String("action", string(req.Action)),
		zap.String("outcome", string(result.Outcome)),
		zap.Int64("affected", result.Affected),
		zap.Duration("elapsed", elapsed),
	)
	return result, nil
}

func (s *CorrectionService) locked(ctx context.Context, req CorrectionRequest, handler correctionHandler) (*CorrectionResult, error) {
	release, err := s.obtain(ctx, req)
	if err != nil {
		return nil, err
	}
	defer release()
	return handler(ctx, req)
}

func applied(affected int64, details any) *CorrectionResult {
	return &CorrectionResult{Outcome: OutcomeApplied, Affected: affected, Details: details}
}

func alreadyApplied(details any) *CorrectionResult {
	return &CorrectionResult{Outcome: OutcomeAlreadyApplied, Details: details}
}

func requireID(id *uuid.UUID, field string) (uuid.UUID, error) {
	if id == nil || *id == uuid.Nil {
		return uuid.Nil, shared.NewValidationError("%s is required", field)
	}
	return *id, nil
}

func (s *CorrectionService) cancelMisplacedReceivables(ctx context.Context, _ CorrectionRequest) (*CorrectionResult, error) {
	var result *CorrectionResult
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		orders, err := repos.SalesOrders().FindByStatus(ctx, shared.DateRange{}, trade.MisplacedReceivableStatuses...)
		if err != nil {
			return err
		}
		receivables, err := repos.Receivables().FindBySalesOrderIDs(ctx, orderIDs(orders))
		if err != nil {
			return err
		}
		open := make([]uuid.UUID, 0, len(receivables))
		for _, ar := range receivables {
			if ar.IsOpen() {
				open = append(open, ar.ID)
			}
		}
		if len(open) == 0 {
			result = alreadyApplied(CancelReceivablesDetails{ReceivableIDs: []uuid.UUID{}})
			return nil
		}

		n, err := repos.Receivables().CancelOpenByIDs(ctx, open)
		if err != nil {
			return err
		}
		result = applied(n, CancelReceivablesDetails{ReceivableIDs: open})
		return nil
	})
	return result, err
}

func (s *CorrectionService) cancelReceivable(ctx context.Context, req CorrectionRequest) (*CorrectionResult, error) {
	id, err := requireID(req.ReceivableID, "arId")
	if err != nil {
		return nil, err
	}

	var result *CorrectionResult
	err = s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		ar, err := repos.Receivables().FindByID(ctx, id)
		if err != nil {
			return err
		}
		switch ar.Status {
		case finance.ReceivableStatusCanceled:
			result = alreadyApplied(ReceivableStatusDetails{ReceivableID: id, Status: ar.Status})
			return nil
		case finance.ReceivableStatusReceived:
			return shared.NewBadRequestError("receivable %s is already received and cannot be canceled", id)
		case finance.ReceivableStatusOpen:
		}

		n, err := repos.Receivables().CancelOpenByIDs(ctx, []uuid.UUID{id})
		if err != nil {
			return err
		}
		result = applied(n, ReceivableStatusDetails{ReceivableID: id, Status: finance.ReceivableStatusCanceled})
		return nil
	})
	return result, err
}

func (s *CorrectionService) reverseCash(ctx context.Context, req CorrectionRequest) (*CorrectionResult, error) {
	id, err := requireID(req.TransactionID, "transactionId")
	if err != nil {
		return nil, err
	}

	var result *CorrectionResult
	err = s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		tx, err := repos.CashTransactions().FindByID(ctx, id)
		if err != nil {
			return err
		}
		existing, err := repos.CashTransactions().FindReversalOf(ctx, id)
		if err != nil {
			return err
		}
		if existing != nil {
			result = alreadyApplied(CashReversalDetails{TransactionID: id, ReversalID: existing.ID})
			return nil
		}

		reversal := finance.NewReversal(tx, req.ActorID)
		if err := repos.CashTransactions().Create(ctx, reversal); err != nil {
			return err
		}
		result = applied(1, CashReversalDetails{TransactionID: id, ReversalID: reversal.ID})
		return nil
	})
	return result, err
}

func (s *CorrectionService) deleteCash(ctx context.Context, req CorrectionRequest) (*CorrectionResult, error) {
	id, err := requireID(req.TransactionID, "transactionId")
	if err != nil {
		return nil, err
	}

	var result *CorrectionResult
	err = s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		tx, err := repos.CashTransactions().FindByID(ctx, id)
		if err != nil {
			return err
		}
		twin, err := findCashTwin(ctx, repos, tx)
		if err != nil {
			return err
		}
		if twin == nil {
			return shared.NewBadRequestError("cash transaction %s has no duplicate, reverse it instead", id)
		}

		if err := repos.CashTransactions().Delete(ctx, id); err != nil {
			return err
		}
		result = applied(1, CashDeletionDetails{DeletedID: id, TwinID: twin.ID})
		return nil
	})
	return result, err
}

// findCashTwin returns another entry recording the same movement of money.
// A twin shares the origin id, or for AR entries traces to the same order.
// An entry without an origin id has no provable twin.
func findCashTwin(ctx context.Context, repos ledger.Repositories, tx *finance.CashTransaction) (*finance.CashTransaction, error) {
	if tx.OriginID == nil {
		return nil, nil
	}

	same, err := repos.CashTransactions().FindByOrigin(ctx, tx.Origin, []uuid.UUID{*tx.OriginID})
	if err != nil {
		return nil, err
	}
	if twin := firstTwin(tx, same); twin != nil {
		return twin, nil
	}

	if tx.Origin != finance.CashOriginAR {
		return nil, nil
	}
	ar, err := repos.Receivables().FindByID(ctx, *tx.OriginID)
	if shared.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if ar.SalesOrderID == nil {
		return nil, nil
	}
	siblings, err := repos.Receivables().FindBySalesOrder(ctx, *ar.SalesOrderID)
	if err != nil {
		return nil, err
	}
	siblingIDs := make([]uuid.UUID, 0, len(siblings))
	for _, sibling := range siblings {
		if sibling.ID != ar.ID {
			siblingIDs = append(siblingIDs, sibling.ID)
		}
	}
	related, err := repos.CashTransactions().FindByOrigin(ctx, finance.CashOriginAR, siblingIDs)
	if err != nil {
		return nil, err
	}
	return firstTwin(tx, related), nil
}

func firstTwin(tx *finance.CashTransaction, candidates []finance.CashTransaction) *finance.CashTransaction {
	for i := range candidates {
		if tx.IsTwinOf(&candidates[i]) {
			return &candidates[i]
		}
	}
	return nil
}

func (s *CorrectionService) deleteDuplicateExit(ctx context.Context, req CorrectionRequest) (*CorrectionResult, error) {
	id, err := requireID(req.MovementID, "movementId")
	if err != nil {
		return nil, err
	}

	var result *CorrectionResult
	err = s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		movement, err := repos.StockMovements().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if !movement.IsSaleExit() || movement.ReferenceID == nil {
			return shared.NewBadRequestError("stock movement %s is not a sale exit", id)
		}
		group, err := repos.StockMovements().FindSaleExitsByGroup(ctx, *movement.ReferenceID, movement.ProductID)
		if err != nil {
			return err
		}
		if len(group) < 2 {
			return shared.NewBadRequestError("stock movement %s is the only exit of product %s for order %s",
				id, movement.ProductID, *movement.ReferenceID)
		}
		balance, err := repos.StockBalances().FindByProduct(ctx, movement.ProductID)
		if shared.IsNotFound(err) {
			return shared.NewBadRequestError("product %s has no stock balance", movement.ProductID)
		}
		if err != nil {
			return err
		}

		if err := repos.StockMovements().Delete(ctx, id); err != nil {
			return err
		}
		if err := repos.StockBalances().Increase(ctx, movement.ProductID, movement.Quantity); err != nil {
			return err
		}
		result = applied(1, ExitDeletionDetails{
			MovementID:   id,
			SalesOrderID: *movement.ReferenceID,
			ProductID:    movement.ProductID,
			Restored:     movement.Quantity,
			Balance:      balance.Quantity.Add(movement.Quantity),
		})
		return nil
	})
	return result, err
}

// reverseStaleExits compensates every exit of a canceled sale, one unit of
// work per exit. Exits that already carry a compensation are skipped.
func (s *CorrectionService) reverseStaleExits(ctx context.Context, req CorrectionRequest) (*CorrectionResult, error) {
	stale, err := canceledSaleExits(ctx, s.reads, shared.DateRange{})
	if err != nil {
		return nil, err
	}

	details := StockReversalDetails{CompensationIDs: make([]uuid.UUID, 0, len(stale))}
	for i := range stale {
		exit := stale[i]
		var compensation *inventory.StockMovement
		err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
			existing, err := repos.StockMovements().FindCompensations(ctx, []uuid.UUID{exit.ID})
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				return nil
			}

			exitID := exit.ID
			movement, err := inventory.NewStockMovement(exit.ProductID, inventory.MovementTypeIn, exit.Quantity,
				inventory.ReferenceTypeManual, &exitID,
				fmt.Sprintf("Reversal of sale exit %s for canceled order %s", exit.ID, *exit.ReferenceID))
			if err != nil {
				return err
			}
			movement.CreatedByID = req.ActorID
			if err := repos.StockMovements().Create(ctx, movement); err != nil {
				return err
			}
			if err := repos.StockBalances().Increase(ctx, exit.ProductID, exit.Quantity); err != nil {
				return err
			}
			compensation = movement
			return nil
		})
		if err != nil {
			s.logger.Error("stock reversal stopped",
				zap.String("movement_id", exit.ID.String()),
				zap.Int("reversed", details.Reversed),
				zap.Error(err),
			)
			return nil, err
		}
		if compensation == nil {
			details.Skipped++
			continue
		}
		details.Reversed++
		details.CompensationIDs = append(details.CompensationIDs, compensation.ID)
	}

	if details.Reversed == 0 {
		return alreadyApplied(details), nil
	}
	return applied(int64(details.Reversed), details), nil
}

func (s *CorrectionService) transferReceivables(ctx context.Context, req CorrectionRequest) (*CorrectionResult, error) {
	fromID, err := requireID(req.FromOrderID, "dePedidoId")
	if err != nil {
		return nil, err
	}
	toID, err := requireID(req.ToOrderID, "paraPedidoId")
	if err != nil {
		return nil, err
	}
	if fromID == toID {
		return nil, shared.NewBadRequestError("source and destination orders must differ")
	}

	var result *CorrectionResult
	err = s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		from, err := repos.SalesOrders().FindByID(ctx, fromID)
		if err != nil {
			return err
		}
		to, err := repos.SalesOrders().FindByID(ctx, toID)
		if err != nil {
			return err
		}
		if from.Status != trade.OrderStatusCanceled {
			return shared.NewBadRequestError("source order %s must be CANCELED, it is %s", fromID, from.Status)
		}
		if to.Status != trade.OrderStatusDelivered {
			return shared.NewBadRequestError("destination order %s must be DELIVERED, it is %s", toID, to.Status)
		}

		held, err := repos.Receivables().FindBySalesOrder(ctx, fromID, finance.TransferableStatuses...)
		if err != nil {
			return err
		}
		if len(held) == 0 {
			return shared.NewBadRequestError("source order %s has no open or canceled receivables", fromID)
		}

		n, err := repos.Receivables().ReassignOrder(ctx, fromID, toID, finance.TransferableStatuses)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, 0, len(held))
		for _, ar := range held {
			ids = append(ids, ar.ID)
		}
		result = applied(n, TransferDetails{FromOrderID: fromID, ToOrderID: toID, ReceivableIDs: ids})
		return nil
	})
	return result, err
}

func (s *CorrectionService) backfillReceivables(ctx context.Context, req CorrectionRequest) (*CorrectionResult, error) {
	var result *CorrectionResult
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		var orders []trade.SalesOrder
		if req.SalesOrderID != nil {
			order, err := repos.SalesOrders().FindByID(ctx, *req.SalesOrderID)
			if err != nil {
				return err
			}
			if order.Status != trade.OrderStatusDelivered {
				return shared.NewBadRequestError("order %s must be DELIVERED, it is %s", order.ID, order.Status)
			}
			if order.IsBonification {
				return shared.NewBadRequestError("order %s is a bonification and generates no receivables", order.ID)
			}
			existing, err := repos.Receivables().FindBySalesOrder(ctx, order.ID)
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				result = alreadyApplied(BackfillDetails{Orders: []BackfilledOrder{}})
				return nil
			}
			orders = []trade.SalesOrder{*order}
		} else {
			missing, err := ordersMissingReceivables(ctx, repos, shared.DateRange{})
			if err != nil {
				return err
			}
			orders = missing
		}

		if len(orders) == 0 {
			result = alreadyApplied(BackfillDetails{Orders: []BackfilledOrder{}})
			return nil
		}

		details := BackfillDetails{Orders: make([]BackfilledOrder, 0, len(orders))}
		var created int64
		for i := range orders {
			ids, err := s.backfillOrder(ctx, repos, &orders[i], req.ActorID)
			if err != nil {
				return err
			}
			created += int64(len(ids))
			details.Orders = append(details.Orders, BackfilledOrder{SalesOrderID: orders[i].ID, ReceivableIDs: ids})
		}
		result = applied(created, details)
		return nil
	})
	return result, err
}

// backfillOrder creates and stores the receivables order should have
func (s *CorrectionService) backfillOrder(ctx context.Context, repos ledger.Repositories, order *trade.SalesOrder, actorID *uuid.UUID) ([]uuid.UUID, error) {
	methods, err := resolvePaymentMethods(ctx, repos.PaymentMethods(), []trade.SalesOrder{*order})
	if err != nil {
		return nil, err
	}
	rows, err := buildBackfill(order, methods, s.defaultDueDays, actorID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, ar := range rows {
		if err := repos.Receivables().Save(ctx, ar); err != nil {
			return nil, err
		}
		ids = append(ids, ar.ID)
	}
	return ids, nil
}

func (s *CorrectionService) revertCancellation(ctx context.Context, req CorrectionRequest) (*CorrectionResult, error) {
	id, err := requireID(req.SalesOrderID, "salesOrderId")
	if err != nil {
		return nil, err
	}

	var result *CorrectionResult
	err = s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		order, err := repos.SalesOrders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		details := RevertCancellationDetails{SalesOrderID: id}
		switch order.Status {
		case trade.OrderStatusDelivered:
			// Already reverted. Receivables still missing are backfilled, stock is left alone.
			details.StockSkipped = true
			linked, err := repos.Receivables().FindBySalesOrder(ctx, id)
			if err != nil {
				return err
			}
			if len(linked) > 0 || order.IsBonification {
				result = alreadyApplied(details)
				return nil
			}
			created, err := s.backfillOrder(ctx, repos, order, req.ActorID)
			if err != nil {
				return err
			}
			details.ReceivablesCreated = len(created)
			result = applied(int64(details.ReceivablesCreated), details)
			return nil
		case trade.OrderStatusDraft, trade.OrderStatusConfirmed:
			return shared.NewBadRequestError("only canceled orders can have their cancellation reversed, order %s is %s", id, order.Status)
		case trade.OrderStatusCanceled:
		}

		if err := order.RevertCancellation(); err != nil {
			return err
		}
		if err := repos.SalesOrders().UpdateStatus(ctx, id, order.Status); err != nil {
			return err
		}

		// Receivables: reopen canceled rows, otherwise backfill when none remain
		held, err := repos.Receivables().FindBySalesOrder(ctx, id, finance.TransferableStatuses...)
		if err != nil {
			return err
		}
		for i := range held {
			ar := &held[i]
			if ar.Status != finance.ReceivableStatusCanceled {
				continue
			}
			if err := ar.Reopen(); err != nil {
				return err
			}
			if err := repos.Receivables().Save(ctx, ar); err != nil {
				return err
			}
			details.ReceivablesReopened++
		}
		if details.ReceivablesReopened == 0 && len(held) == 0 && !order.IsBonification {
			created, err := s.backfillOrder(ctx, repos, order, req.ActorID)
			if err != nil {
				return err
			}
			details.ReceivablesCreated = len(created)
		}

		// Stock: debit again only when no uncompensated sale exit survives for the order
		exits, err := repos.StockMovements().CountUncompensatedSaleExits(ctx, id)
		if err != nil {
			return err
		}
		if exits > 0 {
			details.StockSkipped = true
		} else {
			for _, item := range order.PhysicalItems() {
				if err := repos.StockBalances().Decrease(ctx, item.ProductID, item.Quantity); err != nil {
					return err
				}
				orderID := id
				movement, err := inventory.NewStockMovement(item.ProductID, inventory.MovementTypeOut, item.Quantity,
					inventory.ReferenceTypeSale, &orderID, fmt.Sprintf("Cancellation of order %s reversed", id))
				if err != nil {
					return err
				}
				movement.CreatedByID = req.ActorID
				if err := repos.StockMovements().Create(ctx, movement); err != nil {
					return err
				}
				details.StockMovementsCreated++
			}
		}

		affected := int64(1 + details.ReceivablesReopened + details.ReceivablesCreated + details.StockMovementsCreated)
		result = applied(affected, details)
		return nil
	})
	return result, err
}
