package consistency

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/consistency/internal/domain/finance"
	"github.com/erp/consistency/internal/domain/trade"
	"github.com/google/uuid"
)

// DefaultDueDays is how long after the sale a backfilled receivable without a plan falls due
const DefaultDueDays = 30

// resolvePaymentMethods loads the payment methods referenced by any installment of orders
func resolvePaymentMethods(ctx context.Context, repo finance.PaymentMethodRepository, orders []trade.SalesOrder) (map[uuid.UUID]finance.PaymentMethod, error) {
	var ids []uuid.UUID
	for _, order := range orders {
		for _, inst := range order.Installments {
			if inst.PaymentMethodID != nil {
				ids = append(ids, *inst.PaymentMethodID)
			}
		}
	}
	methods, err := repo.FindByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]finance.PaymentMethod, len(methods))
	for _, m := range methods {
		byID[m.ID] = m
	}
	return byID, nil
}

// buildBackfill creates the receivables an order should have generated on delivery.
// With a plan there is one row per installment, otherwise one row for the
// full total due defaultDueDays after the sale.
func buildBackfill(
	order *trade.SalesOrder,
	methods map[uuid.UUID]finance.PaymentMethod,
	defaultDueDays int,
	actorID *uuid.UUID,
) ([]*finance.AccountReceivable, error) {
	orderID := order.ID

	if !order.HasInstallmentPlan() {
		due := order.SaleDate.AddDate(0, 0, defaultDueDays)
		ar, err := finance.NewAccountReceivable(order.CustomerID, &orderID, order.Total, due,
			fmt.Sprintf("Order %s", order.ID))
		if err != nil {
			return nil, err
		}
		days := defaultDueDays
		ar.PaymentDays = &days
		ar.CreatedByID = actorID
		return []*finance.AccountReceivable{ar}, nil
	}

	rows := make([]*finance.AccountReceivable, 0, len(order.Installments))
	for _, inst := range order.Installments {
		description := inst.Description
		if description == "" {
			description = fmt.Sprintf("Installment %d/%d of order %s", inst.Sequence, len(order.Installments), order.ID)
		}
		ar, err := finance.NewAccountReceivable(order.CustomerID, &orderID, inst.Amount, inst.DueDate, description)
		if err != nil {
			return nil, err
		}
		if inst.PaymentMethodID != nil {
			if _, ok := methods[*inst.PaymentMethodID]; ok {
				methodID := *inst.PaymentMethodID
				ar.PaymentMethodID = &methodID
			}
		}
		if days := daysBetween(order.SaleDate, inst.DueDate); days > 0 {
			ar.PaymentDays = &days
		}
		ar.CreatedByID = actorID
		rows = append(rows, ar)
	}
	return rows, nil
}

// daysBetween returns the whole days from a to b, truncated toward zero
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}
