package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/consistency/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceivableStatus represents the status of an account receivable
type ReceivableStatus string

const (
	ReceivableStatusOpen     ReceivableStatus = "OPEN"     // Outstanding
	ReceivableStatusReceived ReceivableStatus = "RECEIVED" // Settled, never touched by corrections
	ReceivableStatusCanceled ReceivableStatus = "CANCELED"
)

// IsValid checks if the status is a valid ReceivableStatus
func (s ReceivableStatus) IsValid() bool {
	switch s {
	case ReceivableStatusOpen, ReceivableStatusReceived, ReceivableStatusCanceled:
		return true
	}
	return false
}

// String returns the string representation of ReceivableStatus
func (s ReceivableStatus) String() string {
	return string(s)
}

// TransferableStatuses are the statuses a receivable may have to be moved
// between orders.
var TransferableStatuses = []ReceivableStatus{ReceivableStatusOpen, ReceivableStatusCanceled}

// AccountReceivable is an amount owed by a customer, optionally generated by a sales order
type AccountReceivable struct {
	shared.BaseEntity
	CustomerID      uuid.UUID
	SalesOrderID    *uuid.UUID // nil means manually created
	Amount          decimal.Decimal
	DueDate         time.Time
	Status          ReceivableStatus
	Description     string
	PaymentMethodID *uuid.UUID
	PaymentDays     *int
	Notes           string
	CreatedByID     *uuid.UUID
}

// NewAccountReceivable creates an open receivable
func NewAccountReceivable(
	customerID uuid.UUID,
	salesOrderID *uuid.UUID,
	amount decimal.Decimal,
	dueDate time.Time,
	description string,
) (*AccountReceivable, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("customer is required")
	}
	if amount.IsNegative() {
		return nil, shared.NewValidationError("receivable amount cannot be negative")
	}
	return &AccountReceivable{
		BaseEntity:   shared.NewBaseEntity(),
		CustomerID:   customerID,
		SalesOrderID: salesOrderID,
		Amount:       amount,
		DueDate:      dueDate,
		Status:       ReceivableStatusOpen,
		Description:  description,
	}, nil
}

// IsOpen returns true if the receivable is outstanding
func (ar *AccountReceivable) IsOpen() bool {
	return ar.Status == ReceivableStatusOpen
}

// Cancel transitions OPEN to CANCELED
func (ar *AccountReceivable) Cancel() error {
	if ar.Status != ReceivableStatusOpen {
		return shared.NewBadRequestError("only open receivables can be canceled, receivable %s is %s", ar.ID, ar.Status)
	}
	ar.Status = ReceivableStatusCanceled
	ar.Touch()
	return nil
}

// Reopen transitions CANCELED back to OPEN
func (ar *AccountReceivable) Reopen() error {
	if ar.Status != ReceivableStatusCanceled {
		return shared.NewBadRequestError("only canceled receivables can be reopened, receivable %s is %s", ar.ID, ar.Status)
	}
	ar.Status = ReceivableStatusOpen
	ar.Touch()
	return nil
}

// RefundDeduction describes how a refund touched one receivable
type RefundDeduction struct {
	ReceivableID uuid.UUID
	Before       decimal.Decimal
	After        decimal.Decimal
	Deducted     decimal.Decimal
	Canceled     bool
}

// ApplyRefund absorbs up to remaining from the receivable. When what is left
// of the receivable is within one cent it is canceled and zeroed, otherwise
// its amount is reduced and the deduction is noted.
func (ar *AccountReceivable) ApplyRefund(remaining decimal.Decimal, reference string) (RefundDeduction, error) {
	if !ar.IsOpen() {
		return RefundDeduction{}, shared.NewBadRequestError("refunds only apply to open receivables, receivable %s is %s", ar.ID, ar.Status)
	}
	if !remaining.IsPositive() {
		return RefundDeduction{}, shared.NewValidationError("refund amount must be positive")
	}

	result := RefundDeduction{ReceivableID: ar.ID, Before: ar.Amount}
	deduction := shared.MinDecimal(remaining, ar.Amount)
	result.Deducted = deduction

	if shared.WithinCent(ar.Amount, deduction) {
		ar.Status = ReceivableStatusCanceled
		ar.Amount = decimal.Zero
		result.Canceled = true
	} else {
		ar.Amount = ar.Amount.Sub(deduction)
	}
	ar.AppendNote(fmt.Sprintf("Return deduction of %s (%s)", deduction.StringFixed(2), reference))
	ar.Touch()

	result.After = ar.Amount
	return result, nil
}

// AppendNote adds a line to the receivable notes
func (ar *AccountReceivable) AppendNote(note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	if ar.Notes == "" {
		ar.Notes = note
		return
	}
	ar.Notes = ar.Notes + "\n" + note
}

// SumReceivables sums receivable amounts
func SumReceivables(receivables []AccountReceivable) decimal.Decimal {
	total := decimal.Zero
	for _, ar := range receivables {
		total = total.Add(ar.Amount)
	}
	return total
}
