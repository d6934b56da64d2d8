package finance

import (
	"github.com/erp/consistency/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PayableStatus represents the status of an account payable
type PayableStatus string

const (
	PayableStatusOpen PayableStatus = "OPEN"
	PayableStatusPaid PayableStatus = "PAID"
)

// IsValid checks if the status is a valid PayableStatus
func (s PayableStatus) IsValid() bool {
	switch s {
	case PayableStatusOpen, PayableStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of PayableStatus
func (s PayableStatus) String() string {
	return string(s)
}

// PaymentSource is one funding contribution toward a payable.
// A nil InvestorID means the company's own cash.
type PaymentSource struct {
	ID         uuid.UUID
	PayableID  uuid.UUID
	InvestorID *uuid.UUID
	Amount     decimal.Decimal
}

// IsCompanyCash returns true if the source is not an investor
func (p PaymentSource) IsCompanyCash() bool {
	return p.InvestorID == nil
}

// AccountPayable is an amount owed to a supplier
type AccountPayable struct {
	shared.BaseEntity
	PurchaseOrderID *uuid.UUID
	SupplierID      *uuid.UUID
	Amount          decimal.Decimal
	Status          PayableStatus
	PaymentSources  []PaymentSource
}

// CompanyCashTotal sums the sources paid from company cash
func (ap *AccountPayable) CompanyCashTotal() decimal.Decimal {
	total := decimal.Zero
	for _, src := range ap.PaymentSources {
		if src.IsCompanyCash() {
			total = total.Add(src.Amount)
		}
	}
	return total
}

// InvestorTotal sums the sources paid by investors
func (ap *AccountPayable) InvestorTotal() decimal.Decimal {
	total := decimal.Zero
	for _, src := range ap.PaymentSources {
		if !src.IsCompanyCash() {
			total = total.Add(src.Amount)
		}
	}
	return total
}

// IsInvestorFunded reports whether the payable was paid by investors while
// company cash contributed nothing beyond rounding noise. A company cash
// outflow recorded against such a payable did not leave the company.
func (ap *AccountPayable) IsInvestorFunded() bool {
	return ap.CompanyCashTotal().LessThanOrEqual(shared.CentTolerance) &&
		ap.InvestorTotal().GreaterThan(shared.CentTolerance)
}
