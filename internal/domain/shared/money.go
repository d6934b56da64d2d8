package shared

import (
	"time"

	"github.com/shopspring/decimal"
)

// CentTolerance absorbs rounding noise in money comparisons.
var CentTolerance = decimal.New(1, -2)

// WithinCent reports whether |a - b| <= one cent.
func WithinCent(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(CentTolerance)
}

// ExceedsByMoreThanCent reports whether a > b + one cent.
func ExceedsByMoreThanCent(a, b decimal.Decimal) bool {
	return a.GreaterThan(b.Add(CentTolerance))
}

// MinDecimal returns the smaller of a and b.
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// DateRange is an optional, inclusive time window. A nil bound is open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// IsZero reports whether both bounds are open.
func (r DateRange) IsZero() bool {
	return r.From == nil && r.To == nil
}
