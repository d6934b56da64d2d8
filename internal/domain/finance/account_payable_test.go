package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountPayable_IsInvestorFunded(t *testing.T) {
	investor := uuid.New()
	source := func(investorID *uuid.UUID, amount string) PaymentSource {
		return PaymentSource{ID: uuid.New(), InvestorID: investorID, Amount: decimal.RequireFromString(amount)}
	}

	tests := []struct {
		name    string
		sources []PaymentSource
		want    bool
	}{
		{"investor only", []PaymentSource{source(&investor, "100")}, true},
		{"company cash noise", []PaymentSource{source(nil, "0.01"), source(&investor, "100")}, true},
		{"company cash paid", []PaymentSource{source(nil, "0.02"), source(&investor, "100")}, false},
		{"company only", []PaymentSource{source(nil, "100")}, false},
		{"no sources", nil, false},
		{"investor noise", []PaymentSource{source(&investor, "0.01")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ap := &AccountPayable{Status: PayableStatusPaid, PaymentSources: tt.sources}
			assert.Equal(t, tt.want, ap.IsInvestorFunded())
		})
	}
}

func TestAccountPayable_Totals(t *testing.T) {
	investor := uuid.New()
	ap := &AccountPayable{PaymentSources: []PaymentSource{
		{Amount: decimal.NewFromInt(30)},
		{InvestorID: &investor, Amount: decimal.NewFromInt(70)},
	}}
	assert.True(t, ap.CompanyCashTotal().Equal(decimal.NewFromInt(30)))
	assert.True(t, ap.InvestorTotal().Equal(decimal.NewFromInt(70)))
}

func TestCashTransaction_Reversal(t *testing.T) {
	arID := uuid.New()
	tx, err := NewCashTransaction(CashTypeIn, CashOriginAR, &arID, decimal.RequireFromString("42.50"), time.Now(), "Payment received")
	require.NoError(t, err)
	user := uuid.New()

	rev := NewReversal(tx, &user)

	assert.Equal(t, CashTypeOut, rev.Type)
	assert.Equal(t, CashOriginManual, rev.Origin)
	require.NotNil(t, rev.OriginID)
	assert.Equal(t, tx.ID, *rev.OriginID)
	assert.True(t, rev.Amount.Equal(tx.Amount))
	assert.Equal(t, "Reversal: Payment received", rev.Description)
	assert.Equal(t, &user, rev.CreatedByID)
	assert.True(t, tx.SignedAmount().Add(rev.SignedAmount()).IsZero())

	// the original is untouched
	assert.Equal(t, CashTypeIn, tx.Type)
	assert.Equal(t, CashOriginAR, tx.Origin)
}

func TestCashTransaction_IsTwinOf(t *testing.T) {
	id := uuid.New()
	a, _ := NewCashTransaction(CashTypeIn, CashOriginAR, &id, decimal.NewFromInt(10), time.Now(), "")
	b, _ := NewCashTransaction(CashTypeIn, CashOriginAR, &id, decimal.RequireFromString("10.00"), time.Now(), "")
	c, _ := NewCashTransaction(CashTypeOut, CashOriginAR, &id, decimal.NewFromInt(10), time.Now(), "")

	assert.True(t, a.IsTwinOf(b))
	assert.False(t, a.IsTwinOf(a))
	assert.False(t, a.IsTwinOf(c))
}

func TestNewCashTransaction_Validation(t *testing.T) {
	_, err := NewCashTransaction(CashType("X"), CashOriginManual, nil, decimal.NewFromInt(1), time.Now(), "")
	assert.Error(t, err)
	_, err = NewCashTransaction(CashTypeIn, CashOrigin("X"), nil, decimal.NewFromInt(1), time.Now(), "")
	assert.Error(t, err)
	_, err = NewCashTransaction(CashTypeIn, CashOriginManual, nil, decimal.NewFromInt(-1), time.Now(), "")
	assert.Error(t, err)
}

func TestNewCustomerCredit(t *testing.T) {
	credit, err := NewCustomerCredit(uuid.New(), nil, decimal.NewFromInt(50))
	require.NoError(t, err)
	assert.Equal(t, CreditStatusActive, credit.Status)
	assert.True(t, credit.Available().Equal(decimal.NewFromInt(50)))

	_, err = NewCustomerCredit(uuid.New(), nil, decimal.Zero)
	assert.Error(t, err)
}
