package finance

import (
	"testing"
	"time"

	"github.com/erp/consistency/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReceivable(t *testing.T, amount string) *AccountReceivable {
	t.Helper()
	orderID := uuid.New()
	ar, err := NewAccountReceivable(uuid.New(), &orderID, decimal.RequireFromString(amount), time.Now().AddDate(0, 0, 30), "Sale")
	require.NoError(t, err)
	return ar
}

func TestNewAccountReceivable(t *testing.T) {
	ar := newTestReceivable(t, "100")
	assert.Equal(t, ReceivableStatusOpen, ar.Status)
	assert.True(t, ar.IsOpen())

	_, err := NewAccountReceivable(uuid.New(), nil, decimal.NewFromInt(-1), time.Now(), "")
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))

	_, err = NewAccountReceivable(uuid.Nil, nil, decimal.NewFromInt(1), time.Now(), "")
	assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
}

func TestAccountReceivable_CancelReopen(t *testing.T) {
	ar := newTestReceivable(t, "10")

	require.NoError(t, ar.Cancel())
	assert.Equal(t, ReceivableStatusCanceled, ar.Status)
	assert.Equal(t, shared.CodeBadRequest, shared.CodeOf(ar.Cancel()))

	require.NoError(t, ar.Reopen())
	assert.Equal(t, ReceivableStatusOpen, ar.Status)
	assert.Equal(t, shared.CodeBadRequest, shared.CodeOf(ar.Reopen()))

	ar.Status = ReceivableStatusReceived
	assert.Equal(t, shared.CodeBadRequest, shared.CodeOf(ar.Cancel()))
}

func TestAccountReceivable_ApplyRefund(t *testing.T) {
	tests := []struct {
		name          string
		amount        string
		remaining     string
		wantAfter     string
		wantDeduction string
		wantCanceled  bool
	}{
		{"partial deduction", "50", "20", "30", "20", false},
		{"full absorption", "100", "120", "0", "100", true},
		{"leftover within one cent cancels", "50", "49.995", "0", "49.995", true},
		{"leftover exactly one cent cancels", "50", "49.99", "0", "49.99", true},
		{"leftover above one cent stays open", "50", "49.98", "0.02", "49.98", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ar := newTestReceivable(t, tt.amount)

			got, err := ar.ApplyRefund(decimal.RequireFromString(tt.remaining), "return R-1")
			require.NoError(t, err)

			assert.True(t, got.Deducted.Equal(decimal.RequireFromString(tt.wantDeduction)), "deducted %s", got.Deducted)
			assert.True(t, ar.Amount.Equal(decimal.RequireFromString(tt.wantAfter)), "after %s", ar.Amount)
			assert.Equal(t, tt.wantCanceled, got.Canceled)
			assert.True(t, got.Before.Equal(decimal.RequireFromString(tt.amount)))
			assert.Contains(t, ar.Notes, "return R-1")
			if tt.wantCanceled {
				assert.Equal(t, ReceivableStatusCanceled, ar.Status)
			} else {
				assert.Equal(t, ReceivableStatusOpen, ar.Status)
			}
		})
	}
}

func TestAccountReceivable_ApplyRefund_RequiresOpen(t *testing.T) {
	ar := newTestReceivable(t, "10")
	ar.Status = ReceivableStatusReceived

	_, err := ar.ApplyRefund(decimal.NewFromInt(5), "x")
	assert.Equal(t, shared.CodeBadRequest, shared.CodeOf(err))
	assert.True(t, ar.Amount.Equal(decimal.NewFromInt(10)))
}

func TestAccountReceivable_AppendNote(t *testing.T) {
	ar := newTestReceivable(t, "10")
	ar.AppendNote("first")
	ar.AppendNote("  ")
	ar.AppendNote("second")
	assert.Equal(t, "first\nsecond", ar.Notes)
}

func TestSumReceivables(t *testing.T) {
	total := SumReceivables([]AccountReceivable{
		{Amount: decimal.RequireFromString("10.10")},
		{Amount: decimal.RequireFromString("0.20")},
	})
	assert.True(t, total.Equal(decimal.RequireFromString("10.30")))
}
