package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/consistency/internal/application/ledger"
	"github.com/erp/consistency/internal/domain/finance"
	"github.com/erp/consistency/internal/domain/inventory"
	"github.com/erp/consistency/internal/domain/shared"
	"github.com/erp/consistency/internal/domain/trade"
	"github.com/erp/consistency/internal/infrastructure/persistence/models"
	"github.com/erp/consistency/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockBalance_IncreaseUpserts(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormStockBalanceRepository(db)
	ctx := context.Background()
	product := uuid.New()

	require.NoError(t, repo.Increase(ctx, product, testutil.Dec("4")))
	require.NoError(t, repo.Increase(ctx, product, testutil.Dec("2.5")))

	balance, err := repo.FindByProduct(ctx, product)
	require.NoError(t, err)
	assert.True(t, balance.Quantity.Equal(testutil.Dec("6.5")), "got %s", balance.Quantity)
}

func TestStockBalance_Decrease(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	seed := testutil.NewSeeder(t, db)
	repo := NewGormStockBalanceRepository(db)
	ctx := context.Background()
	product := uuid.New()
	seed.Balance(product, "5")

	t.Run("covered quantity is withdrawn", func(t *testing.T) {
		require.NoError(t, repo.Decrease(ctx, product, testutil.Dec("3")))
		assert.True(t, seed.BalanceOf(product).Equal(testutil.Dec("2")))
	})

	t.Run("insufficient stock leaves the balance untouched", func(t *testing.T) {
		err := repo.Decrease(ctx, product, testutil.Dec("3"))
		require.Error(t, err)
		assert.Equal(t, shared.CodeBadRequest, shared.CodeOf(err))
		assert.Contains(t, err.Error(), "insufficient stock")
		assert.True(t, seed.BalanceOf(product).Equal(testutil.Dec("2")))
	})

	t.Run("missing row is insufficient stock", func(t *testing.T) {
		err := repo.Decrease(ctx, uuid.New(), testutil.Dec("1"))
		require.Error(t, err)
		assert.Equal(t, shared.CodeBadRequest, shared.CodeOf(err))
	})

	t.Run("non-positive quantity is rejected", func(t *testing.T) {
		err := repo.Decrease(ctx, product, testutil.Dec("0"))
		assert.Equal(t, shared.CodeValidation, shared.CodeOf(err))
	})
}

func TestReceivables_CancelOpenByIDsSkipsReceived(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	seed := testutil.NewSeeder(t, db)
	repo := NewGormAccountReceivableRepository(db)
	ctx := context.Background()

	order := seed.Order(testutil.OrderSpec{Status: trade.OrderStatusCanceled, Items: []testutil.ItemSpec{{Quantity: "1", UnitPrice: "100"}}})
	due := testutil.Date(2024, time.April, 1)
	open := seed.OrderReceivable(order, "50", due, finance.ReceivableStatusOpen)
	received := seed.OrderReceivable(order, "50", due, finance.ReceivableStatusReceived)

	n, err := repo.CancelOpenByIDs(ctx, []uuid.UUID{open.ID, received.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rows, err := repo.FindBySalesOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	statuses := map[uuid.UUID]finance.ReceivableStatus{}
	for _, ar := range rows {
		statuses[ar.ID] = ar.Status
	}
	assert.Equal(t, finance.ReceivableStatusCanceled, statuses[open.ID])
	assert.Equal(t, finance.ReceivableStatusReceived, statuses[received.ID])

	// Second pass touches nothing
	n, err = repo.CancelOpenByIDs(ctx, []uuid.UUID{open.ID, received.ID})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReceivables_ReassignOrder(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	seed := testutil.NewSeeder(t, db)
	repo := NewGormAccountReceivableRepository(db)
	ctx := context.Background()

	from := seed.Order(testutil.OrderSpec{Status: trade.OrderStatusCanceled})
	to := seed.Order(testutil.OrderSpec{})
	due := testutil.Date(2024, time.April, 1)
	canceled := seed.OrderReceivable(from, "30", due, finance.ReceivableStatusCanceled)
	seed.OrderReceivable(from, "20", due, finance.ReceivableStatusReceived)

	n, err := repo.ReassignOrder(ctx, from.ID, to.ID, []finance.ReceivableStatus{finance.ReceivableStatusOpen, finance.ReceivableStatusCanceled})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	moved, err := repo.FindBySalesOrder(ctx, to.ID)
	require.NoError(t, err)
	require.Len(t, moved, 1)
	assert.Equal(t, canceled.ID, moved[0].ID)
	assert.Equal(t, finance.ReceivableStatusOpen, moved[0].Status)
}

func TestCashTransactions_ChronologicalOrder(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	seed := testutil.NewSeeder(t, db)
	repo := NewGormCashTransactionRepository(db)
	ctx := context.Background()

	jan10 := testutil.Date(2024, time.January, 10)
	jan05 := testutil.Date(2024, time.January, 5)
	late := seed.Cash(finance.CashTypeIn, finance.CashOriginManual, nil, "10", jan10)
	early := seed.Cash(finance.CashTypeOut, finance.CashOriginManual, nil, "5", jan05)
	sameDay := seed.Cash(finance.CashTypeIn, finance.CashOriginManual, nil, "1", jan10)

	txs, err := repo.FindChronological(ctx, shared.DateRange{})
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, []uuid.UUID{early.ID, late.ID, sameDay.ID}, []uuid.UUID{txs[0].ID, txs[1].ID, txs[2].ID})

	from := testutil.Date(2024, time.January, 6)
	txs, err = repo.FindChronological(ctx, shared.DateRange{From: &from})
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestCashTransactions_ReversalLookup(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	seed := testutil.NewSeeder(t, db)
	repo := NewGormCashTransactionRepository(db)
	ctx := context.Background()

	original := seed.Cash(finance.CashTypeIn, finance.CashOriginAR, nil, "80", testutil.Date(2024, time.February, 1))

	found, err := repo.FindReversalOf(ctx, original.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	reversal := finance.NewReversal(original.ToDomain(), nil)
	require.NoError(t, repo.Create(ctx, reversal))

	found, err = repo.FindReversalOf(ctx, original.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, reversal.ID, found.ID)
	assert.Equal(t, finance.CashTypeOut, found.Type)

	require.NoError(t, repo.Delete(ctx, reversal.ID))
	assert.True(t, shared.IsNotFound(repo.Delete(ctx, reversal.ID)))
}

func TestSalesOrders_RoundTrip(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()

	order, err := trade.NewSalesOrder(uuid.New(), testutil.Date(2024, time.March, 3), []trade.SalesItem{
		{ProductID: uuid.New(), Quantity: testutil.Dec("2"), UnitPrice: testutil.Dec("15")},
	})
	require.NoError(t, err)
	order.SetInstallments([]trade.Installment{
		{DueDate: testutil.Date(2024, time.April, 3), Amount: testutil.Dec("15")},
		{DueDate: testutil.Date(2024, time.May, 3), Amount: testutil.Dec("15")},
	})
	require.NoError(t, repo.Save(ctx, order))

	loaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusDraft, loaded.Status)
	assert.True(t, loaded.Total.Equal(testutil.Dec("30")))
	require.Len(t, loaded.Items, 1)
	require.Len(t, loaded.Installments, 2)
	assert.Equal(t, 1, loaded.Installments[0].Sequence)
	assert.Equal(t, 2, loaded.Installments[1].Sequence)

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, trade.OrderStatusDelivered))
	delivered, err := repo.FindByStatus(ctx, shared.DateRange{}, trade.OrderStatusDelivered)
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, order.ID, delivered[0].ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, shared.IsNotFound(err))
}

func TestStockMovements_SaleExitQueries(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	seed := testutil.NewSeeder(t, db)
	repo := NewGormStockMovementRepository(db)
	ctx := context.Background()

	order, product := uuid.New(), uuid.New()
	seed.Stock(product, "10")
	first := seed.SaleExit(order, product, "2")
	seed.SaleExit(order, product, "2")
	seed.Movement(product, inventory.MovementTypeIn, "2", inventory.ReferenceTypeManual, &first.ID)

	count, err := repo.CountUncompensatedSaleExits(ctx, order)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "the compensated exit is not counted")

	count, err = repo.CountUncompensatedSaleExits(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, count)

	group, err := repo.FindSaleExitsByGroup(ctx, order, product)
	require.NoError(t, err)
	require.Len(t, group, 2)
	assert.Equal(t, first.ID, group[0].ID)

	comps, err := repo.FindCompensations(ctx, []uuid.UUID{first.ID})
	require.NoError(t, err)
	require.Len(t, comps, 1)
	assert.True(t, comps[0].IsCompensationOf(first.ToDomain()))

	sums, err := repo.SumByProduct(ctx)
	require.NoError(t, err)
	assert.True(t, sums[product].Equal(testutil.Dec("8")), "got %s", sums[product])
}

func TestTransactionScope_RollsBackOnError(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()
	product := uuid.New()
	boom := errors.New("boom")

	err := scope.Execute(ctx, func(repos ledger.Repositories) error {
		if err := repos.StockBalances().Increase(ctx, product, testutil.Dec("3")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&models.StockBalanceModel{}).Count(&count).Error)
	assert.Zero(t, count)

	require.NoError(t, scope.Execute(ctx, func(repos ledger.Repositories) error {
		return repos.StockBalances().Increase(ctx, product, testutil.Dec("3"))
	}))
	require.NoError(t, db.Model(&models.StockBalanceModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
