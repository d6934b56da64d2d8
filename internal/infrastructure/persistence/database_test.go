package persistence

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/consistency/internal/domain/shared"
	"github.com/erp/consistency/internal/domain/trade"
	"github.com/erp/consistency/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabase_PingAndClose(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	db := &Database{DB: mockDB.DB}

	require.NoError(t, db.Ping(context.Background()))

	mockDB.Mock.ExpectClose()
	require.NoError(t, db.Close())
	mockDB.ExpectationsWereMet(t)
}

func TestCancelOpenByIDs_FiltersOnOpenStatus(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	id1, id2 := uuid.New(), uuid.New()
	mockDB.Mock.ExpectExec(regexp.QuoteMeta(`UPDATE "accounts_receivable" SET "status"=$1,"updated_at"=$2 WHERE id IN ($3,$4) AND status = $5`)).
		WithArgs("CANCELED", sqlmock.AnyArg(), id1, id2, "OPEN").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewGormAccountReceivableRepository(mockDB.DB)
	n, err := repo.CancelOpenByIDs(context.Background(), []uuid.UUID{id1, id2})

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	mockDB.ExpectationsWereMet(t)
}

func TestCancelOpenByIDs_EmptyIsNoop(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	n, err := NewGormAccountReceivableRepository(mockDB.DB).CancelOpenByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	mockDB.ExpectationsWereMet(t)
}

func TestUpdateStatus_MissingOrder(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	id := uuid.New()
	mockDB.Mock.ExpectExec(regexp.QuoteMeta(`UPDATE "sales_orders" SET "status"=$1`)).
		WithArgs("DELIVERED", sqlmock.AnyArg(), id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewGormSalesOrderRepository(mockDB.DB).UpdateStatus(context.Background(), id, trade.OrderStatusDelivered)
	require.Error(t, err)
	assert.Equal(t, shared.CodeNotFound, shared.CodeOf(err))
	mockDB.ExpectationsWereMet(t)
}

func TestFindReversalOf_NoneIsNil(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	id := uuid.New()
	mockDB.Mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cash_transactions" WHERE origin = $1 AND origin_id = $2`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	tx, err := NewGormCashTransactionRepository(mockDB.DB).FindReversalOf(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, tx)
	mockDB.ExpectationsWereMet(t)
}
