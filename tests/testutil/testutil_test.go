package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erp/consistency/internal/domain/finance"
	"github.com/erp/consistency/internal/domain/inventory"
	"github.com/erp/consistency/internal/domain/trade"
	"github.com/erp/consistency/internal/infrastructure/persistence/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockDB(t *testing.T) {
	mockDB := NewMockDB(t)
	defer mockDB.Close()

	assert.NotNil(t, mockDB.DB)
	assert.NotNil(t, mockDB.Mock)
	assert.NotNil(t, mockDB.SqlDB)

	// No expectations set, should pass
	mockDB.ExpectationsWereMet(t)
}

func TestNewTestContext(t *testing.T) {
	tc := NewTestContext(t)

	assert.NotNil(t, tc.Context)
	assert.NotNil(t, tc.Recorder)
	assert.NotNil(t, tc.Engine)
	assert.Equal(t, http.MethodGet, tc.Context.Request.Method)
}

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("a"), NewTestUUID("a"))
	assert.NotEqual(t, NewTestUUID("a"), NewTestUUID("b"))
	assert.Equal(t, NewTestUUID("test-user"), TestUserID())
}

func TestContextWithTimeout(t *testing.T) {
	ctx, cancel := ContextWithTimeout(t, time.Second)
	defer cancel()

	deadline, ok := ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 100*time.Millisecond)
}

func TestDate(t *testing.T) {
	d := Date(2024, time.February, 29)
	assert.Equal(t, time.UTC, d.Location())
	assert.Equal(t, 29, d.Day())
	assert.Zero(t, d.Hour())
}

func TestSeeder_OrderComputesTotal(t *testing.T) {
	db := NewSQLiteDB(t)
	seed := NewSeeder(t, db)

	order := seed.Order(OrderSpec{
		Items: []ItemSpec{
			{Quantity: "2", UnitPrice: "10.50"},
			{Quantity: "1", UnitPrice: "4", IsService: true},
		},
		Installments: []InstallmentSpec{
			{DueDate: Date(2024, time.April, 1), Amount: "12.50"},
			{DueDate: Date(2024, time.May, 1), Amount: "12.50"},
		},
	})

	assert.Equal(t, trade.OrderStatusDelivered, order.Status)
	assert.True(t, order.Total.Equal(Dec("25")), "total %s", order.Total)

	var stored models.SalesOrderModel
	require.NoError(t, db.Preload("Items").Preload("Installments").First(&stored, "id = ?", order.ID).Error)
	assert.Len(t, stored.Items, 2)
	assert.Len(t, stored.Installments, 2)
}

func TestSeeder_CreationOrderIsMonotonic(t *testing.T) {
	db := NewSQLiteDB(t)
	seed := NewSeeder(t, db)

	day := Date(2024, time.January, 10)
	first := seed.Cash(finance.CashTypeIn, finance.CashOriginManual, nil, "10", day)
	second := seed.Cash(finance.CashTypeIn, finance.CashOriginManual, nil, "10", day)

	assert.True(t, second.CreatedAt.After(first.CreatedAt))
}

func TestSeeder_BalanceInvariant(t *testing.T) {
	db := NewSQLiteDB(t)
	seed := NewSeeder(t, db)

	product := uuid.New()
	order := uuid.New()
	seed.Stock(product, "10")
	seed.SaleExit(order, product, "3")

	assert.True(t, seed.BalanceOf(product).Equal(Dec("7")))
	assert.True(t, seed.MovementSum(product).Equal(Dec("7")))
	seed.RequireBalanceInvariant()

	// An unbalanced movement breaks the invariant
	seed.Movement(product, inventory.MovementTypeOut, "1", inventory.ReferenceTypeManual, nil)
	assert.True(t, seed.MovementSum(product).Equal(Dec("6")))
	assert.True(t, seed.BalanceOf(product).Equal(Dec("7")))
}

func TestJSONHelpers(t *testing.T) {
	w := httptest.NewRecorder()
	engine := gin.New()
	engine.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"value": 1}})
	})
	engine.GET("/fail", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": gin.H{"code": "BAD_REQUEST", "message": "nope"}})
	})

	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	data := AssertSuccessResponse(t, w)
	assert.Equal(t, float64(1), data.(map[string]any)["value"])

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	AssertErrorResponse(t, w, "BAD_REQUEST")
}
