package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/consistency/internal/application/returns"
	"github.com/erp/consistency/internal/domain/finance"
	"github.com/erp/consistency/internal/domain/trade"
	"github.com/erp/consistency/internal/infrastructure/auth"
	"github.com/erp/consistency/internal/infrastructure/persistence"
	"github.com/erp/consistency/internal/infrastructure/persistence/models"
	"github.com/erp/consistency/internal/interfaces/http/middleware"
	"github.com/erp/consistency/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReturnRouter(t *testing.T) (*gin.Engine, *testutil.Seeder, *models.SalesOrderModel, uuid.UUID) {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	seed := testutil.NewSeeder(t, db)
	product := uuid.New()
	seed.Stock(product, "5")
	order := seed.Order(testutil.OrderSpec{
		Items: []testutil.ItemSpec{{ProductID: product, Quantity: "3", UnitPrice: "40"}},
	})

	svc := returns.NewService(persistence.NewGormTransactionScope(db), persistence.NewGormRepositories(db), nil, nil)
	h := NewReturnHandler(svc)

	middleware.SetupValidator()
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.JWTClaimsKey, &auth.Claims{UserID: uuid.NewString(), Roles: []string{auth.RoleSeller}})
		c.Next()
	})
	r.POST("/sales-orders/:id/returns", h.Create)
	r.GET("/sales-orders/:id/returns", h.List)
	return r, seed, order, product
}

func postReturn(r *gin.Engine, orderID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/sales-orders/"+orderID+"/returns", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestReturnHandler_CreateAndList(t *testing.T) {
	r, seed, order, product := newReturnRouter(t)
	ar := seed.OrderReceivable(order, "120", testutil.Date(2024, 4, 1), finance.ReceivableStatusOpen)

	body := `{"items":[{"salesItemId":"` + order.Items[0].ID.String() + `","quantity":"1"}],"refundType":"ACCOUNT_RECEIVABLE","reason":"damaged"}`
	w := postReturn(r, order.ID.String(), body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := testutil.AssertSuccessResponse(t, w).(map[string]any)
	ret := data["return"].(map[string]any)
	assert.Equal(t, "40", ret["total"])
	assert.Equal(t, string(trade.ReturnStatusProcessed), ret["status"])
	assert.NotEmpty(t, ret["createdById"])

	adjustments := data["adjustments"].([]any)
	require.Len(t, adjustments, 1)
	adj := adjustments[0].(map[string]any)
	assert.Equal(t, ar.ID.String(), adj["arId"])
	assert.Equal(t, "80", adj["after"])
	assert.Nil(t, data["credit"])

	assert.True(t, seed.BalanceOf(product).Equal(testutil.Dec("6")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sales-orders/"+order.ID.String()+"/returns", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, testutil.AssertSuccessResponse(t, w), 1)
}

func TestReturnHandler_CreateErrors(t *testing.T) {
	r, _, order, _ := newReturnRouter(t)
	item := order.Items[0].ID.String()

	tests := []struct {
		name       string
		orderID    string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"bad order id", "not-a-uuid", `{}`, http.StatusBadRequest, "VALIDATION"},
		{"no items", order.ID.String(), `{"items":[],"refundType":"CREDIT"}`, http.StatusBadRequest, "VALIDATION"},
		{"bad refund type", order.ID.String(), `{"items":[{"salesItemId":"` + item + `","quantity":"1"}],"refundType":"CASH"}`, http.StatusBadRequest, "VALIDATION"},
		{"too many units", order.ID.String(), `{"items":[{"salesItemId":"` + item + `","quantity":"4"}],"refundType":"CREDIT"}`, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown order", uuid.NewString(), `{"items":[{"salesItemId":"` + item + `","quantity":"1"}],"refundType":"CREDIT"}`, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postReturn(r, tt.orderID, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			testutil.AssertErrorResponse(t, w, tt.wantCode)
		})
	}
}

func TestReturnHandler_ListUnknownOrder(t *testing.T) {
	r, _, _, _ := newReturnRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sales-orders/"+uuid.NewString()+"/returns", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
