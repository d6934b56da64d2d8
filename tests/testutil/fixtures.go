package testutil

import (
	"testing"
	"time"

	"github.com/erp/consistency/internal/domain/finance"
	"github.com/erp/consistency/internal/domain/inventory"
	"github.com/erp/consistency/internal/domain/trade"
	"github.com/erp/consistency/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Dec parses a decimal literal, panicking on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Seeder inserts ledger rows directly through the persistence models.
// CreatedAt values increase strictly with every insert so creation order is
// deterministic.
type Seeder struct {
	t     *testing.T
	db    *gorm.DB
	clock time.Time
}

// NewSeeder creates a seeder over db.
func NewSeeder(t *testing.T, db *gorm.DB) *Seeder {
	return &Seeder{t: t, db: db, clock: time.Now().UTC().Add(-time.Hour)}
}

func (s *Seeder) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

func (s *Seeder) create(value any) {
	s.t.Helper()
	require.NoError(s.t, s.db.Create(value).Error)
}

// ItemSpec describes one order line.
type ItemSpec struct {
	ProductID uuid.UUID
	Quantity  string
	UnitPrice string
	IsService bool
}

// InstallmentSpec describes one entry of a payment plan.
type InstallmentSpec struct {
	DueDate         time.Time
	Amount          string
	Description     string
	PaymentMethodID *uuid.UUID
}

// OrderSpec describes a sales order to seed. Zero values get defaults.
type OrderSpec struct {
	Status       trade.OrderStatus
	CustomerID   uuid.UUID
	SaleDate     time.Time
	Total        string // defaults to the sum of item amounts
	Bonification bool
	Items        []ItemSpec
	Installments []InstallmentSpec
}

// Order seeds a sales order with items and plan.
func (s *Seeder) Order(o OrderSpec) *models.SalesOrderModel {
	s.t.Helper()
	if o.Status == "" {
		o.Status = trade.OrderStatusDelivered
	}
	if o.CustomerID == uuid.Nil {
		o.CustomerID = uuid.New()
	}
	if o.SaleDate.IsZero() {
		o.SaleDate = Date(2024, time.March, 1)
	}

	now := s.tick()
	order := &models.SalesOrderModel{
		BaseModel:      models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		CustomerID:     o.CustomerID,
		Status:         o.Status,
		SaleDate:       o.SaleDate,
		IsBonification: o.Bonification,
	}

	total := decimal.Zero
	for _, it := range o.Items {
		if it.ProductID == uuid.Nil {
			it.ProductID = uuid.New()
		}
		item := models.SalesItemModel{
			ID:           uuid.New(),
			SalesOrderID: order.ID,
			ProductID:    it.ProductID,
			Quantity:     Dec(it.Quantity),
			UnitPrice:    Dec(it.UnitPrice),
			IsService:    it.IsService,
		}
		total = total.Add(item.Quantity.Mul(item.UnitPrice))
		order.Items = append(order.Items, item)
	}
	for i, inst := range o.Installments {
		order.Installments = append(order.Installments, models.InstallmentModel{
			ID:              uuid.New(),
			SalesOrderID:    order.ID,
			Sequence:        i + 1,
			DueDate:         inst.DueDate,
			Amount:          Dec(inst.Amount),
			Description:     inst.Description,
			PaymentMethodID: inst.PaymentMethodID,
		})
	}
	if o.Total != "" {
		total = Dec(o.Total)
	}
	order.Total = total

	s.create(order)
	return order
}

// Receivable seeds an account receivable.
func (s *Seeder) Receivable(orderID *uuid.UUID, amount string, dueDate time.Time, status finance.ReceivableStatus) *models.AccountReceivableModel {
	s.t.Helper()
	now := s.tick()
	ar := &models.AccountReceivableModel{
		BaseModel:    models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		CustomerID:   uuid.New(),
		SalesOrderID: orderID,
		Amount:       Dec(amount),
		DueDate:      dueDate,
		Status:       status,
		Description:  "seeded",
	}
	s.create(ar)
	return ar
}

// OrderReceivable seeds a receivable for order, inheriting its customer.
func (s *Seeder) OrderReceivable(order *models.SalesOrderModel, amount string, dueDate time.Time, status finance.ReceivableStatus) *models.AccountReceivableModel {
	s.t.Helper()
	ar := s.Receivable(&order.ID, amount, dueDate, status)
	ar.CustomerID = order.CustomerID
	require.NoError(s.t, s.db.Model(ar).Update("customer_id", order.CustomerID).Error)
	return ar
}

// Payable seeds a paid account payable with the given funding sources.
// A nil investor id is company cash.
func (s *Seeder) Payable(amount string, sources map[*uuid.UUID]string) *models.AccountPayableModel {
	s.t.Helper()
	now := s.tick()
	ap := &models.AccountPayableModel{
		BaseModel: models.BaseModel{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Amount:    Dec(amount),
		Status:    finance.PayableStatusPaid,
	}
	for investor, value := range sources {
		ap.PaymentSources = append(ap.PaymentSources, models.PaymentSourceModel{
			ID:         uuid.New(),
			PayableID:  ap.ID,
			InvestorID: investor,
			Amount:     Dec(value),
		})
	}
	s.create(ap)
	return ap
}

// Cash seeds a cash transaction.
func (s *Seeder) Cash(cashType finance.CashType, origin finance.CashOrigin, originID *uuid.UUID, amount string, date time.Time) *models.CashTransactionModel {
	s.t.Helper()
	tx := &models.CashTransactionModel{
		ID:          uuid.New(),
		Type:        cashType,
		Origin:      origin,
		OriginID:    originID,
		Amount:      Dec(amount),
		Date:        date,
		Description: string(origin) + " " + string(cashType),
		CreatedAt:   s.tick(),
	}
	s.create(tx)
	return tx
}

// Movement seeds a stock movement without touching the balance.
func (s *Seeder) Movement(productID uuid.UUID, movementType inventory.MovementType, quantity string, refType inventory.ReferenceType, refID *uuid.UUID) *models.StockMovementModel {
	s.t.Helper()
	m := &models.StockMovementModel{
		ID:            uuid.New(),
		ProductID:     productID,
		Type:          movementType,
		Quantity:      Dec(quantity),
		ReferenceType: refType,
		ReferenceID:   refID,
		CreatedAt:     s.tick(),
	}
	s.create(m)
	return m
}

// Balance seeds a stock balance row.
func (s *Seeder) Balance(productID uuid.UUID, quantity string) *models.StockBalanceModel {
	s.t.Helper()
	b := &models.StockBalanceModel{ProductID: productID, Quantity: Dec(quantity), UpdatedAt: s.tick()}
	s.create(b)
	return b
}

// SaleExit seeds an OUT/SALE movement for order and debits the balance,
// keeping the balance equal to the movement sum.
func (s *Seeder) SaleExit(orderID, productID uuid.UUID, quantity string) *models.StockMovementModel {
	s.t.Helper()
	m := s.Movement(productID, inventory.MovementTypeOut, quantity, inventory.ReferenceTypeSale, &orderID)
	s.adjustBalance(productID, Dec(quantity).Neg())
	return m
}

// Stock seeds an IN movement and the matching balance, keeping both consistent.
func (s *Seeder) Stock(productID uuid.UUID, quantity string) {
	s.t.Helper()
	s.Movement(productID, inventory.MovementTypeIn, quantity, inventory.ReferenceTypePurchase, nil)
	s.adjustBalance(productID, Dec(quantity))
}

func (s *Seeder) adjustBalance(productID uuid.UUID, delta decimal.Decimal) {
	s.t.Helper()
	var b models.StockBalanceModel
	err := s.db.First(&b, "product_id = ?", productID).Error
	if err == gorm.ErrRecordNotFound {
		s.Balance(productID, delta.String())
		return
	}
	require.NoError(s.t, err)
	require.NoError(s.t, s.db.Model(&b).Where("product_id = ?", productID).Update("quantity", b.Quantity.Add(delta)).Error)
}

// PaymentMethod seeds a payment method lookup row.
func (s *Seeder) PaymentMethod(name string) *models.PaymentMethodModel {
	s.t.Helper()
	pm := &models.PaymentMethodModel{ID: uuid.New(), Name: name, Active: true}
	s.create(pm)
	return pm
}

// BalanceOf reads the stored balance of a product, zero when absent.
func (s *Seeder) BalanceOf(productID uuid.UUID) decimal.Decimal {
	s.t.Helper()
	var b models.StockBalanceModel
	if err := s.db.First(&b, "product_id = ?", productID).Error; err != nil {
		return decimal.Zero
	}
	return b.Quantity
}

// MovementSum computes the signed movement sum of a product.
func (s *Seeder) MovementSum(productID uuid.UUID) decimal.Decimal {
	s.t.Helper()
	var rows []models.StockMovementModel
	require.NoError(s.t, s.db.Where("product_id = ?", productID).Find(&rows).Error)
	total := decimal.Zero
	for i := range rows {
		total = total.Add(rows[i].ToDomain().SignedDelta())
	}
	return total
}

// RequireBalanceInvariant asserts that every product's balance equals its movement sum.
func (s *Seeder) RequireBalanceInvariant() {
	s.t.Helper()
	var balances []models.StockBalanceModel
	require.NoError(s.t, s.db.Find(&balances).Error)
	for _, b := range balances {
		sum := s.MovementSum(b.ProductID)
		require.True(s.t, b.Quantity.Equal(sum), "product %s: balance %s, movements %s", b.ProductID, b.Quantity, sum)
	}
}
