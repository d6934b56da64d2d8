package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/consistency/internal/domain/inventory"
	"github.com/erp/consistency/internal/domain/shared"
	"github.com/erp/consistency/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockBalanceRepository implements StockBalanceRepository using GORM.
// Balance changes are single UPDATE statements computed from the stored
// value, so the row is read and written atomically by the database.
type GormStockBalanceRepository struct {
	db *gorm.DB
}

// NewGormStockBalanceRepository creates a new GormStockBalanceRepository
func NewGormStockBalanceRepository(db *gorm.DB) *GormStockBalanceRepository {
	return &GormStockBalanceRepository{db: db}
}

// FindByProduct returns the balance row of a product
func (r *GormStockBalanceRepository) FindByProduct(ctx context.Context, productID uuid.UUID) (*inventory.StockBalance, error) {
	var model models.StockBalanceModel
	if err := r.db.WithContext(ctx).First(&model, "product_id = ?", productID).Error; err != nil {
		return nil, notFound(err, "stock balance for product", productID)
	}
	return model.ToDomain(), nil
}

// FindAll returns every balance row
func (r *GormStockBalanceRepository) FindAll(ctx context.Context) ([]inventory.StockBalance, error) {
	var rows []models.StockBalanceModel
	if err := r.db.WithContext(ctx).Order("product_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load stock balances: %w", err)
	}
	balances := make([]inventory.StockBalance, len(rows))
	for i := range rows {
		balances[i] = *rows[i].ToDomain()
	}
	return balances, nil
}

// Increase adds quantity, inserting the row when the product has none
func (r *GormStockBalanceRepository) Increase(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewValidationError("quantity must be positive")
	}
	now := time.Now()
	row := &models.StockBalanceModel{ProductID: productID, Quantity: quantity, UpdatedAt: now}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("stock_balances.quantity + ?", quantity),
				"updated_at": now,
			}),
		}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("failed to increase stock balance: %w", err)
	}
	return nil
}

// Decrease subtracts quantity only when the stored balance covers it
func (r *GormStockBalanceRepository) Decrease(ctx context.Context, productID uuid.UUID, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewValidationError("quantity must be positive")
	}
	result := r.db.WithContext(ctx).
		Model(&models.StockBalanceModel{}).
		Where("product_id = ? AND quantity >= ?", productID, quantity).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity - ?", quantity),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to decrease stock balance: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// Nothing matched: report what is actually available
	balance, err := r.FindByProduct(ctx, productID)
	if err != nil {
		if shared.IsNotFound(err) {
			balance = inventory.NewStockBalance(productID)
		} else {
			return err
		}
	}
	if err := balance.Withdraw(quantity); err != nil {
		return err
	}
	return shared.NewBadRequestError("insufficient stock for product %s", productID)
}

// Ensure GormStockBalanceRepository implements StockBalanceRepository
var _ inventory.StockBalanceRepository = (*GormStockBalanceRepository)(nil)
