package persistence

import (
	"context"
	"fmt"

	"github.com/erp/consistency/internal/domain/inventory"
	"github.com/erp/consistency/internal/domain/shared"
	"github.com/erp/consistency/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStockMovementRepository implements StockMovementRepository using GORM
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

func (r *GormStockMovementRepository) saleExits(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("type = ? AND reference_type = ?", inventory.MovementTypeOut, inventory.ReferenceTypeSale)
}

// FindByID finds one movement
func (r *GormStockMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockMovement, error) {
	var model models.StockMovementModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "stock movement", id)
	}
	return model.ToDomain(), nil
}

// FindSaleExits returns OUT/SALE movements created in rng, oldest first
func (r *GormStockMovementRepository) FindSaleExits(ctx context.Context, rng shared.DateRange) ([]inventory.StockMovement, error) {
	return r.find(applyDateRange(r.saleExits(ctx), "created_at", rng))
}

// FindSaleExitsByGroup returns the OUT/SALE movements of one order and product
func (r *GormStockMovementRepository) FindSaleExitsByGroup(ctx context.Context, salesOrderID, productID uuid.UUID) ([]inventory.StockMovement, error) {
	return r.find(r.saleExits(ctx).Where("reference_id = ? AND product_id = ?", salesOrderID, productID))
}

// CountUncompensatedSaleExits counts OUT/SALE movements referencing the
// order that no manual IN movement compensates
func (r *GormStockMovementRepository) CountUncompensatedSaleExits(ctx context.Context, salesOrderID uuid.UUID) (int64, error) {
	var count int64
	if err := r.saleExits(ctx).
		Model(&models.StockMovementModel{}).
		Where("reference_id = ?", salesOrderID).
		Where("NOT EXISTS (SELECT 1 FROM stock_movements c WHERE c.type = ? AND c.reference_type = ? AND c.reference_id = stock_movements.id)",
			inventory.MovementTypeIn, inventory.ReferenceTypeManual).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count sale exits: %w", err)
	}
	return count, nil
}

// FindCompensations returns manual IN movements that reference any of exitIDs
func (r *GormStockMovementRepository) FindCompensations(ctx context.Context, exitIDs []uuid.UUID) ([]inventory.StockMovement, error) {
	if len(exitIDs) == 0 {
		return nil, nil
	}
	return r.find(r.db.WithContext(ctx).
		Where("type = ? AND reference_type = ? AND reference_id IN ?",
			inventory.MovementTypeIn, inventory.ReferenceTypeManual, exitIDs))
}

// FindByProduct returns every movement of a product
func (r *GormStockMovementRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.StockMovement, error) {
	return r.find(r.db.WithContext(ctx).Where("product_id = ?", productID))
}

// SumByProduct returns the signed movement total per product. The sum runs
// in decimal arithmetic on the loaded rows.
func (r *GormStockMovementRepository) SumByProduct(ctx context.Context) (map[uuid.UUID]decimal.Decimal, error) {
	var rows []models.StockMovementModel
	if err := r.db.WithContext(ctx).
		Select("product_id", "type", "quantity").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load stock movements: %w", err)
	}
	sums := make(map[uuid.UUID]decimal.Decimal)
	for i := range rows {
		sums[rows[i].ProductID] = sums[rows[i].ProductID].Add(rows[i].ToDomain().SignedDelta())
	}
	return sums, nil
}

func (r *GormStockMovementRepository) find(query *gorm.DB) ([]inventory.StockMovement, error) {
	var rows []models.StockMovementModel
	if err := query.Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load stock movements: %w", err)
	}
	movements := make([]inventory.StockMovement, len(rows))
	for i := range rows {
		movements[i] = *rows[i].ToDomain()
	}
	return movements, nil
}

// Create appends a movement
func (r *GormStockMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Create(models.StockMovementModelFromDomain(movement)).Error
}

// Delete removes a movement
func (r *GormStockMovementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.StockMovementModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("stock movement", id)
	}
	return nil
}

// Ensure GormStockMovementRepository implements StockMovementRepository
var _ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
