package persistence

import (
	"context"

	"github.com/erp/consistency/internal/domain/trade"
	"github.com/erp/consistency/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSalesReturnRepository implements SalesReturnRepository using GORM
type GormSalesReturnRepository struct {
	db *gorm.DB
}

// NewGormSalesReturnRepository creates a new GormSalesReturnRepository
func NewGormSalesReturnRepository(db *gorm.DB) *GormSalesReturnRepository {
	return &GormSalesReturnRepository{db: db}
}

// FindByID finds a sales return by ID with its items
func (r *GormSalesReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesReturn, error) {
	var model models.SalesReturnModel
	if err := r.db.WithContext(ctx).Preload("Items").First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "sales return", id)
	}
	return model.ToDomain(), nil
}

// FindBySalesOrder finds all returns of a sales order, oldest first
func (r *GormSalesReturnRepository) FindBySalesOrder(ctx context.Context, salesOrderID uuid.UUID) ([]trade.SalesReturn, error) {
	var rows []models.SalesReturnModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("sales_order_id = ?", salesOrderID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	returns := make([]trade.SalesReturn, len(rows))
	for i := range rows {
		returns[i] = *rows[i].ToDomain()
	}
	return returns, nil
}

// Save creates or updates a sales return and its items
func (r *GormSalesReturnRepository) Save(ctx context.Context, ret *trade.SalesReturn) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(models.SalesReturnModelFromDomain(ret)).Error
}

// Ensure GormSalesReturnRepository implements SalesReturnRepository
var _ trade.SalesReturnRepository = (*GormSalesReturnRepository)(nil)
