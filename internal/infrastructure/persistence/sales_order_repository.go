package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/consistency/internal/domain/shared"
	"github.com/erp/consistency/internal/domain/trade"
	"github.com/erp/consistency/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSalesOrderRepository implements SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// withDetails preloads items and the installment plan in sequence order
func (r *GormSalesOrderRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items").
		Preload("Installments", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		})
}

// FindByID finds a sales order by its ID
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	var model models.SalesOrderModel
	if err := r.withDetails(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "sales order", id)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds sales orders by IDs
func (r *GormSalesOrderRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]trade.SalesOrder, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.SalesOrderModel
	if err := r.withDetails(ctx).Where("id IN ?", ids).Order("sale_date ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load sales orders: %w", err)
	}
	return toSalesOrders(rows), nil
}

// FindByStatus finds sales orders in the given statuses with a sale date in rng
func (r *GormSalesOrderRepository) FindByStatus(ctx context.Context, rng shared.DateRange, statuses ...trade.OrderStatus) ([]trade.SalesOrder, error) {
	query := r.withDetails(ctx)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	query = applyDateRange(query, "sale_date", rng)

	var rows []models.SalesOrderModel
	if err := query.Order("sale_date ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load sales orders by status: %w", err)
	}
	return toSalesOrders(rows), nil
}

// Save creates or updates a sales order together with its items and plan
func (r *GormSalesOrderRepository) Save(ctx context.Context, order *trade.SalesOrder) error {
	model := models.SalesOrderModelFromDomain(order)
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(model).Error
}

// UpdateStatus sets the status of one order
func (r *GormSalesOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status trade.OrderStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.SalesOrderModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now()})
	if result.Error != nil {
		return fmt.Errorf("failed to update sales order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("sales order", id)
	}
	return nil
}

func toSalesOrders(rows []models.SalesOrderModel) []trade.SalesOrder {
	orders := make([]trade.SalesOrder, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders
}

// Ensure GormSalesOrderRepository implements SalesOrderRepository
var _ trade.SalesOrderRepository = (*GormSalesOrderRepository)(nil)
