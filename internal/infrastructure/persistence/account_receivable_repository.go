package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/consistency/internal/domain/finance"
	"github.com/erp/consistency/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountReceivableRepository implements AccountReceivableRepository using GORM
type GormAccountReceivableRepository struct {
	db *gorm.DB
}

// NewGormAccountReceivableRepository creates a new GormAccountReceivableRepository
func NewGormAccountReceivableRepository(db *gorm.DB) *GormAccountReceivableRepository {
	return &GormAccountReceivableRepository{db: db}
}

// FindByID finds a receivable by ID
func (r *GormAccountReceivableRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.AccountReceivable, error) {
	var model models.AccountReceivableModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "account receivable", id)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds receivables by IDs
func (r *GormAccountReceivableRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]finance.AccountReceivable, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.find(r.db.WithContext(ctx).Where("id IN ?", ids))
}

// FindBySalesOrder finds the receivables of an order, earliest due date first
func (r *GormAccountReceivableRepository) FindBySalesOrder(ctx context.Context, salesOrderID uuid.UUID, statuses ...finance.ReceivableStatus) ([]finance.AccountReceivable, error) {
	query := r.db.WithContext(ctx).Where("sales_order_id = ?", salesOrderID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	return r.find(query)
}

// FindBySalesOrderIDs finds receivables linked to any of the orders
func (r *GormAccountReceivableRepository) FindBySalesOrderIDs(ctx context.Context, salesOrderIDs []uuid.UUID) ([]finance.AccountReceivable, error) {
	if len(salesOrderIDs) == 0 {
		return nil, nil
	}
	return r.find(r.db.WithContext(ctx).Where("sales_order_id IN ?", salesOrderIDs))
}

// FindLinkedToOrders finds every receivable generated by a sales order
func (r *GormAccountReceivableRepository) FindLinkedToOrders(ctx context.Context) ([]finance.AccountReceivable, error) {
	return r.find(r.db.WithContext(ctx).Where("sales_order_id IS NOT NULL"))
}

func (r *GormAccountReceivableRepository) find(query *gorm.DB) ([]finance.AccountReceivable, error) {
	var rows []models.AccountReceivableModel
	if err := query.Order("due_date ASC, created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load receivables: %w", err)
	}
	receivables := make([]finance.AccountReceivable, len(rows))
	for i := range rows {
		receivables[i] = *rows[i].ToDomain()
	}
	return receivables, nil
}

// Save creates or updates a receivable
func (r *GormAccountReceivableRepository) Save(ctx context.Context, ar *finance.AccountReceivable) error {
	return r.db.WithContext(ctx).Save(models.AccountReceivableModelFromDomain(ar)).Error
}

// CancelOpenByIDs cancels the OPEN receivables among ids. The status filter
// keeps RECEIVED and already CANCELED rows out of the update.
func (r *GormAccountReceivableRepository) CancelOpenByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.AccountReceivableModel{}).
		Where("id IN ? AND status = ?", ids, finance.ReceivableStatusOpen).
		Updates(map[string]any{
			"status":     finance.ReceivableStatusCanceled,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to cancel receivables: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ReassignOrder moves receivables between orders and forces them OPEN
func (r *GormAccountReceivableRepository) ReassignOrder(ctx context.Context, fromOrderID, toOrderID uuid.UUID, statuses []finance.ReceivableStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.AccountReceivableModel{}).
		Where("sales_order_id = ? AND status IN ?", fromOrderID, statuses).
		Updates(map[string]any{
			"sales_order_id": toOrderID,
			"status":         finance.ReceivableStatusOpen,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to reassign receivables: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Ensure GormAccountReceivableRepository implements AccountReceivableRepository
var _ finance.AccountReceivableRepository = (*GormAccountReceivableRepository)(nil)
