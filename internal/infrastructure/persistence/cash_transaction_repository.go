package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/consistency/internal/domain/finance"
	"github.com/erp/consistency/internal/domain/shared"
	"github.com/erp/consistency/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCashTransactionRepository implements CashTransactionRepository using GORM
type GormCashTransactionRepository struct {
	db *gorm.DB
}

// NewGormCashTransactionRepository creates a new GormCashTransactionRepository
func NewGormCashTransactionRepository(db *gorm.DB) *GormCashTransactionRepository {
	return &GormCashTransactionRepository{db: db}
}

// FindByID finds one ledger entry
func (r *GormCashTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.CashTransaction, error) {
	var model models.CashTransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "cash transaction", id)
	}
	return model.ToDomain(), nil
}

// FindChronological returns entries by date, then creation order
func (r *GormCashTransactionRepository) FindChronological(ctx context.Context, rng shared.DateRange) ([]finance.CashTransaction, error) {
	query := applyDateRange(r.db.WithContext(ctx), "date", rng)
	return r.find(query.Order("date ASC, created_at ASC, id ASC"))
}

// FindByOrigin returns entries of origin whose origin id is in originIDs
func (r *GormCashTransactionRepository) FindByOrigin(ctx context.Context, origin finance.CashOrigin, originIDs []uuid.UUID) ([]finance.CashTransaction, error) {
	if len(originIDs) == 0 {
		return nil, nil
	}
	return r.find(r.db.WithContext(ctx).
		Where("origin = ? AND origin_id IN ?", origin, originIDs).
		Order("date ASC, created_at ASC, id ASC"))
}

// FindReversalOf returns the reversal pointing at id, or nil when there is none
func (r *GormCashTransactionRepository) FindReversalOf(ctx context.Context, id uuid.UUID) (*finance.CashTransaction, error) {
	var model models.CashTransactionModel
	err := r.db.WithContext(ctx).
		Where("origin = ? AND origin_id = ?", finance.CashOriginManual, id).
		Order("created_at ASC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormCashTransactionRepository) find(query *gorm.DB) ([]finance.CashTransaction, error) {
	var rows []models.CashTransactionModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load cash transactions: %w", err)
	}
	txs := make([]finance.CashTransaction, len(rows))
	for i := range rows {
		txs[i] = *rows[i].ToDomain()
	}
	return txs, nil
}

// Create appends an entry
func (r *GormCashTransactionRepository) Create(ctx context.Context, tx *finance.CashTransaction) error {
	return r.db.WithContext(ctx).Create(models.CashTransactionModelFromDomain(tx)).Error
}

// Delete removes an entry
func (r *GormCashTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CashTransactionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("cash transaction", id)
	}
	return nil
}

// Ensure GormCashTransactionRepository implements CashTransactionRepository
var _ finance.CashTransactionRepository = (*GormCashTransactionRepository)(nil)
