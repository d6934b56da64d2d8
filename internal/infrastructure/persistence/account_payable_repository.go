package persistence

import (
	"context"

	"github.com/erp/consistency/internal/domain/finance"
	"github.com/erp/consistency/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountPayableRepository implements AccountPayableRepository using GORM
type GormAccountPayableRepository struct {
	db *gorm.DB
}

// NewGormAccountPayableRepository creates a new GormAccountPayableRepository
func NewGormAccountPayableRepository(db *gorm.DB) *GormAccountPayableRepository {
	return &GormAccountPayableRepository{db: db}
}

// FindByIDs finds payables with their payment sources
func (r *GormAccountPayableRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]finance.AccountPayable, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.AccountPayableModel
	if err := r.db.WithContext(ctx).
		Preload("PaymentSources").
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	payables := make([]finance.AccountPayable, len(rows))
	for i := range rows {
		payables[i] = *rows[i].ToDomain()
	}
	return payables, nil
}

// Save creates or updates a payable with its sources. Payables are maintained
// outside the engine; this exists for seeding and tests.
func (r *GormAccountPayableRepository) Save(ctx context.Context, ap *finance.AccountPayable) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(models.AccountPayableModelFromDomain(ap)).Error
}

// Ensure GormAccountPayableRepository implements AccountPayableRepository
var _ finance.AccountPayableRepository = (*GormAccountPayableRepository)(nil)
