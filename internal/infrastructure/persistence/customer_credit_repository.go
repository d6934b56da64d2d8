package persistence

import (
	"context"

	"github.com/erp/consistency/internal/domain/finance"
	"github.com/erp/consistency/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerCreditRepository implements CustomerCreditRepository using GORM
type GormCustomerCreditRepository struct {
	db *gorm.DB
}

// NewGormCustomerCreditRepository creates a new GormCustomerCreditRepository
func NewGormCustomerCreditRepository(db *gorm.DB) *GormCustomerCreditRepository {
	return &GormCustomerCreditRepository{db: db}
}

// FindBySalesReturn finds credits generated by a return
func (r *GormCustomerCreditRepository) FindBySalesReturn(ctx context.Context, salesReturnID uuid.UUID) ([]finance.CustomerCredit, error) {
	var rows []models.CustomerCreditModel
	if err := r.db.WithContext(ctx).
		Where("sales_return_id = ?", salesReturnID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	credits := make([]finance.CustomerCredit, len(rows))
	for i := range rows {
		credits[i] = *rows[i].ToDomain()
	}
	return credits, nil
}

// Create stores a new credit
func (r *GormCustomerCreditRepository) Create(ctx context.Context, credit *finance.CustomerCredit) error {
	return r.db.WithContext(ctx).Create(models.CustomerCreditModelFromDomain(credit)).Error
}

// GormPaymentMethodRepository implements PaymentMethodRepository using GORM
type GormPaymentMethodRepository struct {
	db *gorm.DB
}

// NewGormPaymentMethodRepository creates a new GormPaymentMethodRepository
func NewGormPaymentMethodRepository(db *gorm.DB) *GormPaymentMethodRepository {
	return &GormPaymentMethodRepository{db: db}
}

// FindByIDs finds payment methods by IDs
func (r *GormPaymentMethodRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]finance.PaymentMethod, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.PaymentMethodModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	methods := make([]finance.PaymentMethod, len(rows))
	for i := range rows {
		methods[i] = rows[i].ToDomain()
	}
	return methods, nil
}

var (
	_ finance.CustomerCreditRepository = (*GormCustomerCreditRepository)(nil)
	_ finance.PaymentMethodRepository  = (*GormPaymentMethodRepository)(nil)
)
