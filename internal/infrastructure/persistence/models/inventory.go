package models

import (
	"time"

	"github.com/erp/consistency/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockMovementModel is the persistence model for StockMovement.
type StockMovementModel struct {
	ID            uuid.UUID               `gorm:"type:uuid;primary_key"`
	ProductID     uuid.UUID               `gorm:"type:uuid;not null;index"`
	Type          inventory.MovementType  `gorm:"type:varchar(10);not null"`
	Quantity      decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	ReferenceType inventory.ReferenceType `gorm:"type:varchar(20);not null;index:idx_stock_movement_reference,priority:1"`
	ReferenceID   *uuid.UUID              `gorm:"type:uuid;index:idx_stock_movement_reference,priority:2"`
	Notes         string                  `gorm:"type:varchar(500)"`
	CreatedByID   *uuid.UUID              `gorm:"type:uuid"`
	CreatedAt     time.Time               `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement.
func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		ID:            m.ID,
		ProductID:     m.ProductID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Notes:         m.Notes,
		CreatedByID:   m.CreatedByID,
		CreatedAt:     m.CreatedAt,
	}
}

// StockMovementModelFromDomain creates a persistence model from a domain StockMovement.
func StockMovementModelFromDomain(sm *inventory.StockMovement) *StockMovementModel {
	return &StockMovementModel{
		ID:            sm.ID,
		ProductID:     sm.ProductID,
		Type:          sm.Type,
		Quantity:      sm.Quantity,
		ReferenceType: sm.ReferenceType,
		ReferenceID:   sm.ReferenceID,
		Notes:         sm.Notes,
		CreatedByID:   sm.CreatedByID,
		CreatedAt:     sm.CreatedAt,
	}
}

// StockBalanceModel is the persistence model for StockBalance. One row per product.
type StockBalanceModel struct {
	ProductID uuid.UUID       `gorm:"type:uuid;primary_key"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockBalanceModel) TableName() string {
	return "stock_balances"
}

// ToDomain converts the persistence model to a domain StockBalance.
func (m *StockBalanceModel) ToDomain() *inventory.StockBalance {
	return &inventory.StockBalance{
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		UpdatedAt: m.UpdatedAt,
	}
}
