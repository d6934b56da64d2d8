package models

import (
	"time"

	"github.com/erp/consistency/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesOrderModel is the persistence model for the SalesOrder aggregate root.
type SalesOrderModel struct {
	BaseModel
	CustomerID     uuid.UUID          `gorm:"type:uuid;not null;index"`
	Status         trade.OrderStatus  `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Total          decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	SaleDate       time.Time          `gorm:"not null;index"`
	IsBonification bool               `gorm:"not null;default:false"`
	Items          []SalesItemModel   `gorm:"foreignKey:SalesOrderID;references:ID"`
	Installments   []InstallmentModel `gorm:"foreignKey:SalesOrderID;references:ID"`
}

// TableName returns the table name for GORM
func (SalesOrderModel) TableName() string {
	return "sales_orders"
}

// ToDomain converts the persistence model to a domain SalesOrder entity.
func (m *SalesOrderModel) ToDomain() *trade.SalesOrder {
	order := &trade.SalesOrder{
		BaseEntity:     m.BaseModel.ToDomain(),
		CustomerID:     m.CustomerID,
		Status:         m.Status,
		Total:          m.Total,
		SaleDate:       m.SaleDate,
		IsBonification: m.IsBonification,
		Items:          make([]trade.SalesItem, len(m.Items)),
		Installments:   make([]trade.Installment, len(m.Installments)),
	}
	for i, item := range m.Items {
		order.Items[i] = item.ToDomain()
	}
	for i, inst := range m.Installments {
		order.Installments[i] = inst.ToDomain()
	}
	return order
}

// FromDomain populates the persistence model from a domain SalesOrder entity.
func (m *SalesOrderModel) FromDomain(o *trade.SalesOrder) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.CustomerID = o.CustomerID
	m.Status = o.Status
	m.Total = o.Total
	m.SaleDate = o.SaleDate
	m.IsBonification = o.IsBonification
	m.Items = make([]SalesItemModel, len(o.Items))
	for i, item := range o.Items {
		m.Items[i] = SalesItemModelFromDomain(item)
	}
	m.Installments = make([]InstallmentModel, len(o.Installments))
	for i, inst := range o.Installments {
		m.Installments[i] = InstallmentModelFromDomain(inst)
	}
}

// SalesOrderModelFromDomain creates a new persistence model from a domain SalesOrder entity.
func SalesOrderModelFromDomain(o *trade.SalesOrder) *SalesOrderModel {
	m := &SalesOrderModel{}
	m.FromDomain(o)
	return m
}

// SalesItemModel is the persistence model for one order line.
type SalesItemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	SalesOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IsService    bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (SalesItemModel) TableName() string {
	return "sales_items"
}

// ToDomain converts the persistence model to a domain SalesItem.
func (m *SalesItemModel) ToDomain() trade.SalesItem {
	return trade.SalesItem{
		ID:           m.ID,
		SalesOrderID: m.SalesOrderID,
		ProductID:    m.ProductID,
		Quantity:     m.Quantity,
		UnitPrice:    m.UnitPrice,
		IsService:    m.IsService,
	}
}

// SalesItemModelFromDomain creates a persistence model from a domain SalesItem.
func SalesItemModelFromDomain(i trade.SalesItem) SalesItemModel {
	return SalesItemModel{
		ID:           i.ID,
		SalesOrderID: i.SalesOrderID,
		ProductID:    i.ProductID,
		Quantity:     i.Quantity,
		UnitPrice:    i.UnitPrice,
		IsService:    i.IsService,
	}
}

// InstallmentModel is the persistence model for one entry of a payment plan.
type InstallmentModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key"`
	SalesOrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Sequence        int             `gorm:"not null"`
	DueDate         time.Time       `gorm:"not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Description     string          `gorm:"type:varchar(255)"`
	PaymentMethodID *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (InstallmentModel) TableName() string {
	return "sales_order_installments"
}

// ToDomain converts the persistence model to a domain Installment.
func (m *InstallmentModel) ToDomain() trade.Installment {
	return trade.Installment{
		ID:              m.ID,
		SalesOrderID:    m.SalesOrderID,
		Sequence:        m.Sequence,
		DueDate:         m.DueDate,
		Amount:          m.Amount,
		Description:     m.Description,
		PaymentMethodID: m.PaymentMethodID,
	}
}

// InstallmentModelFromDomain creates a persistence model from a domain Installment.
func InstallmentModelFromDomain(i trade.Installment) InstallmentModel {
	return InstallmentModel{
		ID:              i.ID,
		SalesOrderID:    i.SalesOrderID,
		Sequence:        i.Sequence,
		DueDate:         i.DueDate,
		Amount:          i.Amount,
		Description:     i.Description,
		PaymentMethodID: i.PaymentMethodID,
	}
}

// SalesReturnModel is the persistence model for the SalesReturn aggregate root.
type SalesReturnModel struct {
	BaseModel
	SalesOrderID uuid.UUID              `gorm:"type:uuid;not null;index"`
	CustomerID   uuid.UUID              `gorm:"type:uuid;not null;index"`
	Status       trade.ReturnStatus     `gorm:"type:varchar(20);not null;default:'PENDING'"`
	RefundType   trade.RefundType       `gorm:"type:varchar(30);not null"`
	Total        decimal.Decimal        `gorm:"type:decimal(18,4);not null"`
	Reason       string                 `gorm:"type:text"`
	CreatedByID  *uuid.UUID             `gorm:"type:uuid"`
	ProcessedAt  *time.Time
	Items        []SalesReturnItemModel `gorm:"foreignKey:SalesReturnID;references:ID"`
}

// TableName returns the table name for GORM
func (SalesReturnModel) TableName() string {
	return "sales_returns"
}

// ToDomain converts the persistence model to a domain SalesReturn entity.
func (m *SalesReturnModel) ToDomain() *trade.SalesReturn {
	ret := &trade.SalesReturn{
		BaseEntity:   m.BaseModel.ToDomain(),
		SalesOrderID: m.SalesOrderID,
		CustomerID:   m.CustomerID,
		Status:       m.Status,
		RefundType:   m.RefundType,
		Total:        m.Total,
		Reason:       m.Reason,
		CreatedByID:  m.CreatedByID,
		ProcessedAt:  m.ProcessedAt,
		Items:        make([]trade.SalesReturnItem, len(m.Items)),
	}
	for i, item := range m.Items {
		ret.Items[i] = trade.SalesReturnItem{
			ID:            item.ID,
			SalesReturnID: item.SalesReturnID,
			SalesItemID:   item.SalesItemID,
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			IsService:     item.IsService,
		}
	}
	return ret
}

// SalesReturnModelFromDomain creates a new persistence model from a domain SalesReturn entity.
func SalesReturnModelFromDomain(r *trade.SalesReturn) *SalesReturnModel {
	m := &SalesReturnModel{
		SalesOrderID: r.SalesOrderID,
		CustomerID:   r.CustomerID,
		Status:       r.Status,
		RefundType:   r.RefundType,
		Total:        r.Total,
		Reason:       r.Reason,
		CreatedByID:  r.CreatedByID,
		ProcessedAt:  r.ProcessedAt,
		Items:        make([]SalesReturnItemModel, len(r.Items)),
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	for i, item := range r.Items {
		m.Items[i] = SalesReturnItemModel{
			ID:            item.ID,
			SalesReturnID: r.ID,
			SalesItemID:   item.SalesItemID,
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			IsService:     item.IsService,
		}
	}
	return m
}

// SalesReturnItemModel is the persistence model for one returned line.
type SalesReturnItemModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	SalesReturnID uuid.UUID       `gorm:"type:uuid;not null;index"`
	SalesItemID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	IsService     bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (SalesReturnItemModel) TableName() string {
	return "sales_return_items"
}
