package models

import (
	"time"

	"github.com/erp/consistency/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountReceivableModel is the persistence model for AccountReceivable.
type AccountReceivableModel struct {
	BaseModel
	CustomerID      uuid.UUID                `gorm:"type:uuid;not null;index"`
	SalesOrderID    *uuid.UUID               `gorm:"type:uuid;index"`
	Amount          decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	DueDate         time.Time                `gorm:"not null;index"`
	Status          finance.ReceivableStatus `gorm:"type:varchar(20);not null;default:'OPEN';index"`
	Description     string                   `gorm:"type:varchar(255)"`
	PaymentMethodID *uuid.UUID               `gorm:"type:uuid"`
	PaymentDays     *int
	Notes           string     `gorm:"type:text"`
	CreatedByID     *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (AccountReceivableModel) TableName() string {
	return "accounts_receivable"
}

// ToDomain converts the persistence model to a domain AccountReceivable entity.
func (m *AccountReceivableModel) ToDomain() *finance.AccountReceivable {
	return &finance.AccountReceivable{
		BaseEntity:      m.BaseModel.ToDomain(),
		CustomerID:      m.CustomerID,
		SalesOrderID:    m.SalesOrderID,
		Amount:          m.Amount,
		DueDate:         m.DueDate,
		Status:          m.Status,
		Description:     m.Description,
		PaymentMethodID: m.PaymentMethodID,
		PaymentDays:     m.PaymentDays,
		Notes:           m.Notes,
		CreatedByID:     m.CreatedByID,
	}
}

// AccountReceivableModelFromDomain creates a persistence model from a domain AccountReceivable.
func AccountReceivableModelFromDomain(ar *finance.AccountReceivable) *AccountReceivableModel {
	m := &AccountReceivableModel{
		CustomerID:      ar.CustomerID,
		SalesOrderID:    ar.SalesOrderID,
		Amount:          ar.Amount,
		DueDate:         ar.DueDate,
		Status:          ar.Status,
		Description:     ar.Description,
		PaymentMethodID: ar.PaymentMethodID,
		PaymentDays:     ar.PaymentDays,
		Notes:           ar.Notes,
		CreatedByID:     ar.CreatedByID,
	}
	m.FromDomainBaseEntity(ar.BaseEntity)
	return m
}

// AccountPayableModel is the persistence model for AccountPayable.
type AccountPayableModel struct {
	BaseModel
	PurchaseOrderID *uuid.UUID            `gorm:"type:uuid;index"`
	SupplierID      *uuid.UUID            `gorm:"type:uuid;index"`
	Amount          decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Status          finance.PayableStatus `gorm:"type:varchar(20);not null;default:'OPEN'"`
	PaymentSources  []PaymentSourceModel  `gorm:"foreignKey:PayableID;references:ID"`
}

// TableName returns the table name for GORM
func (AccountPayableModel) TableName() string {
	return "accounts_payable"
}

// ToDomain converts the persistence model to a domain AccountPayable entity.
func (m *AccountPayableModel) ToDomain() *finance.AccountPayable {
	ap := &finance.AccountPayable{
		BaseEntity:      m.BaseModel.ToDomain(),
		PurchaseOrderID: m.PurchaseOrderID,
		SupplierID:      m.SupplierID,
		Amount:          m.Amount,
		Status:          m.Status,
		PaymentSources:  make([]finance.PaymentSource, len(m.PaymentSources)),
	}
	for i, src := range m.PaymentSources {
		ap.PaymentSources[i] = finance.PaymentSource{
			ID:         src.ID,
			PayableID:  src.PayableID,
			InvestorID: src.InvestorID,
			Amount:     src.Amount,
		}
	}
	return ap
}

// AccountPayableModelFromDomain creates a persistence model from a domain AccountPayable.
func AccountPayableModelFromDomain(ap *finance.AccountPayable) *AccountPayableModel {
	m := &AccountPayableModel{
		PurchaseOrderID: ap.PurchaseOrderID,
		SupplierID:      ap.SupplierID,
		Amount:          ap.Amount,
		Status:          ap.Status,
		PaymentSources:  make([]PaymentSourceModel, len(ap.PaymentSources)),
	}
	m.FromDomainBaseEntity(ap.BaseEntity)
	for i, src := range ap.PaymentSources {
		id := src.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		m.PaymentSources[i] = PaymentSourceModel{
			ID:         id,
			PayableID:  ap.ID,
			InvestorID: src.InvestorID,
			Amount:     src.Amount,
		}
	}
	return m
}

// PaymentSourceModel is the persistence model for one funding source of a payable.
type PaymentSourceModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	PayableID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvestorID *uuid.UUID      `gorm:"type:uuid"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (PaymentSourceModel) TableName() string {
	return "payable_payment_sources"
}

// CashTransactionModel is the persistence model for a cash ledger entry.
type CashTransactionModel struct {
	ID          uuid.UUID          `gorm:"type:uuid;primary_key"`
	Type        finance.CashType   `gorm:"type:varchar(10);not null"`
	Origin      finance.CashOrigin `gorm:"type:varchar(10);not null;index:idx_cash_origin,priority:1"`
	OriginID    *uuid.UUID         `gorm:"type:uuid;index:idx_cash_origin,priority:2"`
	Amount      decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Date        time.Time          `gorm:"not null;index"`
	Description string             `gorm:"type:varchar(500)"`
	CategoryID  *uuid.UUID         `gorm:"type:uuid"`
	CreatedByID *uuid.UUID         `gorm:"type:uuid"`
	CreatedAt   time.Time          `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CashTransactionModel) TableName() string {
	return "cash_transactions"
}

// ToDomain converts the persistence model to a domain CashTransaction.
func (m *CashTransactionModel) ToDomain() *finance.CashTransaction {
	return &finance.CashTransaction{
		ID:          m.ID,
		Type:        m.Type,
		Origin:      m.Origin,
		OriginID:    m.OriginID,
		Amount:      m.Amount,
		Date:        m.Date,
		Description: m.Description,
		CategoryID:  m.CategoryID,
		CreatedByID: m.CreatedByID,
		CreatedAt:   m.CreatedAt,
	}
}

// CashTransactionModelFromDomain creates a persistence model from a domain CashTransaction.
func CashTransactionModelFromDomain(tx *finance.CashTransaction) *CashTransactionModel {
	return &CashTransactionModel{
		ID:          tx.ID,
		Type:        tx.Type,
		Origin:      tx.Origin,
		OriginID:    tx.OriginID,
		Amount:      tx.Amount,
		Date:        tx.Date,
		Description: tx.Description,
		CategoryID:  tx.CategoryID,
		CreatedByID: tx.CreatedByID,
		CreatedAt:   tx.CreatedAt,
	}
}

// CustomerCreditModel is the persistence model for CustomerCredit.
type CustomerCreditModel struct {
	BaseModel
	CustomerID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	SalesReturnID *uuid.UUID           `gorm:"type:uuid;index"`
	Amount        decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	UsedAmount    decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Status        finance.CreditStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (CustomerCreditModel) TableName() string {
	return "customer_credits"
}

// ToDomain converts the persistence model to a domain CustomerCredit.
func (m *CustomerCreditModel) ToDomain() *finance.CustomerCredit {
	return &finance.CustomerCredit{
		BaseEntity:    m.BaseModel.ToDomain(),
		CustomerID:    m.CustomerID,
		SalesReturnID: m.SalesReturnID,
		Amount:        m.Amount,
		UsedAmount:    m.UsedAmount,
		Status:        m.Status,
	}
}

// CustomerCreditModelFromDomain creates a persistence model from a domain CustomerCredit.
func CustomerCreditModelFromDomain(c *finance.CustomerCredit) *CustomerCreditModel {
	m := &CustomerCreditModel{
		CustomerID:    c.CustomerID,
		SalesReturnID: c.SalesReturnID,
		Amount:        c.Amount,
		UsedAmount:    c.UsedAmount,
		Status:        c.Status,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

// PaymentMethodModel is the persistence model for the payment method lookup.
type PaymentMethodModel struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key"`
	Name   string    `gorm:"type:varchar(100);not null"`
	Active bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PaymentMethodModel) TableName() string {
	return "payment_methods"
}

// ToDomain converts the persistence model to a domain PaymentMethod.
func (m *PaymentMethodModel) ToDomain() finance.PaymentMethod {
	return finance.PaymentMethod{ID: m.ID, Name: m.Name, Active: m.Active}
}
