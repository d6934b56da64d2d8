// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: BaseModel and the model registry used by AutoMigrate
// - trade.go: sales orders, items, installment plans and returns
// - finance.go: receivables, payables, cash ledger, credits, payment methods
// - inventory.go: stock movements and balances
//
// The authoritative schema lives in the migrations directory; the gorm tags
// here mirror it closely enough for AutoMigrate against sqlite in tests.
package models
