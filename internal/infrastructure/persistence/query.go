package persistence

import (
	"errors"
	"fmt"

	"github.com/erp/consistency/internal/domain/shared"
	"gorm.io/gorm"
)

// applyDateRange restricts column to the inclusive bounds of rng
func applyDateRange(query *gorm.DB, column string, rng shared.DateRange) *gorm.DB {
	if rng.From != nil {
		query = query.Where(column+" >= ?", *rng.From)
	}
	if rng.To != nil {
		query = query.Where(column+" <= ?", *rng.To)
	}
	return query
}

// notFound maps gorm.ErrRecordNotFound to a NOT_FOUND domain error for entity
func notFound(err error, entity string, id fmt.Stringer) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(entity, id)
	}
	return err
}
