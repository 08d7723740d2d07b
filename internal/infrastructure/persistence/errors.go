package persistence

import (
	"errors"
	"fmt"

	"github.com/handwerk/backoffice/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps gorm sentinel errors onto the domain taxonomy.
// Everything else is wrapped with the operation name.
func translateError(err error, op, notFoundMessage string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.NewNotFoundError(notFoundMessage)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.NewConflictError(fmt.Sprintf("%s: record already exists", op))
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

// applyPaging applies ordering and paging of a filter; the sort field must be whitelisted
func applyPaging(db *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	return db.Order(field + " " + dir).Offset(filter.Offset()).Limit(filter.Limit())
}
