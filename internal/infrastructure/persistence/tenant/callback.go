package tenant

import (
	"regexp"

	"github.com/handwerk/backoffice/internal/infrastructure/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	callbackQuery  = "tenant:before_query"
	callbackUpdate = "tenant:before_update"
	callbackDelete = "tenant:before_delete"
	callbackRow    = "tenant:before_row"
)

// TenantCallback adds the tenant filter to statements whose context carries a
// tenant and whose model has a tenant column. It backs up Scope; repositories
// still scope explicitly.
type TenantCallback struct {
	required bool
}

// NewTenantCallback creates a new tenant callback handler. When required is true,
// statements on tenant tables without a tenant in their context fail.
func NewTenantCallback(required bool) *TenantCallback {
	return &TenantCallback{required: required}
}

// RegisterCallbacks registers tenant callbacks with GORM.
// Creates are not filtered; new records are stamped explicitly.
func (tc *TenantCallback) RegisterCallbacks(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register(callbackQuery, tc.addTenantFilter); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register(callbackUpdate, tc.addTenantFilter); err != nil {
		return err
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register(callbackDelete, tc.addTenantFilter); err != nil {
		return err
	}
	return db.Callback().Row().Before("gorm:row").Register(callbackRow, tc.addTenantFilter)
}

func (tc *TenantCallback) addTenantFilter(db *gorm.DB) {
	stmt := db.Statement
	if stmt.Context == nil || stmt.Unscoped {
		return
	}
	// raw SQL is already built
	if stmt.SQL.Len() > 0 {
		return
	}
	if stmt.Schema == nil || stmt.Schema.LookUpField(Column) == nil {
		return
	}
	if tc.hasTenantCondition(stmt) {
		return
	}

	tenantID := logger.GetTenantID(stmt.Context)
	if tenantID == 0 {
		if tc.required {
			_ = db.AddError(ErrTenantIDRequired)
		}
		return
	}

	stmt.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: clause.CurrentTable, Name: Column},
				Value:  tenantID,
			},
		},
	})
}

func (tc *TenantCallback) hasTenantCondition(stmt *gorm.Statement) bool {
	whereClause, ok := stmt.Clauses["WHERE"]
	if !ok {
		return false
	}
	where, ok := whereClause.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, expr := range where.Exprs {
		if exprContainsTenant(expr) {
			return true
		}
	}
	return false
}

func exprContainsTenant(expr clause.Expression) bool {
	switch e := expr.(type) {
	case clause.Eq:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == Column
		}
	case clause.IN:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == Column
		}
	case clause.AndConditions:
		for _, cond := range e.Exprs {
			if exprContainsTenant(cond) {
				return true
			}
		}
	case clause.Expr:
		return tenantColumnPattern.MatchString(e.SQL)
	}
	return false
}

// tenantColumnPattern matches hand-written conditions such as "tenant_id = ?"
var tenantColumnPattern = regexp.MustCompile(`\b` + Column + `\b`)

// EnableAutoTenantFilter registers the tenant callbacks on db
func EnableAutoTenantFilter(db *gorm.DB, required bool) error {
	return NewTenantCallback(required).RegisterCallbacks(db)
}

// DisableAutoTenantFilter removes the tenant callbacks, mainly for tests
func DisableAutoTenantFilter(db *gorm.DB) {
	_ = db.Callback().Query().Remove(callbackQuery)
	_ = db.Callback().Update().Remove(callbackUpdate)
	_ = db.Callback().Delete().Remove(callbackDelete)
	_ = db.Callback().Row().Remove(callbackRow)
}
