// Package tenant provides the tenant isolation primitives for GORM.
//
// Every data access path goes through exactly these functions:
//
//	Scope(tenantID)                  narrow a collection query to one tenant
//	Authorize(record, tenantID, msg) reject a single record of another tenant as NOT_FOUND
//	Stamp(record, tenantID)          force the tenant id on a record about to be created
//
// TenantDB applies Scope using the tenant carried in the request context, and the
// optional callbacks in callback.go add the same filter to statements that forgot it.
//
// Usage:
//
//	db := tenant.NewTenantDB(gormDB)
//	db.WithContext(ctx).Find(&projects) // WHERE projects.tenant_id = 42
package tenant

import (
	"context"
	"errors"

	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/handwerk/backoffice/internal/infrastructure/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Column is the name of the tenant partitioning column
const Column = "tenant_id"

// ErrTenantIDRequired is returned when tenant_id is required but not found
var ErrTenantIDRequired = errors.New("tenant_id is required but not found in context")

// ErrInvalidTenantID is returned when the tenant id is not positive
var ErrInvalidTenantID = errors.New("invalid tenant_id")

// Owned is implemented by persistence models that carry a tenant id
type Owned interface {
	GetTenantID() int64
	SetTenantID(id int64)
}

// Scope narrows a query to rows of the given tenant. It is a no-op for models
// without a tenant column. If the model cannot be inspected the filter is applied.
func Scope(tenantID int64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID <= 0 {
			_ = db.AddError(ErrInvalidTenantID)
			return db
		}
		if known, has := modelHasTenantColumn(db); known && !has {
			return db
		}
		return db.Where(clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: Column},
			Value:  tenantID,
		})
	}
}

// modelHasTenantColumn reports whether the statement's model was inspected
// and whether it has a tenant column.
func modelHasTenantColumn(db *gorm.DB) (known, has bool) {
	stmt := db.Statement
	target := stmt.Model
	if target == nil {
		target = stmt.Dest
	}
	if target == nil {
		return false, false
	}
	if stmt.Schema == nil {
		if err := stmt.Parse(target); err != nil {
			return false, false
		}
	}
	return true, stmt.Schema.LookUpField(Column) != nil
}

// Authorize returns the record when it exists and belongs to tenantID. A nil record
// and a record of another tenant produce the same NOT_FOUND error, so a caller cannot
// learn that an id exists elsewhere.
func Authorize[T any, P interface {
	*T
	GetTenantID() int64
}](record P, tenantID int64, notFoundMessage string) (P, error) {
	if record == nil || tenantID <= 0 || record.GetTenantID() != tenantID {
		return nil, shared.NewNotFoundError(notFoundMessage)
	}
	return record, nil
}

// Stamp overwrites the tenant id of a record about to be created, whatever the
// payload carried.
func Stamp[P interface{ SetTenantID(int64) }](record P, tenantID int64) P {
	record.SetTenantID(tenantID)
	return record
}

// TenantDB wraps GORM DB with tenant scoping
type TenantDB struct {
	db       *gorm.DB
	required bool
}

// NewTenantDB creates a TenantDB that refuses queries without a tenant
func NewTenantDB(db *gorm.DB) *TenantDB {
	return &TenantDB{db: db, required: true}
}

// DB returns the underlying GORM DB without tenant scoping
func (t *TenantDB) DB() *gorm.DB {
	return t.db
}

// WithContext returns a GORM DB scoped to the tenant stored in ctx.
// Without a tenant the returned DB fails every operation with ErrTenantIDRequired.
func (t *TenantDB) WithContext(ctx context.Context) *gorm.DB {
	return t.WithTenant(ctx, logger.GetTenantID(ctx))
}

// WithTenant returns a GORM DB scoped to an explicit tenant
func (t *TenantDB) WithTenant(ctx context.Context, tenantID int64) *gorm.DB {
	db := t.db.WithContext(ctx)
	if tenantID == 0 {
		if t.required {
			_ = db.AddError(ErrTenantIDRequired)
		}
		return db
	}
	return db.Scopes(Scope(tenantID))
}

// Transaction runs fn inside a transaction scoped to the tenant stored in ctx
func (t *TenantDB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tenantID := logger.GetTenantID(ctx)
	if tenantID == 0 && t.required {
		return ErrTenantIDRequired
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tenantID != 0 {
			tx = tx.Scopes(Scope(tenantID))
		}
		return fn(tx)
	})
}

// SetRequired returns a copy that does or does not insist on a tenant
func (t *TenantDB) SetRequired(required bool) *TenantDB {
	return &TenantDB{db: t.db, required: required}
}
