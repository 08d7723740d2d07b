package persistence

import (
	"context"

	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/handwerk/backoffice/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// ownedModel is a persistence model pointer that carries a tenant id
type ownedModel[M any] interface {
	*M
	tenant.Owned
}

// findScoped loads one row of the tenant by primary key. A missing row and a row of
// another tenant both come back as NOT_FOUND.
func findScoped[M any, P ownedModel[M]](ctx context.Context, db *tenant.TenantDB, tenantID, id int64, op, notFound string) (P, error) {
	var m M
	if err := db.WithTenant(ctx, tenantID).First(&m, id).Error; err != nil {
		return nil, translateError(err, op, notFound)
	}
	return tenant.Authorize[M, P](P(&m), tenantID, notFound)
}

// createScoped stamps the tenant on a new row and inserts it
func createScoped[P tenant.Owned](ctx context.Context, db *tenant.TenantDB, m P, tenantID int64, op string) error {
	if tenantID <= 0 {
		return tenant.ErrInvalidTenantID
	}
	err := db.DB().WithContext(ctx).Create(tenant.Stamp(m, tenantID)).Error
	return translateError(err, op, "")
}

// updateScoped rewrites every column of an existing row of the tenant except the id,
// the tenant id, the creation time and any extra omitted columns. No matching row means NOT_FOUND.
func updateScoped(ctx context.Context, db *tenant.TenantDB, m any, tenantID int64, op, notFound string, omit ...string) error {
	omitted := append([]string{"id", tenant.Column, "created_at"}, omit...)
	res := db.WithTenant(ctx, tenantID).Model(m).
		Select("*").Omit(omitted...).
		Updates(m)
	if res.Error != nil {
		return translateError(res.Error, op, notFound)
	}
	if res.RowsAffected == 0 {
		return shared.NewNotFoundError(notFound)
	}
	return nil
}

// deleteScoped removes the tenant's rows of a model matching the conditions
func deleteScoped(tx *gorm.DB, tenantID int64, model any, query string, args ...any) error {
	return tx.Scopes(tenant.Scope(tenantID)).Where(query, args...).Delete(model).Error
}
