package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/handwerk/backoffice/internal/domain/billing"
	"github.com/handwerk/backoffice/internal/infrastructure/persistence/models"
	"github.com/handwerk/backoffice/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const settingsNotFound = "Keine Rechnungseinstellungen hinterlegt"

// GormSettingsRepository implements SettingsRepository using GORM
type GormSettingsRepository struct {
	db *tenant.TenantDB
}

// NewGormSettingsRepository creates a new GormSettingsRepository
func NewGormSettingsRepository(db *gorm.DB) *GormSettingsRepository {
	return &GormSettingsRepository{db: tenant.NewTenantDB(db)}
}

// FindForTenant returns the tenant's settings; NOT_FOUND when none were stored yet
func (r *GormSettingsRepository) FindForTenant(ctx context.Context, tenantID int64) (*billing.TenantSettings, error) {
	var m models.TenantSettingsModel
	if err := r.db.WithTenant(ctx, tenantID).First(&m).Error; err != nil {
		return nil, translateError(err, "find tenant settings", settingsNotFound)
	}
	if _, err := tenant.Authorize(&m, tenantID, settingsNotFound); err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// Save creates the tenant's settings or updates prefix, payment terms and tax rate.
// The invoice counter is only ever advanced by the sequence.
func (r *GormSettingsRepository) Save(ctx context.Context, s *billing.TenantSettings) error {
	m := &models.TenantSettingsModel{InvoiceNextNumber: s.InvoiceNextNumber}
	m.ApplyDomain(s)
	if m.InvoiceNextNumber < 1 {
		m.InvoiceNextNumber = 1
	}
	if s.TenantID <= 0 {
		return tenant.ErrInvalidTenantID
	}
	err := r.db.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: tenant.Column}},
			DoUpdates: clause.AssignmentColumns([]string{"invoice_prefix", "payment_terms_days", "default_tax_rate", "updated_at"}),
		}).
		Create(tenant.Stamp(m, s.TenantID)).Error
	return translateError(err, "save tenant settings", settingsNotFound)
}

// DBInvoiceSequence counts invoice numbers in tenant_settings.invoice_next_number.
// The settings row is locked for the duration of the increment, so concurrent callers queue.
type DBInvoiceSequence struct {
	db *tenant.TenantDB
}

// NewDBInvoiceSequence creates a database-backed invoice sequence
func NewDBInvoiceSequence(db *gorm.DB) *DBInvoiceSequence {
	return &DBInvoiceSequence{db: tenant.NewTenantDB(db)}
}

// Next returns the tenant's next invoice sequence value, creating the settings row on first use
func (s *DBInvoiceSequence) Next(ctx context.Context, tenantID int64) (int64, error) {
	if tenantID <= 0 {
		return 0, tenant.ErrInvalidTenantID
	}
	var next int64
	err := s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := lockSettings(tx, tenantID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			defaults := billing.DefaultTenantSettings(tenantID)
			seed := &models.TenantSettingsModel{InvoiceNextNumber: defaults.InvoiceNextNumber}
			seed.ApplyDomain(&defaults)
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(tenant.Stamp(seed, tenantID)).Error; err != nil {
				return err
			}
			m, err = lockSettings(tx, tenantID)
		}
		if err != nil {
			return err
		}
		next = m.InvoiceNextNumber
		return tx.Model(m).Scopes(tenant.Scope(tenantID)).
			Update("invoice_next_number", gorm.Expr("invoice_next_number + 1")).Error
	})
	if err != nil {
		return 0, fmt.Errorf("allocate invoice number for tenant %d: %w", tenantID, err)
	}
	return next, nil
}

func lockSettings(tx *gorm.DB, tenantID int64) (*models.TenantSettingsModel, error) {
	var m models.TenantSettingsModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(tenant.Scope(tenantID)).
		First(&m).Error
	return &m, err
}

var (
	_ billing.SettingsRepository = (*GormSettingsRepository)(nil)
	_ billing.InvoiceSequence    = (*DBInvoiceSequence)(nil)
)
