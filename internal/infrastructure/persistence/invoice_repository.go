package persistence

import (
	"context"

	"github.com/handwerk/backoffice/internal/domain/billing"
	"github.com/handwerk/backoffice/internal/infrastructure/persistence/models"
	"github.com/handwerk/backoffice/internal/infrastructure/persistence/tenant"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const invoiceNotFound = "Rechnung nicht gefunden"

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *tenant.TenantDB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: tenant.NewTenantDB(db)}
}

// FindByIDForTenant finds an invoice by ID within a tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id int64) (*billing.Invoice, error) {
	m, err := findScoped[models.InvoiceModel](ctx, r.db, tenantID, id, "find invoice", invoiceNotFound)
	if err != nil {
		return nil, err
	}
	return m.ToDomain()
}

// FindByOffer finds the invoice created from an offer
func (r *GormInvoiceRepository) FindByOffer(ctx context.Context, tenantID, offerID int64) (*billing.Invoice, error) {
	var m models.InvoiceModel
	if err := r.db.WithTenant(ctx, tenantID).Where("offer_id = ?", offerID).First(&m).Error; err != nil {
		return nil, translateError(err, "find invoice by offer", invoiceNotFound)
	}
	if _, err := tenant.Authorize(&m, tenantID, invoiceNotFound); err != nil {
		return nil, err
	}
	return m.ToDomain()
}

// FindAllForTenant lists invoices of a tenant
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID int64, filter billing.InvoiceFilter) ([]billing.Invoice, int64, error) {
	query := r.db.WithTenant(ctx, tenantID).Model(&models.InvoiceModel{})
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("invoice_number LIKE ? OR client_name LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "count invoices", invoiceNotFound)
	}

	var rows []models.InvoiceModel
	if err := applyPaging(query, filter.Filter, InvoiceSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, translateError(err, "list invoices", invoiceNotFound)
	}

	invoices := make([]billing.Invoice, 0, len(rows))
	for i := range rows {
		inv, err := rows[i].ToDomain()
		if err != nil {
			return nil, 0, translateError(err, "decode invoice items", invoiceNotFound)
		}
		invoices = append(invoices, *inv)
	}
	return invoices, total, nil
}

// Save creates or updates an invoice. A second invoice for the same offer or number
// is rejected by the unique indexes and reported as CONFLICT.
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	m, err := models.InvoiceModelFromDomain(inv)
	if err != nil {
		return err
	}
	if inv.IsNew() {
		if err := createScoped(ctx, r.db, m, inv.TenantID, "create invoice"); err != nil {
			return err
		}
		inv.ID = m.ID
		inv.TenantID = m.TenantID
		inv.CreatedAt = m.CreatedAt
		inv.UpdatedAt = m.UpdatedAt
		return nil
	}
	return updateScoped(ctx, r.db, m, inv.TenantID, "update invoice", invoiceNotFound)
}

// SumTotalByStatus sums total_amount over the tenant's invoices in one status
func (r *GormInvoiceRepository) SumTotalByStatus(ctx context.Context, tenantID int64, status billing.InvoiceStatus) (decimal.Decimal, error) {
	var result struct {
		Total decimal.NullDecimal
	}
	if err := r.db.WithTenant(ctx, tenantID).
		Model(&models.InvoiceModel{}).
		Select("SUM(total_amount) AS total").
		Where("status = ?", status).
		Scan(&result).Error; err != nil {
		return decimal.Zero, translateError(err, "sum invoices", invoiceNotFound)
	}
	if !result.Total.Valid {
		return decimal.Zero, nil
	}
	return result.Total.Decimal, nil
}

var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
