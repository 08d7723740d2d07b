package billing

import (
	"context"

	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	ProjectID *int64
	Status    *InvoiceStatus
}

// OfferRepository defines the interface for offer persistence
type OfferRepository interface {
	// FindByIDForTenant finds an offer by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id int64) (*Offer, error)

	// FindByProject returns all offers of a project, oldest first
	FindByProject(ctx context.Context, tenantID, projectID int64) ([]Offer, error)

	// Save creates or updates an offer
	Save(ctx context.Context, offer *Offer) error
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByIDForTenant finds an invoice by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id int64) (*Invoice, error)

	// FindByOffer finds the invoice created from an offer; NOT_FOUND when there is none
	FindByOffer(ctx context.Context, tenantID, offerID int64) (*Invoice, error)

	// FindAllForTenant lists invoices of a tenant with filtering and paging
	FindAllForTenant(ctx context.Context, tenantID int64, filter InvoiceFilter) ([]Invoice, int64, error)

	// Save creates or updates an invoice. A duplicate number or offer reference is a CONFLICT.
	Save(ctx context.Context, invoice *Invoice) error

	// SumTotalByStatus sums total_amount over the tenant's invoices in one status
	SumTotalByStatus(ctx context.Context, tenantID int64, status InvoiceStatus) (decimal.Decimal, error)
}

// SettingsRepository defines the interface for tenant invoicing settings
type SettingsRepository interface {
	// FindForTenant returns the tenant's settings; NOT_FOUND when none were stored yet
	FindForTenant(ctx context.Context, tenantID int64) (*TenantSettings, error)

	// Save creates or updates the tenant's settings
	Save(ctx context.Context, settings *TenantSettings) error
}

// InvoiceSequence hands out the tenant's consecutive invoice numbers.
// Implementations must be atomic so two concurrent callers never receive the same value.
type InvoiceSequence interface {
	Next(ctx context.Context, tenantID int64) (int64, error)
}
