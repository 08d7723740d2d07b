package billing

import (
	"context"

	"github.com/handwerk/backoffice/internal/domain/billing"
	"github.com/handwerk/backoffice/internal/domain/identity"
	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/handwerk/backoffice/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// SettingsService manages a tenant's invoicing settings
type SettingsService struct {
	settings billing.SettingsRepository
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(settings billing.SettingsRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

// Get returns the tenant's settings, or the defaults when none are stored
func (s *SettingsService) Get(ctx context.Context, caller identity.Caller) (*SettingsResponse, error) {
	if err := caller.Require(identity.CapabilityBilling); err != nil {
		return nil, err
	}
	settings, err := s.load(ctx, caller.TenantID)
	if err != nil {
		return nil, err
	}
	response := ToSettingsResponse(settings)
	return &response, nil
}

// Update changes the tenant's prefix, payment terms or default tax rate.
// The invoice counter cannot be changed here.
func (s *SettingsService) Update(ctx context.Context, caller identity.Caller, req UpdateSettingsRequest) (*SettingsResponse, error) {
	if err := caller.Require(identity.CapabilityAdministration); err != nil {
		return nil, err
	}
	settings, err := s.load(ctx, caller.TenantID)
	if err != nil {
		return nil, err
	}
	if err := settings.Apply(billing.SettingsUpdate{
		InvoicePrefix:    req.InvoicePrefix,
		PaymentTermsDays: req.PaymentTermsDays,
		DefaultTaxRate:   req.DefaultTaxRate,
	}); err != nil {
		return nil, err
	}
	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Invoicing settings updated",
		zap.String("invoice_prefix", settings.InvoicePrefix),
		zap.Int("payment_terms_days", settings.PaymentTermsDays),
	)
	response := ToSettingsResponse(settings)
	return &response, nil
}

func (s *SettingsService) load(ctx context.Context, tenantID int64) (*billing.TenantSettings, error) {
	settings, err := s.settings.FindForTenant(ctx, tenantID)
	if err == nil {
		return settings, nil
	}
	if shared.HasCode(err, shared.CodeNotFound) {
		defaults := billing.DefaultTenantSettings(tenantID)
		return &defaults, nil
	}
	return nil, err
}
