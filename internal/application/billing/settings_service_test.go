package billing

import (
	"context"
	"testing"

	"github.com/handwerk/backoffice/internal/domain/billing"
	"github.com/handwerk/backoffice/internal/domain/identity"
	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSettingsService_Get(t *testing.T) {
	repo := new(MockSettingsRepository)
	svc := NewSettingsService(repo)
	repo.On("FindForTenant", mock.Anything, tenantA).Return(nil, shared.NewNotFoundError("Keine Rechnungseinstellungen hinterlegt"))

	resp, err := svc.Get(context.Background(), accountant())
	require.NoError(t, err)
	assert.Equal(t, "RE", resp.InvoicePrefix)
	assert.Equal(t, 30, resp.PaymentTermsDays)
	assert.Equal(t, int64(1), resp.InvoiceNextNumber)
	assert.True(t, resp.DefaultTaxRate.Equal(d("19")))
}

func TestSettingsService_Update(t *testing.T) {
	admin := identity.Caller{TenantID: tenantA, UserID: 1, Role: identity.RoleAdmin}

	t.Run("admin changes prefix and terms", func(t *testing.T) {
		repo := new(MockSettingsRepository)
		svc := NewSettingsService(repo)
		stored := billing.DefaultTenantSettings(tenantA)
		stored.InvoiceNextNumber = 12
		repo.On("FindForTenant", mock.Anything, tenantA).Return(&stored, nil)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)

		prefix, terms := "hw", 14
		resp, err := svc.Update(context.Background(), admin, UpdateSettingsRequest{InvoicePrefix: &prefix, PaymentTermsDays: &terms})
		require.NoError(t, err)
		assert.Equal(t, "HW", resp.InvoicePrefix)
		assert.Equal(t, 14, resp.PaymentTermsDays)
		assert.Equal(t, int64(12), resp.InvoiceNextNumber)
	})

	t.Run("accountant may not change settings", func(t *testing.T) {
		repo := new(MockSettingsRepository)
		svc := NewSettingsService(repo)

		terms := 10
		_, err := svc.Update(context.Background(), accountant(), UpdateSettingsRequest{PaymentTermsDays: &terms})
		assert.True(t, shared.HasCode(err, shared.CodeForbidden))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("out of range terms are rejected", func(t *testing.T) {
		repo := new(MockSettingsRepository)
		svc := NewSettingsService(repo)
		repo.On("FindForTenant", mock.Anything, tenantA).Return(nil, shared.NewNotFoundError("Keine Rechnungseinstellungen hinterlegt"))

		terms := 400
		_, err := svc.Update(context.Background(), admin, UpdateSettingsRequest{PaymentTermsDays: &terms})
		assert.True(t, shared.HasCode(err, shared.CodeInvalidArgument))
	})
}
