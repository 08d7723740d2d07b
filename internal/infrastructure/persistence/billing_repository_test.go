package persistence

import (
	"context"
	"errors"
	"testing"

	appbilling "github.com/handwerk/backoffice/internal/application/billing"
	"github.com/handwerk/backoffice/internal/domain/billing"
	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormInvoiceRepository_SaveAndFind(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	p := seedProject(t, db, tenantA, "Bad")

	inv := newInvoice(t, p, "RE-20240628-001-001")
	require.NoError(t, repo.Save(ctx, inv))
	require.NotZero(t, inv.ID)

	stored, err := repo.FindByIDForTenant(ctx, tenantA, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rechnung RE-20240628-001-001", stored.Title)
	assert.True(t, stored.TotalAmount.Equal(dec("190.4")))
	require.Len(t, stored.Items, 1)
	assert.Equal(t, billing.ItemTypeLabor, stored.Items[0].ItemType)
	assert.True(t, stored.Items[0].TotalPrice.Equal(dec("160")))
	assert.Equal(t, billing.InvoiceStatusDraft, stored.Status)

	_, err = repo.FindByIDForTenant(ctx, tenantB, inv.ID)
	assert.True(t, shared.HasCode(err, shared.CodeNotFound))

	require.NoError(t, stored.ChangeStatus(billing.InvoiceStatusSent))
	require.NoError(t, repo.Save(ctx, stored))
	reloaded, err := repo.FindByIDForTenant(ctx, tenantA, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusSent, reloaded.Status)
}

func TestGormInvoiceRepository_Uniqueness(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	p := seedProject(t, db, tenantA, "Bad")
	foreign := seedProject(t, db, tenantB, "Dach")

	require.NoError(t, repo.Save(ctx, newInvoice(t, p, "RE-1")))

	t.Run("duplicate number within a tenant is a conflict", func(t *testing.T) {
		err := repo.Save(ctx, newInvoice(t, p, "RE-1"))
		assert.True(t, shared.HasCode(err, shared.CodeConflict), "got %v", err)
	})

	t.Run("the same number in another tenant is fine", func(t *testing.T) {
		assert.NoError(t, repo.Save(ctx, newInvoice(t, foreign, "RE-1")))
	})

	t.Run("second invoice for one offer is a conflict", func(t *testing.T) {
		offer := seedOffer(t, db, p, billing.OfferStatusAccepted)
		first, err := billing.NewInvoiceFromOffer(offer, "RE-2", 30, day)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, first))

		second, err := billing.NewInvoiceFromOffer(offer, "RE-3", 30, day)
		require.NoError(t, err)
		err = repo.Save(ctx, second)
		assert.True(t, shared.HasCode(err, shared.CodeConflict), "got %v", err)

		found, err := repo.FindByOffer(ctx, tenantA, offer.ID)
		require.NoError(t, err)
		assert.Equal(t, "RE-2", found.InvoiceNumber)
		require.NotNil(t, found.OfferID)
		assert.Equal(t, offer.ID, *found.OfferID)

		_, err = repo.FindByOffer(ctx, tenantB, offer.ID)
		assert.True(t, shared.HasCode(err, shared.CodeNotFound))
	})
}

func TestGormInvoiceRepository_ListAndSum(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()
	p := seedProject(t, db, tenantA, "Bad")
	foreign := seedProject(t, db, tenantB, "Dach")

	for i, number := range []string{"RE-1", "RE-2", "RE-3"} {
		inv := newInvoice(t, p, number)
		if i < 2 {
			require.NoError(t, inv.ChangeStatus(billing.InvoiceStatusSent))
			require.NoError(t, inv.ChangeStatus(billing.InvoiceStatusPaid))
		}
		require.NoError(t, repo.Save(ctx, inv))
	}
	paidForeign := newInvoice(t, foreign, "RE-1")
	require.NoError(t, paidForeign.ChangeStatus(billing.InvoiceStatusSent))
	require.NoError(t, paidForeign.ChangeStatus(billing.InvoiceStatusPaid))
	require.NoError(t, repo.Save(ctx, paidForeign))

	t.Run("sum covers only own invoices in the status", func(t *testing.T) {
		sum, err := repo.SumTotalByStatus(ctx, tenantA, billing.InvoiceStatusPaid)
		require.NoError(t, err)
		assert.True(t, sum.Equal(dec("380.8")), "got %s", sum)
	})

	t.Run("sum without matches is zero", func(t *testing.T) {
		sum, err := repo.SumTotalByStatus(ctx, tenantA, billing.InvoiceStatusCancelled)
		require.NoError(t, err)
		assert.True(t, sum.IsZero())
	})

	t.Run("filter by status and project", func(t *testing.T) {
		status := billing.InvoiceStatusDraft
		invoices, total, err := repo.FindAllForTenant(ctx, tenantA, billing.InvoiceFilter{
			Filter:    shared.DefaultFilter(),
			ProjectID: &p.ID,
			Status:    &status,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, "RE-3", invoices[0].InvoiceNumber)
	})

	t.Run("paging", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.PageSize = 2
		filter.OrderBy = "invoice_number"
		filter.OrderDir = "asc"
		invoices, total, err := repo.FindAllForTenant(ctx, tenantA, billing.InvoiceFilter{Filter: filter})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, invoices, 2)
		assert.Equal(t, "RE-1", invoices[0].InvoiceNumber)
	})
}

func TestGormOfferRepository(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormOfferRepository(db)
	ctx := context.Background()
	p := seedProject(t, db, tenantA, "Bad")

	first := seedOffer(t, db, p, billing.OfferStatusDraft)
	second := seedOffer(t, db, p, billing.OfferStatusAccepted)

	offers, err := repo.FindByProject(ctx, tenantA, p.ID)
	require.NoError(t, err)
	require.Len(t, offers, 2)
	assert.Equal(t, first.ID, offers[0].ID)
	require.Len(t, offers[1].Items, 1)
	assert.True(t, offers[1].Items[0].TotalPrice.Equal(dec("450")))

	foreign, err := repo.FindByProject(ctx, tenantB, p.ID)
	require.NoError(t, err)
	assert.Empty(t, foreign)

	require.NoError(t, second.MarkBilled(77, "RE-9"))
	require.NoError(t, repo.Save(ctx, second))
	stored, err := repo.FindByIDForTenant(ctx, tenantA, second.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.OfferStatusBilled, stored.Status)
	assert.Len(t, stored.Items, 1, "items survive a status update")
}

func TestGormSettingsRepository(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormSettingsRepository(db)
	seq := NewDBInvoiceSequence(db)
	ctx := context.Background()

	_, err := repo.FindForTenant(ctx, tenantA)
	assert.True(t, shared.HasCode(err, shared.CodeNotFound))

	t.Run("sequence seeds and increments per tenant", func(t *testing.T) {
		for want := int64(1); want <= 3; want++ {
			got, err := seq.Next(ctx, tenantA)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}
		got, err := seq.Next(ctx, tenantB)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got)

		_, err = seq.Next(ctx, 0)
		assert.Error(t, err)
	})

	t.Run("saving settings keeps the counter", func(t *testing.T) {
		s, err := repo.FindForTenant(ctx, tenantA)
		require.NoError(t, err)
		assert.Equal(t, int64(4), s.InvoiceNextNumber)

		prefix, terms := "hw", 14
		require.NoError(t, s.Apply(billing.SettingsUpdate{InvoicePrefix: &prefix, PaymentTermsDays: &terms}))
		s.InvoiceNextNumber = 1
		require.NoError(t, repo.Save(ctx, s))

		stored, err := repo.FindForTenant(ctx, tenantA)
		require.NoError(t, err)
		assert.Equal(t, "HW", stored.InvoicePrefix)
		assert.Equal(t, 14, stored.PaymentTermsDays)
		assert.Equal(t, int64(4), stored.InvoiceNextNumber)

		next, err := seq.Next(ctx, tenantA)
		require.NoError(t, err)
		assert.Equal(t, int64(4), next)
	})

	t.Run("first save creates the row", func(t *testing.T) {
		s := billing.DefaultTenantSettings(3)
		s.DefaultTaxRate = dec("7")
		require.NoError(t, repo.Save(ctx, &s))
		stored, err := repo.FindForTenant(ctx, 3)
		require.NoError(t, err)
		assert.True(t, stored.DefaultTaxRate.Equal(dec("7")))
		assert.Equal(t, int64(1), stored.InvoiceNextNumber)
	})
}

func TestGormTransactionScope(t *testing.T) {
	db := newSQLiteDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()
	p := seedProject(t, db, tenantA, "Bad")
	offer := seedOffer(t, db, p, billing.OfferStatusAccepted)

	t.Run("rollback undoes every write", func(t *testing.T) {
		boom := errors.New("boom")
		err := scope.Execute(ctx, func(repos appbilling.TransactionalRepositories) error {
			inv, err := billing.NewInvoiceFromOffer(offer, "RE-1", 30, day)
			require.NoError(t, err)
			require.NoError(t, repos.Invoices().Save(ctx, inv))

			o, err := repos.Offers().FindByIDForTenant(ctx, tenantA, offer.ID)
			require.NoError(t, err)
			require.NoError(t, o.MarkBilled(inv.ID, inv.InvoiceNumber))
			require.NoError(t, repos.Offers().Save(ctx, o))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		stored, err := NewGormOfferRepository(db).FindByIDForTenant(ctx, tenantA, offer.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.OfferStatusAccepted, stored.Status)
		_, err = NewGormInvoiceRepository(db).FindByOffer(ctx, tenantA, offer.ID)
		assert.True(t, shared.HasCode(err, shared.CodeNotFound))
	})

	t.Run("commit keeps both writes", func(t *testing.T) {
		err := scope.Execute(ctx, func(repos appbilling.TransactionalRepositories) error {
			if _, err := repos.Projects().FindByIDForTenant(ctx, tenantA, p.ID); err != nil {
				return err
			}
			inv, err := billing.NewInvoiceFromOffer(offer, "RE-1", 30, day)
			if err != nil {
				return err
			}
			if err := repos.Invoices().Save(ctx, inv); err != nil {
				return err
			}
			o, err := repos.Offers().FindByIDForTenant(ctx, tenantA, offer.ID)
			if err != nil {
				return err
			}
			if err := o.MarkBilled(inv.ID, inv.InvoiceNumber); err != nil {
				return err
			}
			return repos.Offers().Save(ctx, o)
		})
		require.NoError(t, err)

		stored, err := NewGormOfferRepository(db).FindByIDForTenant(ctx, tenantA, offer.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.OfferStatusBilled, stored.Status)
	})
}
