package persistence

import (
	"context"

	"github.com/handwerk/backoffice/internal/domain/billing"
	"github.com/handwerk/backoffice/internal/infrastructure/persistence/models"
	"github.com/handwerk/backoffice/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

const offerNotFound = "Angebot nicht gefunden"

// GormOfferRepository implements OfferRepository using GORM
type GormOfferRepository struct {
	db *tenant.TenantDB
}

// NewGormOfferRepository creates a new GormOfferRepository
func NewGormOfferRepository(db *gorm.DB) *GormOfferRepository {
	return &GormOfferRepository{db: tenant.NewTenantDB(db)}
}

// FindByIDForTenant finds an offer by ID within a tenant
func (r *GormOfferRepository) FindByIDForTenant(ctx context.Context, tenantID, id int64) (*billing.Offer, error) {
	m, err := findScoped[models.OfferModel](ctx, r.db, tenantID, id, "find offer", offerNotFound)
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByProject returns all offers of a project, oldest first
func (r *GormOfferRepository) FindByProject(ctx context.Context, tenantID, projectID int64) ([]billing.Offer, error) {
	var rows []models.OfferModel
	if err := r.db.WithTenant(ctx, tenantID).
		Where("project_id = ?", projectID).
		Order("created_at, id").
		Find(&rows).Error; err != nil {
		return nil, translateError(err, "list offers", offerNotFound)
	}
	offers := make([]billing.Offer, len(rows))
	for i := range rows {
		offers[i] = *rows[i].ToDomain()
	}
	return offers, nil
}

// Save creates or updates an offer. Items that could not be decoded on load are left untouched.
func (r *GormOfferRepository) Save(ctx context.Context, o *billing.Offer) error {
	m, err := models.OfferModelFromDomain(o)
	if err != nil {
		return err
	}
	if o.IsNew() {
		if err := createScoped(ctx, r.db, m, o.TenantID, "create offer"); err != nil {
			return err
		}
		o.TenantEntity = m.ToDomainTenantEntity()
		return nil
	}
	var omit []string
	if o.Items == nil {
		omit = append(omit, "items")
	}
	return updateScoped(ctx, r.db, m, o.TenantID, "update offer", offerNotFound, omit...)
}

var _ billing.OfferRepository = (*GormOfferRepository)(nil)
