package billing

import (
	"context"
	"strings"

	"github.com/handwerk/backoffice/internal/domain/billing"
	"github.com/handwerk/backoffice/internal/domain/identity"
	"github.com/handwerk/backoffice/internal/domain/project"
	"github.com/handwerk/backoffice/internal/domain/shared"
)

// OfferService handles offer business operations
type OfferService struct {
	projects project.ProjectRepository
	offers   billing.OfferRepository
}

// NewOfferService creates a new OfferService
func NewOfferService(projects project.ProjectRepository, offers billing.OfferRepository) *OfferService {
	return &OfferService{projects: projects, offers: offers}
}

// Create creates a draft offer for a project of the caller's tenant
func (s *OfferService) Create(ctx context.Context, caller identity.Caller, projectID int64, req CreateOfferRequest) (*OfferResponse, error) {
	if err := caller.Require(identity.CapabilityBilling); err != nil {
		return nil, err
	}
	proj, err := s.projects.FindByIDForTenant(ctx, caller.TenantID, projectID)
	if err != nil {
		return nil, err
	}

	clientName := req.ClientName
	if strings.TrimSpace(clientName) == "" {
		clientName = proj.ClientName
	}
	offer, err := billing.NewOffer(caller.TenantID, proj.ID, req.Title, clientName, req.Items)
	if err != nil {
		return nil, err
	}
	offer.Description = strings.TrimSpace(req.Description)
	offer.ClientAddress = strings.TrimSpace(req.ClientAddress)
	if offer.ClientAddress == "" {
		offer.ClientAddress = proj.Address
	}
	offer.ValidUntil = req.ValidUntil

	if err := s.offers.Save(ctx, offer); err != nil {
		return nil, err
	}
	response := ToOfferResponse(offer)
	return &response, nil
}

// Get retrieves an offer by ID
func (s *OfferService) Get(ctx context.Context, caller identity.Caller, offerID int64) (*OfferResponse, error) {
	if err := caller.Require(identity.CapabilityBilling); err != nil {
		return nil, err
	}
	offer, err := s.offers.FindByIDForTenant(ctx, caller.TenantID, offerID)
	if err != nil {
		return nil, err
	}
	response := ToOfferResponse(offer)
	return &response, nil
}

// ListByProject returns the offers of a project, oldest first
func (s *OfferService) ListByProject(ctx context.Context, caller identity.Caller, projectID int64) ([]OfferResponse, error) {
	if err := caller.Require(identity.CapabilityBilling); err != nil {
		return nil, err
	}
	if _, err := s.projects.FindByIDForTenant(ctx, caller.TenantID, projectID); err != nil {
		return nil, err
	}
	offers, err := s.offers.FindByProject(ctx, caller.TenantID, projectID)
	if err != nil {
		return nil, err
	}
	responses := make([]OfferResponse, len(offers))
	for i := range offers {
		responses[i] = ToOfferResponse(&offers[i])
	}
	return responses, nil
}

// ChangeStatus moves an offer along its lifecycle.
// Billing an offer happens only through invoice creation.
func (s *OfferService) ChangeStatus(ctx context.Context, caller identity.Caller, offerID int64, req UpdateOfferStatusRequest) (*OfferResponse, error) {
	if err := caller.Require(identity.CapabilityBilling); err != nil {
		return nil, err
	}
	offer, err := s.offers.FindByIDForTenant(ctx, caller.TenantID, offerID)
	if err != nil {
		return nil, err
	}
	next := billing.OfferStatus(req.Status)
	if next == billing.OfferStatusBilled {
		return nil, shared.NewInvalidArgumentError("offers are marked %s by creating an invoice", next)
	}
	if err := offer.ChangeStatus(next); err != nil {
		return nil, err
	}
	if err := s.offers.Save(ctx, offer); err != nil {
		return nil, err
	}
	response := ToOfferResponse(offer)
	return &response, nil
}
