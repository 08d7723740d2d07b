package billing

import (
	"strings"
	"time"

	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/handwerk/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OfferStatus represents the status of an offer
type OfferStatus string

const (
	OfferStatusDraft    OfferStatus = "entwurf"
	OfferStatusSent     OfferStatus = "versendet"
	OfferStatusAccepted OfferStatus = "angenommen"
	OfferStatusRejected OfferStatus = "abgelehnt"
	OfferStatusBilled   OfferStatus = "abgerechnet"
)

// IsValid checks if the status is a valid OfferStatus
func (s OfferStatus) IsValid() bool {
	switch s {
	case OfferStatusDraft, OfferStatusSent, OfferStatusAccepted, OfferStatusRejected, OfferStatusBilled:
		return true
	}
	return false
}

// String returns the string representation of OfferStatus
func (s OfferStatus) String() string {
	return string(s)
}

var offerTransitions = map[OfferStatus][]OfferStatus{
	OfferStatusDraft:    {OfferStatusSent},
	OfferStatusSent:     {OfferStatusAccepted, OfferStatusRejected},
	OfferStatusAccepted: {OfferStatusBilled},
}

// CanTransitionTo reports whether the offer may move from s to next
func (s OfferStatus) CanTransitionTo(next OfferStatus) bool {
	for _, allowed := range offerTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Offer is a priced proposal for a project. An accepted offer's items
// are ready-made invoice positions.
type Offer struct {
	shared.TenantAggregateRoot
	ProjectID     int64
	Title         string
	Description   string
	ClientName    string
	ClientAddress string
	TotalAmount   decimal.Decimal
	Currency      valueobject.Currency
	ValidUntil    *time.Time
	// Items is nil when the stored items could not be decoded
	Items         LineItems
	Status        OfferStatus
	AutoGenerated bool
}

// NewOffer creates a draft offer whose total is the sum of its item totals
func NewOffer(tenantID, projectID int64, title, clientName string, items LineItems) (*Offer, error) {
	title = strings.TrimSpace(title)
	if projectID <= 0 {
		return nil, shared.NewInvalidArgumentError("offer requires a project")
	}
	if title == "" {
		return nil, shared.NewInvalidArgumentError("offer title cannot be empty")
	}
	for i, it := range items {
		if strings.TrimSpace(it.Description) == "" {
			return nil, shared.NewInvalidArgumentError("offer item %d has no description", i+1)
		}
		if it.TotalPrice.IsNegative() {
			return nil, shared.NewInvalidArgumentError("offer item %d has a negative total", i+1)
		}
	}
	if items == nil {
		items = LineItems{}
	}
	return &Offer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProjectID:           projectID,
		Title:               title,
		ClientName:          strings.TrimSpace(clientName),
		TotalAmount:         valueobject.RoundCents(items.Total()),
		Currency:            valueobject.DefaultCurrency,
		Items:               items,
		Status:              OfferStatusDraft,
	}, nil
}

// IsAccepted reports whether the client accepted the offer
func (o *Offer) IsAccepted() bool {
	return o.Status == OfferStatusAccepted
}

// InvoiceLines returns the positions an invoice built from this offer carries.
// An offer without decodable items contributes one line from its title and total.
func (o *Offer) InvoiceLines() LineItems {
	if o.Items != nil {
		return o.Items
	}
	total := valueobject.RoundCents(o.TotalAmount)
	return LineItems{{
		Description: o.Title,
		Quantity:    decimal.NewFromInt(1),
		Unit:        "Stk",
		UnitPrice:   total,
		TotalPrice:  total,
		ItemType:    ItemTypeService,
	}}
}

// ChangeStatus moves the offer along its lifecycle
func (o *Offer) ChangeStatus(next OfferStatus) error {
	if !next.IsValid() {
		return shared.NewInvalidArgumentError("invalid offer status %q", next)
	}
	if !o.Status.CanTransitionTo(next) {
		return shared.NewInvalidStateError("cannot change offer status from %s to %s", o.Status, next)
	}
	o.Status = next
	o.UpdatedAt = time.Now()
	return nil
}

// MarkBilled marks an accepted offer as invoiced and records an OfferBilled event
func (o *Offer) MarkBilled(invoiceID int64, invoiceNumber string) error {
	if !o.IsAccepted() {
		return shared.NewInvalidArgumentError("offer %d is not accepted (status %s)", o.ID, o.Status)
	}
	o.Status = OfferStatusBilled
	o.UpdatedAt = time.Now()
	o.AddDomainEvent(NewOfferBilledEvent(o, invoiceID, invoiceNumber))
	return nil
}
