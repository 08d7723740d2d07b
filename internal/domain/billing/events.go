package billing

import (
	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types raised by the billing aggregates
const (
	EventTypeInvoiceCreated       = "invoice.created"
	EventTypeInvoiceStatusChanged = "invoice.status_changed"
	EventTypeOfferBilled          = "offer.billed"
)

// InvoiceCreatedEvent is raised when an invoice is persisted
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	ProjectID     int64           `json:"project_id"`
	OfferID       *int64          `json:"offer_id,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	ItemCount     int             `json:"item_count"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, "Invoice", inv.ID, inv.TenantID),
		InvoiceNumber:   inv.InvoiceNumber,
		ProjectID:       inv.ProjectID,
		OfferID:         inv.OfferID,
		TotalAmount:     inv.TotalAmount,
		ItemCount:       len(inv.Items),
	}
}

// InvoiceStatusChangedEvent is raised on every invoice status transition
type InvoiceStatusChangedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string        `json:"invoice_number"`
	From          InvoiceStatus `json:"from"`
	To            InvoiceStatus `json:"to"`
}

// NewInvoiceStatusChangedEvent creates a new InvoiceStatusChangedEvent
func NewInvoiceStatusChangedEvent(inv *Invoice, from InvoiceStatus) *InvoiceStatusChangedEvent {
	return &InvoiceStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceStatusChanged, "Invoice", inv.ID, inv.TenantID),
		InvoiceNumber:   inv.InvoiceNumber,
		From:            from,
		To:              inv.Status,
	}
}

// OfferBilledEvent is raised when an accepted offer is converted into an invoice
type OfferBilledEvent struct {
	shared.BaseDomainEvent
	InvoiceID     int64  `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
}

// NewOfferBilledEvent creates a new OfferBilledEvent
func NewOfferBilledEvent(offer *Offer, invoiceID int64, invoiceNumber string) *OfferBilledEvent {
	return &OfferBilledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOfferBilled, "Offer", offer.ID, offer.TenantID),
		InvoiceID:       invoiceID,
		InvoiceNumber:   invoiceNumber,
	}
}
