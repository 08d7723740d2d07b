package billing

import (
	"strings"
	"time"

	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/handwerk/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "entwurf"
	InvoiceStatusSent      InvoiceStatus = "versendet"
	InvoiceStatusPaid      InvoiceStatus = "bezahlt"
	InvoiceStatusSettled   InvoiceStatus = "abgerechnet"
	InvoiceStatusCancelled InvoiceStatus = "storniert"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusSettled, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transition is possible
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusSettled || s == InvoiceStatusCancelled
}

var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusDraft: {InvoiceStatusSent, InvoiceStatusCancelled},
	InvoiceStatusSent:  {InvoiceStatusPaid, InvoiceStatusCancelled},
	InvoiceStatusPaid:  {InvoiceStatusSettled},
}

// CanTransitionTo reports whether the invoice may move from s to next
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	for _, allowed := range invoiceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

const (
	// DefaultPaymentTermsDays is used when the tenant has not configured payment terms
	DefaultPaymentTermsDays = 30
	// GeneratedInvoiceDescription is set on invoices created from a calculation
	GeneratedInvoiceDescription = "Automatisch generierte Rechnung"
)

// Invoice is a persisted billing document
type Invoice struct {
	shared.TenantAggregateRoot
	ProjectID     int64
	OfferID       *int64
	InvoiceNumber string
	Title         string
	Description   string
	ClientName    string
	ClientAddress string
	Subtotal      decimal.Decimal
	TaxAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
	Currency      valueobject.Currency
	InvoiceDate   time.Time
	DueDate       time.Time
	Items         LineItems
	Status        InvoiceStatus
}

// InvoiceTitle returns the title used for numbered invoices
func InvoiceTitle(number string) string {
	return "Rechnung " + number
}

// NewInvoiceFromCalculation creates a draft invoice from a calculation result.
// The result must contain at least one item.
func NewInvoiceFromCalculation(
	tenantID, projectID int64,
	calc CalculationResult,
	number, clientName, clientAddress string,
	paymentTermsDays int,
	now time.Time,
) (*Invoice, error) {
	if len(calc.Items) == 0 {
		return nil, shared.NewInvalidArgumentError("cannot create an invoice without line items")
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewInvalidArgumentError("invoice number is required")
	}
	if paymentTermsDays <= 0 {
		paymentTermsDays = DefaultPaymentTermsDays
	}
	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProjectID:           projectID,
		InvoiceNumber:       number,
		Title:               InvoiceTitle(number),
		Description:         GeneratedInvoiceDescription,
		ClientName:          strings.TrimSpace(clientName),
		ClientAddress:       strings.TrimSpace(clientAddress),
		Subtotal:            valueobject.RoundCents(calc.Subtotal),
		TaxAmount:           valueobject.RoundCents(calc.TaxAmount),
		TotalAmount:         valueobject.RoundCents(calc.TotalAmount),
		Currency:            valueobject.DefaultCurrency,
		InvoiceDate:         now,
		DueDate:             now.AddDate(0, 0, paymentTermsDays),
		Items:               calc.Items,
		Status:              InvoiceStatusDraft,
	}
	return inv, nil
}

// NewInvoiceFromOffer creates a draft invoice carrying the offer's items and total verbatim.
// The offer must be accepted.
func NewInvoiceFromOffer(offer *Offer, number string, paymentTermsDays int, now time.Time) (*Invoice, error) {
	if !offer.IsAccepted() {
		return nil, shared.NewInvalidArgumentError("only accepted offers can be invoiced (offer %d is %s)", offer.ID, offer.Status)
	}
	if paymentTermsDays <= 0 {
		paymentTermsDays = DefaultPaymentTermsDays
	}
	offerID := offer.ID
	total := valueobject.RoundCents(offer.TotalAmount)
	currency := offer.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	return &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(offer.TenantID),
		ProjectID:           offer.ProjectID,
		OfferID:             &offerID,
		InvoiceNumber:       number,
		Title:               InvoiceTitle(number),
		Description:         offer.Description,
		ClientName:          offer.ClientName,
		ClientAddress:       offer.ClientAddress,
		Subtotal:            total,
		TaxAmount:           decimal.Zero,
		TotalAmount:         total,
		Currency:            currency,
		InvoiceDate:         now,
		DueDate:             now.AddDate(0, 0, paymentTermsDays),
		Items:               offer.InvoiceLines(),
		Status:              InvoiceStatusDraft,
	}, nil
}

// RecordCreated raises the InvoiceCreated event once the invoice has an id
func (i *Invoice) RecordCreated() {
	i.AddDomainEvent(NewInvoiceCreatedEvent(i))
}

// ChangeStatus moves the invoice along its lifecycle and records the change
func (i *Invoice) ChangeStatus(next InvoiceStatus) error {
	if !next.IsValid() {
		return shared.NewInvalidArgumentError("invalid invoice status %q", next)
	}
	if !i.Status.CanTransitionTo(next) {
		return shared.NewInvalidStateError("cannot change invoice status from %s to %s", i.Status, next)
	}
	previous := i.Status
	i.Status = next
	i.UpdatedAt = time.Now()
	i.AddDomainEvent(NewInvoiceStatusChangedEvent(i, previous))
	return nil
}

// IsOverdue reports whether a sent invoice is past its due date
func (i *Invoice) IsOverdue(now time.Time) bool {
	return i.Status == InvoiceStatusSent && now.After(i.DueDate)
}
