package billing

import (
	"encoding/json"
	"time"

	"github.com/handwerk/backoffice/internal/domain/billing"
	"github.com/handwerk/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Invoice generation DTOs
// =============================================================================

// CalculateRequest is the body of the calculate, summary, export and validate endpoints
type CalculateRequest struct {
	ProjectID           int64            `json:"project_id" binding:"required,gt=0"`
	GenerationMethod    string           `json:"generation_method" binding:"omitempty,generation_method"`
	StartDate           string           `json:"start_date"`
	EndDate             string           `json:"end_date"`
	IncludeMaterials    *bool            `json:"include_materials"`
	IncludeLabor        *bool            `json:"include_labor"`
	TaxRate             *decimal.Decimal `json:"tax_rate" binding:"omitempty,decimal_range=0 100"`
	LaborCostPercentage *decimal.Decimal `json:"labor_cost_percentage" binding:"omitempty,decimal_range=0 100"`
}

// ToDomain converts the request to a domain calculation request
func (r CalculateRequest) ToDomain() billing.CalculationRequest {
	return billing.CalculationRequest{
		ProjectID:           r.ProjectID,
		Method:              billing.GenerationMethod(r.GenerationMethod),
		StartDate:           r.StartDate,
		EndDate:             r.EndDate,
		IncludeMaterials:    r.IncludeMaterials,
		IncludeLabor:        r.IncludeLabor,
		TaxRate:             r.TaxRate,
		LaborCostPercentage: r.LaborCostPercentage,
	}
}

// MaterializeRequest persists a previously computed calculation as an invoice.
// An empty invoice number is allocated from the tenant's sequence. Only the
// calculation's items are taken over; totals are recomputed at TaxRate, or at
// the tenant's default rate when TaxRate is omitted.
type MaterializeRequest struct {
	ProjectID     int64                     `json:"project_id" binding:"required,gt=0"`
	InvoiceNumber string                    `json:"invoice_number" binding:"max=50"`
	ClientName    string                    `json:"client_name" binding:"max=200"`
	ClientAddress *string                   `json:"client_address" binding:"omitempty,max=500"`
	TaxRate       *decimal.Decimal          `json:"tax_rate" binding:"omitempty,decimal_range=0 100"`
	Calculation   billing.CalculationResult `json:"calculation"`
}

// MethodsResponse lists the generation methods and the mandatory invoice contents
type MethodsResponse struct {
	Methods         []billing.MethodInfo `json:"methods"`
	MandatoryFields []string             `json:"mandatory_fields"`
}

// =============================================================================
// Invoice DTOs
// =============================================================================

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID            int64             `json:"id"`
	TenantID      int64             `json:"tenant_id"`
	ProjectID     int64             `json:"project_id"`
	OfferID       *int64            `json:"offer_id,omitempty"`
	InvoiceNumber string            `json:"invoice_number"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	ClientName    string            `json:"client_name"`
	ClientAddress string            `json:"client_address"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	TaxAmount     decimal.Decimal   `json:"tax_amount"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	Currency      string            `json:"currency"`
	InvoiceDate   time.Time         `json:"invoice_date"`
	DueDate       time.Time         `json:"due_date"`
	Items         billing.LineItems `json:"items"`
	Status        string            `json:"status"`
	Overdue       bool              `json:"overdue"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// MarshalJSON writes the amounts with two decimal places
func (r InvoiceResponse) MarshalJSON() ([]byte, error) {
	type plain InvoiceResponse
	return json.Marshal(struct {
		plain
		Subtotal    string `json:"subtotal"`
		TaxAmount   string `json:"tax_amount"`
		TotalAmount string `json:"total_amount"`
	}{
		plain:       plain(r),
		Subtotal:    valueobject.FixedCents(r.Subtotal),
		TaxAmount:   valueobject.FixedCents(r.TaxAmount),
		TotalAmount: valueobject.FixedCents(r.TotalAmount),
	})
}

// ToInvoiceResponse converts a domain invoice to a response
func ToInvoiceResponse(inv *billing.Invoice, now time.Time) InvoiceResponse {
	items := inv.Items
	if items == nil {
		items = billing.LineItems{}
	}
	return InvoiceResponse{
		ID:            inv.ID,
		TenantID:      inv.TenantID,
		ProjectID:     inv.ProjectID,
		OfferID:       inv.OfferID,
		InvoiceNumber: inv.InvoiceNumber,
		Title:         inv.Title,
		Description:   inv.Description,
		ClientName:    inv.ClientName,
		ClientAddress: inv.ClientAddress,
		Subtotal:      inv.Subtotal,
		TaxAmount:     inv.TaxAmount,
		TotalAmount:   inv.TotalAmount,
		Currency:      string(inv.Currency),
		InvoiceDate:   inv.InvoiceDate,
		DueDate:       inv.DueDate,
		Items:         items,
		Status:        string(inv.Status),
		Overdue:       inv.IsOverdue(now),
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

// InvoiceListFilter holds the query parameters of the invoice list
type InvoiceListFilter struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string `form:"order_by"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search    string `form:"search" binding:"max=100"`
	ProjectID *int64 `form:"project_id" binding:"omitempty,gt=0"`
	Status    string `form:"status" binding:"omitempty,oneof=entwurf versendet bezahlt abgerechnet storniert"`
}

// UpdateInvoiceStatusRequest changes an invoice's status
type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=entwurf versendet bezahlt abgerechnet storniert"`
}

// RevenueResponse is the sum of paid invoices
type RevenueResponse struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	Currency     string          `json:"currency"`
	Formatted    string          `json:"formatted"`
}

// =============================================================================
// Offer DTOs
// =============================================================================

// CreateOfferRequest creates a draft offer for a project
type CreateOfferRequest struct {
	Title         string            `json:"title" binding:"required,min=1,max=200"`
	Description   string            `json:"description"`
	ClientName    string            `json:"client_name" binding:"max=200"`
	ClientAddress string            `json:"client_address" binding:"max=500"`
	ValidUntil    *time.Time        `json:"valid_until"`
	Items         billing.LineItems `json:"items" binding:"dive"`
}

// UpdateOfferStatusRequest changes an offer's status
type UpdateOfferStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=entwurf versendet angenommen abgelehnt"`
}

// OfferResponse represents an offer in API responses
type OfferResponse struct {
	ID            int64             `json:"id"`
	TenantID      int64             `json:"tenant_id"`
	ProjectID     int64             `json:"project_id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	ClientName    string            `json:"client_name"`
	ClientAddress string            `json:"client_address"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	Currency      string            `json:"currency"`
	ValidUntil    *time.Time        `json:"valid_until,omitempty"`
	Items         billing.LineItems `json:"items"`
	Status        string            `json:"status"`
	AutoGenerated bool              `json:"auto_generated"`
	CreatedAt     time.Time         `json:"created_at"`
}

// MarshalJSON writes the total with two decimal places
func (r OfferResponse) MarshalJSON() ([]byte, error) {
	type plain OfferResponse
	return json.Marshal(struct {
		plain
		TotalAmount string `json:"total_amount"`
	}{plain: plain(r), TotalAmount: valueobject.FixedCents(r.TotalAmount)})
}

// ToOfferResponse converts a domain offer to a response
func ToOfferResponse(o *billing.Offer) OfferResponse {
	return OfferResponse{
		ID:            o.ID,
		TenantID:      o.TenantID,
		ProjectID:     o.ProjectID,
		Title:         o.Title,
		Description:   o.Description,
		ClientName:    o.ClientName,
		ClientAddress: o.ClientAddress,
		TotalAmount:   o.TotalAmount,
		Currency:      string(o.Currency),
		ValidUntil:    o.ValidUntil,
		Items:         o.InvoiceLines(),
		Status:        string(o.Status),
		AutoGenerated: o.AutoGenerated,
		CreatedAt:     o.CreatedAt,
	}
}

// =============================================================================
// Settings DTOs
// =============================================================================

// UpdateSettingsRequest changes a tenant's invoicing settings
type UpdateSettingsRequest struct {
	InvoicePrefix    *string          `json:"invoice_prefix" binding:"omitempty,alphanum,min=1,max=10"`
	PaymentTermsDays *int             `json:"payment_terms_days" binding:"omitempty,min=1,max=365"`
	DefaultTaxRate   *decimal.Decimal `json:"default_tax_rate" binding:"omitempty,decimal_range=0 100"`
}

// SettingsResponse represents a tenant's invoicing settings
type SettingsResponse struct {
	InvoicePrefix     string          `json:"invoice_prefix"`
	InvoiceNextNumber int64           `json:"invoice_next_number"`
	PaymentTermsDays  int             `json:"payment_terms_days"`
	DefaultTaxRate    decimal.Decimal `json:"default_tax_rate"`
}

// ToSettingsResponse converts domain settings to a response
func ToSettingsResponse(s *billing.TenantSettings) SettingsResponse {
	return SettingsResponse{
		InvoicePrefix:     s.InvoicePrefix,
		InvoiceNextNumber: s.InvoiceNextNumber,
		PaymentTermsDays:  s.PaymentTermsDays,
		DefaultTaxRate:    s.DefaultTaxRate,
	}
}
