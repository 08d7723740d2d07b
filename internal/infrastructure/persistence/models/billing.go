package models

import (
	"time"

	"github.com/handwerk/backoffice/internal/domain/billing"
	"github.com/handwerk/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OfferModel is the persistence model for offers
type OfferModel struct {
	TenantModel
	ProjectID     int64               `gorm:"not null;index"`
	Title         string              `gorm:"type:varchar(200);not null"`
	Description   string              `gorm:"type:text"`
	ClientName    string              `gorm:"type:varchar(200)"`
	ClientAddress string              `gorm:"type:varchar(500)"`
	TotalAmount   decimal.Decimal     `gorm:"type:decimal(12,2);not null;default:0"`
	Currency      string              `gorm:"type:varchar(3);not null;default:'EUR'"`
	ValidUntil    *time.Time
	Items         datatypes.JSON
	Status        billing.OfferStatus `gorm:"type:varchar(20);not null;default:'entwurf';index"`
	AutoGenerated bool                `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (OfferModel) TableName() string {
	return "offers"
}

// ToDomain converts the persistence model to a domain Offer.
// Items that cannot be decoded leave Offer.Items nil.
func (m *OfferModel) ToDomain() *billing.Offer {
	o := &billing.Offer{
		ProjectID:     m.ProjectID,
		Title:         m.Title,
		Description:   m.Description,
		ClientName:    m.ClientName,
		ClientAddress: m.ClientAddress,
		TotalAmount:   m.TotalAmount,
		Currency:      valueobject.Currency(m.Currency),
		ValidUntil:    m.ValidUntil,
		Status:        m.Status,
		AutoGenerated: m.AutoGenerated,
	}
	o.TenantEntity = m.ToDomainTenantEntity()
	if items, err := billing.DecodeLineItems(m.Items); err == nil {
		o.Items = items
	}
	return o
}

// OfferModelFromDomain creates a persistence model from a domain Offer
func OfferModelFromDomain(o *billing.Offer) (*OfferModel, error) {
	items, err := o.Items.Marshal()
	if err != nil {
		return nil, err
	}
	m := &OfferModel{
		ProjectID:     o.ProjectID,
		Title:         o.Title,
		Description:   o.Description,
		ClientName:    o.ClientName,
		ClientAddress: o.ClientAddress,
		TotalAmount:   o.TotalAmount,
		Currency:      string(o.Currency),
		ValidUntil:    o.ValidUntil,
		Items:         datatypes.JSON(items),
		Status:        o.Status,
		AutoGenerated: o.AutoGenerated,
	}
	m.FromDomainTenantEntity(o.TenantEntity)
	return m, nil
}

// InvoiceModel is the persistence model for invoices.
// An offer is invoiced at most once and numbers are unique per tenant.
type InvoiceModel struct {
	BaseModel
	TenantID      int64                 `gorm:"not null;index;uniqueIndex:idx_invoice_tenant_offer,priority:1;uniqueIndex:idx_invoice_tenant_number,priority:1"`
	ProjectID     int64                 `gorm:"not null;index"`
	OfferID       *int64                `gorm:"uniqueIndex:idx_invoice_tenant_offer,priority:2"`
	InvoiceNumber string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_tenant_number,priority:2"`
	Title         string                `gorm:"type:varchar(200);not null"`
	Description   string                `gorm:"type:text"`
	ClientName    string                `gorm:"type:varchar(200)"`
	ClientAddress string                `gorm:"type:varchar(500)"`
	Subtotal      decimal.Decimal       `gorm:"type:decimal(12,2);not null;default:0"`
	TaxAmount     decimal.Decimal       `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount   decimal.Decimal       `gorm:"type:decimal(12,2);not null;default:0"`
	Currency      string                `gorm:"type:varchar(3);not null;default:'EUR'"`
	InvoiceDate   time.Time             `gorm:"not null;index"`
	DueDate       time.Time             `gorm:"not null"`
	Items         datatypes.JSON
	Status        billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'entwurf';index"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// GetTenantID returns the owning tenant
func (m *InvoiceModel) GetTenantID() int64 {
	return m.TenantID
}

// SetTenantID sets the owning tenant
func (m *InvoiceModel) SetTenantID(id int64) {
	m.TenantID = id
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() (*billing.Invoice, error) {
	items, err := billing.DecodeLineItems(m.Items)
	if err != nil {
		return nil, err
	}
	inv := &billing.Invoice{
		ProjectID:     m.ProjectID,
		OfferID:       m.OfferID,
		InvoiceNumber: m.InvoiceNumber,
		Title:         m.Title,
		Description:   m.Description,
		ClientName:    m.ClientName,
		ClientAddress: m.ClientAddress,
		Subtotal:      m.Subtotal,
		TaxAmount:     m.TaxAmount,
		TotalAmount:   m.TotalAmount,
		Currency:      valueobject.Currency(m.Currency),
		InvoiceDate:   m.InvoiceDate,
		DueDate:       m.DueDate,
		Items:         items,
		Status:        m.Status,
	}
	inv.ID = m.ID
	inv.CreatedAt = m.CreatedAt
	inv.UpdatedAt = m.UpdatedAt
	inv.TenantID = m.TenantID
	return inv, nil
}

// InvoiceModelFromDomain creates a persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *billing.Invoice) (*InvoiceModel, error) {
	items, err := inv.Items.Marshal()
	if err != nil {
		return nil, err
	}
	return &InvoiceModel{
		BaseModel: BaseModel{
			ID:        inv.ID,
			CreatedAt: inv.CreatedAt,
			UpdatedAt: inv.UpdatedAt,
		},
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
		Items:         datatypes.JSON(items),
		Status:        inv.Status,
	}, nil
}

// TenantSettingsModel is the persistence model for per-tenant invoicing settings.
// InvoiceNextNumber is the row-locked counter behind the database invoice sequence.
type TenantSettingsModel struct {
	BaseModel
	TenantID          int64           `gorm:"not null;uniqueIndex"`
	InvoicePrefix     string          `gorm:"type:varchar(10);not null;default:'RE'"`
	InvoiceNextNumber int64           `gorm:"not null;default:1"`
	PaymentTermsDays  int             `gorm:"not null;default:30"`
	DefaultTaxRate    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:19"`
}

// TableName returns the table name for GORM
func (TenantSettingsModel) TableName() string {
	return "tenant_settings"
}

// GetTenantID returns the owning tenant
func (m *TenantSettingsModel) GetTenantID() int64 {
	return m.TenantID
}

// SetTenantID sets the owning tenant
func (m *TenantSettingsModel) SetTenantID(id int64) {
	m.TenantID = id
}

// ToDomain converts the persistence model to domain settings
func (m *TenantSettingsModel) ToDomain() *billing.TenantSettings {
	return &billing.TenantSettings{
		TenantID:          m.TenantID,
		InvoicePrefix:     m.InvoicePrefix,
		InvoiceNextNumber: m.InvoiceNextNumber,
		PaymentTermsDays:  m.PaymentTermsDays,
		DefaultTaxRate:    m.DefaultTaxRate,
	}
}

// ApplyDomain copies the mutable settings onto the model, keeping its id and counter
func (m *TenantSettingsModel) ApplyDomain(s *billing.TenantSettings) {
	m.TenantID = s.TenantID
	m.InvoicePrefix = s.InvoicePrefix
	m.PaymentTermsDays = s.PaymentTermsDays
	m.DefaultTaxRate = s.DefaultTaxRate
}
