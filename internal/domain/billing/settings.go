package billing

import (
	"regexp"
	"strings"

	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var prefixPattern = regexp.MustCompile(`^[A-Za-z0-9]{1,10}$`)

// TenantSettings holds the invoicing configuration of one tenant.
// InvoiceNextNumber backs the database invoice sequence.
type TenantSettings struct {
	TenantID          int64
	InvoicePrefix     string
	InvoiceNextNumber int64
	PaymentTermsDays  int
	DefaultTaxRate    decimal.Decimal
}

// DefaultTenantSettings returns the settings used until a tenant changes them
func DefaultTenantSettings(tenantID int64) TenantSettings {
	return TenantSettings{
		TenantID:          tenantID,
		InvoicePrefix:     DefaultInvoicePrefix,
		InvoiceNextNumber: 1,
		PaymentTermsDays:  DefaultPaymentTermsDays,
		DefaultTaxRate:    DefaultTaxRate,
	}
}

// SettingsUpdate holds the fields a settings update may change
type SettingsUpdate struct {
	InvoicePrefix    *string
	PaymentTermsDays *int
	DefaultTaxRate   *decimal.Decimal
}

// Apply validates and applies the update
func (s *TenantSettings) Apply(u SettingsUpdate) error {
	if u.InvoicePrefix != nil {
		prefix := strings.TrimSpace(*u.InvoicePrefix)
		if !prefixPattern.MatchString(prefix) {
			return shared.NewInvalidArgumentError("invoice prefix must be 1-10 letters or digits")
		}
		s.InvoicePrefix = strings.ToUpper(prefix)
	}
	if u.PaymentTermsDays != nil {
		if *u.PaymentTermsDays < 1 || *u.PaymentTermsDays > 365 {
			return shared.NewInvalidArgumentError("payment terms must be between 1 and 365 days")
		}
		s.PaymentTermsDays = *u.PaymentTermsDays
	}
	if u.DefaultTaxRate != nil {
		if err := checkPercent("default_tax_rate", *u.DefaultTaxRate); err != nil {
			return err
		}
		s.DefaultTaxRate = *u.DefaultTaxRate
	}
	return nil
}
