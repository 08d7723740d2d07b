package billing

import (
	"fmt"
	"strings"
	"time"
)

// DefaultInvoicePrefix is used when the tenant has not configured a prefix
const DefaultInvoicePrefix = "RE"

// FormatInvoiceNumber renders {prefix}-{YYYYMMDD}-{project:03d}-{seq:03d}
func FormatInvoiceNumber(prefix string, date time.Time, projectID, seq int64) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultInvoicePrefix
	}
	return fmt.Sprintf("%s-%s-%03d-%03d", prefix, date.Format("20060102"), projectID, seq)
}
