package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/handwerk/backoffice/internal/domain/billing"
)

// InMemoryInvoiceSequence counts invoice numbers in process memory.
// This is suitable for single-instance development setups and testing.
// WARNING: counters are lost on restart and not shared between instances;
// the unique index on invoice numbers still rejects duplicates.
type InMemoryInvoiceSequence struct {
	mu       sync.Mutex
	counters map[int64]int64
}

// NewInMemoryInvoiceSequence creates an empty in-memory sequence
func NewInMemoryInvoiceSequence() *InMemoryInvoiceSequence {
	return &InMemoryInvoiceSequence{counters: make(map[int64]int64)}
}

// Next increments and returns the tenant's counter; the first value is 1
func (s *InMemoryInvoiceSequence) Next(_ context.Context, tenantID int64) (int64, error) {
	if tenantID <= 0 {
		return 0, fmt.Errorf("invoice sequence: invalid tenant id %d", tenantID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[tenantID]++
	return s.counters[tenantID], nil
}

var _ billing.InvoiceSequence = (*InMemoryInvoiceSequence)(nil)
