package shared

// AggregateRoot is the base interface for aggregates that raise domain events
type AggregateRoot interface {
	Entity
	TenantOwned
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// TenantAggregateRoot is a tenant-scoped entity that collects domain events
// until the application layer publishes them after commit.
type TenantAggregateRoot struct {
	TenantEntity
	domainEvents []DomainEvent
}

// AddDomainEvent adds a domain event to be published
func (a *TenantAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *TenantAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents clears the pending domain events
func (a *TenantAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// NewTenantAggregateRoot creates a new tenant-scoped aggregate root
func NewTenantAggregateRoot(tenantID int64) TenantAggregateRoot {
	return TenantAggregateRoot{
		TenantEntity: NewTenantEntity(tenantID),
		domainEvents: make([]DomainEvent, 0),
	}
}
