package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact recorded by an aggregate of one tenant.
// Events are published after the aggregate's transaction commits.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() int64
	AggregateType() string
	TenantID() int64
}

// BaseDomainEvent carries the envelope every event shares; concrete events embed it
type BaseDomainEvent struct {
	ID        uuid.UUID `json:"event_id"`
	Type      string    `json:"event_type"`
	At        time.Time `json:"occurred_at"`
	Aggregate string    `json:"aggregate_type"`
	RefID     int64     `json:"aggregate_id"`
	Tenant    int64     `json:"tenant_id"`
}

// NewBaseDomainEvent stamps a new envelope with a random id and the current time
func NewBaseDomainEvent(eventType, aggregateType string, aggregateID, tenantID int64) BaseDomainEvent {
	return BaseDomainEvent{
		ID:        uuid.New(),
		Type:      eventType,
		At:        time.Now().UTC(),
		Aggregate: aggregateType,
		RefID:     aggregateID,
		Tenant:    tenantID,
	}
}

func (e *BaseDomainEvent) EventID() uuid.UUID    { return e.ID }
func (e *BaseDomainEvent) EventType() string     { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time { return e.At }
func (e *BaseDomainEvent) AggregateID() int64    { return e.RefID }
func (e *BaseDomainEvent) AggregateType() string { return e.Aggregate }
func (e *BaseDomainEvent) TenantID() int64       { return e.Tenant }
