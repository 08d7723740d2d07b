package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/handwerk/backoffice/internal/domain/billing"
	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// testHandler implements EventHandler for testing
type testHandler struct {
	eventTypes []string
	err        error
	panics     bool

	mu      sync.Mutex
	handled []shared.DomainEvent
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	h.mu.Unlock()
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func invoiceCreated(tenantID int64) *billing.InvoiceCreatedEvent {
	inv := &billing.Invoice{
		InvoiceNumber: "RE-20240630-005-001",
		ProjectID:     5,
		TotalAmount:   decimal.RequireFromString("190.4"),
	}
	inv.ID = 11
	inv.TenantID = tenantID
	return billing.NewInvoiceCreatedEvent(inv)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to type handlers and wildcards", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		typed := newTestHandler(billing.EventTypeInvoiceCreated)
		other := newTestHandler(billing.EventTypeOfferBilled)
		wildcard := newTestHandler()
		bus.Subscribe(typed)
		bus.Subscribe(other)
		bus.Subscribe(wildcard)

		require.NoError(t, bus.Publish(ctx, invoiceCreated(1), invoiceCreated(2)))
		assert.Equal(t, 2, typed.count())
		assert.Equal(t, 0, other.count())
		assert.Equal(t, 2, wildcard.count())
	})

	t.Run("explicit types override the handler's own", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := newTestHandler(billing.EventTypeOfferBilled)
		bus.Subscribe(h, billing.EventTypeInvoiceCreated)

		require.NoError(t, bus.Publish(ctx, invoiceCreated(1)))
		assert.Equal(t, 1, h.count())
	})

	t.Run("a failing handler does not stop the others", func(t *testing.T) {
		core, logs := observer.New(zap.ErrorLevel)
		bus := NewInMemoryEventBus(zap.New(core))
		failing := newTestHandler()
		failing.err = errors.New("handler error")
		panicking := newTestHandler()
		panicking.panics = true
		healthy := newTestHandler()
		bus.Subscribe(failing)
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(ctx, invoiceCreated(3)))
		assert.Equal(t, 1, healthy.count())
		require.Equal(t, 2, logs.Len())
		assert.Equal(t, int64(3), logs.All()[0].ContextMap()["tenant_id"])
	})

	t.Run("unsubscribe", func(t *testing.T) {
		bus := NewInMemoryEventBus(nil)
		h := newTestHandler()
		bus.Subscribe(h)
		_ = bus.Publish(ctx, invoiceCreated(1))
		bus.Unsubscribe(h)
		_ = bus.Publish(ctx, invoiceCreated(1))
		assert.Equal(t, 1, h.count())
	})
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	assert.True(t, bus.Running())
	require.NoError(t, bus.Stop(context.Background()))
	assert.False(t, bus.Running())
}

func TestHandlerRegistry(t *testing.T) {
	registry := NewHandlerRegistry()
	a := newTestHandler()
	b := newTestHandler()
	wildcard := newTestHandler()

	registry.Register(a, "invoice.created", "offer.billed")
	registry.Register(b, "invoice.created")
	registry.Register(wildcard)

	assert.Equal(t, []shared.EventHandler{a, b, wildcard}, registry.GetHandlers("invoice.created"))
	assert.Equal(t, []shared.EventHandler{wildcard}, registry.GetHandlers("project.deleted"))

	registry.Unregister(a)
	assert.Equal(t, []shared.EventHandler{wildcard}, registry.GetHandlers("offer.billed"))
	assert.Equal(t, []shared.EventHandler{b, wildcard}, registry.GetHandlers("invoice.created"))
}

func TestEventSerializer_RoundTripsBillingEvents(t *testing.T) {
	s := NewEventSerializer()
	original := invoiceCreated(4)

	data, err := s.Serialize(original)
	require.NoError(t, err)

	decoded, err := s.Deserialize(billing.EventTypeInvoiceCreated, data)
	require.NoError(t, err)
	got, ok := decoded.(*billing.InvoiceCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, original.EventID(), got.EventID())
	assert.Equal(t, int64(4), got.TenantID())
	assert.Equal(t, "RE-20240630-005-001", got.InvoiceNumber)
	assert.True(t, got.TotalAmount.Equal(original.TotalAmount))

	_, err = s.Deserialize("unknown", data)
	assert.Error(t, err)
	assert.False(t, s.IsRegistered("unknown"))
	assert.True(t, s.IsRegistered(billing.EventTypeOfferBilled))
}
