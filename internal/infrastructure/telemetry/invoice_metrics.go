package telemetry

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/handwerk/backoffice/internal/domain/billing"
	"github.com/handwerk/backoffice/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InvoiceMetrics turns billing events into counters and an amount histogram.
// It is subscribed to the event bus like any other handler.
type InvoiceMetrics struct {
	created       metric.Int64Counter
	amount        metric.Float64Histogram
	statusChanges metric.Int64Counter
	offersBilled  metric.Int64Counter
}

// NewInvoiceMetrics creates the billing instruments on meter
func NewInvoiceMetrics(meter metric.Meter) (*InvoiceMetrics, error) {
	created, err := meter.Int64Counter("invoice_created_total",
		metric.WithDescription("Invoices created"),
		metric.WithUnit("{invoice}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice counter: %w", err)
	}
	amount, err := meter.Float64Histogram("invoice_total_amount",
		metric.WithDescription("Gross amount of created invoices"),
		metric.WithUnit("EUR"),
		metric.WithExplicitBucketBoundaries(50, 100, 250, 500, 1000, 2500, 5000, 10000, 25000, 50000))
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice amount histogram: %w", err)
	}
	statusChanges, err := meter.Int64Counter("invoice_status_changes_total",
		metric.WithDescription("Invoice status transitions"),
		metric.WithUnit("{transition}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create status change counter: %w", err)
	}
	offersBilled, err := meter.Int64Counter("offer_billed_total",
		metric.WithDescription("Offers converted into invoices"),
		metric.WithUnit("{offer}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create offer counter: %w", err)
	}
	return &InvoiceMetrics{
		created:       created,
		amount:        amount,
		statusChanges: statusChanges,
		offersBilled:  offersBilled,
	}, nil
}

// EventTypes implements shared.EventHandler
func (m *InvoiceMetrics) EventTypes() []string {
	return []string{
		billing.EventTypeInvoiceCreated,
		billing.EventTypeInvoiceStatusChanged,
		billing.EventTypeOfferBilled,
	}
}

// Handle implements shared.EventHandler
func (m *InvoiceMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	tenant := attribute.Int64("tenant.id", event.TenantID())
	switch e := event.(type) {
	case *billing.InvoiceCreatedEvent:
		source := "calculation"
		if e.OfferID != nil {
			source = "offer"
		}
		attrs := metric.WithAttributes(tenant, attribute.String("invoice.source", source))
		m.created.Add(ctx, 1, attrs)
		amount, _ := e.TotalAmount.Float64()
		m.amount.Record(ctx, amount, attrs)
	case *billing.InvoiceStatusChangedEvent:
		m.statusChanges.Add(ctx, 1, metric.WithAttributes(tenant,
			attribute.String("invoice.status.from", string(e.From)),
			attribute.String("invoice.status.to", string(e.To)),
		))
	case *billing.OfferBilledEvent:
		m.offersBilled.Add(ctx, 1, metric.WithAttributes(tenant))
	}
	return nil
}

// RegisterDBPoolMetrics reports connection pool statistics of db as observable gauges
func RegisterDBPoolMetrics(meter metric.Meter, db *sql.DB) error {
	open, err := meter.Int64ObservableGauge("db_pool_open_connections",
		metric.WithDescription("Open connections, in use and idle"))
	if err != nil {
		return err
	}
	inUse, err := meter.Int64ObservableGauge("db_pool_in_use_connections",
		metric.WithDescription("Connections currently in use"))
	if err != nil {
		return err
	}
	waits, err := meter.Int64ObservableCounter("db_pool_wait_count",
		metric.WithDescription("Connections waited for"))
	if err != nil {
		return err
	}
	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := db.Stats()
		o.ObserveInt64(open, int64(stats.OpenConnections))
		o.ObserveInt64(inUse, int64(stats.InUse))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, open, inUse, waits)
	return err
}
