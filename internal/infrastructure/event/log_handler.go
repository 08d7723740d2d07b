package event

import (
	"context"

	"github.com/handwerk/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// LogHandler writes one audit line per domain event
type LogHandler struct {
	logger *zap.Logger
}

// NewLogHandler creates a handler logging to logger
func NewLogHandler(logger *zap.Logger) *LogHandler {
	return &LogHandler{logger: logger}
}

// Handle logs the event
func (h *LogHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.logger.Info("domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.Int64("aggregate_id", event.AggregateID()),
		zap.Int64("tenant_id", event.TenantID()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// EventTypes returns nil; the handler receives every event
func (h *LogHandler) EventTypes() []string {
	return nil
}
