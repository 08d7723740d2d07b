package event

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/handwerk/backoffice/internal/infrastructure/config"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Message header carrying the event type, so subscribers can decode without parsing the subject
const headerEventType = "Event-Type"

// Connect opens the NATS connection used for event delivery
func Connect(cfg config.EventConfig, name string, logger *zap.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(cfg.NATSURL,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", cfg.NATSURL, err)
	}
	return nc, nil
}

// Subject returns the subject an event is published on: <prefix>.<tenant>.<event type>
func Subject(prefix string, event shared.DomainEvent) string {
	return prefix + "." + strconv.FormatInt(event.TenantID(), 10) + "." + event.EventType()
}

// messagePublisher is the part of *nats.Conn the forwarder needs
type messagePublisher interface {
	PublishMsg(msg *nats.Msg) error
}

// NATSForwarder is a wildcard event handler that republishes every domain event on NATS.
// Subjects are tenant qualified so consumers can subscribe to one tenant's stream.
type NATSForwarder struct {
	conn       messagePublisher
	serializer *EventSerializer
	prefix     string
	logger     *zap.Logger
}

// NewNATSForwarder creates a forwarder publishing under prefix
func NewNATSForwarder(conn messagePublisher, serializer *EventSerializer, prefix string, logger *zap.Logger) *NATSForwarder {
	return &NATSForwarder{conn: conn, serializer: serializer, prefix: prefix, logger: logger}
}

// Handle publishes the event
func (f *NATSForwarder) Handle(ctx context.Context, event shared.DomainEvent) error {
	data, err := f.serializer.Serialize(event)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", event.EventType(), err)
	}
	msg := nats.NewMsg(Subject(f.prefix, event))
	msg.Header.Set(headerEventType, event.EventType())
	msg.Header.Set(nats.MsgIdHdr, event.EventID().String())
	msg.Data = data

	if err := f.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	f.logger.Debug("event forwarded",
		zap.String("subject", msg.Subject),
		zap.String("event_id", event.EventID().String()))
	return nil
}

// EventTypes returns nil; the forwarder receives every event
func (f *NATSForwarder) EventTypes() []string {
	return nil
}

// NATSSubscriber decodes events arriving on NATS and hands them to local handlers
type NATSSubscriber struct {
	serializer *EventSerializer
	prefix     string
	handler    shared.EventHandler
	timeout    time.Duration
	logger     *zap.Logger
}

// NewNATSSubscriber creates a subscriber for the events below prefix, delivering to handler
func NewNATSSubscriber(serializer *EventSerializer, handler shared.EventHandler, prefix string, timeout time.Duration, logger *zap.Logger) *NATSSubscriber {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &NATSSubscriber{serializer: serializer, prefix: prefix, handler: handler, timeout: timeout, logger: logger}
}

// Subscribe listens on every tenant's events
func (s *NATSSubscriber) Subscribe(nc *nats.Conn) (*nats.Subscription, error) {
	return nc.Subscribe(s.prefix+".>", s.HandleMsg)
}

// HandleMsg decodes one message and delivers it. Undecodable messages are logged and dropped.
func (s *NATSSubscriber) HandleMsg(msg *nats.Msg) {
	eventType := msg.Header.Get(headerEventType)
	if eventType == "" {
		// <prefix>.<tenant>.<event type>
		rest := strings.TrimPrefix(msg.Subject, s.prefix+".")
		if i := strings.Index(rest, "."); i >= 0 {
			eventType = rest[i+1:]
		}
	}
	event, err := s.serializer.Deserialize(eventType, msg.Data)
	if err != nil {
		s.logger.Warn("dropping undecodable event", zap.String("subject", msg.Subject), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.handler.Handle(ctx, event); err != nil {
		s.logger.Error("event handler failed",
			zap.String("subject", msg.Subject),
			zap.String("event_id", event.EventID().String()),
			zap.Error(err))
	}
}
