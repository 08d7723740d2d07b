// Command eventlog subscribes to the domain events forwarded to NATS and
// writes them as structured audit lines, one per event.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/handwerk/backoffice/internal/infrastructure/config"
	"github.com/handwerk/backoffice/internal/infrastructure/event"
	"github.com/handwerk/backoffice/internal/infrastructure/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Service: "eventlog",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	nc, err := event.Connect(cfg.Event, "eventlog", log)
	if err != nil {
		log.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer func() {
		_ = nc.Drain()
	}()

	subscriber := event.NewNATSSubscriber(event.NewEventSerializer(), event.NewLogHandler(log),
		cfg.Event.SubjectPrefix, cfg.Event.PublishTimeout, log)
	sub, err := subscriber.Subscribe(nc)
	if err != nil {
		log.Fatal("Failed to subscribe", zap.Error(err))
	}
	log.Info("Listening for domain events", zap.String("subject", sub.Subject))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Event log stopped")
}
