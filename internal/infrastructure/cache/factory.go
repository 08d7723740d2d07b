package cache

import (
	"fmt"

	"github.com/handwerk/backoffice/internal/domain/billing"
	"github.com/handwerk/backoffice/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// InvoiceSequenceFactory creates the invoice sequence selected by configuration
type InvoiceSequenceFactory struct {
	cfg                   config.InvoicingConfig
	redisConfig           config.RedisConfig
	database              billing.InvoiceSequence
	logger                *zap.Logger
	allowDatabaseFallback bool
}

// InvoiceSequenceFactoryOption is a functional option for configuring the factory
type InvoiceSequenceFactoryOption func(*InvoiceSequenceFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) InvoiceSequenceFactoryOption {
	return func(f *InvoiceSequenceFactory) {
		f.logger = logger
	}
}

// WithDatabaseFallback controls whether to fall back to the database sequence when Redis is unavailable.
// Default is true.
func WithDatabaseFallback(allow bool) InvoiceSequenceFactoryOption {
	return func(f *InvoiceSequenceFactory) {
		f.allowDatabaseFallback = allow
	}
}

// NewInvoiceSequenceFactory creates a new factory. database is the sequence backed by tenant_settings.
func NewInvoiceSequenceFactory(cfg config.InvoicingConfig, redisCfg config.RedisConfig, database billing.InvoiceSequence, opts ...InvoiceSequenceFactoryOption) *InvoiceSequenceFactory {
	f := &InvoiceSequenceFactory{
		cfg:                   cfg,
		redisConfig:           redisCfg,
		database:              database,
		logger:                zap.NewNop(),
		allowDatabaseFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns the configured sequence. The returned client is nil unless the
// Redis backend is in use; the caller closes it on shutdown.
func (f *InvoiceSequenceFactory) Create() (billing.InvoiceSequence, *redis.Client, error) {
	switch f.cfg.SequenceBackend {
	case config.SequenceMemory:
		f.logger.Warn("using in-memory invoice sequence; numbers restart with the process")
		return NewInMemoryInvoiceSequence(), nil, nil
	case config.SequenceRedis:
		client, err := NewRedisClient(f.redisConfig)
		if err == nil {
			f.logger.Info("using Redis invoice sequence", zap.String("addr", f.redisConfig.Addr()))
			return NewRedisInvoiceSequence(client, "", WithSeedSource(f.database)), client, nil
		}
		if !f.allowDatabaseFallback {
			return nil, nil, fmt.Errorf("Redis required for invoice sequence but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to the database invoice sequence", zap.Error(err))
		return f.database, nil, nil
	case config.SequenceDatabase, "":
		return f.database, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown invoice sequence backend %q", f.cfg.SequenceBackend)
	}
}
