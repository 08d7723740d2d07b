package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/handwerk/backoffice/internal/domain/billing"
	"github.com/handwerk/backoffice/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const defaultSequenceKeyPrefix = "backoffice:invoice_seq:"

// RedisInvoiceSequence counts invoice numbers with INCR on one key per tenant.
// INCR is atomic on the server, so every instance sharing the Redis sees one counter.
// A key that starts over at 1 (new Redis, flushed data) is lifted to the seed
// source's counter so numbers already issued are not handed out again.
type RedisInvoiceSequence struct {
	client    redis.UniversalClient
	keyPrefix string
	seed      billing.InvoiceSequence
}

// RedisSequenceOption configures a RedisInvoiceSequence
type RedisSequenceOption func(*RedisInvoiceSequence)

// WithSeedSource sets the sequence consulted when a tenant's key starts over
func WithSeedSource(source billing.InvoiceSequence) RedisSequenceOption {
	return func(s *RedisInvoiceSequence) {
		s.seed = source
	}
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisInvoiceSequence creates a sequence on an existing client.
// The caller retains ownership of the client.
func NewRedisInvoiceSequence(client redis.UniversalClient, keyPrefix string, opts ...RedisSequenceOption) *RedisInvoiceSequence {
	if keyPrefix == "" {
		keyPrefix = defaultSequenceKeyPrefix
	}
	s := &RedisInvoiceSequence{client: client, keyPrefix: keyPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next increments and returns the tenant's counter; the first value is 1
func (s *RedisInvoiceSequence) Next(ctx context.Context, tenantID int64) (int64, error) {
	if tenantID <= 0 {
		return 0, fmt.Errorf("invoice sequence: invalid tenant id %d", tenantID)
	}
	n, err := s.client.Incr(ctx, s.key(tenantID)).Result()
	if err != nil {
		return 0, fmt.Errorf("allocate invoice number for tenant %d: %w", tenantID, err)
	}
	if n == 1 && s.seed != nil {
		return s.reseed(ctx, tenantID)
	}
	return n, nil
}

// reseed takes the next value from the seed source and moves the Redis counter up to it.
// Callers racing past the fresh key may still collide; the unique invoice number index rejects those.
func (s *RedisInvoiceSequence) reseed(ctx context.Context, tenantID int64) (int64, error) {
	n, err := s.seed.Next(ctx, tenantID)
	if err != nil {
		return 0, fmt.Errorf("seed invoice sequence for tenant %d: %w", tenantID, err)
	}
	if n <= 1 {
		return 1, nil
	}
	if err := s.Seed(ctx, tenantID, n+1); err != nil {
		return 0, fmt.Errorf("seed invoice sequence for tenant %d: %w", tenantID, err)
	}
	return n, nil
}

// Seed raises the tenant's counter so the next value is at least next.
// It never lowers a counter that is already ahead.
func (s *RedisInvoiceSequence) Seed(ctx context.Context, tenantID, next int64) error {
	key := s.key(tenantID)
	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if current >= next-1 {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next-1, 0)
			return nil
		})
		return err
	}, key)
}

func (s *RedisInvoiceSequence) key(tenantID int64) string {
	return s.keyPrefix + strconv.FormatInt(tenantID, 10)
}

var _ billing.InvoiceSequence = (*RedisInvoiceSequence)(nil)
