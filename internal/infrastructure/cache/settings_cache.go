package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/handwerk/backoffice/internal/domain/billing"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultSettingsKeyPrefix = "backoffice:settings:"
	defaultSettingsTTL       = 30 * time.Second
)

// cachedSettings is the JSON form of TenantSettings kept in Redis
type cachedSettings struct {
	TenantID          int64           `json:"tenant_id"`
	InvoicePrefix     string          `json:"invoice_prefix"`
	InvoiceNextNumber int64           `json:"invoice_next_number"`
	PaymentTermsDays  int             `json:"payment_terms_days"`
	DefaultTaxRate    decimal.Decimal `json:"default_tax_rate"`
}

// CachedSettingsRepository is a read-through Redis cache in front of a SettingsRepository.
// Save writes to the underlying repository first and then drops the cached entry.
// The cached invoice counter is informational only and may lag the sequence by the TTL.
type CachedSettingsRepository struct {
	next      billing.SettingsRepository
	client    redis.UniversalClient
	ttl       time.Duration
	keyPrefix string
	logger    *zap.Logger
}

// SettingsCacheOption is a functional option for configuring the cache
type SettingsCacheOption func(*CachedSettingsRepository)

// WithSettingsTTL sets how long an entry is served from Redis
func WithSettingsTTL(ttl time.Duration) SettingsCacheOption {
	return func(c *CachedSettingsRepository) {
		c.ttl = ttl
	}
}

// WithSettingsLogger sets the logger for the cache
func WithSettingsLogger(logger *zap.Logger) SettingsCacheOption {
	return func(c *CachedSettingsRepository) {
		c.logger = logger
	}
}

// NewCachedSettingsRepository wraps next with a Redis cache
func NewCachedSettingsRepository(next billing.SettingsRepository, client redis.UniversalClient, opts ...SettingsCacheOption) *CachedSettingsRepository {
	c := &CachedSettingsRepository{
		next:      next,
		client:    client,
		ttl:       defaultSettingsTTL,
		keyPrefix: defaultSettingsKeyPrefix,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FindForTenant serves the settings from Redis, loading and caching them on a miss.
// Redis failures fall through to the repository.
func (c *CachedSettingsRepository) FindForTenant(ctx context.Context, tenantID int64) (*billing.TenantSettings, error) {
	key := c.key(tenantID)
	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cs cachedSettings
		if err := json.Unmarshal(raw, &cs); err == nil {
			s := billing.TenantSettings(cs)
			return &s, nil
		}
		c.logger.Warn("dropping undecodable settings cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("settings cache read failed", zap.String("key", key), zap.Error(err))
	}

	s, err := c.next.FindForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(cachedSettings(*s)); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("settings cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return s, nil
}

// Save stores the settings and invalidates the cached entry
func (c *CachedSettingsRepository) Save(ctx context.Context, s *billing.TenantSettings) error {
	if err := c.next.Save(ctx, s); err != nil {
		return err
	}
	if err := c.client.Del(ctx, c.key(s.TenantID)).Err(); err != nil {
		c.logger.Warn("settings cache invalidation failed", zap.Int64("tenant_id", s.TenantID), zap.Error(err))
	}
	return nil
}

func (c *CachedSettingsRepository) key(tenantID int64) string {
	return c.keyPrefix + strconv.FormatInt(tenantID, 10)
}

var _ billing.SettingsRepository = (*CachedSettingsRepository)(nil)
