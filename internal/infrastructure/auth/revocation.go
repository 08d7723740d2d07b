package auth

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "backoffice:revoked:"

// RedisRevocationList looks up revoked token ids written by the identity provider.
// An entry's TTL is expected to match the remaining lifetime of the token.
type RedisRevocationList struct {
	client redis.UniversalClient
}

// NewRedisRevocationList creates a revocation list on an existing client
func NewRedisRevocationList(client redis.UniversalClient) *RedisRevocationList {
	return &RedisRevocationList{client: client}
}

// IsRevoked reports whether the token id is on the list
func (l *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := l.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return n > 0, nil
}

var _ RevocationList = (*RedisRevocationList)(nil)
