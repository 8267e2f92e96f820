package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList tracks tokens invalidated by logout, backed by Redis.
// Key format: revoked:<jti>, expiring when the token itself would have.
type RevocationList struct {
	client *redis.Client
}

// NewRevocationList creates a RevocationList wrapping the given client.
func NewRevocationList(client *redis.Client) *RevocationList {
	return &RevocationList{client: client}
}

// Revoke marks the token invalid for ttl. SET is idempotent, so revoking
// twice succeeds.
func (l *RevocationList) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return l.client.Set(ctx, l.key(tokenID), "1", ttl).Err()
}

// IsRevoked reports whether the token has been revoked and not yet expired.
func (l *RevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := l.client.Exists(ctx, l.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func (l *RevocationList) key(tokenID string) string {
	return fmt.Sprintf("revoked:%s", tokenID)
}
