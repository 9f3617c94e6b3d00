package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDenylist stores revoked token ids in Redis so every API instance
// rejects a logged-out token.
type RedisDenylist struct {
	client *redis.Client
	prefix string
}

// NewRedisDenylist namespaces keys with prefix (e.g. "revoked").
func NewRedisDenylist(client *redis.Client, prefix string) *RedisDenylist {
	return &RedisDenylist{client: client, prefix: prefix}
}

func (r *RedisDenylist) key(tokenID string) string {
	return r.prefix + ":" + tokenID
}

func (r *RedisDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.key(tokenID), 1, ttl).Err()
}

func (r *RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

var _ Denylist = (*RedisDenylist)(nil)
