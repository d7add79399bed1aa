package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const idempotencyTTL = 24 * time.Hour

// IdempotencyStore remembers the response of a workflow request by key.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, body []byte) error
}

// RedisIdempotencyStore keeps responses in Redis for 24 hours.
// Key format: idem:<scope>:<key>
type RedisIdempotencyStore struct {
	client *redis.Client
	scope  string
}

func NewRedisIdempotencyStore(client *redis.Client, scope string) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, scope: scope}
}

func (r *RedisIdempotencyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	body, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return body, true, nil
}

func (r *RedisIdempotencyStore) Save(ctx context.Context, key string, body []byte) error {
	return r.client.Set(ctx, r.key(key), body, idempotencyTTL).Err()
}

func (r *RedisIdempotencyStore) key(key string) string {
	return fmt.Sprintf("idem:%s:%s", r.scope, key)
}
