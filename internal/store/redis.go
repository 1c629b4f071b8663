package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const quarantineTTL = 7 * 24 * time.Hour

// RedisBackend keeps the encoded document under a single key. The client is
// shared and owned by the caller.
type RedisBackend struct {
	client redis.UniversalClient
	key    string
}

func NewRedisBackend(client redis.UniversalClient, key string) (*RedisBackend, error) {
	if key == "" {
		return nil, errors.New("redis backend: empty document key")
	}
	return &RedisBackend{client: client, key: key}, nil
}

func (r *RedisBackend) Read(ctx context.Context) ([]byte, error) {
	b, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", r.key, err)
	}
	if len(b) == 0 {
		return nil, ErrNotFound
	}
	return b, nil
}

func (r *RedisBackend) Write(ctx context.Context, data []byte) error {
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

// Quarantine keeps unreadable bytes under a sibling key for a week.
func (r *RedisBackend) Quarantine(ctx context.Context, data []byte) (string, error) {
	dst := r.key + ":corrupt"
	if err := r.client.Set(ctx, dst, data, quarantineTTL).Err(); err != nil {
		return "", err
	}
	return dst, nil
}

func (r *RedisBackend) Close() error { return nil }
