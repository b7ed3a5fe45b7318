package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store shared between relay instances. Values are stored as JSON
// under prefix+key.
type Redis[V any] struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedis[V any](client redis.UniversalClient, prefix string, ttl time.Duration) *Redis[V] {
	return &Redis[V]{client: client, prefix: prefix, ttl: ttl}
}

func (c *Redis[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var v V
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return v, false, nil
	}
	if err != nil {
		return v, false, fmt.Errorf("cache get: %w", err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, false, fmt.Errorf("cache decode: %w", err)
	}
	return v, true, nil
}

func (c *Redis[V]) Set(ctx context.Context, key string, value V) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Add uses SET NX, so concurrent writers from any instance cannot replace a
// live entry.
func (c *Redis[V]) Add(ctx context.Context, key string, value V) (bool, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("cache encode: %w", err)
	}
	ok, err := c.client.SetNX(ctx, c.prefix+key, raw, c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("cache add: %w", err)
	}
	return ok, nil
}

func (c *Redis[V]) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}
