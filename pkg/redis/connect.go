package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect parses cfg.ConnectionURL and pings until the server answers, the
// attempts run out or ConnectTimeout elapses.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if !cfg.Enabled() {
		return nil, ErrEmptyConnectionURL
	}

	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseRedisConnString, err)
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	client := redis.NewClient(opts)
	var lastErr error
	for range max(cfg.RetryAttempts, 1) {
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	_ = client.Close()
	return nil, errors.Join(ErrRedisNotReady, lastErr)
}

// Healthcheck returns a readiness probe for client.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
