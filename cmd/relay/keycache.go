package main

import (
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/relay/pkg/apikey"
	"github.com/dmitrymomot/relay/pkg/cache"
)

const keyCachePrefix = "relay:apikey:"

// newKeyCache picks the API key cache: redis when a client is configured, an
// in-process LRU when size is positive, and none otherwise.
func newKeyCache(client goredis.UniversalClient, size int, ttl time.Duration) cache.Store[apikey.Entry] {
	switch {
	case client != nil:
		return cache.NewRedis[apikey.Entry](client, keyCachePrefix, ttl)
	case size > 0:
		return cache.NewLRU[apikey.Entry](size, ttl)
	default:
		return nil
	}
}
