// Package cache provides small keyed caches with expiry behind one Store
// interface: an in-process LRU and a Redis-backed store shared between
// instances.
//
//	local := cache.NewLRU[apikey.Entry](10_000, time.Minute)
//	shared := cache.NewRedis[apikey.Entry](client, "relay:apikey:", time.Minute)
//
// Both report a miss as (zero, false, nil); an error means the backend
// failed and callers usually log it and carry on uncached.
//
// Set always overwrites. Add writes only into an empty or expired slot, so a
// writer holding data read before a concurrent Set cannot replace the newer
// value. Redis implements it with SET NX.
//
// NewLRU panics on a non-positive capacity; decide whether to cache at all
// before constructing one. Redis values are JSON encoded, so V must round
// trip through encoding/json.
package cache
