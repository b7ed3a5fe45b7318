// Package apikey authenticates integration requests by application API key.
//
// Keys look like "ntf_" followed by 48 hex characters and are produced by
// Generate. The key is read from X-Api-Key, then an Authorization bearer
// token, then the api_key query parameter:
//
//	auth := apikey.NewAuthenticator(store, apikey.WithCache(cache.NewLRU[apikey.Entry](10_000, time.Minute)))
//	r.With(apikey.Middleware(auth)).Post("/api/v1/notifications/send", h.send)
//
// Handlers read the application with FromContext.
//
// # Caching
//
// Successful lookups may be cached in any cache.Store[Entry]. Entries are
// keyed by a SHA-256 fingerprint of the key and hold the application with
// its APIKey cleared, so the raw key is never written to the cache.
// Malformed keys are rejected before the cache or the store is consulted.
//
// Invalidate must be called whenever a key is rotated or its application is
// updated or deleted. It writes a revoked entry rather than deleting, and
// Authenticate only fills an empty slot, so a lookup that started before the
// rotation cannot put the old key back. Use the Redis store when more than
// one relay instance serves the same database; an in-process LRU only sees
// invalidations made by its own instance.
//
// # Errors
//
// ErrMissingKey and ErrInvalidKey map to 401, ErrLookupFailed to 500. Use
// StatusCode to translate any error returned by Authenticate.
package apikey
