package apikey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/relay/pkg/cache"
	"github.com/dmitrymomot/relay/pkg/logger"
	"github.com/dmitrymomot/relay/pkg/notifications"
)

// Lookup finds the application owning an API key.
type Lookup interface {
	ApplicationByAPIKey(ctx context.Context, key string) (*notifications.Application, error)
}

// Entry is the cached state of one key fingerprint. The application is
// stored without its API key. A revoked entry marks a key invalidated within
// the last TTL: it is always looked up and never cached again until the
// entry expires, so a lookup that raced the invalidation cannot repopulate
// the cache with stale data.
type Entry struct {
	App     notifications.Application `json:"app"`
	Revoked bool                      `json:"revoked,omitempty"`
}

// Authenticator validates API keys against a Lookup, caching active
// applications by key fingerprint.
type Authenticator struct {
	lookup Lookup
	cache  cache.Store[Entry]
	log    *slog.Logger
}

type Option func(*Authenticator)

// WithCache caches successful lookups. Rejected keys are never cached.
// A nil store disables caching.
func WithCache(c cache.Store[Entry]) Option {
	return func(a *Authenticator) { a.cache = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Authenticator) {
		if l != nil {
			a.log = l
		}
	}
}

func NewAuthenticator(lookup Lookup, opts ...Option) *Authenticator {
	a := &Authenticator{lookup: lookup, log: logger.Discard()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate returns the active application owning key. Unknown, malformed
// and inactive keys are ErrInvalidKey; an empty key is ErrMissingKey.
func (a *Authenticator) Authenticate(ctx context.Context, key string) (*notifications.Application, error) {
	if key == "" {
		return nil, ErrMissingKey
	}
	if !WellFormed(key) {
		return nil, ErrInvalidKey
	}

	fp := fingerprint(key)
	revoked := false
	if a.cache != nil {
		entry, ok, err := a.cache.Get(ctx, fp)
		switch {
		case err != nil:
			a.log.LogAttrs(ctx, slog.LevelWarn, "api key cache read failed", logger.Error(err))
		case ok && entry.Revoked:
			revoked = true
		case ok:
			app := entry.App
			app.APIKey = key
			return &app, nil
		}
	}

	app, err := a.lookup.ApplicationByAPIKey(ctx, key)
	switch {
	case errors.Is(err, notifications.ErrApplicationNotFound):
		return nil, ErrInvalidKey
	case err != nil:
		return nil, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	case !app.Active:
		return nil, ErrInvalidKey
	}

	if a.cache != nil && !revoked {
		cached := *app
		cached.APIKey = ""
		if _, err := a.cache.Add(ctx, fp, Entry{App: cached}); err != nil {
			a.log.LogAttrs(ctx, slog.LevelWarn, "api key cache write failed", logger.AppID(app.ID), logger.Error(err))
		}
	}
	return app, nil
}

// Invalidate replaces the cached entry for key with a revoked marker. Call it
// after the key is rotated or its application is updated or deleted.
func (a *Authenticator) Invalidate(ctx context.Context, key string) {
	if a.cache == nil || key == "" {
		return
	}
	if err := a.cache.Set(ctx, fingerprint(key), Entry{Revoked: true}); err != nil {
		a.log.LogAttrs(ctx, slog.LevelWarn, "api key cache invalidation failed", logger.Error(err))
	}
}
