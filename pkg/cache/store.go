package cache

import "context"

// Store is a keyed cache with per-entry expiry. A miss is reported by the
// boolean, never by an error.
type Store[V any] interface {
	Get(ctx context.Context, key string) (V, bool, error)
	Set(ctx context.Context, key string, value V) error
	// Add stores value only when key is absent or expired and reports
	// whether it did.
	Add(ctx context.Context, key string, value V) (bool, error)
	Delete(ctx context.Context, key string) error
}
