package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type lruEntry[V any] struct {
	key       string
	value     V
	expiresAt time.Time
}

// LRU is a thread-safe in-process Store. Entries expire after the TTL and the
// least recently used entry is evicted once capacity is reached.
type LRU[V any] struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	items    map[string]*list.Element
	eviction *list.List
}

// LRUOption configures an LRU.
type LRUOption func(*lruOptions)

type lruOptions struct {
	now func() time.Time
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) LRUOption {
	return func(o *lruOptions) { o.now = now }
}

// NewLRU creates an LRU. The capacity must be positive, otherwise it panics.
// A non-positive ttl disables expiry.
func NewLRU[V any](capacity int, ttl time.Duration, opts ...LRUOption) *LRU[V] {
	if capacity <= 0 {
		panic("LRU cache capacity must be positive")
	}
	o := lruOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &LRU[V]{
		capacity: capacity,
		ttl:      ttl,
		now:      o.now,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
	}
}

// Get returns the value for key and marks it as recently used. Expired
// entries are removed and reported as missing.
func (c *LRU[V]) Get(_ context.Context, key string) (V, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		return zero, false, nil
	}
	entry := elem.Value.(*lruEntry[V])
	if c.expired(entry) {
		c.removeElement(elem)
		return zero, false, nil
	}
	c.eviction.MoveToFront(elem)
	return entry.value, true, nil
}

// Set adds or replaces a value and restarts its TTL.
func (c *LRU[V]) Set(_ context.Context, key string, value V) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value)
	return nil
}

// Add stores value unless a live entry for key already exists.
func (c *LRU[V]) Add(_ context.Context, key string, value V) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok && !c.expired(elem.Value.(*lruEntry[V])) {
		return false, nil
	}
	c.set(key, value)
	return true, nil
}

func (c *LRU[V]) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
	return nil
}

func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eviction.Len()
}

// Must be called with lock held.
func (c *LRU[V]) set(key string, value V) {
	expiresAt := c.now().Add(c.ttl)
	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		entry := elem.Value.(*lruEntry[V])
		entry.value = value
		entry.expiresAt = expiresAt
		return
	}

	c.items[key] = c.eviction.PushFront(&lruEntry[V]{key: key, value: value, expiresAt: expiresAt})
	if c.eviction.Len() > c.capacity {
		c.removeElement(c.eviction.Back())
	}
}

func (c *LRU[V]) expired(entry *lruEntry[V]) bool {
	return c.ttl > 0 && !c.now().Before(entry.expiresAt)
}

// Must be called with lock held.
func (c *LRU[V]) removeElement(elem *list.Element) {
	c.eviction.Remove(elem)
	delete(c.items, elem.Value.(*lruEntry[V]).key)
}
