// Package cache provides a small time-expiring cache whose entries are
// replaced whole on refresh.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is the expiry used by the content service.
const DefaultTTL = 5 * time.Minute

// sweepInterval bounds how often Set scans for expired entries.
const sweepInterval = time.Minute

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// TTL caches values per key until their time-to-live elapses.
// Concurrent refreshes of the same key share a single call.
type TTL[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
	group   singleflight.Group
	now     func() time.Time

	nextSweep time.Time
}

// Option configures a TTL cache.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates an empty cache.
func New[T any](opts ...Option) *TTL[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &TTL[T]{
		entries: make(map[string]entry[T]),
		now:     o.now,
	}
}

// Get returns the cached value for key if it has not expired. An expired
// entry is removed.
func (c *TTL[T]) Get(key string) (T, bool) {
	var zero T
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if now := c.now(); !now.Before(e.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && !now.Before(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for ttl. At most once per sweepInterval it
// also drops every expired entry, so keys that are never read again do not
// accumulate.
func (c *TTL[T]) Set(key string, value T, ttl time.Duration) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if !now.Before(c.nextSweep) {
		for k, e := range c.entries {
			if !now.Before(e.expiresAt) {
				delete(c.entries, k)
			}
		}
		c.nextSweep = now.Add(sweepInterval)
	}
	c.entries[key] = entry[T]{value: value, expiresAt: now.Add(ttl)}
}

// GetOrRefresh returns the fresh cached value for key, or calls refresh,
// stores its result for ttl and returns it. Errors are returned to every
// waiting caller and are not cached.
func (c *TTL[T]) GetOrRefresh(ctx context.Context, key string, ttl time.Duration, refresh func(context.Context) (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := refresh(ctx)
		if err != nil {
			return nil, err
		}
		c.Set(key, v, ttl)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Purge drops every entry.
func (c *TTL[T]) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]entry[T])
	c.mu.Unlock()
}

// Len returns the number of stored entries, including expired ones not yet
// swept.
func (c *TTL[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
