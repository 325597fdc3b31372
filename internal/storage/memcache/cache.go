package memcache

import (
	"context"
	"sync"
	"time"

	"github.com/sandevgo/tuskmem/internal/core"
)

type Clock func() time.Time

type entry struct {
	rec       *core.MemoryRecord
	expiresAt time.Time
}

// Cache is the per-process tier. Records are copied on the way in and out so
// callers can't mutate cached state.
type Cache struct {
	mu      sync.RWMutex
	entries map[core.RecordKey]entry
	now     Clock
}

type Option func(*Cache)

func WithClock(now Clock) Option {
	return func(c *Cache) {
		c.now = now
	}
}

var _ core.RecordCache = (*Cache)(nil)

func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[core.RecordKey]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Get(_ context.Context, key core.RecordKey) core.Result[*core.MemoryRecord] {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return core.Miss[*core.MemoryRecord]()
	}
	if !c.now().Before(e.expiresAt) {
		c.evictIfExpired(key)
		return core.Miss[*core.MemoryRecord]()
	}
	return core.Hit(e.rec.Clone())
}

// Set stores rec for ttl. A non-positive ttl or nil record is ignored.
func (c *Cache) Set(_ context.Context, key core.RecordKey, rec *core.MemoryRecord, ttl time.Duration) {
	if rec == nil || ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{rec: rec.Clone(), expiresAt: c.now().Add(ttl)}
}

func (c *Cache) Del(_ context.Context, key core.RecordKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Sweep drops every expired entry and returns how many were removed.
func (c *Cache) Sweep() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictIfExpired re-checks under the write lock: a concurrent Set may have
// refreshed the entry since the read.
func (c *Cache) evictIfExpired(key core.RecordKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok && !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
	}
}
