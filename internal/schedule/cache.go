package schedule

import (
	"sync"
	"time"
)

// DefaultCacheTTL applies when no positive TTL is configured.
const DefaultCacheTTL = 5 * time.Minute

// CacheObserver receives the entry count after every Put and Clear.
type CacheObserver interface {
	ObserveCacheEntries(cache string, entries int)
}

type cacheEntry struct {
	doc       *BusinessHours
	fetchedAt time.Time
}

// Cache holds one business-hours document per tenant for a fixed TTL.
// A single mutex guards the whole map and no network I/O happens under it.
type Cache struct {
	mu       sync.Mutex
	entries  map[int]cacheEntry
	ttl      time.Duration
	now      Clock
	observer CacheObserver
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithCacheClock overrides the clock used for expiry.
func WithCacheClock(c Clock) CacheOption {
	return func(cache *Cache) {
		if c != nil {
			cache.now = c
		}
	}
}

// WithCacheObserver attaches an entry-count hook.
func WithCacheObserver(o CacheObserver) CacheOption {
	return func(cache *Cache) {
		cache.observer = o
	}
}

// NewCache creates an empty cache.
func NewCache(ttl time.Duration, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &Cache{
		entries: make(map[int]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the configured lifetime of an entry.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the tenant's document while it is younger than the TTL.
// Expired entries stay in the map until the next Put overwrites them.
func (c *Cache) Get(tenantID int) (*BusinessHours, bool) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[tenantID]
	if !ok || now.Sub(entry.fetchedAt) >= c.ttl {
		return nil, false
	}
	return entry.doc, true
}

// Put stores doc as the tenant's current document.
func (c *Cache) Put(tenantID int, doc *BusinessHours) {
	if doc == nil {
		return
	}
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[tenantID] = cacheEntry{doc: doc, fetchedAt: now}
	c.report(len(c.entries))
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int]cacheEntry)
	c.report(0)
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// report runs under c.mu so reported counts stay in mutation order. Observers
// must not call back into the cache.
func (c *Cache) report(n int) {
	if c.observer != nil {
		c.observer.ObserveCacheEntries("schedule", n)
	}
}
