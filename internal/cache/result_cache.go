// Package cache provides the time-bounded comp search result cache shared
// across matching runs. Entries are keyed by the deterministic filter cache
// key and expire lazily: a read past the TTL deletes the entry and reports
// a miss. Writes are last-writer-wins.
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cxr0514/AgentsHub-sub000/internal/models"
)

// DefaultTTL is used when NewResultCache is given a non-positive TTL.
const DefaultTTL = time.Hour

// ResultCache is a TTL cache of CompResult values. Safe for concurrent use.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time

	hits      int64
	misses    int64
	evictions int64
}

type entry struct {
	result   models.CompResult
	storedAt time.Time
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Size      int   `json:"size"`
}

// NewResultCache creates a ResultCache with the given TTL.
func NewResultCache(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResultCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// NewResultCacheAt creates a ResultCache with an injectable clock, for tests.
func NewResultCacheAt(ttl time.Duration, now func() time.Time) *ResultCache {
	c := NewResultCache(ttl)
	c.now = now
	return c
}

// Get returns the cached result for key if present and unexpired.
// Expired entries are deleted on read.
func (c *ResultCache) Get(key string) (models.CompResult, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return models.CompResult{}, false
	}

	if c.now().Sub(e.storedAt) > c.ttl {
		c.mu.Lock()
		// Re-check under the write lock; another goroutine may have
		// refreshed the entry since the read.
		if cur, still := c.entries[key]; still && cur.storedAt.Equal(e.storedAt) {
			delete(c.entries, key)
			atomic.AddInt64(&c.evictions, 1)
		}
		c.mu.Unlock()
		atomic.AddInt64(&c.misses, 1)
		return models.CompResult{}, false
	}

	atomic.AddInt64(&c.hits, 1)
	return e.result, true
}

// Set stores a result under key, replacing any prior entry.
func (c *ResultCache) Set(key string, result models.CompResult) {
	c.mu.Lock()
	c.entries[key] = entry{result: result, storedAt: c.now()}
	c.mu.Unlock()
}

// Invalidate removes a single key.
func (c *ResultCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Purge removes every entry.
func (c *ResultCache) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Stats returns a snapshot of the cache counters.
func (c *ResultCache) Stats() Stats {
	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()

	return Stats{
		Hits:      atomic.LoadInt64(&c.hits),
		Misses:    atomic.LoadInt64(&c.misses),
		Evictions: atomic.LoadInt64(&c.evictions),
		Size:      size,
	}
}
