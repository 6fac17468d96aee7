package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/metcha-cli/internal/core/domain"
	"github.com/custodia-labs/metcha-cli/internal/core/ports/driven"
)

// Ensure ResultCache implements the interface.
var _ driven.ResultCache = (*ResultCache)(nil)

// ResultCache is an in-memory implementation of driven.ResultCache.
// Entries honor the configured TTL but nothing is persisted; it backs
// tests and cache-less deployments.
type ResultCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

type cacheEntry struct {
	results  []domain.RawResult
	cachedAt time.Time
}

// NewResultCache creates a new in-memory result cache. A zero or
// negative ttl disables expiry.
func NewResultCache(ttl time.Duration) *ResultCache {
	return &ResultCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the cached results for key if a live entry exists.
func (c *ResultCache) Get(ctx context.Context, key string) ([]domain.RawResult, bool) {
	if ctx.Err() != nil {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.ttl > 0 && !time.Now().Before(e.cachedAt.Add(c.ttl)) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.results, true
}

// Set stores results under key.
func (c *ResultCache) Set(ctx context.Context, key string, results []domain.RawResult) {
	if ctx.Err() != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{results: results, cachedAt: time.Now()}
}

// Len returns the number of live and expired entries held.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
