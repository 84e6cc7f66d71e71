package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	id "veil/pkg/domain"
)

// Cache stores anonymized results keyed by (queryID, level). Entries expire
// after a TTL; a hit bypasses consent validation and anonymization.
type Cache interface {
	Get(ctx context.Context, queryID string, level id.AnonymizationLevel) (*QueryResult, bool)
	Set(ctx context.Context, queryID string, level id.AnonymizationLevel, result *QueryResult)
}

func cacheKey(queryID string, level id.AnonymizationLevel) string {
	return fmt.Sprintf("veil:result:%s:%s", queryID, level)
}

type cacheEntry struct {
	result    *QueryResult
	expiresAt time.Time
}

// InMemoryCache is a TTL map with lazy eviction: expired entries are dropped
// when next read, not by a background sweeper.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	return &InMemoryCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *InMemoryCache) Get(_ context.Context, queryID string, level id.AnonymizationLevel) (*QueryResult, bool) {
	key := cacheKey(queryID, level)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && c.now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry.result, true
}

func (c *InMemoryCache) Set(_ context.Context, queryID string, level id.AnonymizationLevel, result *QueryResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(queryID, level)] = cacheEntry{
		result:    result,
		expiresAt: c.now().Add(c.ttl),
	}
}
