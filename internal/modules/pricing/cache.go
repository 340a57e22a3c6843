// README: Quote cache contract, fingerprint key, and in-memory implementation.
package pricing

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// QuoteCache stores computed breakdowns for a short TTL. Implementations must
// be safe for concurrent use; writes are last-write-wins.
type QuoteCache interface {
	Get(ctx context.Context, key string) (*Breakdown, bool)
	Set(ctx context.Context, key string, b *Breakdown)
}

// CacheKey is the canonical fingerprint of a quote request.
func CacheKey(q QuoteContext) string {
	customer := "guest"
	if q.CustomerID != "" {
		customer = string(q.CustomerID)
	}
	return fmt.Sprintf("%s|%s|%.6f|%.6f|%s",
		q.ServiceTypeID, q.JobType, q.Location.Lat, q.Location.Lng, customer)
}

type memoryEntry struct {
	breakdown Breakdown
	expiresAt time.Time
}

// MemoryCache is a mutex-guarded TTL map. The production deployment uses the
// redis cache; this one backs tests and single-node setups.
type MemoryCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*Breakdown, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	// A cached quote is never presented as already locked.
	b := entry.breakdown
	b.Locked = false
	return &b, true
}

func (c *MemoryCache) Set(_ context.Context, key string, b *Breakdown) {
	c.mu.Lock()
	c.entries[key] = memoryEntry{breakdown: *b, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}
