package discount

import (
	"context"
	"sync/atomic"
	"time"
)

// CacheKey is the well-known key of the active rule snapshot.
const CacheKey = "active_discount_rules"

// DefaultCacheTTL bounds how long a snapshot may be served without a refresh.
const DefaultCacheTTL = 300 * time.Second

// SnapshotCache stores the active rule snapshot under CacheKey.
type SnapshotCache interface {
	// Load returns the cached snapshot and whether it was present and fresh.
	Load(ctx context.Context) ([]Rule, bool, error)
	Store(ctx context.Context, rules []Rule) error
	Clear(ctx context.Context) error
}

type snapshot struct {
	rules   []Rule
	expires time.Time
}

// MemoryCache is an in-process SnapshotCache. Readers see either a complete
// snapshot or none; Store and Clear swap the pointer atomically.
type MemoryCache struct {
	ttl time.Duration
	now func() time.Time
	cur atomic.Pointer[snapshot]
}

var _ SnapshotCache = (*MemoryCache)(nil)

// NewMemoryCache creates a MemoryCache. A non-positive ttl uses DefaultCacheTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &MemoryCache{ttl: ttl, now: time.Now}
}

// Load implements SnapshotCache.
func (c *MemoryCache) Load(context.Context) ([]Rule, bool, error) {
	s := c.cur.Load()
	if s == nil || !c.now().Before(s.expires) {
		return nil, false, nil
	}
	return cloneRules(s.rules), true, nil
}

// Store implements SnapshotCache.
func (c *MemoryCache) Store(_ context.Context, rules []Rule) error {
	c.cur.Store(&snapshot{
		rules:   cloneRules(rules),
		expires: c.now().Add(c.ttl),
	})
	return nil
}

// Clear implements SnapshotCache.
func (c *MemoryCache) Clear(context.Context) error {
	c.cur.Store(nil)
	return nil
}
