// Package redis shares the active discount rule snapshot across replicas.
package redis

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	goredis "github.com/redis/go-redis/v9"

	"github.com/xenking/kart-discounts/internal/domain/discount"
	"github.com/xenking/kart-discounts/internal/wire"
)

var _ discount.SnapshotCache = (*SnapshotCache)(nil)

// SnapshotCache stores the active rule snapshot as JSON under
// discount.CacheKey. Expiry is delegated to the Redis key TTL.
type SnapshotCache struct {
	client goredis.UniversalClient
	key    string
	ttl    time.Duration
}

// NewSnapshotCache creates a SnapshotCache. A non-positive ttl uses
// discount.DefaultCacheTTL.
func NewSnapshotCache(client goredis.UniversalClient, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = discount.DefaultCacheTTL
	}
	return &SnapshotCache{client: client, key: discount.CacheKey, ttl: ttl}
}

// NewClient parses a redis:// URL and verifies connectivity.
func NewClient(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return client, nil
}

// Load implements discount.SnapshotCache.
func (c *SnapshotCache) Load(ctx context.Context) ([]discount.Rule, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "get snapshot")
	}
	rules, err := wire.DecodeRules(jx.DecodeBytes(data))
	if err != nil {
		return nil, false, errors.Wrap(err, "decode snapshot")
	}
	return rules, true, nil
}

// Store implements discount.SnapshotCache.
func (c *SnapshotCache) Store(ctx context.Context, rules []discount.Rule) error {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	wire.EncodeRules(e, rules)

	if err := c.client.Set(ctx, c.key, e.Bytes(), c.ttl).Err(); err != nil {
		return errors.Wrap(err, "set snapshot")
	}
	return nil
}

// Clear implements discount.SnapshotCache.
func (c *SnapshotCache) Clear(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return errors.Wrap(err, "delete snapshot")
	}
	return nil
}
