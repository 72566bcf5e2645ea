package discount

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CachedSource serves the active rule set from a SnapshotCache and falls
// back to the Repository on a miss. Concurrent misses share one fetch.
type CachedSource struct {
	repo    Repository
	cache   SnapshotCache
	metrics *Metrics
	now     func() time.Time

	group singleflight.Group
	// gen is bumped by ClearCache so a fetch that raced with it is not stored.
	gen atomic.Uint64
}

var _ Source = (*CachedSource)(nil)

// NewCachedSource creates a CachedSource. metrics may be nil.
func NewCachedSource(repo Repository, cache SnapshotCache, metrics *Metrics) *CachedSource {
	return &CachedSource{
		repo:    repo,
		cache:   cache,
		metrics: metrics,
		now:     time.Now,
	}
}

// ActiveRules returns the ordered active rules.
func (s *CachedSource) ActiveRules(ctx context.Context) ([]Rule, error) {
	rules, ok, err := s.cache.Load(ctx)
	switch {
	case err != nil:
		zctx.From(ctx).Warn("Rule cache read failed", zap.Error(err))
	case ok:
		s.metrics.recordCache(ctx, true)
		return rules, nil
	}
	s.metrics.recordCache(ctx, false)

	v, err, _ := s.group.Do(CacheKey, func() (any, error) {
		gen := s.gen.Load()
		zctx.From(ctx).Debug("Fetching active discount rules")

		fetched, err := s.repo.FetchActive(ctx, s.now())
		if err != nil {
			return nil, errors.Wrap(err, "fetch active rules")
		}
		slices.SortStableFunc(fetched, func(a, b Rule) int {
			switch {
			case Less(a, b):
				return -1
			case Less(b, a):
				return 1
			}
			return 0
		})

		if s.gen.Load() == gen {
			if err := s.cache.Store(ctx, fetched); err != nil {
				zctx.From(ctx).Warn("Rule cache write failed", zap.Error(err))
			}
		}
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneRules(v.([]Rule)), nil
}

// ClearCache drops the snapshot so the next read refetches.
func (s *CachedSource) ClearCache(ctx context.Context) {
	s.gen.Add(1)
	s.group.Forget(CacheKey)
	if err := s.cache.Clear(ctx); err != nil {
		zctx.From(ctx).Error("Rule cache clear failed", zap.Error(err))
		return
	}
	zctx.From(ctx).Info("Discount rules cache cleared")
}
