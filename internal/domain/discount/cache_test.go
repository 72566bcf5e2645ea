package discount

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type mockRepository struct {
	mu      sync.Mutex
	rules   []Rule
	err     error
	fetches int
	onFetch func()
}

func (m *mockRepository) FetchActive(_ context.Context, _ time.Time) ([]Rule, error) {
	m.mu.Lock()
	m.fetches++
	hook := m.onFetch
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
	if m.err != nil {
		return nil, m.err
	}
	return cloneRules(m.rules), nil
}

func (m *mockRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches
}

func newTestCache(ttl time.Duration) (*MemoryCache, *fakeClock) {
	clock := newFakeClock()
	c := NewMemoryCache(ttl)
	c.now = clock.Now
	return c, clock
}

func TestMemoryCache_TTL(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestCache(300 * time.Second)

	_, ok, err := c.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Store(ctx, []Rule{percentRule(1, 1, "0.10")}))

	clock.Advance(299 * time.Second)
	rules, ok, err := c.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, rules, 1)

	clock.Advance(time.Second)
	_, ok, err = c.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "snapshot expires at exactly ttl")
}

func TestMemoryCache_Clear(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(0)
	assert.Equal(t, DefaultCacheTTL, c.ttl)

	require.NoError(t, c.Store(ctx, []Rule{percentRule(1, 1, "0.10")}))
	require.NoError(t, c.Clear(ctx))

	_, ok, err := c.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_SnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(time.Minute)

	r := percentRule(1, 1, "0.10")
	r.Threshold = ptr(int64(500))
	r.Comparator = GreaterThan
	in := []Rule{r}
	require.NoError(t, c.Store(ctx, in))
	*in[0].Threshold = 1

	out, ok, err := c.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(500), *out[0].Threshold)

	*out[0].Threshold = 2
	out[0].Name = "mutated"
	again, _, _ := c.Load(ctx)
	assert.Equal(t, int64(500), *again[0].Threshold)
	assert.Equal(t, r.Name, again[0].Name)
}

func newTestSource(repo Repository, ttl time.Duration) (*CachedSource, *fakeClock) {
	cache, clock := newTestCache(ttl)
	return NewCachedSource(repo, cache, nil), clock
}

func TestCachedSource_HitAndExpiry(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepository{rules: []Rule{percentRule(1, 1, "0.10")}}
	src, clock := newTestSource(repo, DefaultCacheTTL)

	for range 3 {
		rules, err := src.ActiveRules(ctx)
		require.NoError(t, err)
		assert.Len(t, rules, 1)
	}
	assert.Equal(t, 1, repo.count())

	clock.Advance(DefaultCacheTTL)
	_, err := src.ActiveRules(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.count())
}

func TestCachedSource_ClearCache(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepository{rules: []Rule{percentRule(1, 1, "0.10")}}
	src, _ := newTestSource(repo, DefaultCacheTTL)

	_, err := src.ActiveRules(ctx)
	require.NoError(t, err)

	repo.mu.Lock()
	repo.rules = append(repo.rules, percentRule(2, 2, "0.05"))
	repo.mu.Unlock()

	rules, err := src.ActiveRules(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, 1, "stale until cleared")

	src.ClearCache(ctx)
	rules, err = src.ActiveRules(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, 2)
	assert.Equal(t, 2, repo.count())
}

func TestCachedSource_Ordering(t *testing.T) {
	repo := &mockRepository{rules: []Rule{
		percentRule(5, 2, "0.10"),
		percentRule(3, 1, "0.10"),
		percentRule(4, 2, "0.10"),
		percentRule(1, 3, "0.10"),
	}}
	src, _ := newTestSource(repo, DefaultCacheTTL)

	rules, err := src.ActiveRules(context.Background())
	require.NoError(t, err)

	var ids []int64
	for _, r := range rules {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []int64{3, 4, 5, 1}, ids)
}

func TestCachedSource_ErrorNotCached(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepository{err: errors.New("connection refused")}
	src, _ := newTestSource(repo, DefaultCacheTTL)

	_, err := src.ActiveRules(ctx)
	require.Error(t, err)

	repo.mu.Lock()
	repo.err = nil
	repo.rules = []Rule{percentRule(1, 1, "0.10")}
	repo.mu.Unlock()

	rules, err := src.ActiveRules(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, 1)
	assert.Equal(t, 2, repo.count())
}

func TestCachedSource_ClearDuringFetchDiscardsResult(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepository{rules: []Rule{percentRule(1, 1, "0.10")}}
	src, _ := newTestSource(repo, DefaultCacheTTL)

	repo.onFetch = func() {
		// An admin write lands while the fetch is in flight.
		repo.onFetch = nil
		src.ClearCache(ctx)
	}

	_, err := src.ActiveRules(ctx)
	require.NoError(t, err)
	_, err = src.ActiveRules(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, repo.count(), "raced fetch must not populate the cache")
}

func TestCachedSource_ConcurrentReaders(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepository{rules: []Rule{percentRule(1, 1, "0.10"), percentRule(2, 2, "0.20")}}
	src, _ := newTestSource(repo, DefaultCacheTTL)

	var wg sync.WaitGroup
	results := make([][]Rule, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rules, err := src.ActiveRules(ctx)
			assert.NoError(t, err)
			results[i] = rules
		}()
	}
	wg.Wait()

	for _, rules := range results {
		assert.Equal(t, results[0], rules)
	}
	assert.LessOrEqual(t, repo.count(), len(results))
}
