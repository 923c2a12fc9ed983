package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang/groupcache/singleflight"

	"daytrader-client/internal/interfaces"
	"daytrader-client/internal/logger"
)

// Fetcher loads the server view for key. It receives the full key so one
// fetcher can serve a whole hierarchy (e.g. "holdings/42").
type Fetcher func(ctx context.Context, key string) (any, error)

type entry struct {
	value     any
	fetchedAt time.Time
	stale     bool
}

// QueryCache is an in-memory cache of server views keyed by slash-separated
// paths. Values are only replaced by refetching, never patched.
type QueryCache struct {
	staleTime time.Duration
	now       func() time.Time

	mu       sync.RWMutex
	entries  map[string]*entry
	fetchers map[string]Fetcher
	// epoch orders fetches against invalidations; marks holds the epoch of
	// the last invalidation of each key.
	epoch uint64
	marks map[string]uint64

	group singleflight.Group
}

var _ interfaces.InvalidationRegistry = (*QueryCache)(nil)

// New returns a cache whose values go stale staleTime after they were
// fetched. A zero staleTime keeps values until invalidated.
func New(staleTime time.Duration) *QueryCache {
	return &QueryCache{
		staleTime: staleTime,
		now:       time.Now,
		entries:   make(map[string]*entry),
		fetchers:  make(map[string]Fetcher),
		marks:     make(map[string]uint64),
	}
}

// Register installs f for key and every key below it. The longest
// registered prefix wins.
func (c *QueryCache) Register(key string, f Fetcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchers[key] = f
}

// Invalidate marks key and its descendants stale. Nothing is fetched until
// the next Fetch of a stale key.
func (c *QueryCache) Invalidate(key string) {
	c.mu.Lock()
	c.epoch++
	c.marks[key] = c.epoch
	n := 0
	for k, e := range c.entries {
		if covers(key, k) {
			e.stale = true
			n++
		}
	}
	c.mu.Unlock()

	logger.Debug(context.Background(), "Cache invalidated", "key", key, "entries", n)
}

// Fetch returns the cached value for key while it is fresh and otherwise
// loads it. Concurrent loads of one key share a single request.
func (c *QueryCache) Fetch(ctx context.Context, key string) (any, error) {
	if v, ok := c.fresh(key); ok {
		return v, nil
	}

	f, ok := c.fetcher(key)
	if !ok {
		return nil, fmt.Errorf("cache: no fetcher registered for %q", key)
	}

	return c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		start := c.epoch
		c.mu.RUnlock()

		v, err := f(ctx, key)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[key] = &entry{
			value:     v,
			fetchedAt: c.now(),
			// An invalidation that landed mid-flight makes this result stale on arrival.
			stale: c.invalidatedSince(key, start),
		}
		c.mu.Unlock()
		return v, nil
	})
}

// Peek returns the cached value without fetching. fresh is false when the
// value is stale or expired.
func (c *QueryCache) Peek(key string) (value any, fresh bool, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, false
	}
	return e.value, !c.expired(e), true
}

// Clear drops every cached value. Registered fetchers are kept.
func (c *QueryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

func (c *QueryCache) fresh(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || c.expired(e) {
		return nil, false
	}
	return e.value, true
}

// expired must be called with c.mu held.
func (c *QueryCache) expired(e *entry) bool {
	if e.stale {
		return true
	}
	return c.staleTime > 0 && c.now().Sub(e.fetchedAt) > c.staleTime
}

// invalidatedSince must be called with c.mu held.
func (c *QueryCache) invalidatedSince(key string, epoch uint64) bool {
	for k, at := range c.marks {
		if at > epoch && covers(k, key) {
			return true
		}
	}
	return false
}

func (c *QueryCache) fetcher(key string) (Fetcher, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	best := ""
	var found Fetcher
	for k, f := range c.fetchers {
		if covers(k, key) && len(k) >= len(best) {
			best, found = k, f
		}
	}
	return found, found != nil
}

// covers reports whether key is prefix itself or lies below it.
func covers(prefix, key string) bool {
	return key == prefix || strings.HasPrefix(key, prefix+"/")
}

// Get fetches key from r and asserts the value's type.
func Get[T any](ctx context.Context, r interfaces.InvalidationRegistry, key string) (T, error) {
	var zero T
	v, err := r.Fetch(ctx, key)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cache: %q holds %T, not %T", key, v, zero)
	}
	return t, nil
}
