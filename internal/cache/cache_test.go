package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingFetcher(calls *int32, value any) Fetcher {
	return func(ctx context.Context, key string) (any, error) {
		atomic.AddInt32(calls, 1)
		return value, nil
	}
}

func TestFetchCachesUntilInvalidated(t *testing.T) {
	c := New(0)
	var calls int32
	c.Register(KeyHoldings, countingFetcher(&calls, []string{"AAPL"}))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		v, err := c.Fetch(ctx, KeyHoldings)
		require.NoError(t, err)
		assert.Equal(t, []string{"AAPL"}, v)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	c.Invalidate(KeyHoldings)
	_, fresh, ok := c.Peek(KeyHoldings)
	assert.True(t, ok)
	assert.False(t, fresh)

	_, err := c.Fetch(ctx, KeyHoldings)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestInvalidateCoversDescendantsOnly(t *testing.T) {
	c := New(0)
	var holdings, orders int32
	c.Register(KeyHoldings, countingFetcher(&holdings, "h"))
	c.Register(KeyOrders, countingFetcher(&orders, "o"))
	ctx := context.Background()

	for _, k := range []string{"holdings", "holdings/42", "orders"} {
		_, err := c.Fetch(ctx, k)
		require.NoError(t, err)
	}

	c.Invalidate(KeyHoldings)

	_, fresh, _ := c.Peek("holdings/42")
	assert.False(t, fresh)
	_, fresh, _ = c.Peek(KeyOrders)
	assert.True(t, fresh)
}

func TestLongestPrefixFetcherWins(t *testing.T) {
	c := New(0)
	c.Register("orders", func(ctx context.Context, key string) (any, error) { return "all", nil })
	c.Register("orders/closed", func(ctx context.Context, key string) (any, error) { return "closed", nil })

	v, err := c.Fetch(context.Background(), "orders/closed")
	require.NoError(t, err)
	assert.Equal(t, "closed", v)

	v, err = c.Fetch(context.Background(), "orders/7")
	require.NoError(t, err)
	assert.Equal(t, "all", v)
}

func TestStaleTimeExpiresValues(t *testing.T) {
	c := New(30 * time.Second)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	var calls int32
	c.Register(KeyAccount, countingFetcher(&calls, "acct"))
	ctx := context.Background()

	_, _ = c.Fetch(ctx, KeyAccount)
	now = now.Add(10 * time.Second)
	_, _ = c.Fetch(ctx, KeyAccount)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	now = now.Add(31 * time.Second)
	_, _ = c.Fetch(ctx, KeyAccount)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestInvalidationDuringFetchLeavesResultStale(t *testing.T) {
	c := New(0)
	started := make(chan struct{})
	release := make(chan struct{})
	c.Register(KeyOrders, func(ctx context.Context, key string) (any, error) {
		close(started)
		<-release
		return "old", nil
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Fetch(context.Background(), KeyOrders)
	}()

	<-started
	c.Invalidate(KeyOrders)
	close(release)
	<-done

	v, fresh, ok := c.Peek(KeyOrders)
	require.True(t, ok)
	assert.Equal(t, "old", v)
	assert.False(t, fresh)
}

func TestConcurrentFetchesShareOneRequest(t *testing.T) {
	c := New(0)
	var calls int32
	gate := make(chan struct{})
	c.Register(KeyHoldings, func(ctx context.Context, key string) (any, error) {
		atomic.AddInt32(&calls, 1)
		<-gate
		return "h", nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Fetch(context.Background(), KeyHoldings)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchUnknownKey(t *testing.T) {
	_, err := New(0).Fetch(context.Background(), "quotes")
	assert.Error(t, err)
}

func TestGetTypeMismatch(t *testing.T) {
	c := New(0)
	c.Register(KeyAccount, func(ctx context.Context, key string) (any, error) { return 42, nil })

	_, err := Get[string](context.Background(), c, KeyAccount)
	assert.Error(t, err)

	n, err := Get[int](context.Background(), c, KeyAccount)
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}
