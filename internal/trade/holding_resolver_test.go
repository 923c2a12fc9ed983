package trade

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHoldingResolver(t *testing.T) (*HoldingResolver, *fakeAPI) {
	t.Helper()
	api := newFakeAPI(nil)
	api.addHolding(1, "AAPL", "100", "150.25")
	r := NewHoldingResolver(api)
	t.Cleanup(r.Close)
	return r, api
}

func TestZeroHoldingIDIsDisabled(t *testing.T) {
	r, api := newTestHoldingResolver(t)

	r.Resolve(0)
	st, err := r.Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, LookupIdle, st.Status)
	assert.Nil(t, st.Err)
	_, holdings, _, _ := api.counts()
	assert.Zero(t, holdings)
}

func TestResolveHolding(t *testing.T) {
	r, api := newTestHoldingResolver(t)

	r.Resolve(1)
	st, err := r.Wait(context.Background())
	require.NoError(t, err)
	require.Equal(t, LookupResolved, st.Status)
	assert.Equal(t, "AAPL", st.Value.Symbol)

	r.Resolve(1)
	_, err = r.Wait(context.Background())
	require.NoError(t, err)
	_, holdings, _, _ := api.counts()
	assert.Equal(t, 1, holdings)
}

func TestMissingHoldingIsNotFound(t *testing.T) {
	r, _ := newTestHoldingResolver(t)

	r.Resolve(99)
	st, err := r.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, LookupNotFound, st.Status)
	assert.False(t, st.Retryable())
}

func TestAbandonedHoldingIsNeverLookedUpAgain(t *testing.T) {
	r, api := newTestHoldingResolver(t)

	r.Resolve(1)
	_, err := r.Wait(context.Background())
	require.NoError(t, err)

	r.Abandon()
	r.Refresh()
	r.Resolve(1)
	st, err := r.Wait(context.Background())
	require.NoError(t, err)

	_, holdings, _, _ := api.counts()
	assert.Equal(t, 1, holdings)
	assert.NotEqual(t, LookupNotFound, st.Status)
	assert.Nil(t, st.Err)
}

func TestRefreshRefetches(t *testing.T) {
	r, api := newTestHoldingResolver(t)

	r.Resolve(1)
	_, err := r.Wait(context.Background())
	require.NoError(t, err)

	r.Refresh()
	_, err = r.Wait(context.Background())
	require.NoError(t, err)

	_, holdings, _, _ := api.counts()
	assert.Equal(t, 2, holdings)
}
