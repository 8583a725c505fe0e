package markets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swipetrade/perps-service/internal/testutil"
	"go.uber.org/zap"
)

func defaultMockPairs() map[string]testutil.MockPair {
	return map[string]testutil.MockPair{
		"0": {From: "BTC", To: "USD"},
		"1": {From: "ETH", To: "USD"},
		"2": {From: "EUR", To: "USD", IsOpen: testutil.BoolPtr(false)},
	}
}

func newCacheWithMock(t *testing.T, ttl time.Duration) (*PairsCache, *testutil.MockMarketDataAPI) {
	t.Helper()

	mock := testutil.NewMockMarketDataAPI(defaultMockPairs(), nil)
	t.Cleanup(mock.Close)

	client := NewClient(mock.URL, mock.URL, 5*time.Second, zap.NewNop())
	return NewPairsCache(client, ttl, zap.NewNop()), mock
}

func TestPairsCache_Populates(t *testing.T) {
	cache, _ := newCacheWithMock(t, 5*time.Minute)

	pairs := cache.Snapshot(context.Background())
	require.Len(t, pairs, 3)
	assert.Equal(t, "ETH/USD", pairs[1].Symbol())
}

func TestPairsCache_ServedWithinTTL(t *testing.T) {
	cache, mock := newCacheWithMock(t, 5*time.Minute)

	cache.Snapshot(context.Background())
	cache.Snapshot(context.Background())
	cache.Snapshot(context.Background())

	assert.Equal(t, 1, mock.Requests, "fresh snapshot must not refetch")
}

func TestPairsCache_RefreshesWhenStale(t *testing.T) {
	cache, mock := newCacheWithMock(t, 10*time.Millisecond)

	cache.Snapshot(context.Background())

	mock.SetPairs(map[string]testutil.MockPair{
		"0": {From: "BTC", To: "USD"},
		"5": {From: "SOL", To: "USD"},
	})
	time.Sleep(20 * time.Millisecond)

	pairs := cache.Snapshot(context.Background())
	require.Len(t, pairs, 2)
	assert.Equal(t, "SOL/USD", pairs[5].Symbol())
}

func TestPairsCache_ServesStaleOnRefreshFailure(t *testing.T) {
	cache, mock := newCacheWithMock(t, 10*time.Millisecond)

	fresh := cache.Snapshot(context.Background())
	require.Len(t, fresh, 3)

	mock.FailNext(true)
	time.Sleep(20 * time.Millisecond)

	stale := cache.Snapshot(context.Background())
	require.Len(t, stale, 3, "stale snapshot must be served when refresh fails")
	assert.Equal(t, "ETH/USD", stale[1].Symbol())
}

func TestPairsCache_NeverPopulatedFailure(t *testing.T) {
	cache, mock := newCacheWithMock(t, 5*time.Minute)
	mock.FailNext(true)

	pairs := cache.Snapshot(context.Background())
	assert.Nil(t, pairs)

	// Unknown names degrade gracefully, and pairs default to open.
	_, ok := cache.Name(context.Background(), 1)
	assert.False(t, ok)
	assert.True(t, cache.IsOpen(context.Background(), 1))
}

func TestPairsCache_IsOpen(t *testing.T) {
	cache, _ := newCacheWithMock(t, 5*time.Minute)
	ctx := context.Background()

	assert.True(t, cache.IsOpen(ctx, 0), "absent is_open attribute defaults to open")
	assert.False(t, cache.IsOpen(ctx, 2), "explicit is_open=false is honored")
	assert.True(t, cache.IsOpen(ctx, 99), "unknown pair defaults to open")
}

func TestPairsCache_IndexOf(t *testing.T) {
	cache, _ := newCacheWithMock(t, 5*time.Minute)

	index, ok := cache.IndexOf(context.Background(), "ETH/USD")
	require.True(t, ok)
	assert.Equal(t, 1, index)

	_, ok = cache.IndexOf(context.Background(), "DOGE/USD")
	assert.False(t, ok)
}
