package trading

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swipetrade/perps-service/pkg/cache"
	"go.uber.org/zap"
)

func newTestRegistry(t *testing.T) (*Registry, *cache.RistrettoCache) {
	t.Helper()

	c, err := cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
		Logger:      zap.NewNop(),
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	rc := c.(*cache.RistrettoCache)
	return NewRegistry(rc, zap.NewNop()), rc
}

func TestRegistry_GetOrCreate(t *testing.T) {
	registry, rc := newTestRegistry(t)
	key := Key{UserID: "user-1", Wallet: testWallet}

	built := 0
	factory := func() (*Trader, error) {
		built++
		return newTestTrader(&fakeChain{}, newTestResolver(), &fakeSigner{}), nil
	}

	first, err := registry.GetOrCreate(key, factory)
	require.NoError(t, err)
	require.NotNil(t, first)
	rc.Wait()

	second, err := registry.GetOrCreate(key, factory)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, built)
}

func TestRegistry_KeyIsolation(t *testing.T) {
	registry, rc := newTestRegistry(t)

	factory := func() (*Trader, error) {
		return newTestTrader(&fakeChain{}, newTestResolver(), &fakeSigner{}), nil
	}

	a, err := registry.GetOrCreate(Key{UserID: "user-1", Wallet: testWallet}, factory)
	require.NoError(t, err)
	rc.Wait()

	b, err := registry.GetOrCreate(Key{UserID: "user-2", Wallet: testWallet}, factory)
	require.NoError(t, err)

	assert.NotSame(t, a, b)
}

func TestRegistry_WalletCaseInsensitive(t *testing.T) {
	registry, rc := newTestRegistry(t)

	factory := func() (*Trader, error) {
		return newTestTrader(&fakeChain{}, newTestResolver(), &fakeSigner{}), nil
	}

	lower, err := registry.GetOrCreate(Key{UserID: "user-1", Wallet: "0xabcdef"}, factory)
	require.NoError(t, err)
	rc.Wait()

	upper, err := registry.GetOrCreate(Key{UserID: "user-1", Wallet: "0xABCDEF"}, factory)
	require.NoError(t, err)

	assert.Same(t, lower, upper)
}

func TestRegistry_Invalidate(t *testing.T) {
	registry, rc := newTestRegistry(t)
	key := Key{UserID: "user-1", Wallet: testWallet}

	built := 0
	factory := func() (*Trader, error) {
		built++
		return newTestTrader(&fakeChain{}, newTestResolver(), &fakeSigner{}), nil
	}

	_, err := registry.GetOrCreate(key, factory)
	require.NoError(t, err)
	rc.Wait()

	registry.Invalidate(key)
	rc.Wait()

	_, err = registry.GetOrCreate(key, factory)
	require.NoError(t, err)

	assert.Equal(t, 2, built)
}

func TestRegistry_FactoryError(t *testing.T) {
	registry, rc := newTestRegistry(t)
	key := Key{UserID: "user-1", Wallet: testWallet}

	_, err := registry.GetOrCreate(key, func() (*Trader, error) {
		return nil, errors.New("bad wallet")
	})
	require.Error(t, err)
	rc.Wait()

	// A failed build must not be cached.
	built := 0
	_, err = registry.GetOrCreate(key, func() (*Trader, error) {
		built++
		return newTestTrader(&fakeChain{}, newTestResolver(), &fakeSigner{}), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, built)
}
