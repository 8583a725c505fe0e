package trading

import (
	"strings"

	"github.com/swipetrade/perps-service/pkg/cache"
	"go.uber.org/zap"
)

// Key identifies a trader context: one user identity on one wallet.
type Key struct {
	UserID string
	Wallet string
}

func (k Key) String() string {
	return k.UserID + ":" + strings.ToLower(k.Wallet)
}

// Registry is the process-wide keyed store of trader contexts. Entries live
// for the process lifetime and are evicted only when an execution fails, so
// the next request rebuilds instead of reusing possibly-poisoned state.
//
// There is no lock around get-then-create: two concurrent first requests for
// the same key may each build a trader and the last write wins. Both values
// are equivalent, so the duplicate construction is harmless.
type Registry struct {
	cache  cache.Cache
	logger *zap.Logger
}

// NewRegistry creates a trader registry over the given cache.
func NewRegistry(c cache.Cache, logger *zap.Logger) *Registry {
	return &Registry{
		cache:  c,
		logger: logger,
	}
}

// GetOrCreate returns the cached trader for a key, building and storing one
// via factory on a miss.
func (r *Registry) GetOrCreate(key Key, factory func() (*Trader, error)) (*Trader, error) {
	if cached, ok := r.cache.Get(key.String()); ok {
		if trader, isTrader := cached.(*Trader); isTrader {
			RegistryHitsTotal.Inc()
			return trader, nil
		}
	}

	RegistryMissesTotal.Inc()

	trader, err := factory()
	if err != nil {
		return nil, err
	}

	// TTL zero: entries persist until error-based eviction.
	r.cache.Set(key.String(), trader, 0)
	r.logger.Debug("trader-context-created", zap.String("key", key.String()))

	return trader, nil
}

// Invalidate drops a trader context so the next request rebuilds it.
func (r *Registry) Invalidate(key Key) {
	r.cache.Delete(key.String())
	RegistryEvictionsTotal.Inc()
	r.logger.Info("trader-context-evicted", zap.String("key", key.String()))
}
