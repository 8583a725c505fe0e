package markets

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PairsCache is a process-wide snapshot of the pair_index -> metadata
// mapping, refreshed lazily when older than the TTL. Availability wins over
// freshness: a failed refresh serves the previous snapshot rather than
// failing the caller.
type PairsCache struct {
	client *Client
	ttl    time.Duration
	logger *zap.Logger

	mu        sync.RWMutex
	pairs     map[int]PairInfo
	fetchedAt time.Time
}

// NewPairsCache creates a pairs cache. The snapshot is populated on first use.
func NewPairsCache(client *Client, ttl time.Duration, logger *zap.Logger) *PairsCache {
	return &PairsCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Snapshot returns the current pair mapping, refreshing it when stale.
// Returns nil only when the cache was never populated and the refresh failed;
// callers treat that as "names unknown", not an error.
func (c *PairsCache) Snapshot(ctx context.Context) map[int]PairInfo {
	c.mu.RLock()
	pairs := c.pairs
	age := time.Since(c.fetchedAt)
	c.mu.RUnlock()

	if pairs != nil && age < c.ttl {
		return pairs
	}

	fresh, err := c.client.FetchPairs(ctx)
	if err != nil {
		PairsRefreshTotal.WithLabelValues("error").Inc()
		if pairs != nil {
			PairsStaleServedTotal.Inc()
			c.logger.Warn("pairs-refresh-failed-serving-stale",
				zap.Duration("age", age),
				zap.Error(err))
			return pairs
		}

		c.logger.Warn("pairs-refresh-failed-cache-empty", zap.Error(err))
		return nil
	}

	PairsRefreshTotal.WithLabelValues("success").Inc()

	c.mu.Lock()
	c.pairs = fresh
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	c.logger.Debug("pairs-cache-refreshed", zap.Int("pair-count", len(fresh)))

	return fresh
}

// Name returns the symbol for a pair index, if known.
func (c *PairsCache) Name(ctx context.Context, pairIndex int) (string, bool) {
	pairs := c.Snapshot(ctx)
	info, ok := pairs[pairIndex]
	if !ok {
		return "", false
	}

	return info.Symbol(), true
}

// IsOpen reports the per-pair market-open attribute. Defaults to open when
// the pair is unknown or the attribute is absent; the default cannot block
// display but may be wrong for exotic pairs outside trading hours.
func (c *PairsCache) IsOpen(ctx context.Context, pairIndex int) bool {
	pairs := c.Snapshot(ctx)
	info, ok := pairs[pairIndex]
	if !ok || info.IsOpen == nil {
		return true
	}

	return *info.IsOpen
}

// IndexOf finds the pair index for a symbol, if the registry knows it.
func (c *PairsCache) IndexOf(ctx context.Context, symbol string) (int, bool) {
	pairs := c.Snapshot(ctx)
	for index, info := range pairs {
		if info.Symbol() == symbol {
			return index, true
		}
	}

	return 0, false
}
