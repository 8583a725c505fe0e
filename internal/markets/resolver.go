package markets

import (
	"context"
	"time"

	"github.com/swipetrade/perps-service/pkg/types"
	"go.uber.org/zap"
)

// Resolver resolves pair symbols to protocol indices and serves reference
// prices. It is the single component that talks to the market-data endpoints.
type Resolver struct {
	client *Client
	cache  *PairsCache
	logger *zap.Logger
}

// NewResolver creates a resolver with a lazily-populated pairs cache.
func NewResolver(client *Client, cacheTTL time.Duration, logger *zap.Logger) *Resolver {
	return &Resolver{
		client: client,
		cache:  NewPairsCache(client, cacheTTL, logger),
		logger: logger,
	}
}

// PairIndex resolves a symbol to its protocol pair index.
func (r *Resolver) PairIndex(ctx context.Context, symbol string) (int, error) {
	index, ok := r.cache.IndexOf(ctx, symbol)
	if !ok {
		return 0, &types.ResolutionError{Symbol: symbol, Err: types.ErrPairNotFound}
	}

	return index, nil
}

// LatestPrice fetches the current reference price for a symbol.
func (r *Resolver) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	start := time.Now()
	prices, err := r.client.FetchPrices(ctx, []string{symbol})
	PriceFetchDurationSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		PriceFetchesTotal.WithLabelValues("error").Inc()
		return 0, &types.ResolutionError{Symbol: symbol, Err: err}
	}

	price, ok := prices[symbol]
	if !ok {
		PriceFetchesTotal.WithLabelValues("empty").Inc()
		return 0, &types.ResolutionError{Symbol: symbol, Err: types.ErrPriceUnavailable}
	}

	PriceFetchesTotal.WithLabelValues("success").Inc()

	return price, nil
}

// PairName is the reverse index -> symbol lookup, served from the pairs
// cache. A false result means "name unknown", never an error.
func (r *Resolver) PairName(ctx context.Context, pairIndex int) (string, bool) {
	return r.cache.Name(ctx, pairIndex)
}

// MarketOpen reports whether the market for a pair index is currently open.
func (r *Resolver) MarketOpen(ctx context.Context, pairIndex int) bool {
	return r.cache.IsOpen(ctx, pairIndex)
}

// Prices fetches reference prices for a batch of symbols, best-effort.
// Symbols the feed cannot resolve are omitted; one symbol's failure never
// fails the batch.
func (r *Resolver) Prices(ctx context.Context, symbols []string) map[string]float64 {
	prices, err := r.client.FetchPrices(ctx, symbols)
	if err != nil {
		PriceFetchesTotal.WithLabelValues("error").Inc()
		r.logger.Warn("batch-price-fetch-failed",
			zap.Strings("symbols", symbols),
			zap.Error(err))
		return map[string]float64{}
	}

	return prices
}
