package trading

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/swipetrade/perps-service/internal/chain"
	"github.com/swipetrade/perps-service/internal/txcodec"
	"github.com/swipetrade/perps-service/pkg/types"
	"go.uber.org/zap"
)

// Build derives the protocol-level trade parameters for an intent and
// assembles the canonical unsigned transaction for external signing.
//
// Pair index, reference price and existing positions are three independent
// reads; they are issued concurrently and joined before anything downstream
// runs, which bounds build latency to the slowest of the three.
func (t *Trader) Build(ctx context.Context, intent types.TradeIntent) (*types.BuildResult, error) {
	start := time.Now()
	defer func() {
		BuildDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	leverage := intent.Leverage
	if leverage == 0 {
		leverage = t.defaults.Leverage
	}

	tpPercent := intent.TakeProfitPercent
	if tpPercent == 0 {
		tpPercent = t.defaults.TakeProfitPercent
	}

	var (
		wg sync.WaitGroup

		pairIndex int
		pairErr   error

		price    float64
		priceErr error

		rawTrades []types.RawTrade
		tradesErr error
	)

	wg.Add(3)

	go func() {
		defer wg.Done()
		pairIndex, pairErr = t.resolver.PairIndex(ctx, intent.MarketPair)
	}()

	go func() {
		defer wg.Done()
		price, priceErr = t.resolver.LatestPrice(ctx, intent.MarketPair)
	}()

	go func() {
		defer wg.Done()
		rawTrades, _, tradesErr = t.chain.ListTrades(ctx, t.wallet)
	}()

	wg.Wait()

	if pairErr != nil {
		return nil, failBuild(pairErr)
	}

	if priceErr != nil {
		return nil, failBuild(priceErr)
	}

	if tradesErr != nil {
		return nil, failBuild(&types.BuildError{Pair: intent.MarketPair, Err: fmt.Errorf("list positions: %w", tradesErr)})
	}

	takeProfit := price * (1 + tpPercent/100)
	if intent.Direction == types.Short {
		takeProfit = price * (1 - tpPercent/100)
	}

	// A short with take_profit_percent >= 100 would target a non-positive
	// price; the contract reverts on it, so reject with a usable message.
	if takeProfit <= 0 {
		return nil, failBuild(&types.BuildError{
			Pair: intent.MarketPair,
			Err: fmt.Errorf("take-profit price %.4f is not positive (take_profit_percent %.1f on a %s)",
				takeProfit, tpPercent, intent.Direction),
		})
	}

	tradeIndex := NextSlot(ExtractPositionRefs(rawTrades), pairIndex)

	raw, err := t.chain.BuildOpenTx(ctx, chain.OpenParams{
		Trader:          t.wallet,
		PairIndex:       pairIndex,
		TradeIndex:      tradeIndex,
		Collateral:      intent.Collateral,
		Leverage:        leverage,
		IsLong:          intent.Direction.IsLong(),
		TakeProfit:      takeProfit,
		StopLoss:        0, // no stop loss on open
		SlippagePercent: t.defaults.SlippagePercent,
	})
	if err != nil {
		return nil, failBuild(&types.BuildError{Pair: intent.MarketPair, Err: err})
	}

	tx, err := txcodec.Normalize(raw, t.chainID)
	if err != nil {
		return nil, failBuild(&types.BuildError{Pair: intent.MarketPair, Err: err})
	}

	BuildsTotal.WithLabelValues("success").Inc()
	t.logger.Info("unsigned-transaction-built",
		zap.String("pair", intent.MarketPair),
		zap.Int("pair-index", pairIndex),
		zap.Int("trade-index", tradeIndex),
		zap.Float64("entry-price", price),
		zap.Float64("take-profit", takeProfit),
		zap.Int("leverage", leverage))

	return &types.BuildResult{
		Transaction: tx,
		Params: types.ResolvedTradeParams{
			PairIndex:       pairIndex,
			TradeIndex:      tradeIndex,
			EntryPrice:      price,
			TakeProfitPrice: takeProfit,
		},
	}, nil
}

func failBuild(err error) error {
	BuildsTotal.WithLabelValues("error").Inc()
	return err
}
