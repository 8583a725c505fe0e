// Package trading contains the trade-construction and position-reconciliation
// core: slot allocation, unsigned transaction building, the execution
// pipeline, and normalization of the protocol's heterogeneous trade records.
package trading

import (
	"context"

	"github.com/swipetrade/perps-service/internal/chain"
	"github.com/swipetrade/perps-service/pkg/signer"
	"github.com/swipetrade/perps-service/pkg/types"
	"go.uber.org/zap"
)

// ChainClient is the protocol SDK boundary the trader depends on.
type ChainClient interface {
	ListTrades(ctx context.Context, wallet string) ([]types.RawTrade, int, error)
	BuildOpenTx(ctx context.Context, p chain.OpenParams) (types.RawTransaction, error)
	BuildCloseTx(ctx context.Context, pairIndex, tradeIndex int, trader string) (types.RawTransaction, error)
	Submit(ctx context.Context, signedTx string) (string, error)
}

// PairResolver resolves symbols, indices and prices from market data.
type PairResolver interface {
	PairIndex(ctx context.Context, symbol string) (int, error)
	LatestPrice(ctx context.Context, symbol string) (float64, error)
	PairName(ctx context.Context, pairIndex int) (string, bool)
	MarketOpen(ctx context.Context, pairIndex int) bool
}

// TxSigner signs transactions through the remote wallet provider.
type TxSigner interface {
	SignTransaction(ctx context.Context, walletID string, tx types.UnsignedTransaction) (*signer.Result, error)
}

// Defaults are applied when the intent leaves a field unset.
type Defaults struct {
	Leverage          int
	SlippagePercent   float64
	TakeProfitPercent float64
}

// Trader brokers trades for one (user, wallet) pair. It holds no position
// state of its own; everything is derived on demand from the chain and the
// market-data API.
type Trader struct {
	userID   string
	wallet   string
	chainID  int64
	chain    ChainClient
	resolver PairResolver
	signer   TxSigner
	defaults Defaults
	logger   *zap.Logger
}

// Config holds trader construction parameters.
type Config struct {
	UserID   string
	Wallet   string
	ChainID  int64
	Chain    ChainClient
	Resolver PairResolver
	Signer   TxSigner
	Defaults Defaults
	Logger   *zap.Logger
}

// NewTrader creates a trader bound to one wallet.
func NewTrader(cfg *Config) *Trader {
	return &Trader{
		userID:   cfg.UserID,
		wallet:   cfg.Wallet,
		chainID:  cfg.ChainID,
		chain:    cfg.Chain,
		resolver: cfg.Resolver,
		signer:   cfg.Signer,
		defaults: cfg.Defaults,
		logger: cfg.Logger.With(
			zap.String("user-id", cfg.UserID),
			zap.String("wallet", cfg.Wallet)),
	}
}

// Wallet returns the wallet address this trader signs for.
func (t *Trader) Wallet() string {
	return t.wallet
}
