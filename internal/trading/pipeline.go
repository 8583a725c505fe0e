package trading

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/swipetrade/perps-service/internal/txcodec"
	"github.com/swipetrade/perps-service/pkg/types"
	"go.uber.org/zap"
)

// The pipeline is the error boundary: nothing below it escapes as a raised
// error. Every failure becomes TradeResult{Success:false} so the transport
// layer always has a structured result to relay.

// ExecutePresigned submits a transaction that was already signed client-side.
// When the caller did not echo back the build metadata, pair index, slot and
// entry price are recomputed from current chain/market state; the recomputed
// values can diverge from what the user saw and signed, which is the accepted
// cost of the fallback.
func (t *Trader) ExecutePresigned(ctx context.Context, signedTx string, intent types.TradeIntent, meta *types.TradeMeta) types.TradeResult {
	opID := uuid.New().String()
	start := time.Now()
	defer func() {
		ExecuteDurationSeconds.WithLabelValues("presigned").Observe(time.Since(start).Seconds())
	}()

	var (
		pairIndex  int
		tradeIndex int
		entryPrice float64
	)

	if meta.Complete() {
		pairIndex = *meta.PairIndex
		tradeIndex = *meta.TradeIndex
		entryPrice = *meta.EntryPrice
	} else {
		t.logger.Info("execute-metadata-missing-recomputing", zap.String("op-id", opID))

		var err error
		pairIndex, err = t.resolver.PairIndex(ctx, intent.MarketPair)
		if err != nil {
			return t.failResult("presigned", opID, err)
		}

		rawTrades, _, err := t.chain.ListTrades(ctx, t.wallet)
		if err != nil {
			return t.failResult("presigned", opID, fmt.Errorf("list positions: %w", err))
		}
		tradeIndex = NextSlot(ExtractPositionRefs(rawTrades), pairIndex)

		entryPrice, err = t.resolver.LatestPrice(ctx, intent.MarketPair)
		if err != nil {
			return t.failResult("presigned", opID, err)
		}
	}

	txHash, err := t.submitSigned(ctx, signedTx)
	if err != nil {
		return t.failResult("presigned", opID, err)
	}

	ExecutionsTotal.WithLabelValues("presigned", "success").Inc()
	t.logger.Info("presigned-trade-executed",
		zap.String("op-id", opID),
		zap.String("tx-hash", txHash),
		zap.Int("pair-index", pairIndex),
		zap.Int("trade-index", tradeIndex))

	return types.TradeResult{
		Success:    true,
		TxHash:     txHash,
		EntryPrice: entryPrice,
		PairIndex:  pairIndex,
		TradeIndex: tradeIndex,
		Message:    "Position opened successfully",
	}
}

// ExecuteServerSigned is the legacy path: build, sign through the remote
// wallet provider, submit.
func (t *Trader) ExecuteServerSigned(ctx context.Context, intent types.TradeIntent) types.TradeResult {
	opID := uuid.New().String()
	start := time.Now()
	defer func() {
		ExecuteDurationSeconds.WithLabelValues("server-signed").Observe(time.Since(start).Seconds())
	}()

	build, err := t.Build(ctx, intent)
	if err != nil {
		return t.failResult("server-signed", opID, err)
	}

	signed, err := t.signer.SignTransaction(ctx, t.wallet, build.Transaction)
	if err != nil {
		return t.failResult("server-signed", opID, &types.SigningError{Wallet: t.wallet, Err: err})
	}

	txHash := signed.TxHash
	if txHash == "" {
		txHash, err = t.chain.Submit(ctx, signed.RawTransaction)
		if err != nil {
			return t.failResult("server-signed", opID, &types.SubmissionError{Err: err})
		}
	}

	leverage := intent.Leverage
	if leverage == 0 {
		leverage = t.defaults.Leverage
	}

	ExecutionsTotal.WithLabelValues("server-signed", "success").Inc()
	t.logger.Info("server-signed-trade-executed",
		zap.String("op-id", opID),
		zap.String("tx-hash", txHash),
		zap.Int("pair-index", build.Params.PairIndex),
		zap.Int("trade-index", build.Params.TradeIndex))

	return types.TradeResult{
		Success:    true,
		TxHash:     txHash,
		EntryPrice: build.Params.EntryPrice,
		PairIndex:  build.Params.PairIndex,
		TradeIndex: build.Params.TradeIndex,
		Message: fmt.Sprintf("Opened %s position: %s | Collateral: $%.2f | Leverage: %dx",
			strings.ToUpper(string(intent.Direction)), intent.MarketPair, intent.Collateral, leverage),
	}
}

// ClosePosition closes the full position in the given slot. Partial closes
// are not supported.
func (t *Trader) ClosePosition(ctx context.Context, pairIndex, tradeIndex int) types.TradeResult {
	opID := uuid.New().String()
	start := time.Now()
	defer func() {
		ExecuteDurationSeconds.WithLabelValues("close").Observe(time.Since(start).Seconds())
	}()

	raw, err := t.chain.BuildCloseTx(ctx, pairIndex, tradeIndex, t.wallet)
	if err != nil {
		return t.failResult("close", opID, &types.BuildError{Err: err})
	}

	tx, err := txcodec.Normalize(raw, t.chainID)
	if err != nil {
		return t.failResult("close", opID, &types.BuildError{Err: err})
	}

	signed, err := t.signer.SignTransaction(ctx, t.wallet, tx)
	if err != nil {
		return t.failResult("close", opID, &types.SigningError{Wallet: t.wallet, Err: err})
	}

	txHash := signed.TxHash
	if txHash == "" {
		txHash, err = t.chain.Submit(ctx, signed.RawTransaction)
		if err != nil {
			return t.failResult("close", opID, &types.SubmissionError{Err: err})
		}
	}

	ExecutionsTotal.WithLabelValues("close", "success").Inc()
	t.logger.Info("position-closed",
		zap.String("op-id", opID),
		zap.String("tx-hash", txHash),
		zap.Int("pair-index", pairIndex),
		zap.Int("trade-index", tradeIndex))

	return types.TradeResult{
		Success:    true,
		TxHash:     txHash,
		PairIndex:  pairIndex,
		TradeIndex: tradeIndex,
		Message:    "Position closed successfully",
	}
}

// PositionList is the reconciled view of a wallet's trades.
type PositionList struct {
	Trades            []types.NormalizedTradeRecord `json:"trades"`
	Active            int                           `json:"total_active"`
	Closed            int                           `json:"total_closed"`
	PendingOrderCount int                           `json:"pending_order_count"`
}

// ListPositions queries the wallet's trades and normalizes them into the
// canonical record shape. Records the normalizer drops shorten the list
// silently; the caller only ever sees well-identified positions.
func (t *Trader) ListPositions(ctx context.Context) (*PositionList, error) {
	rawTrades, pendingOrders, err := t.chain.ListTrades(ctx, t.wallet)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}

	records := NormalizeAll(ctx, rawTrades, t.resolver)

	list := &PositionList{
		Trades:            records,
		PendingOrderCount: pendingOrders,
	}

	for _, record := range records {
		if record.Status == types.StatusClosed {
			list.Closed++
		} else {
			list.Active++
		}
	}

	return list, nil
}

// submitSigned broadcasts a signed transaction, or accepts an
// already-broadcast transaction hash as-is (the wallet provider's
// send-and-sign flow returns only the hash).
func (t *Trader) submitSigned(ctx context.Context, signedTx string) (string, error) {
	trimmed := strings.TrimSpace(signedTx)

	// A bare 32-byte hash means the transaction is already on its way.
	if len(trimmed) == 66 && strings.HasPrefix(trimmed, "0x") {
		return trimmed, nil
	}

	txHash, err := t.chain.Submit(ctx, trimmed)
	if err != nil {
		return "", &types.SubmissionError{Err: err}
	}

	return txHash, nil
}

func (t *Trader) failResult(path, opID string, err error) types.TradeResult {
	ExecutionsTotal.WithLabelValues(path, "error").Inc()
	t.logger.Error("trade-operation-failed",
		zap.String("path", path),
		zap.String("op-id", opID),
		zap.Error(err))

	return types.TradeResult{Success: false, Error: err.Error()}
}
