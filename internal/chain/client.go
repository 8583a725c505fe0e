// Package chain is the boundary to the blockchain RPC endpoint and the
// perpetuals protocol: it builds unsigned open/close transactions, submits
// signed ones, and queries the protocol's trade API for a wallet's positions.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	json "github.com/goccy/go-json"
	"github.com/swipetrade/perps-service/pkg/types"
	"go.uber.org/zap"
)

// OpenParams holds the protocol-level parameters of an open-trade call.
type OpenParams struct {
	Trader          string
	PairIndex       int
	TradeIndex      int
	Collateral      float64 // USDC
	Leverage        int
	IsLong          bool
	TakeProfit      float64
	StopLoss        float64
	SlippagePercent float64
}

// Client talks to the chain RPC and the protocol trade API.
type Client struct {
	rpcURL           string
	chainID          int64
	contract         common.Address
	tradeAPIURL      string
	gasLimitFallback uint64
	httpClient       *http.Client
	logger           *zap.Logger
}

// Config holds chain client configuration.
type Config struct {
	RPCURL           string
	ChainID          int64
	TradingContract  string
	TradeAPIURL      string
	GasLimitFallback uint64
	HTTPTimeout      time.Duration
	Logger           *zap.Logger
}

// NewClient creates a new chain client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.RPCURL == "" {
		return nil, errors.New("rpcURL cannot be empty")
	}

	if !common.IsHexAddress(cfg.TradingContract) {
		return nil, fmt.Errorf("invalid trading contract address %q", cfg.TradingContract)
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Client{
		rpcURL:           cfg.RPCURL,
		chainID:          cfg.ChainID,
		contract:         common.HexToAddress(cfg.TradingContract),
		tradeAPIURL:      strings.TrimSuffix(cfg.TradeAPIURL, "/"),
		gasLimitFallback: cfg.GasLimitFallback,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		logger: cfg.Logger,
	}, nil
}

// BuildOpenTx assembles the raw unsigned open-trade transaction.
func (c *Client) BuildOpenTx(ctx context.Context, p OpenParams) (types.RawTransaction, error) {
	parsedABI, err := abi.JSON(strings.NewReader(openTradeABI))
	if err != nil {
		return nil, fmt.Errorf("parse ABI: %w", err)
	}

	trade := tradeTuple{
		Trader:           common.HexToAddress(p.Trader),
		PairIndex:        big.NewInt(int64(p.PairIndex)),
		Index:            big.NewInt(int64(p.TradeIndex)),
		PositionSizeUSDC: scaled(p.Collateral, collateralScale),
		OpenPrice:        big.NewInt(0), // market fill
		Buy:              p.IsLong,
		Leverage:         big.NewInt(int64(p.Leverage)),
		Tp:               scaled(p.TakeProfit, priceScale),
		Sl:               scaled(p.StopLoss, priceScale),
		Timestamp:        big.NewInt(0),
	}

	data, err := parsedABI.Pack("openTrade", trade, uint8(marketOrderType), scaled(p.SlippagePercent, priceScale))
	if err != nil {
		return nil, fmt.Errorf("pack openTrade: %w", err)
	}

	raw, err := c.assembleTx(ctx, common.HexToAddress(p.Trader), data)
	if err != nil {
		return nil, err
	}

	BuildsTotal.WithLabelValues("open").Inc()

	return raw, nil
}

// BuildCloseTx assembles the raw unsigned close transaction for a position.
// Always closes the full position.
func (c *Client) BuildCloseTx(ctx context.Context, pairIndex, tradeIndex int, trader string) (types.RawTransaction, error) {
	parsedABI, err := abi.JSON(strings.NewReader(closeTradeABI))
	if err != nil {
		return nil, fmt.Errorf("parse ABI: %w", err)
	}

	data, err := parsedABI.Pack("closeTradeMarket", big.NewInt(int64(pairIndex)), big.NewInt(int64(tradeIndex)))
	if err != nil {
		return nil, fmt.Errorf("pack closeTradeMarket: %w", err)
	}

	raw, err := c.assembleTx(ctx, common.HexToAddress(trader), data)
	if err != nil {
		return nil, err
	}

	BuildsTotal.WithLabelValues("close").Inc()

	return raw, nil
}

// assembleTx fills in nonce, gas and fee fields for a call against the
// trading contract. EIP-1559 fields are used whenever the chain head carries
// a base fee; legacy gas price only as fallback for pre-1559 RPCs.
func (c *Client) assembleTx(ctx context.Context, from common.Address, data []byte) (types.RawTransaction, error) {
	client, err := ethclient.DialContext(ctx, c.rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial RPC: %w", err)
	}
	defer client.Close()

	nonce, err := client.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("pending nonce: %w", err)
	}

	raw := types.RawTransaction{
		"to":      c.contract.Hex(),
		"value":   big.NewInt(0),
		"data":    hexutil.Encode(data),
		"nonce":   nonce,
		"chainId": c.chainID,
	}

	gas, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From: from,
		To:   &c.contract,
		Data: data,
	})
	if err != nil {
		c.logger.Warn("gas-estimate-failed-using-fallback",
			zap.Uint64("fallback", c.gasLimitFallback),
			zap.Error(err))
		gas = c.gasLimitFallback
	}
	raw["gas"] = gas

	head, err := client.HeaderByNumber(ctx, nil)
	if err == nil && head.BaseFee != nil {
		tip, tipErr := client.SuggestGasTipCap(ctx)
		if tipErr != nil {
			tip = big.NewInt(0)
		}

		// maxFee = 2*baseFee + tip leaves headroom for base-fee growth
		// between build and inclusion.
		maxFee := new(big.Int).Add(new(big.Int).Mul(head.BaseFee, big.NewInt(2)), tip)
		raw["maxFeePerGas"] = maxFee
		raw["maxPriorityFeePerGas"] = tip

		return raw, nil
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest gas price: %w", err)
	}
	raw["gasPrice"] = gasPrice

	return raw, nil
}

// Submit broadcasts a signed raw transaction and returns its hash.
func (c *Client) Submit(ctx context.Context, signedTx string) (string, error) {
	payload, err := hexutil.Decode(strings.TrimSpace(signedTx))
	if err != nil {
		return "", fmt.Errorf("decode signed transaction: %w", err)
	}

	tx := new(ethtypes.Transaction)
	err = tx.UnmarshalBinary(payload)
	if err != nil {
		return "", fmt.Errorf("unmarshal signed transaction: %w", err)
	}

	client, err := ethclient.DialContext(ctx, c.rpcURL)
	if err != nil {
		SubmissionsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("dial RPC: %w", err)
	}
	defer client.Close()

	err = client.SendTransaction(ctx, tx)
	if err != nil {
		SubmissionsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("send transaction: %w", err)
	}

	SubmissionsTotal.WithLabelValues("success").Inc()
	c.logger.Info("transaction-submitted", zap.String("tx-hash", tx.Hash().Hex()))

	return tx.Hash().Hex(), nil
}

// tradesEnvelope is the wrapped trade-query response shape. Older indexer
// versions return a bare array instead.
type tradesEnvelope struct {
	Trades        []types.RawTrade `json:"trades"`
	PendingOrders []any            `json:"pendingOpenLimitOrders"`
}

// ListTrades fetches a wallet's raw trades and pending-order count from the
// protocol trade API. Records stay loosely typed; normalization happens in
// the trading package.
func (c *Client) ListTrades(ctx context.Context, wallet string) ([]types.RawTrade, int, error) {
	url := fmt.Sprintf("%s/trades/%s", c.tradeAPIURL, wallet)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		TradeQueriesTotal.WithLabelValues("error").Inc()
		return nil, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		TradeQueriesTotal.WithLabelValues("error").Inc()
		return nil, 0, fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	var body json.RawMessage
	err = json.NewDecoder(resp.Body).Decode(&body)
	if err != nil {
		TradeQueriesTotal.WithLabelValues("error").Inc()
		return nil, 0, fmt.Errorf("decode response: %w", err)
	}

	var envelope tradesEnvelope
	if err = json.Unmarshal(body, &envelope); err == nil && envelope.Trades != nil {
		TradeQueriesTotal.WithLabelValues("success").Inc()
		return envelope.Trades, len(envelope.PendingOrders), nil
	}

	var bare []types.RawTrade
	if err = json.Unmarshal(body, &bare); err == nil {
		TradeQueriesTotal.WithLabelValues("success").Inc()
		return bare, 0, nil
	}

	TradeQueriesTotal.WithLabelValues("error").Inc()

	return nil, 0, fmt.Errorf("unrecognized trades response shape: %w", err)
}
