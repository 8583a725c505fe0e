package types

import (
	"fmt"
	"strings"
)

// Direction is the side of a leveraged position.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// ParseDirection parses a direction string (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "long":
		return Long, nil
	case "short":
		return Short, nil
	default:
		return "", fmt.Errorf("invalid direction %q: must be 'long' or 'short'", s)
	}
}

// IsLong reports whether the direction is long.
func (d Direction) IsLong() bool {
	return d == Long
}

// TradeIntent is a caller-supplied request to open a position.
// Constructed per request, never persisted.
type TradeIntent struct {
	UserID            string    `json:"user_id"`
	WalletAddress     string    `json:"wallet_address"`
	MarketPair        string    `json:"market_pair"`
	Direction         Direction `json:"direction"`
	Collateral        float64   `json:"collateral"`
	Leverage          int       `json:"leverage"`
	TakeProfitPercent float64   `json:"take_profit_percent"`
}

// Validate checks the intent before any external call is made.
func (i *TradeIntent) Validate() error {
	if i.WalletAddress == "" {
		return fmt.Errorf("wallet_address cannot be empty")
	}

	if i.MarketPair == "" {
		return fmt.Errorf("market_pair cannot be empty")
	}

	if i.Direction != Long && i.Direction != Short {
		return fmt.Errorf("direction must be 'long' or 'short', got %q", i.Direction)
	}

	if i.Collateral <= 0 {
		return fmt.Errorf("collateral must be positive, got %f", i.Collateral)
	}

	// Zero means "apply the configured default" downstream.
	if i.Leverage < 0 {
		return fmt.Errorf("leverage cannot be negative, got %d", i.Leverage)
	}

	if i.TakeProfitPercent < 0 {
		return fmt.Errorf("take_profit_percent cannot be negative, got %f", i.TakeProfitPercent)
	}

	return nil
}

// ResolvedTradeParams are the protocol-level parameters derived from a
// TradeIntent at build time. TradeIndex is advisory: it is computed from a
// snapshot of open positions and is not reserved on-chain.
type ResolvedTradeParams struct {
	PairIndex       int     `json:"pair_index"`
	TradeIndex      int     `json:"trade_index"`
	EntryPrice      float64 `json:"entry_price"`
	TakeProfitPrice float64 `json:"take_profit_price"`
}

// TradeMeta is build-time metadata optionally echoed back by the caller on
// execute. Missing fields are recomputed server-side before submission.
type TradeMeta struct {
	PairIndex  *int     `json:"pair_index,omitempty"`
	TradeIndex *int     `json:"trade_index,omitempty"`
	EntryPrice *float64 `json:"entry_price,omitempty"`
}

// Complete reports whether all metadata fields are present.
func (m *TradeMeta) Complete() bool {
	return m != nil && m.PairIndex != nil && m.TradeIndex != nil && m.EntryPrice != nil
}

// TradeResult is the terminal outcome of an execute or close operation.
// It is returned once per call and never mutated after construction.
type TradeResult struct {
	Success    bool    `json:"success"`
	TxHash     string  `json:"tx_hash,omitempty"`
	EntryPrice float64 `json:"entry_price,omitempty"`
	PairIndex  int     `json:"pair_index"`
	TradeIndex int     `json:"trade_index"`
	Message    string  `json:"message,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// TradeStatus is the inferred open/closed state of a position.
type TradeStatus string

const (
	StatusOpen   TradeStatus = "open"
	StatusClosed TradeStatus = "closed"
)

// PositionRef identifies an existing position for slot allocation.
type PositionRef struct {
	PairIndex  int
	TradeIndex int
}

// NormalizedTradeRecord is one open or closed position reconstructed from
// the loosely-typed upstream trade-query shapes. Reconstructed fresh on every
// list call, never cached.
type NormalizedTradeRecord struct {
	PairIndex  int         `json:"pair_index"`
	TradeIndex int         `json:"trade_index"`
	Direction  Direction   `json:"direction"`
	Collateral float64     `json:"collateral"` // original collateral, not post-P&L
	Leverage   float64     `json:"leverage"`
	EntryPrice float64     `json:"entry_price"`
	ExitPrice  *float64    `json:"exit_price,omitempty"` // present iff closed
	TakeProfit float64     `json:"take_profit"`
	StopLoss   float64     `json:"stop_loss"`
	Status     TradeStatus `json:"status"`
	PairName   string      `json:"pair_name,omitempty"` // best-effort
	PnL        float64     `json:"pnl"`
	PnLPercent float64     `json:"pnl_percent"`
	OpenedAt   int64       `json:"opened_at,omitempty"` // unix seconds, 0 = unknown
	ClosedAt   int64       `json:"closed_at,omitempty"`
	MarketOpen bool        `json:"market_is_open"`
}
