package testutil

import "github.com/swipetrade/perps-service/pkg/types"

// OpenTradeSnake builds an open trade record in the snake_case shape the
// trade-query API uses for live positions.
func OpenTradeSnake(pairIndex, tradeIndex int, isLong bool, collateral, leverage, entryPrice float64) types.RawTrade {
	return types.RawTrade{
		"pair_index":          float64(pairIndex),
		"trade_index":         float64(tradeIndex),
		"is_long":             isLong,
		"collateral_in_trade": collateral,
		"leverage":            leverage,
		"open_price":          entryPrice,
		"tp":                  entryPrice * 2,
		"sl":                  0.0,
	}
}

// OpenTradeCamel builds an open trade record in the camelCase shape, nested
// under a "trade" key the way some SDK versions return it.
func OpenTradeCamel(pairIndex, tradeIndex int, isLong bool, collateral, leverage, entryPrice float64) types.RawTrade {
	return types.RawTrade{
		"trade": map[string]any{
			"pairIndex":         float64(pairIndex),
			"index":             float64(tradeIndex),
			"buy":               isLong,
			"collateralInTrade": collateral,
			"leverage":          leverage,
			"openPrice":         entryPrice,
		},
	}
}

// ClosedTrade builds a closed trade record with an explicit exit price.
func ClosedTrade(pairIndex, tradeIndex int, isLong bool, collateral, leverage, entryPrice, exitPrice float64) types.RawTrade {
	return types.RawTrade{
		"pair_index":          float64(pairIndex),
		"trade_index":         float64(tradeIndex),
		"is_long":             isLong,
		"collateral_in_trade": collateral,
		"leverage":            leverage,
		"open_price":          entryPrice,
		"close_price":         exitPrice,
		"status":              "closed",
	}
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}
