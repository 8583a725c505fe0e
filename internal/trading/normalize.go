package trading

import (
	"context"
	"strconv"
	"strings"

	"github.com/swipetrade/perps-service/pkg/types"
)

// closedStatuses is the vocabulary of status strings that mean a trade is no
// longer open.
var closedStatuses = map[string]bool{
	"closed":     true,
	"liquidated": true,
	"settled":    true,
}

// NormalizeAll reconstructs canonical trade records from the loosely-typed
// upstream shapes. A record whose pair or trade index cannot be resolved is
// dropped entirely: without its slot identity it can never be closed, so
// surfacing it would only mislead the caller.
func NormalizeAll(ctx context.Context, raws []types.RawTrade, resolver PairResolver) []types.NormalizedTradeRecord {
	records := make([]types.NormalizedTradeRecord, 0, len(raws))

	for _, raw := range raws {
		record, ok := normalizeOne(ctx, raw, resolver)
		if !ok {
			NormalizeDroppedTotal.Inc()
			continue
		}

		records = append(records, record)
	}

	return records
}

// ExtractPositionRefs pulls (pair index, trade index) pairs out of raw trade
// records for slot allocation, skipping records that lack either.
func ExtractPositionRefs(raws []types.RawTrade) []types.PositionRef {
	refs := make([]types.PositionRef, 0, len(raws))

	for _, raw := range raws {
		pairIndex := intField(raw, "pair_index", "pairIndex")
		tradeIndex := intField(raw, "trade_index", "tradeIndex", "index")

		if pairIndex == nil || tradeIndex == nil {
			continue
		}

		refs = append(refs, types.PositionRef{PairIndex: *pairIndex, TradeIndex: *tradeIndex})
	}

	return refs
}

func normalizeOne(ctx context.Context, raw types.RawTrade, resolver PairResolver) (types.NormalizedTradeRecord, bool) {
	var record types.NormalizedTradeRecord

	// Index fields are never defaulted: 0 is a valid, meaningful index, so
	// "absent" and "zero" must stay distinguishable.
	pairIndex := intField(raw, "pair_index", "pairIndex")
	tradeIndex := intField(raw, "trade_index", "tradeIndex", "index")

	if pairIndex == nil || tradeIndex == nil {
		return record, false
	}

	record.PairIndex = *pairIndex
	record.TradeIndex = *tradeIndex

	record.Direction = types.Short
	if isLong := boolField(raw, "is_long", "isLong", "buy"); isLong != nil {
		if *isLong {
			record.Direction = types.Long
		}
	} else if dir := stringField(raw, "direction", "side"); dir != "" {
		if parsed, err := types.ParseDirection(dir); err == nil {
			record.Direction = parsed
		}
	}

	// Original collateral, not the current post-P&L amount.
	collateral := floatField(raw, "collateral_in_trade", "collateralInTrade", "open_collateral", "openCollateral", "collateral")
	if collateral != nil {
		record.Collateral = *collateral
	}

	if leverage := floatField(raw, "leverage"); leverage != nil {
		record.Leverage = *leverage
	}

	if entry := floatField(raw, "open_price", "openPrice", "entry_price", "entryPrice"); entry != nil {
		record.EntryPrice = *entry
	}

	if tp := floatField(raw, "tp", "take_profit", "takeProfit"); tp != nil {
		record.TakeProfit = *tp
	}

	if sl := floatField(raw, "sl", "stop_loss", "stopLoss"); sl != nil {
		record.StopLoss = *sl
	}

	record.OpenedAt = int64Field(raw, "open_time", "openTime", "opened_at", "openedAt", "timestamp")
	record.ClosedAt = int64Field(raw, "close_time", "closeTime", "closed_at", "closedAt")

	exitPrice := floatField(raw, "close_price", "closePrice", "exit_price", "exitPrice")
	closedFlag := boolField(raw, "closed", "is_closed", "isClosed")
	statusStr := stringField(raw, "status", "state")

	// Closed-status inference, first match wins. An explicit close price
	// always outranks a stale status string.
	switch {
	case exitPrice != nil:
		record.Status = types.StatusClosed
		record.ExitPrice = exitPrice
	case closedFlag != nil:
		record.Status = types.StatusOpen
		if *closedFlag {
			record.Status = types.StatusClosed
		}
	case statusStr != "":
		record.Status = types.StatusOpen
		if closedStatuses[strings.ToLower(statusStr)] {
			record.Status = types.StatusClosed
		}
	case collateral != nil && *collateral == 0:
		record.Status = types.StatusClosed
	default:
		record.Status = types.StatusOpen
	}

	// P&L only for closed trades with both prices known. Real-time P&L for
	// open trades belongs to the caller's live price feed.
	if record.Status == types.StatusClosed && record.ExitPrice != nil && record.EntryPrice > 0 {
		change := (*record.ExitPrice - record.EntryPrice) / record.EntryPrice
		if record.Direction == types.Short {
			change = -change
		}

		record.PnL = record.Collateral * record.Leverage * change
		record.PnLPercent = change * record.Leverage * 100
	}

	if name, ok := resolver.PairName(ctx, record.PairIndex); ok {
		record.PairName = name
	}

	record.MarketOpen = resolver.MarketOpen(ctx, record.PairIndex)

	return record, true
}

// field probes a raw record for the first present alias, looking at the top
// level first and then inside a nested "trade" sub-record.
func field(raw types.RawTrade, names ...string) (any, bool) {
	for _, name := range names {
		if v, ok := raw[name]; ok && v != nil {
			return v, true
		}
	}

	nested, ok := raw["trade"].(map[string]any)
	if !ok {
		return nil, false
	}

	for _, name := range names {
		if v, ok := nested[name]; ok && v != nil {
			return v, true
		}
	}

	return nil, false
}

func intField(raw types.RawTrade, names ...string) *int {
	v, ok := field(raw, names...)
	if !ok {
		return nil
	}

	switch x := v.(type) {
	case float64:
		n := int(x)
		return &n
	case int:
		return &x
	case int64:
		n := int(x)
		return &n
	case string:
		n, err := strconv.Atoi(x)
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

func int64Field(raw types.RawTrade, names ...string) int64 {
	v, ok := field(raw, names...)
	if !ok {
		return 0
	}

	switch x := v.(type) {
	case float64:
		return int64(x)
	case int:
		return int64(x)
	case int64:
		return x
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func floatField(raw types.RawTrade, names ...string) *float64 {
	v, ok := field(raw, names...)
	if !ok {
		return nil
	}

	switch x := v.(type) {
	case float64:
		return &x
	case int:
		f := float64(x)
		return &f
	case int64:
		f := float64(x)
		return &f
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func boolField(raw types.RawTrade, names ...string) *bool {
	v, ok := field(raw, names...)
	if !ok {
		return nil
	}

	if b, isBool := v.(bool); isBool {
		return &b
	}

	return nil
}

func stringField(raw types.RawTrade, names ...string) string {
	v, ok := field(raw, names...)
	if !ok {
		return ""
	}

	if s, isStr := v.(string); isStr {
		return s
	}

	return ""
}
