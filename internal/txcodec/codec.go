// Package txcodec converts the heterogeneous numeric and string fields
// produced by the protocol trade builders into the canonical hex-string
// transaction envelope the signing provider requires.
package txcodec

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/swipetrade/perps-service/pkg/types"
)

// ToHex converts a value to a minimal-width "0x"-prefixed hex string.
// nil maps to nil; a string already prefixed "0x" passes through unchanged;
// numeric strings and numbers are re-encoded; anything unparseable is
// returned as its string form. Best-effort: never returns an error, and
// idempotent for all valid inputs.
func ToHex(v any) *string {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if strings.HasPrefix(x, "0x") || strings.HasPrefix(x, "-0x") {
			return &x
		}
		n, ok := new(big.Int).SetString(x, 10)
		if !ok {
			return &x
		}
		s := hexutil.EncodeBig(n)
		return &s
	case int:
		s := hexutil.EncodeBig(big.NewInt(int64(x)))
		return &s
	case int64:
		s := hexutil.EncodeBig(big.NewInt(x))
		return &s
	case uint64:
		s := hexutil.EncodeUint64(x)
		return &s
	case float64:
		s := hexutil.EncodeBig(big.NewInt(int64(x)))
		return &s
	case *big.Int:
		if x == nil {
			return nil
		}
		s := hexutil.EncodeBig(x)
		return &s
	default:
		s := fmt.Sprintf("%v", x)
		return &s
	}
}

// HexAddress ensures an address string carries the "0x" prefix.
func HexAddress(s string) string {
	if strings.HasPrefix(s, "0x") {
		return s
	}

	return "0x" + strings.TrimPrefix(s, "0x")
}

// Normalize maps a raw builder transaction into the canonical envelope.
// Field aliases follow the shapes seen across SDK versions: to/to_address,
// value/amount, data/input/callData, gas/gasLimit, chainId/chain_id.
// EIP-1559 fee fields take priority over legacy gasPrice; the envelope never
// carries both.
func Normalize(raw types.RawTransaction, chainID int64) (types.UnsignedTransaction, error) {
	var tx types.UnsignedTransaction

	to, ok := lookup(raw, "to", "to_address")
	if !ok {
		return tx, fmt.Errorf("transaction has no 'to' address")
	}

	toStr, ok := to.(string)
	if !ok || toStr == "" {
		return tx, fmt.Errorf("transaction 'to' address is not a string: %v", to)
	}

	tx.To = HexAddress(toStr)

	tx.Value = "0x0"
	if value, found := lookup(raw, "value", "amount"); found {
		if hexed := ToHex(value); hexed != nil {
			tx.Value = *hexed
		}
	}

	if data, found := lookup(raw, "data", "input", "callData"); found {
		if dataStr, isStr := data.(string); isStr && dataStr != "" {
			if !strings.HasPrefix(dataStr, "0x") {
				dataStr = "0x" + dataStr
			}
			tx.Data = dataStr
		}
	}

	if gas, found := lookup(raw, "gas", "gasLimit"); found {
		if hexed := ToHex(gas); hexed != nil {
			tx.Gas = *hexed
		}
	}

	// Nonce zero is a valid nonce, so presence is key-based, not value-based.
	if nonce, found := raw["nonce"]; found && nonce != nil {
		if hexed := ToHex(nonce); hexed != nil {
			tx.Nonce = *hexed
		}
	}

	chain := any(chainID)
	if c, found := lookup(raw, "chainId", "chain_id"); found {
		chain = c
	}
	if hexed := ToHex(chain); hexed != nil {
		tx.ChainID = *hexed
	}

	maxFee, hasMaxFee := lookup(raw, "maxFeePerGas")
	maxPriority, hasMaxPriority := lookup(raw, "maxPriorityFeePerGas")

	switch {
	case hasMaxFee || hasMaxPriority:
		if hasMaxFee {
			if hexed := ToHex(maxFee); hexed != nil {
				tx.MaxFeePerGas = *hexed
			}
		}
		if hasMaxPriority {
			if hexed := ToHex(maxPriority); hexed != nil {
				tx.MaxPriorityFeePerGas = *hexed
			}
		}
	default:
		if gasPrice, found := lookup(raw, "gasPrice", "gas_price"); found {
			if hexed := ToHex(gasPrice); hexed != nil {
				tx.GasPrice = *hexed
			}
		}
	}

	return tx, nil
}

// lookup returns the first alias whose value is present and non-empty.
// nil, empty-string and numeric-zero values fall through to the next alias.
func lookup(m map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}

		switch x := v.(type) {
		case string:
			if x == "" {
				continue
			}
		case float64:
			if x == 0 {
				continue
			}
		case int:
			if x == 0 {
				continue
			}
		case int64:
			if x == 0 {
				continue
			}
		case uint64:
			if x == 0 {
				continue
			}
		}

		return v, true
	}

	return nil, false
}
