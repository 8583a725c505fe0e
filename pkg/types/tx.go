package types

// RawTransaction is the loosely-typed transaction shape produced by the
// protocol trade builders. Field names vary across SDK versions
// (to/to_address, data/input/callData, gas/gasLimit), so it stays a map
// until the codec normalizes it.
type RawTransaction map[string]any

// RawTrade is one loosely-typed trade record from the trade-query API.
// Upstream mixes snake_case and camelCase naming and may nest the actual
// trade under a "trade" key.
type RawTrade map[string]any

// UnsignedTransaction is the canonical transaction envelope handed to the
// signing provider. Every numeric field is a "0x"-prefixed hex string; the
// signer rejects decimal-encoded numerics. Exactly one of
// {MaxFeePerGas, MaxPriorityFeePerGas} or GasPrice is populated.
type UnsignedTransaction struct {
	To                   string `json:"to"`
	Value                string `json:"value"`
	Data                 string `json:"data,omitempty"`
	Gas                  string `json:"gas,omitempty"`
	Nonce                string `json:"nonce,omitempty"`
	ChainID              string `json:"chainId"`
	MaxFeePerGas         string `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas string `json:"maxPriorityFeePerGas,omitempty"`
	GasPrice             string `json:"gasPrice,omitempty"`
}

// BuildResult is the outcome of building an unsigned transaction for
// client-side signing.
type BuildResult struct {
	Transaction UnsignedTransaction `json:"transaction"`
	Params      ResolvedTradeParams `json:"-"`
}
