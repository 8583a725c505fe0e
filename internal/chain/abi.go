package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Trading contract fragments for the two entry points this service calls.
// The protocol's Trade struct is passed as a tuple; openPrice zero means
// "fill at current market price".
const (
	openTradeABI = `[{"inputs":[{"components":[{"internalType":"address","name":"trader","type":"address"},{"internalType":"uint256","name":"pairIndex","type":"uint256"},{"internalType":"uint256","name":"index","type":"uint256"},{"internalType":"uint256","name":"positionSizeUSDC","type":"uint256"},{"internalType":"uint256","name":"openPrice","type":"uint256"},{"internalType":"bool","name":"buy","type":"bool"},{"internalType":"uint256","name":"leverage","type":"uint256"},{"internalType":"uint256","name":"tp","type":"uint256"},{"internalType":"uint256","name":"sl","type":"uint256"},{"internalType":"uint256","name":"timestamp","type":"uint256"}],"internalType":"struct ITradingStorage.Trade","name":"t","type":"tuple"},{"internalType":"uint8","name":"orderType","type":"uint8"},{"internalType":"uint256","name":"slippageP","type":"uint256"}],"name":"openTrade","outputs":[],"stateMutability":"nonpayable","type":"function"}]`

	closeTradeABI = `[{"inputs":[{"internalType":"uint256","name":"pairIndex","type":"uint256"},{"internalType":"uint256","name":"index","type":"uint256"}],"name":"closeTradeMarket","outputs":[],"stateMutability":"nonpayable","type":"function"}]`
)

// Fixed-point scales used by the trading contract.
const (
	collateralScale = 1e6  // USDC, 6 decimals
	priceScale      = 1e10 // prices and percentages, 10 decimals
)

// marketOrderType is the order type enum value for an immediate market order.
const marketOrderType = 0

// tradeTuple mirrors the ABI Trade struct for abi.Pack.
type tradeTuple struct {
	Trader           common.Address
	PairIndex        *big.Int
	Index            *big.Int
	PositionSizeUSDC *big.Int
	OpenPrice        *big.Int
	Buy              bool
	Leverage         *big.Int
	Tp               *big.Int
	Sl               *big.Int
	Timestamp        *big.Int
}

// scaled converts a float value into the contract's fixed-point integer
// representation without losing range on large prices.
func scaled(v float64, scale float64) *big.Int {
	f := new(big.Float).Mul(big.NewFloat(v), big.NewFloat(scale))
	i, _ := f.Int(nil)
	return i
}
