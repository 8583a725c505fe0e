package trading

import (
	"context"
	"sync"

	"github.com/swipetrade/perps-service/internal/chain"
	"github.com/swipetrade/perps-service/pkg/signer"
	"github.com/swipetrade/perps-service/pkg/types"
	"go.uber.org/zap"
)

// fakeChain implements ChainClient with canned responses and call counters.
type fakeChain struct {
	mu sync.Mutex

	trades        []types.RawTrade
	pendingOrders int
	listErr       error
	listCalls     int

	openTx    types.RawTransaction
	openErr   error
	openCalls int
	lastOpen  chain.OpenParams

	closeTx    types.RawTransaction
	closeErr   error
	closeCalls int

	submitHash    string
	submitErr     error
	submitCalls   int
	lastSubmitted string
}

func (f *fakeChain) ListTrades(ctx context.Context, wallet string) ([]types.RawTrade, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	return f.trades, f.pendingOrders, f.listErr
}

func (f *fakeChain) BuildOpenTx(ctx context.Context, p chain.OpenParams) (types.RawTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openCalls++
	f.lastOpen = p
	return f.openTx, f.openErr
}

func (f *fakeChain) BuildCloseTx(ctx context.Context, pairIndex, tradeIndex int, trader string) (types.RawTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalls++
	return f.closeTx, f.closeErr
}

func (f *fakeChain) Submit(ctx context.Context, signedTx string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitCalls++
	f.lastSubmitted = signedTx
	return f.submitHash, f.submitErr
}

// fakeResolver implements PairResolver from static maps.
type fakeResolver struct {
	mu sync.Mutex

	indices map[string]int
	prices  map[string]float64
	names   map[int]string
	closed  map[int]bool

	indexCalls int
	priceCalls int
}

func (f *fakeResolver) PairIndex(ctx context.Context, symbol string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexCalls++

	index, ok := f.indices[symbol]
	if !ok {
		return 0, &types.ResolutionError{Symbol: symbol, Err: types.ErrPairNotFound}
	}
	return index, nil
}

func (f *fakeResolver) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.priceCalls++

	price, ok := f.prices[symbol]
	if !ok {
		return 0, &types.ResolutionError{Symbol: symbol, Err: types.ErrPriceUnavailable}
	}
	return price, nil
}

func (f *fakeResolver) PairName(ctx context.Context, pairIndex int) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name, ok := f.names[pairIndex]
	return name, ok
}

func (f *fakeResolver) MarketOpen(ctx context.Context, pairIndex int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed[pairIndex]
}

// fakeSigner implements TxSigner with a canned result.
type fakeSigner struct {
	mu sync.Mutex

	result *signer.Result
	err    error

	calls      int
	lastWallet string
	lastTx     types.UnsignedTransaction
}

func (f *fakeSigner) SignTransaction(ctx context.Context, walletID string, tx types.UnsignedTransaction) (*signer.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastWallet = walletID
	f.lastTx = tx
	return f.result, f.err
}

const testWallet = "0x1111111111111111111111111111111111111111"

// openTxFixture is a minimal raw builder transaction the codec can
// normalize.
func openTxFixture() types.RawTransaction {
	return types.RawTransaction{
		"to":    "0x5FF292d70bA9cD9e7CCb313782811b3D7120535f",
		"data":  "0xdeadbeef",
		"gas":   float64(2500000),
		"nonce": float64(3),
	}
}

func newTestTrader(chainClient ChainClient, resolver PairResolver, txSigner TxSigner) *Trader {
	return NewTrader(&Config{
		UserID:   "user-1",
		Wallet:   testWallet,
		ChainID:  8453,
		Chain:    chainClient,
		Resolver: resolver,
		Signer:   txSigner,
		Defaults: Defaults{
			Leverage:          75,
			SlippagePercent:   1.0,
			TakeProfitPercent: 200.0,
		},
		Logger: zap.NewNop(),
	})
}

func newTestResolver() *fakeResolver {
	return &fakeResolver{
		indices: map[string]int{"ETH/USD": 1, "BTC/USD": 0},
		prices:  map[string]float64{"ETH/USD": 2000.0, "BTC/USD": 60000.0},
		names:   map[int]string{0: "BTC/USD", 1: "ETH/USD"},
		closed:  map[int]bool{},
	}
}
