package httpserver

import (
	"errors"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/swipetrade/perps-service/internal/markets"
	"github.com/swipetrade/perps-service/internal/trading"
	"github.com/swipetrade/perps-service/pkg/types"
	"go.uber.org/zap"
)

// TradeHandler handles the trade-brokering HTTP surface. Traders are
// resolved per (user, wallet) through the registry, so repeated requests
// for the same wallet share one context.
type TradeHandler struct {
	registry *trading.Registry
	chain    trading.ChainClient
	resolver *markets.Resolver
	signer   trading.TxSigner
	defaults trading.Defaults
	chainID  int64
	logger   *zap.Logger
}

// TradeHandlerConfig holds handler construction parameters.
type TradeHandlerConfig struct {
	Registry *trading.Registry
	Chain    trading.ChainClient
	Resolver *markets.Resolver
	Signer   trading.TxSigner
	Defaults trading.Defaults
	ChainID  int64
	Logger   *zap.Logger
}

// NewTradeHandler creates a new trade handler.
func NewTradeHandler(cfg *TradeHandlerConfig) *TradeHandler {
	return &TradeHandler{
		registry: cfg.Registry,
		chain:    cfg.Chain,
		resolver: cfg.Resolver,
		signer:   cfg.Signer,
		defaults: cfg.Defaults,
		chainID:  cfg.ChainID,
		logger:   cfg.Logger,
	}
}

// ErrorResponse represents an HTTP error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// buildResponse is the payload returned by POST /build-transaction.
type buildResponse struct {
	Transaction types.UnsignedTransaction `json:"transaction"`
	TradeParams types.ResolvedTradeParams `json:"trade_params"`
}

// executeRequest is the payload accepted by POST /execute-trade. When a
// signed transaction is included the service only submits it; otherwise it
// builds and signs server-side through the wallet provider.
type executeRequest struct {
	types.TradeIntent
	SignedTransaction string           `json:"signed_transaction,omitempty"`
	Metadata          *types.TradeMeta `json:"metadata,omitempty"`
}

// closeRequest is the payload accepted by POST /close-trade. Index fields
// are pointers: zero is a valid index and must be distinguishable from
// absent.
type closeRequest struct {
	UserID        string `json:"user_id"`
	WalletAddress string `json:"wallet_address"`
	PairIndex     *int   `json:"pair_index"`
	TradeIndex    *int   `json:"trade_index"`
}

func (h *TradeHandler) trader(userID, wallet string) (*trading.Trader, error) {
	key := trading.Key{UserID: userID, Wallet: wallet}

	return h.registry.GetOrCreate(key, func() (*trading.Trader, error) {
		return trading.NewTrader(&trading.Config{
			UserID:   userID,
			Wallet:   wallet,
			ChainID:  h.chainID,
			Chain:    h.chain,
			Resolver: h.resolver,
			Signer:   h.signer,
			Defaults: h.defaults,
			Logger:   h.logger,
		}), nil
	})
}

// HandleBuildTransaction handles POST /build-transaction requests.
func (h *TradeHandler) HandleBuildTransaction(w http.ResponseWriter, r *http.Request) {
	var intent types.TradeIntent
	if err := json.NewDecoder(r.Body).Decode(&intent); err != nil {
		h.writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := intent.Validate(); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	trader, err := h.trader(intent.UserID, intent.WalletAddress)
	if err != nil {
		h.writeError(w, "create trader context: "+err.Error(), http.StatusInternalServerError)
		return
	}

	result, err := trader.Build(r.Context(), intent)
	if err != nil {
		h.writeError(w, err.Error(), buildErrorStatus(err))
		return
	}

	h.writeJSON(w, http.StatusOK, buildResponse{
		Transaction: result.Transaction,
		TradeParams: result.Params,
	})
}

// HandleExecuteTrade handles POST /execute-trade requests. Failures never
// surface as transport errors: the pipeline folds them into a TradeResult
// and the handler maps Success=false to a 400.
func (h *TradeHandler) HandleExecuteTrade(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := req.TradeIntent.Validate(); err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	trader, err := h.trader(req.UserID, req.WalletAddress)
	if err != nil {
		h.writeError(w, "create trader context: "+err.Error(), http.StatusInternalServerError)
		return
	}

	var result types.TradeResult
	if strings.TrimSpace(req.SignedTransaction) != "" {
		result = trader.ExecutePresigned(r.Context(), req.SignedTransaction, req.TradeIntent, req.Metadata)
	} else {
		result = trader.ExecuteServerSigned(r.Context(), req.TradeIntent)
	}

	if !result.Success {
		// A failed execution may have left the trader context in a bad
		// state; drop it so the next request starts fresh.
		h.registry.Invalidate(trading.Key{UserID: req.UserID, Wallet: req.WalletAddress})
		h.writeJSON(w, http.StatusBadRequest, result)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleCloseTrade handles POST /close-trade requests.
func (h *TradeHandler) HandleCloseTrade(w http.ResponseWriter, r *http.Request) {
	var req closeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.WalletAddress == "" {
		h.writeError(w, "wallet_address cannot be empty", http.StatusBadRequest)
		return
	}

	if req.PairIndex == nil || req.TradeIndex == nil {
		h.writeError(w, "pair_index and trade_index are required", http.StatusBadRequest)
		return
	}

	trader, err := h.trader(req.UserID, req.WalletAddress)
	if err != nil {
		h.writeError(w, "create trader context: "+err.Error(), http.StatusInternalServerError)
		return
	}

	result := trader.ClosePosition(r.Context(), *req.PairIndex, *req.TradeIndex)
	if !result.Success {
		h.registry.Invalidate(trading.Key{UserID: req.UserID, Wallet: req.WalletAddress})
		h.writeJSON(w, http.StatusBadRequest, result)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// HandleListTrades handles GET /trades?user_id=<id>&wallet_address=<addr>
// requests.
func (h *TradeHandler) HandleListTrades(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	wallet := r.URL.Query().Get("wallet_address")
	if wallet == "" {
		h.writeError(w, "missing required query parameter: wallet_address", http.StatusBadRequest)
		return
	}

	trader, err := h.trader(userID, wallet)
	if err != nil {
		h.writeError(w, "create trader context: "+err.Error(), http.StatusInternalServerError)
		return
	}

	list, err := trader.ListPositions(r.Context())
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadGateway)
		return
	}

	h.writeJSON(w, http.StatusOK, list)
}

// pricesResponse maps pair symbols to their latest prices. Pairs whose
// price could not be fetched are simply absent.
type pricesResponse struct {
	Prices map[string]float64 `json:"prices"`
}

// HandlePrices handles GET /prices?pairs=ETH/USD,BTC/USD requests.
func (h *TradeHandler) HandlePrices(w http.ResponseWriter, r *http.Request) {
	pairsParam := r.URL.Query().Get("pairs")
	if pairsParam == "" {
		h.writeError(w, "missing required query parameter: pairs", http.StatusBadRequest)
		return
	}

	symbols := strings.Split(pairsParam, ",")
	for i := range symbols {
		symbols[i] = strings.TrimSpace(symbols[i])
	}

	prices := h.resolver.Prices(r.Context(), symbols)

	h.writeJSON(w, http.StatusOK, pricesResponse{Prices: prices})
}

// buildErrorStatus maps build failures onto HTTP statuses: caller mistakes
// (unknown pair, unbuildable parameters) are 400s, upstream failures 502s.
func buildErrorStatus(err error) int {
	var resolutionErr *types.ResolutionError
	if errors.As(err, &resolutionErr) {
		if errors.Is(err, types.ErrPairNotFound) {
			return http.StatusBadRequest
		}
		return http.StatusBadGateway
	}

	var buildErr *types.BuildError
	if errors.As(err, &buildErr) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// writeJSON writes a JSON response body.
func (h *TradeHandler) writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed-to-encode-response", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func (h *TradeHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{Error: message}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed-to-encode-error-response", zap.Error(err))
	}
}
