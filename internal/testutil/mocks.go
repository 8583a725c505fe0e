// Package testutil provides mock upstream servers and trade fixtures for
// tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockPair is one pair entry served by the mock market-data API.
type MockPair struct {
	From   string `json:"from"`
	To     string `json:"to"`
	IsOpen *bool  `json:"is_open"`
}

// MockMarketDataAPI is a mock HTTP server that simulates the protocol's
// market-data (pair mapping) and price-feed endpoints.
type MockMarketDataAPI struct {
	*httptest.Server
	mu       sync.RWMutex
	pairs    map[string]MockPair
	prices   map[string]float64
	failNext bool
	Requests int
}

// NewMockMarketDataAPI creates a mock market-data server. Pair keys are
// stringified pair indices, matching the live endpoint.
func NewMockMarketDataAPI(pairs map[string]MockPair, prices map[string]float64) *MockMarketDataAPI {
	mock := &MockMarketDataAPI{
		pairs:  pairs,
		prices: prices,
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.Requests++
		fail := mock.failNext
		mock.mu.Unlock()

		if fail {
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
			return
		}

		mock.mu.RLock()
		defer mock.mu.RUnlock()

		// Price-feed endpoint
		if pairsParam := r.URL.Query().Get("pairs"); pairsParam != "" {
			type update struct {
				Pair           string  `json:"pair"`
				ConvertedPrice float64 `json:"converted_price"`
			}
			var parsed []update
			for _, symbol := range strings.Split(pairsParam, ",") {
				if price, ok := mock.prices[symbol]; ok {
					parsed = append(parsed, update{Pair: symbol, ConvertedPrice: price})
				}
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"parsed": parsed})
			return
		}

		// Pair-mapping endpoint
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mock.pairs)
	})

	mock.Server = httptest.NewServer(handler)
	return mock
}

// FailNext makes every subsequent request fail with a 502 until cleared.
func (m *MockMarketDataAPI) FailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = fail
}

// SetPairs replaces the pair mapping served by the mock.
func (m *MockMarketDataAPI) SetPairs(pairs map[string]MockPair) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairs = pairs
}

// MockSignerAPI is a mock HTTP server that simulates the remote wallet
// provider's RPC endpoint.
type MockSignerAPI struct {
	*httptest.Server
	mu         sync.Mutex
	Response   map[string]any
	StatusCode int
	Requests   []SignerRequest
}

// SignerRequest is one captured signing request.
type SignerRequest struct {
	WalletID string
	AuthOK   bool
	AppID    string
	Body     map[string]any
}

// NewMockSignerAPI creates a mock signer server. The given response body is
// returned under the provider's "data" envelope.
func NewMockSignerAPI(appID, appSecret string, response map[string]any) *MockSignerAPI {
	mock := &MockSignerAPI{
		Response:   response,
		StatusCode: http.StatusOK,
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		user, pass, _ := r.BasicAuth()

		// Path is /v1/wallets/{walletID}/rpc
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		walletID := ""
		if len(parts) >= 3 {
			walletID = parts[2]
		}

		mock.mu.Lock()
		mock.Requests = append(mock.Requests, SignerRequest{
			WalletID: walletID,
			AuthOK:   user == appID && pass == appSecret,
			AppID:    r.Header.Get("privy-app-id"),
			Body:     body,
		})
		statusCode := mock.StatusCode
		response := mock.Response
		mock.mu.Unlock()

		if statusCode != http.StatusOK {
			http.Error(w, "signer error", statusCode)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"data": response})
	})

	mock.Server = httptest.NewServer(handler)
	return mock
}

// SetStatus changes the HTTP status returned by the mock.
func (m *MockSignerAPI) SetStatus(statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusCode = statusCode
}
