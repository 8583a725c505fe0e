// Package markets resolves human-readable trading pairs to protocol pair
// indices and serves reference prices, backed by the protocol's market-data
// and price-feed endpoints.
package markets

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// PairInfo describes one tradable pair from the market-data endpoint.
type PairInfo struct {
	From   string `json:"from"`
	To     string `json:"to"`
	IsOpen *bool  `json:"is_open"`
}

// Symbol returns the human-readable pair symbol, e.g. "BTC/USD".
func (p PairInfo) Symbol() string {
	return p.From + "/" + p.To
}

// Client fetches pair metadata and prices from the market-data endpoints.
type Client struct {
	marketDataURL string
	priceFeedURL  string
	httpClient    *http.Client
	logger        *zap.Logger
}

// NewClient creates a new market-data client.
func NewClient(marketDataURL, priceFeedURL string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		marketDataURL: marketDataURL,
		priceFeedURL:  priceFeedURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchPairs fetches the full pair_index -> pair metadata mapping.
func (c *Client) FetchPairs(ctx context.Context) (map[int]PairInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.marketDataURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	// Keys are stringified pair indices.
	var raw map[string]PairInfo
	err = json.NewDecoder(resp.Body).Decode(&raw)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	pairs := make(map[int]PairInfo, len(raw))
	for key, info := range raw {
		index, convErr := strconv.Atoi(key)
		if convErr != nil {
			c.logger.Warn("pair-index-not-numeric", zap.String("key", key))
			continue
		}
		pairs[index] = info
	}

	return pairs, nil
}

type priceUpdate struct {
	Pair           string  `json:"pair"`
	ConvertedPrice float64 `json:"converted_price"`
}

type priceResponse struct {
	Parsed []priceUpdate `json:"parsed"`
}

// FetchPrices fetches the latest feed updates for the given symbols.
// The returned map contains only the symbols the feed actually resolved.
func (c *Client) FetchPrices(ctx context.Context, symbols []string) (map[string]float64, error) {
	if len(symbols) == 0 {
		return map[string]float64{}, nil
	}

	u := fmt.Sprintf("%s?pairs=%s", c.priceFeedURL, url.QueryEscape(strings.Join(symbols, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error: status %d", resp.StatusCode)
	}

	var parsed priceResponse
	err = json.NewDecoder(resp.Body).Decode(&parsed)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	prices := make(map[string]float64, len(parsed.Parsed))
	for _, update := range parsed.Parsed {
		prices[update.Pair] = update.ConvertedPrice
	}

	return prices, nil
}
