// Package signer integrates the remote wallet provider that holds user keys
// and signs transactions on request. The private key never reaches this
// service; we post the hex-encoded envelope and get back either a broadcast
// transaction hash or a signed raw transaction.
package signer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/swipetrade/perps-service/pkg/types"
	"go.uber.org/zap"
)

// Result is the outcome of a signing request. Exactly one field is set:
// TxHash when the provider signed and broadcast itself (eth_sendTransaction),
// RawTransaction when it only signed.
type Result struct {
	TxHash         string
	RawTransaction string
}

// Client is an HTTP client for the wallet provider's signing API.
type Client struct {
	baseURL    string
	appID      string
	appSecret  string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds signer client configuration.
type Config struct {
	BaseURL   string
	AppID     string
	AppSecret string
	Timeout   time.Duration
	Logger    *zap.Logger
}

// NewClient creates a new signer client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("baseURL cannot be empty")
	}

	if cfg.AppID == "" || cfg.AppSecret == "" {
		return nil, errors.New("signer app credentials cannot be empty")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:   cfg.BaseURL,
		appID:     cfg.AppID,
		appSecret: cfg.AppSecret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: cfg.Logger,
	}, nil
}

// rpcRequest is the provider's wallet RPC payload. eth_sendTransaction signs
// with the user's embedded wallet and broadcasts in one step.
type rpcRequest struct {
	ChainType string                    `json:"chain_type"`
	Method    string                    `json:"method"`
	Params    types.UnsignedTransaction `json:"params"`
}

// SignTransaction signs (and typically broadcasts) a transaction via the
// provider's wallet RPC endpoint. walletID is the user's wallet address.
// No retries: the provider is treated as opaque and possibly slow; the
// pipeline converts any failure into a structured result.
func (c *Client) SignTransaction(ctx context.Context, walletID string, tx types.UnsignedTransaction) (*Result, error) {
	url := fmt.Sprintf("%s/v1/wallets/%s/rpc", c.baseURL, walletID)

	payload, err := json.Marshal(rpcRequest{
		ChainType: "ethereum",
		Method:    "eth_sendTransaction",
		Params:    tx,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.SetBasicAuth(c.appID, c.appSecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("privy-app-id", c.appID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	RequestDurationSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		RequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		RequestsTotal.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("signer API error: status %d: %s", resp.StatusCode, string(body))
	}

	var decoded struct {
		Method string         `json:"method"`
		Data   map[string]any `json:"data"`
	}
	err = json.NewDecoder(resp.Body).Decode(&decoded)
	if err != nil {
		RequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}

	result := &Result{}

	// The provider's response field names vary by method and API version.
	if hash := stringField(decoded.Data, "transactionHash", "hash"); hash != "" {
		result.TxHash = hash
	} else if raw := stringField(decoded.Data, "rawTransaction", "signedTransaction"); raw != "" {
		result.RawTransaction = raw
	} else {
		RequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("signer response carried neither hash nor signed transaction")
	}

	RequestsTotal.WithLabelValues("success").Inc()
	c.logger.Info("transaction-signed",
		zap.String("wallet", walletID),
		zap.Bool("provider-broadcast", result.TxHash != ""))

	return result, nil
}

func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key].(string); ok && v != "" {
			return v
		}
	}

	return ""
}
