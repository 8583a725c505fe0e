package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Application
	LogLevel string
	HTTPPort string

	// Chain
	RPCURL             string
	ChainID            int64
	TradingContract    string
	TradeAPIURL        string
	GasLimitFallback   uint64

	// Market data
	MarketDataURL string
	PriceFeedURL  string
	PairsCacheTTL time.Duration

	// Remote signer
	SignerAPIURL    string
	SignerAppID     string
	SignerAppSecret string

	// Trade defaults
	DefaultLeverage          int
	DefaultSlippagePercent   float64
	DefaultTakeProfitPercent float64

	// Network
	HTTPCallTimeout time.Duration
}

// LoadFromEnv loads configuration from environment variables with defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		// Application defaults
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		HTTPPort: getEnvOrDefault("HTTP_PORT", "8000"),

		// Chain defaults (Base mainnet)
		RPCURL:           getEnvOrDefault("RPC_URL", "https://mainnet.base.org"),
		ChainID:          getInt64OrDefault("CHAIN_ID", 8453),
		TradingContract:  getEnvOrDefault("TRADING_CONTRACT", "0x5FF292d70bA9cD9e7CCb313782811b3D7120535f"),
		TradeAPIURL:      getEnvOrDefault("TRADE_API_URL", "https://api.avantisfi.com/v1"),
		GasLimitFallback: getUint64OrDefault("GAS_LIMIT_FALLBACK", 2_500_000),

		// Market data defaults
		MarketDataURL: getEnvOrDefault("MARKET_DATA_URL", "https://socket-api-pub.avantisfi.com/socket-api/fetch-data"),
		PriceFeedURL:  getEnvOrDefault("PRICE_FEED_URL", "https://hermes.pyth.network/v2/updates/price/latest"),
		PairsCacheTTL: getDurationOrDefault("PAIRS_CACHE_TTL", 5*time.Minute),

		// Remote signer
		SignerAPIURL:    getEnvOrDefault("SIGNER_API_URL", "https://api.privy.io"),
		SignerAppID:     os.Getenv("SIGNER_APP_ID"),
		SignerAppSecret: os.Getenv("SIGNER_APP_SECRET"),

		// Trade defaults
		DefaultLeverage:          getIntOrDefault("DEFAULT_LEVERAGE", 75),
		DefaultSlippagePercent:   getFloat64OrDefault("DEFAULT_SLIPPAGE_PERCENT", 1.0),
		DefaultTakeProfitPercent: getFloat64OrDefault("DEFAULT_TAKE_PROFIT_PERCENT", 200.0),

		// Network defaults
		HTTPCallTimeout: getDurationOrDefault("HTTP_CALL_TIMEOUT", 15*time.Second),
	}

	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that configuration values are valid.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT cannot be empty")
	}

	if c.RPCURL == "" {
		return fmt.Errorf("RPC_URL cannot be empty")
	}

	if c.ChainID <= 0 {
		return fmt.Errorf("CHAIN_ID must be positive, got %d", c.ChainID)
	}

	if c.TradingContract == "" {
		return fmt.Errorf("TRADING_CONTRACT cannot be empty")
	}

	if c.MarketDataURL == "" {
		return fmt.Errorf("MARKET_DATA_URL cannot be empty")
	}

	if c.DefaultLeverage <= 0 {
		return fmt.Errorf("DEFAULT_LEVERAGE must be positive, got %d", c.DefaultLeverage)
	}

	if c.PairsCacheTTL <= 0 {
		return fmt.Errorf("PAIRS_CACHE_TTL must be positive, got %v", c.PairsCacheTTL)
	}

	return nil
}

func getEnvOrDefault(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getUint64OrDefault(key string, defaultValue uint64) uint64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intVal, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return defaultValue
	}

	return intVal
}

func getFloat64OrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	floatVal, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}

	return floatVal
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}
