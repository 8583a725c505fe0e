package app

import (
	"context"
	"fmt"

	"github.com/swipetrade/perps-service/internal/chain"
	"github.com/swipetrade/perps-service/internal/markets"
	"github.com/swipetrade/perps-service/internal/trading"
	"github.com/swipetrade/perps-service/pkg/cache"
	"github.com/swipetrade/perps-service/pkg/config"
	"github.com/swipetrade/perps-service/pkg/healthprobe"
	"github.com/swipetrade/perps-service/pkg/httpserver"
	"github.com/swipetrade/perps-service/pkg/signer"
	"go.uber.org/zap"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := setupHealthChecker(cfg)

	registryCache, err := setupCache(logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup cache: %w", err)
	}

	chainClient, err := setupChainClient(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup chain client: %w", err)
	}

	resolver := setupResolver(cfg, logger)

	signerClient, err := setupSignerClient(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup signer client: %w", err)
	}

	registry := trading.NewRegistry(registryCache, logger)

	httpServer := setupHTTPServer(cfg, logger, healthChecker, &httpserver.TradeHandlerConfig{
		Registry: registry,
		Chain:    chainClient,
		Resolver: resolver,
		Signer:   signerClient,
		Defaults: trading.Defaults{
			Leverage:          cfg.DefaultLeverage,
			SlippagePercent:   cfg.DefaultSlippagePercent,
			TakeProfitPercent: cfg.DefaultTakeProfitPercent,
		},
		ChainID: cfg.ChainID,
		Logger:  logger,
	})

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		chainClient:   chainClient,
		resolver:      resolver,
		signerClient:  signerClient,
		registryCache: registryCache,
		registry:      registry,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupHealthChecker(cfg *config.Config) *healthprobe.HealthChecker {
	return healthprobe.New(networkName(cfg.ChainID), cfg.RPCURL)
}

func networkName(chainID int64) string {
	switch chainID {
	case 8453:
		return "base-mainnet"
	case 84532:
		return "base-sepolia"
	default:
		return fmt.Sprintf("chain-%d", chainID)
	}
}

func setupCache(logger *zap.Logger) (cache.Cache, error) {
	return cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 10000, // 10x expected max items (1000 trader contexts)
		MaxCost:     1000,  // Maximum 1000 trader contexts in cache
		BufferItems: 64,    // Buffer size for Get operations
		Logger:      logger,
	})
}

func setupChainClient(cfg *config.Config, logger *zap.Logger) (*chain.Client, error) {
	return chain.NewClient(&chain.Config{
		RPCURL:           cfg.RPCURL,
		ChainID:          cfg.ChainID,
		TradingContract:  cfg.TradingContract,
		TradeAPIURL:      cfg.TradeAPIURL,
		GasLimitFallback: cfg.GasLimitFallback,
		HTTPTimeout:      cfg.HTTPCallTimeout,
		Logger:           logger,
	})
}

func setupResolver(cfg *config.Config, logger *zap.Logger) *markets.Resolver {
	marketsClient := markets.NewClient(cfg.MarketDataURL, cfg.PriceFeedURL, cfg.HTTPCallTimeout, logger)
	return markets.NewResolver(marketsClient, cfg.PairsCacheTTL, logger)
}

func setupSignerClient(cfg *config.Config, logger *zap.Logger) (*signer.Client, error) {
	return signer.NewClient(&signer.Config{
		BaseURL:   cfg.SignerAPIURL,
		AppID:     cfg.SignerAppID,
		AppSecret: cfg.SignerAppSecret,
		Timeout:   cfg.HTTPCallTimeout,
		Logger:    logger,
	})
}

func setupHTTPServer(
	cfg *config.Config,
	logger *zap.Logger,
	healthChecker *healthprobe.HealthChecker,
	handlerCfg *httpserver.TradeHandlerConfig,
) *httpserver.Server {
	return httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		TradeHandler:  httpserver.NewTradeHandler(handlerCfg),
	})
}
