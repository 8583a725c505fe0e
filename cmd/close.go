package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/swipetrade/perps-service/internal/chain"
	"github.com/swipetrade/perps-service/internal/markets"
	"github.com/swipetrade/perps-service/internal/trading"
	"github.com/swipetrade/perps-service/pkg/config"
	"github.com/swipetrade/perps-service/pkg/signer"
)

//nolint:gochecknoglobals // Cobra boilerplate
var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Close a position through the remote signer",
	Long: `Builds a close-market transaction for the given position, signs it
through the remote wallet provider, and submits it to the chain.

The trade index can be read from the trades command output.

Example:
  perps-service close --wallet 0xYourWallet --pair-index 1 --trade-index 0`,
	RunE: runClose,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(closeCmd)
	closeCmd.Flags().StringP("wallet", "w", "", "Wallet address holding the position (required)")
	closeCmd.Flags().Int("pair-index", -1, "Pair index of the position (required)")
	closeCmd.Flags().Int("trade-index", -1, "Trade index of the position (required)")
	_ = closeCmd.MarkFlagRequired("wallet")
	_ = closeCmd.MarkFlagRequired("pair-index")
	_ = closeCmd.MarkFlagRequired("trade-index")
}

func runClose(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	wallet, _ := cmd.Flags().GetString("wallet")
	pairIndex, _ := cmd.Flags().GetInt("pair-index")
	tradeIndex, _ := cmd.Flags().GetInt("trade-index")

	if pairIndex < 0 || tradeIndex < 0 {
		return fmt.Errorf("pair-index and trade-index must be non-negative")
	}

	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	chainClient, err := chain.NewClient(&chain.Config{
		RPCURL:           cfg.RPCURL,
		ChainID:          cfg.ChainID,
		TradingContract:  cfg.TradingContract,
		TradeAPIURL:      cfg.TradeAPIURL,
		GasLimitFallback: cfg.GasLimitFallback,
		HTTPTimeout:      cfg.HTTPCallTimeout,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("create chain client: %w", err)
	}

	signerClient, err := signer.NewClient(&signer.Config{
		BaseURL:   cfg.SignerAPIURL,
		AppID:     cfg.SignerAppID,
		AppSecret: cfg.SignerAppSecret,
		Timeout:   cfg.HTTPCallTimeout,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("create signer client: %w", err)
	}

	marketsClient := markets.NewClient(cfg.MarketDataURL, cfg.PriceFeedURL, cfg.HTTPCallTimeout, logger)
	resolver := markets.NewResolver(marketsClient, cfg.PairsCacheTTL, logger)

	trader := trading.NewTrader(&trading.Config{
		UserID:   "cli",
		Wallet:   wallet,
		ChainID:  cfg.ChainID,
		Chain:    chainClient,
		Resolver: resolver,
		Signer:   signerClient,
		Defaults: trading.Defaults{
			Leverage:          cfg.DefaultLeverage,
			SlippagePercent:   cfg.DefaultSlippagePercent,
			TakeProfitPercent: cfg.DefaultTakeProfitPercent,
		},
		Logger: logger,
	})

	result := trader.ClosePosition(cmd.Context(), pairIndex, tradeIndex)
	if !result.Success {
		return fmt.Errorf("close position: %s", result.Error)
	}

	fmt.Printf("Position closed. Tx: %s\n", result.TxHash)
	return nil
}
