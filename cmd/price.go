package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/swipetrade/perps-service/internal/markets"
	"github.com/swipetrade/perps-service/pkg/config"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var priceCmd = &cobra.Command{
	Use:   "price PAIR [PAIR...]",
	Short: "Fetch latest prices for one or more market pairs",
	Long: `Fetches the latest oracle prices for the given pairs.

Examples:
  # Single pair
  perps-service price ETH/USD

  # Multiple pairs
  perps-service price ETH/USD BTC/USD SOL/USD`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPrice,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(priceCmd)
}

func runPrice(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := zap.NewNop()

	client := markets.NewClient(cfg.MarketDataURL, cfg.PriceFeedURL, cfg.HTTPCallTimeout, logger)
	resolver := markets.NewResolver(client, cfg.PairsCacheTTL, logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPCallTimeout)
	defer cancel()

	prices := resolver.Prices(ctx, args)
	if len(prices) == 0 {
		return fmt.Errorf("no prices returned for %v", args)
	}

	for _, pair := range args {
		price, ok := prices[pair]
		if !ok {
			fmt.Printf("%-12s unavailable\n", pair)
			continue
		}
		fmt.Printf("%-12s %.6f\n", pair, price)
	}

	return nil
}
