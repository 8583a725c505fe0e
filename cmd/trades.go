package cmd

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/swipetrade/perps-service/internal/chain"
	"github.com/swipetrade/perps-service/internal/markets"
	"github.com/swipetrade/perps-service/internal/trading"
	"github.com/swipetrade/perps-service/pkg/config"
	"github.com/swipetrade/perps-service/pkg/types"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var tradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "List a wallet's positions with open/closed status and P&L",
	Long: `Fetches a wallet's trades from the trade-query API and normalizes them
into the canonical record shape.

For each position, displays:
- Pair name and direction
- Collateral and leverage
- Entry price (and exit price when closed)
- P&L (profit/loss)
- Status: open or closed

Examples:
  # Table output
  perps-service trades --wallet 0xYourWallet

  # Raw JSON
  perps-service trades --wallet 0xYourWallet --format json`,
	RunE: runTrades,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(tradesCmd)
	tradesCmd.Flags().StringP("wallet", "w", "", "Wallet address to query (required)")
	tradesCmd.Flags().StringP("format", "f", "table", "Output format: table or json")
	_ = tradesCmd.MarkFlagRequired("wallet")
}

func runTrades(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	wallet, _ := cmd.Flags().GetString("wallet")
	format, _ := cmd.Flags().GetString("format")

	logger := zap.NewNop()

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

	marketsClient := markets.NewClient(cfg.MarketDataURL, cfg.PriceFeedURL, cfg.HTTPCallTimeout, logger)
	resolver := markets.NewResolver(marketsClient, cfg.PairsCacheTTL, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.HTTPCallTimeout)
	defer cancel()

	rawTrades, pendingOrders, err := chainClient.ListTrades(ctx, wallet)
	if err != nil {
		return fmt.Errorf("list trades: %w", err)
	}

	records := trading.NormalizeAll(ctx, rawTrades, resolver)

	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	printTradeTable(records, pendingOrders)
	return nil
}

func printTradeTable(records []types.NormalizedTradeRecord, pendingOrders int) {
	if len(records) == 0 {
		fmt.Println("No positions found.")
		return
	}

	fmt.Printf("%-12s %-6s %-6s %12s %6s %14s %14s %12s %8s\n",
		"PAIR", "IDX", "DIR", "COLLATERAL", "LEV", "ENTRY", "EXIT", "PNL", "STATUS")

	for _, rec := range records {
		pair := rec.PairName
		if pair == "" {
			pair = fmt.Sprintf("pair-%d", rec.PairIndex)
		}

		exit := "-"
		if rec.ExitPrice != nil {
			exit = fmt.Sprintf("%.4f", *rec.ExitPrice)
		}

		fmt.Printf("%-12s %-6d %-6s %12.2f %6.0fx %14.4f %14s %12.2f %8s\n",
			pair, rec.TradeIndex, rec.Direction, rec.Collateral, rec.Leverage,
			rec.EntryPrice, exit, rec.PnL, rec.Status)
	}

	if pendingOrders > 0 {
		fmt.Printf("\nPending limit orders: %d\n", pendingOrders)
	}
}
