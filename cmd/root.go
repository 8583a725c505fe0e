package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "perps-service",
	Short: "Leveraged perps trade broker",
	Long: `Backend service that brokers leveraged perpetual trades on Avantis.

It builds unsigned open and close transactions against the trading contract,
signs them through a remote wallet provider (or accepts client-signed
transactions), submits them to Base, and reconciles a wallet's positions
from the protocol's trade-query API.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
