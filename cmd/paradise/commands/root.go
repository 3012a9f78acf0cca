package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "paradise",
	Short: "Paradise - KRX 스마트머니 대시보드 백엔드",
	Long: `Paradise Unified CLI

단일 종목의 가격/수급 데이터를 병합해 스마트머니 신호를 계산하는
대시보드 백엔드.

Usage:
  go run ./cmd/paradise [command]

Examples:
  go run ./cmd/paradise api
  go run ./cmd/paradise analyze --price prices.csv --flow flows.csv
  go run ./cmd/paradise backtest --price prices.csv --flow flows.csv --lookback 60
  go run ./cmd/paradise fetch --code 005930 --days 365
  go run ./cmd/paradise scheduler`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
