package commands

import (
	"github.com/spf13/cobra"

	"github.com/sjkim/vega/pkg/config"
	"github.com/sjkim/vega/pkg/logger"
)

var (
	// Global flags
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vega",
	Short: "Vega - earnings short-volatility scoring and backtesting",
	Long: `Vega scores upcoming earnings events for short-volatility option
strategies and validates scoring configs against historical data.

Usage:
  go run ./cmd/vega [command]

Examples:
  go run ./cmd/vega backtest run --from 2024-01-01 --to 2024-12-31
  go run ./cmd/vega backtest walkforward --from 2024-01-01 --to 2024-12-31
  go run ./cmd/vega thresholds --window 365
  go run ./cmd/vega api`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "scoring config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// newLogger builds the process logger, honoring --verbose.
func newLogger(cfg *config.Config) *logger.Logger {
	if verbose {
		cfg.LogLevel = "debug"
	}
	return logger.New(cfg)
}
