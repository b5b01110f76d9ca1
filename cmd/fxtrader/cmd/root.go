package cmd

import (
	"github.com/spf13/cobra"

	"github.com/quantfx/trader/logging"
)

var rootCmd = &cobra.Command{
	Use:   "fxtrader",
	Short: "A rule-based FX strategy engine for backtesting and live trading",
	Long: `fxtrader runs a two-indicator crossover strategy over FX pairs.

It provides tools for:
  - Backtesting against historical CSV bar data
  - Driving single live decision ticks against a broker session
  - Risk-based position sizing with drawdown and daily-loss circuit breakers
  - Journaling trades and equity curves to CSV or SQLite`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Initialize(logLevel, logPretty)
	},
}

var (
	logLevel  string
	logPretty bool
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logPretty, "log-pretty", true, "human-readable console log output")
}
