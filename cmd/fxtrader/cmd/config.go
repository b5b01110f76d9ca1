package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quantfx/trader/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate strategy documents",
	Long: `Manage the strategy documents that drive backtest and live runs.

Subcommands:
  init     - Generate a default strategy document
  validate - Validate an existing strategy document

Examples:
  fxtrader config init -o strategy.yaml
  fxtrader config validate -f strategy.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default strategy document",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a strategy document",
	RunE:  runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "strategy.yaml", "output document path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to strategy document (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("✓ Created default strategy document: %s\n", configInitOutput)
	fmt.Println("\nEdit the file and run with:")
	fmt.Printf("  fxtrader backtest -f %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("✓ Strategy document valid: %s\n", configValidatePath)
	fmt.Printf("  Account: %.2f %s (Risk: %.1f%% per trade)\n", cfg.Account.Balance, cfg.Account.Currency, cfg.Risk.Percent)
	fmt.Printf("  Pairs: %s (%s)\n", strings.Join(cfg.Strategy.Pairs, ", "), cfg.Strategy.Timeframe)
	fmt.Printf("  Journal: %s\n", cfg.Journal.Type)
	return nil
}
