package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/quantfx/trader/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query journaled runs and trades",
	Long: `Query and display records from a SQLite journal.

Subcommands:
  trade - Get details of a specific trade by ID
  run   - Show a run summary and its trades

Examples:
  fxtrader journal trade <trade-id>
  fxtrader journal run <run-id>`,
}

var journalTradeCmd = &cobra.Command{
	Use:   "trade <trade-id>",
	Short: "Get details of a specific trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrade,
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Show a run summary and its trades",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalTradeCmd)
	journalCmd.AddCommand(journalRunCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "./trader.db", "path to SQLite journal DB")
}

func runJournalTrade(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetTrade(args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}

	printTrade(rec)
	return nil
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	j, err := journal.NewSQLite(journalDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer j.Close()

	rec, err := j.GetRun(args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	printRun(rec)

	trades, err := j.ListTradesByRun(args[0])
	if err != nil {
		return fmt.Errorf("list trades: %w", err)
	}
	for _, tr := range trades {
		printTrade(tr)
	}
	return nil
}

func printTrade(t journal.TradeRecord) {
	fmt.Printf("%s  %s %s %.2f @ %.5f -> %.5f  P/L %.2f (%s)\n",
		t.TradeID, t.Symbol, t.Side, t.Size, t.EntryPrice, t.ExitPrice, t.RealizedPL, t.Reason)
}
