package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quantfx/trader/broker"
	"github.com/quantfx/trader/config"
	"github.com/quantfx/trader/engine"
	"github.com/quantfx/trader/journal"
	"github.com/quantfx/trader/logging"
	"github.com/quantfx/trader/market"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run the strategy over historical CSV bar data",
	Long: `Backtest replays historical bars through the strategy, one run per
configured pair, and journals trades and equity curves.

Bar files live in the data directory, one per pair, named <pair>.csv with
the header time,open,high,low,close and RFC3339 timestamps.

Example:
  fxtrader backtest -f strategy.yaml -d ./data`,
	RunE: runBacktest,
}

var (
	btConfigPath string
	btDataDir    string
	btOrgDir     string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "f", "", "path to strategy document (YAML or JSON) (required)")
	backtestCmd.Flags().StringVarP(&btDataDir, "data", "d", "./data", "directory of <pair>.csv bar files")
	backtestCmd.Flags().StringVar(&btOrgDir, "org", "", "directory for Org-mode run summaries (optional)")

	backtestCmd.MarkFlagRequired("config")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(btConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	params, err := cfg.EngineParams()
	if err != nil {
		return fmt.Errorf("engine params: %w", err)
	}

	opts := []engine.Option{engine.WithLogger(logging.GetLogger("engine"))}
	if cfg.Noise.Probability > 0 {
		opts = append(opts, engine.WithNoise(engine.NewNoise(cfg.Noise.Probability, cfg.Noise.Seed)))
	}

	e, err := engine.New(params, opts...)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	j, sqlJournal, err := openJournal(cfg)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer j.Close()

	pips := broker.StaticPips(cfg.Strategy.PipValues)

	fmt.Printf("Running backtest with config: %s\n", btConfigPath)
	fmt.Printf("  Pairs: %s (%s)\n", strings.Join(cfg.Strategy.Pairs, ", "), cfg.Strategy.Timeframe)
	fmt.Printf("  Balance: %.2f %s (Risk: %.1f%%)\n\n", cfg.Account.Balance, cfg.Account.Currency, cfg.Risk.Percent)

	ctx := context.Background()
	for _, pair := range cfg.Strategy.Pairs {
		barsPath := filepath.Join(btDataDir, pair+".csv")
		series, err := market.ReadCSVSeries(barsPath, pair)
		if err != nil {
			return fmt.Errorf("load bars: %w", err)
		}

		res, err := e.Backtest(ctx, series, pips)
		if err != nil {
			return fmt.Errorf("backtest %s: %w", pair, err)
		}

		if err := recordRun(j, sqlJournal, cfg, res); err != nil {
			return fmt.Errorf("journal %s: %w", pair, err)
		}

		rec := journal.Summarize(res, cfg.Strategy.Timeframe, cfg.Account.Balance)
		printRun(rec)

		if btOrgDir != "" {
			orgPath := filepath.Join(btOrgDir, res.RunID+".org")
			if err := rec.WriteOrg(orgPath); err != nil {
				return fmt.Errorf("write org summary: %w", err)
			}
			fmt.Printf("  Summary: %s\n", orgPath)
		}
		fmt.Println()
	}

	return nil
}

func openJournal(cfg *config.Config) (journal.Journal, *journal.SQLite, error) {
	if cfg.Journal.Type == "csv" {
		j, err := journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
		return j, nil, err
	}
	j, err := journal.NewSQLite(cfg.Journal.DBPath)
	return j, j, err
}

func recordRun(j journal.Journal, sq *journal.SQLite, cfg *config.Config, res *engine.Result) error {
	for _, tr := range journal.TradesFromRun(res) {
		if err := j.RecordTrade(tr); err != nil {
			return err
		}
	}
	for _, eq := range journal.EquityFromRun(res) {
		if err := j.RecordEquity(eq); err != nil {
			return err
		}
	}
	if sq != nil {
		return sq.RecordRun(journal.Summarize(res, cfg.Strategy.Timeframe, cfg.Account.Balance))
	}
	return nil
}

func printRun(rec journal.RunRecord) {
	fmt.Printf("Run %s (%s)\n", rec.RunID, rec.Symbol)
	fmt.Printf("  Trades: %d (W %d / L %d, win rate %.1f%%)\n", rec.Trades, rec.Wins, rec.Losses, rec.WinRate*100)
	fmt.Printf("  Net P/L: %.2f (%.2f%%)  Final balance: %.2f\n", rec.NetPL, rec.ReturnPct, rec.EndBalance)
	if rec.Halted {
		fmt.Println("  HALTED: maximum drawdown reached")
	}
}
