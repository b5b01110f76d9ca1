package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/quantfx/trader/broker"
	"github.com/quantfx/trader/config"
	"github.com/quantfx/trader/engine"
	"github.com/quantfx/trader/logging"
	"github.com/quantfx/trader/market"
)

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Run one live decision tick per configured pair",
	Long: `Live advances one decision cycle for each configured pair against a
broker session: it fetches the latest completed bar, applies the holding
limit and circuit breaker, and submits at most one entry per pair. An
external scheduler (e.g. cron) invokes it once per timeframe step.

Broker credentials are read from a .env file. The built-in paper session
simulates the broker from a directory of <pair>.csv bar files and honors
PAPER_BALANCE from the environment.

Example:
  fxtrader live -f strategy.yaml -d ./data --env .env`,
	RunE: runLive,
}

var (
	liveConfigPath string
	liveDataDir    string
	liveEnvPath    string
)

func init() {
	rootCmd.AddCommand(liveCmd)

	liveCmd.Flags().StringVarP(&liveConfigPath, "config", "f", "", "path to strategy document (YAML or JSON) (required)")
	liveCmd.Flags().StringVarP(&liveDataDir, "data", "d", "./data", "directory of <pair>.csv bar files for the paper session")
	liveCmd.Flags().StringVar(&liveEnvPath, "env", ".env", "path to .env file with broker credentials")

	liveCmd.MarkFlagRequired("config")
}

func runLive(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(liveEnvPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load env: %w", err)
	}

	cfg, err := config.LoadFromFile(liveConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	params, err := cfg.EngineParams()
	if err != nil {
		return fmt.Errorf("engine params: %w", err)
	}

	e, err := engine.New(params, engine.WithLogger(logging.GetLogger("engine")))
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	session, err := paperSession(cfg)
	if err != nil {
		return err
	}

	log := logging.GetLogger("live")
	ctx := context.Background()

	return broker.WithSession(ctx, session, func(s broker.Session) error {
		deps := engine.DepsFromSession(s)
		for _, pair := range cfg.Strategy.Pairs {
			err := e.LiveTick(ctx, pair, cfg.Strategy.Timeframe, deps)
			if errors.Is(err, engine.ErrHalted) {
				log.Warn().Msg("trading halted, stop scheduling ticks")
				return err
			}
			if err != nil {
				return fmt.Errorf("tick %s: %w", pair, err)
			}
		}
		return nil
	})
}

// paperSession builds the in-memory broker from the data directory. Balance
// comes from PAPER_BALANCE when set, the account config otherwise.
func paperSession(cfg *config.Config) (*broker.Paper, error) {
	balance := cfg.Account.Balance
	if v := os.Getenv("PAPER_BALANCE"); v != "" {
		b, err := strconv.ParseFloat(v, 64)
		if err != nil || b <= 0 {
			return nil, fmt.Errorf("bad PAPER_BALANCE %q", v)
		}
		balance = b
	}

	p := broker.NewPaper(balance)
	for _, pair := range cfg.Strategy.Pairs {
		series, err := market.ReadCSVSeries(filepath.Join(liveDataDir, pair+".csv"), pair)
		if err != nil {
			return nil, fmt.Errorf("load bars: %w", err)
		}
		if err := p.LoadSeries(series); err != nil {
			return nil, err
		}
		p.SetPipValue(pair, cfg.Strategy.PipValues[pair])
	}
	return p, nil
}
