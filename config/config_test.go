package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfx/trader/market"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Default().Validate())
}

func TestValidateRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no_currency", func(c *Config) { c.Account.Currency = "" }},
		{"zero_balance", func(c *Config) { c.Account.Balance = 0 }},
		{"zero_risk", func(c *Config) { c.Risk.Percent = 0 }},
		{"risk_over_100", func(c *Config) { c.Risk.Percent = 150 }},
		{"zero_stop", func(c *Config) { c.Risk.StopLoss = 0 }},
		{"zero_target", func(c *Config) { c.Risk.TakeProfit = 0 }},
		{"bad_drawdown", func(c *Config) { c.Risk.MaxDrawdownRatio = 2 }},
		{"negative_losses", func(c *Config) { c.Risk.MaxDailyLosses = -1 }},
		{"bad_holding", func(c *Config) { c.Risk.MaxHolding = "soon" }},
		{"no_pairs", func(c *Config) { c.Strategy.Pairs = nil }},
		{"missing_pip_value", func(c *Config) { c.Strategy.PipValues = nil }},
		{"bad_timeframe", func(c *Config) { c.Strategy.Timeframe = "M7" }},
		{"no_indicators", func(c *Config) { c.Strategy.Indicators = nil }},
		{"bad_kind", func(c *Config) { c.Strategy.Indicators[0].Kind = "RSI" }},
		{"zero_period", func(c *Config) { c.Strategy.Indicators[0].Period = 0 }},
		{"no_fast", func(c *Config) { c.Strategy.Fast = "" }},
		{"bad_window", func(c *Config) { c.Strategy.Window = WindowConfig{Start: "17:00", End: "09:00"} }},
		{"bad_noise", func(c *Config) { c.Noise.Probability = 1.5 }},
		{"bad_journal_type", func(c *Config) { c.Journal.Type = "parquet" }},
		{"csv_missing_files", func(c *Config) { c.Journal.TradesFile = "" }},
		{"sqlite_missing_path", func(c *Config) { c.Journal = JournalConfig{Type: "sqlite"} }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := Default()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadFromFileYAML(t *testing.T) {
	t.Parallel()

	doc := `
account:
  currency: USD
  balance: 1000
risk:
  percent: 1
  stop_loss: 0.0010
  take_profit: 0.0020
  max_drawdown_ratio: 0.9
  max_daily_losses: 3
  max_holding: 4h
strategy:
  pairs: [GBP_USD, EUR_USD]
  pip_values:
    GBP_USD: 10
    EUR_USD: 10
  timeframe: M15
  indicators:
    - {name: fast, kind: EMA, period: 10}
    - {name: slow, kind: SMA, period: 20}
  fast: fast
  slow: slow
  window:
    start: "09:00"
    end: "17:30"
noise:
  probability: 0.1
  seed: 42
journal:
  type: sqlite
  db_path: ./trader.db
`
	path := filepath.Join(t.TempDir(), "strategy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"GBP_USD", "EUR_USD"}, cfg.Strategy.Pairs)
	assert.Equal(t, "sqlite", cfg.Journal.Type)
	assert.InDelta(t, 0.1, cfg.Noise.Probability, 1e-9)

	params, err := cfg.EngineParams()
	require.NoError(t, err)

	assert.InDelta(t, 1, params.RiskPercent, 1e-9)
	assert.Equal(t, 4*time.Hour, params.MaxHoldingDuration)
	require.Len(t, params.Indicators, 2)
	assert.Equal(t, "fast", params.Indicators[0].Name)
	assert.Equal(t, market.NewTimeOfDay(9, 0, 0), params.Window.Start)
	assert.Equal(t, market.NewTimeOfDay(17, 30, 0), params.Window.End)
}

func TestLoadFromFileJSON(t *testing.T) {
	t.Parallel()

	cfg := Default()
	path := filepath.Join(t.TempDir(), "strategy.json")
	require.NoError(t, cfg.SaveToFile(path))

	got, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Strategy.Pairs, got.Strategy.Pairs)
	assert.Equal(t, cfg.Journal, got.Journal)
}

func TestLoadFromFileGarbage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "strategy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{{{not a document"), 0644))

	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestDefaultWindowWhenUnset(t *testing.T) {
	t.Parallel()

	w, err := Default().Strategy.TradingWindow()
	require.NoError(t, err)
	assert.Equal(t, market.DefaultWindow(), w)
}
