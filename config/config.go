// Package config loads and validates the strategy document that drives both
// backtest and live runs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quantfx/trader/engine"
	"github.com/quantfx/trader/indicators"
	"github.com/quantfx/trader/market"
)

// Config represents the complete strategy document.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Risk     RiskConfig     `json:"risk" yaml:"risk"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Noise    NoiseConfig    `json:"noise,omitempty" yaml:"noise,omitempty"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Log      LogConfig      `json:"log,omitempty" yaml:"log,omitempty"`
}

// AccountConfig contains account initialization parameters.
type AccountConfig struct {
	Currency string  `json:"currency" yaml:"currency"`
	Balance  float64 `json:"balance" yaml:"balance"`
}

// RiskConfig contains the per-trade and account-level risk limits.
type RiskConfig struct {
	Percent          float64 `json:"percent" yaml:"percent"` // % of balance risked per trade
	StopLoss         float64 `json:"stop_loss" yaml:"stop_loss"`     // price units
	TakeProfit       float64 `json:"take_profit" yaml:"take_profit"` // price units
	MaxDrawdownRatio float64 `json:"max_drawdown_ratio" yaml:"max_drawdown_ratio"`
	MaxDailyLosses   int     `json:"max_daily_losses" yaml:"max_daily_losses"`
	MaxHolding       string  `json:"max_holding,omitempty" yaml:"max_holding,omitempty"` // e.g. "4h", empty disables
}

// IndicatorConfig names one indicator instance.
type IndicatorConfig struct {
	Name   string `json:"name" yaml:"name"`
	Kind   string `json:"kind" yaml:"kind"`
	Period int    `json:"period" yaml:"period"`
}

// WindowConfig bounds the time of day during which signals act.
type WindowConfig struct {
	Start string `json:"start" yaml:"start"` // "HH:MM" or "HH:MM:SS"
	End   string `json:"end" yaml:"end"`
}

// StrategyConfig contains the signal parameters.
type StrategyConfig struct {
	Pairs      []string           `json:"pairs" yaml:"pairs"`
	PipValues  map[string]float64 `json:"pip_values" yaml:"pip_values"` // per-pair, in account currency
	Timeframe  string             `json:"timeframe" yaml:"timeframe"`
	Indicators []IndicatorConfig  `json:"indicators" yaml:"indicators"`
	Fast       string             `json:"fast" yaml:"fast"`
	Slow       string             `json:"slow" yaml:"slow"`
	Window     WindowConfig       `json:"window,omitempty" yaml:"window,omitempty"`
}

// NoiseConfig tunes the execution-noise model applied to backtests.
type NoiseConfig struct {
	Probability float64 `json:"probability,omitempty" yaml:"probability,omitempty"`
	Seed        int64   `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LogConfig contains logging parameters.
type LogConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
	Pretty bool   `json:"pretty,omitempty" yaml:"pretty,omitempty"`
}

// LoadFromFile loads a strategy document from a file, trying YAML first and
// falling back to JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves the document to a file, formatted by extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the document before it reaches the engine.
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.Balance <= 0 {
		return fmt.Errorf("account.balance must be positive")
	}
	if c.Risk.Percent <= 0 || c.Risk.Percent > 100 {
		return fmt.Errorf("risk.percent must be in (0, 100]")
	}
	if c.Risk.StopLoss <= 0 {
		return fmt.Errorf("risk.stop_loss must be positive")
	}
	if c.Risk.TakeProfit <= 0 {
		return fmt.Errorf("risk.take_profit must be positive")
	}
	if c.Risk.MaxDrawdownRatio <= 0 || c.Risk.MaxDrawdownRatio > 1 {
		return fmt.Errorf("risk.max_drawdown_ratio must be in (0, 1]")
	}
	if c.Risk.MaxDailyLosses < 0 {
		return fmt.Errorf("risk.max_daily_losses must not be negative")
	}
	if _, err := c.Risk.MaxHoldingDuration(); err != nil {
		return fmt.Errorf("risk.max_holding: %w", err)
	}
	if len(c.Strategy.Pairs) == 0 {
		return fmt.Errorf("strategy.pairs is required")
	}
	for _, pair := range c.Strategy.Pairs {
		if v := c.Strategy.PipValues[pair]; v <= 0 {
			return fmt.Errorf("strategy.pip_values[%s] must be positive", pair)
		}
	}
	if _, err := market.TimeframeSeconds(c.Strategy.Timeframe); err != nil {
		return fmt.Errorf("strategy.timeframe: %w", err)
	}
	if len(c.Strategy.Indicators) == 0 {
		return fmt.Errorf("strategy.indicators is required")
	}
	for _, ind := range c.Strategy.Indicators {
		if ind.Name == "" {
			return fmt.Errorf("strategy indicator name is required")
		}
		if _, err := indicators.ForKind(indicators.Kind(ind.Kind)); err != nil {
			return fmt.Errorf("strategy indicator %q: %w", ind.Name, err)
		}
		if ind.Period <= 0 {
			return fmt.Errorf("strategy indicator %q period must be positive", ind.Name)
		}
	}
	if c.Strategy.Fast == "" || c.Strategy.Slow == "" {
		return fmt.Errorf("strategy.fast and strategy.slow are required")
	}
	if _, err := c.Strategy.TradingWindow(); err != nil {
		return err
	}
	if c.Noise.Probability < 0 || c.Noise.Probability > 1 {
		return fmt.Errorf("noise.probability must be in [0, 1]")
	}
	if c.Journal.Type != "csv" && c.Journal.Type != "sqlite" {
		return fmt.Errorf("journal.type must be 'csv' or 'sqlite'")
	}
	if c.Journal.Type == "csv" && (c.Journal.TradesFile == "" || c.Journal.EquityFile == "") {
		return fmt.Errorf("journal trades_file and equity_file required for CSV type")
	}
	if c.Journal.Type == "sqlite" && c.Journal.DBPath == "" {
		return fmt.Errorf("journal db_path required for SQLite type")
	}
	return nil
}

// MaxHoldingDuration parses the holding limit; empty means no limit.
func (r RiskConfig) MaxHoldingDuration() (time.Duration, error) {
	if r.MaxHolding == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.MaxHolding)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative: %s", r.MaxHolding)
	}
	return d, nil
}

// TradingWindow parses the window bounds; both empty means the default.
func (s StrategyConfig) TradingWindow() (market.Window, error) {
	if s.Window.Start == "" && s.Window.End == "" {
		return market.DefaultWindow(), nil
	}

	start, err := market.ParseTimeOfDay(s.Window.Start)
	if err != nil {
		return market.Window{}, fmt.Errorf("strategy.window.start: %w", err)
	}
	end, err := market.ParseTimeOfDay(s.Window.End)
	if err != nil {
		return market.Window{}, fmt.Errorf("strategy.window.end: %w", err)
	}

	w := market.Window{Start: start, End: end}
	if err := w.Validate(); err != nil {
		return market.Window{}, err
	}
	return w, nil
}

// EngineParams converts the validated document into engine parameters.
func (c *Config) EngineParams() (engine.Params, error) {
	hold, err := c.Risk.MaxHoldingDuration()
	if err != nil {
		return engine.Params{}, err
	}
	window, err := c.Strategy.TradingWindow()
	if err != nil {
		return engine.Params{}, err
	}

	specs := make([]indicators.Spec, 0, len(c.Strategy.Indicators))
	for _, ind := range c.Strategy.Indicators {
		specs = append(specs, indicators.Spec{
			Name:   ind.Name,
			Kind:   indicators.Kind(ind.Kind),
			Period: ind.Period,
		})
	}

	return engine.Params{
		AccountCurrency:    c.Account.Currency,
		RiskPercent:        c.Risk.Percent,
		StopLossDistance:   c.Risk.StopLoss,
		TakeProfitDistance: c.Risk.TakeProfit,
		InitialBalance:     c.Account.Balance,
		MaxDrawdownRatio:   c.Risk.MaxDrawdownRatio,
		MaxDailyLosses:     c.Risk.MaxDailyLosses,
		MaxHoldingDuration: hold,
		Indicators:         specs,
		FastIndicator:      c.Strategy.Fast,
		SlowIndicator:      c.Strategy.Slow,
		Window:             window,
	}, nil
}

// Default returns a strategy document with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Currency: "USD",
			Balance:  10000,
		},
		Risk: RiskConfig{
			Percent:          1,
			StopLoss:         0.0020,
			TakeProfit:       0.0040,
			MaxDrawdownRatio: 0.9,
			MaxDailyLosses:   3,
			MaxHolding:       "6h",
		},
		Strategy: StrategyConfig{
			Pairs:     []string{"GBP_USD"},
			PipValues: map[string]float64{"GBP_USD": 10},
			Timeframe: "M15",
			Indicators: []IndicatorConfig{
				{Name: "fast", Kind: "EMA", Period: 20},
				{Name: "slow", Kind: "SMA", Period: 50},
			},
			Fast: "fast",
			Slow: "slow",
		},
		Journal: JournalConfig{
			Type:       "csv",
			TradesFile: "./trades.csv",
			EquityFile: "./equity.csv",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
