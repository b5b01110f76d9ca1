// Package engine drives the strategy over a tick stream. One engine serves
// both execution modes: Backtest replays a historical series into an
// in-memory ledger, LiveTick advances a single decision cycle against a
// broker. The per-tick sequence is identical in both.
package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfx/trader/indicators"
	"github.com/quantfx/trader/market"
	"github.com/quantfx/trader/risk"
	"github.com/quantfx/trader/strategy"
)

// Params is everything the engine needs from a strategy document.
type Params struct {
	AccountCurrency    string
	RiskPercent        float64       // per-trade % of balance, (0, 100]
	StopLossDistance   float64       // price units
	TakeProfitDistance float64       // price units
	InitialBalance     float64
	MaxDrawdownRatio   float64       // (0, 1]
	MaxDailyLosses     int
	MaxHoldingDuration time.Duration // 0 disables the time-limit exit

	Indicators    []indicators.Spec
	FastIndicator string
	SlowIndicator string
	Window        market.Window
}

// Validate fails fast on a malformed strategy document; a bad document
// never reaches tick processing.
func (p Params) Validate() error {
	if p.AccountCurrency == "" {
		return fmt.Errorf("engine: account currency is required")
	}
	if p.RiskPercent <= 0 || p.RiskPercent > 100 {
		return fmt.Errorf("engine: risk percent must be in (0, 100], got %v", p.RiskPercent)
	}
	if p.StopLossDistance <= 0 {
		return fmt.Errorf("engine: stop loss distance must be positive, got %v", p.StopLossDistance)
	}
	if p.TakeProfitDistance <= 0 {
		return fmt.Errorf("engine: take profit distance must be positive, got %v", p.TakeProfitDistance)
	}
	if p.InitialBalance <= 0 {
		return fmt.Errorf("engine: initial balance must be positive, got %v", p.InitialBalance)
	}
	if p.MaxDrawdownRatio <= 0 || p.MaxDrawdownRatio > 1 {
		return fmt.Errorf("engine: max drawdown ratio must be in (0, 1], got %v", p.MaxDrawdownRatio)
	}
	if p.MaxDailyLosses < 0 {
		return fmt.Errorf("engine: max daily losses must not be negative, got %d", p.MaxDailyLosses)
	}
	if p.MaxHoldingDuration < 0 {
		return fmt.Errorf("engine: max holding duration must not be negative, got %v", p.MaxHoldingDuration)
	}
	if len(p.Indicators) == 0 {
		return fmt.Errorf("engine: at least one indicator is required")
	}
	return nil
}

// Engine evaluates one strategy. Safe to reuse across runs; each Backtest
// call gets a fresh ledger and governor, while live state persists on the
// engine between ticks.
type Engine struct {
	params   Params
	provider *indicators.Provider
	eval     *strategy.Evaluator
	noise    *Noise
	log      zerolog.Logger

	liveGov  *risk.Governor // survives across LiveTick calls
	lastTick time.Time      // monotonicity guard for live ticks
}

// Option configures an Engine.
type Option func(*Engine)

// WithNoise layers the execution-noise model over backtest entries and
// exits. Live ticks never consult it.
func WithNoise(n *Noise) Option {
	return func(e *Engine) { e.noise = n }
}

// WithLogger attaches a logger; the default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

func New(params Params, opts ...Option) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	provider, err := indicators.NewProvider(params.Indicators)
	if err != nil {
		return nil, err
	}

	eval, err := strategy.NewEvaluator(params.FastIndicator, params.SlowIndicator, params.Window)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		params:   params,
		provider: provider,
		eval:     eval,
		log:      zerolog.Nop(),
		liveGov: risk.NewGovernor(risk.Limits{
			InitialBalance:   params.InitialBalance,
			MaxDrawdownRatio: params.MaxDrawdownRatio,
			MaxDailyLosses:   params.MaxDailyLosses,
		}),
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// stopTakePrices returns the absolute stop and target for a buy at entry.
func (e *Engine) stopTakePrices(entry float64) (stop, take float64) {
	return entry - e.params.StopLossDistance, entry + e.params.TakeProfitDistance
}
