package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfx/trader/broker"
	"github.com/quantfx/trader/internal/id"
	"github.com/quantfx/trader/ledger"
	"github.com/quantfx/trader/market"
	"github.com/quantfx/trader/risk"
	"github.com/quantfx/trader/strategy"
)

// EquityPoint is one sample of the run's equity curve, with the price that
// produced it so the two can be charted together.
type EquityPoint struct {
	Time   time.Time
	Equity float64
	Price  float64
}

// Result of one backtest run over one symbol.
type Result struct {
	RunID        string
	Symbol       string
	EquityCurve  []EquityPoint
	Trades       []ledger.Closed
	FinalBalance float64
	Halted       bool // drawdown breach stopped the run early
}

// Backtest replays the series through the full per-tick sequence against a
// fresh in-memory ledger and governor. Remaining positions are liquidated
// at the last seen price when the run ends.
func (e *Engine) Backtest(ctx context.Context, series market.Series, pips broker.PipValueProvider) (*Result, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}

	led := ledger.New(e.params.InitialBalance, e.params.MaxHoldingDuration)
	gov := risk.NewGovernor(risk.Limits{
		InitialBalance:   e.params.InitialBalance,
		MaxDrawdownRatio: e.params.MaxDrawdownRatio,
		MaxDailyLosses:   e.params.MaxDailyLosses,
	})

	res := &Result{
		RunID:       id.New(),
		Symbol:      series.Symbol,
		EquityCurve: make([]EquityPoint, 0, len(series.Bars)),
	}
	log := e.log.With().Str("run", res.RunID).Str("symbol", series.Symbol).Logger()

	closes := make([]float64, 0, len(series.Bars))
	prices := map[string]float64{}
	var last time.Time

	for _, bar := range series.Bars {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Defensive: Validate already rejects unordered series, but a
		// non-monotonic tick must never reach the ledger.
		if !bar.Time.After(last) {
			log.Warn().Time("tick", bar.Time).Msg("skipping non-monotonic tick")
			continue
		}
		last = bar.Time

		closes = append(closes, bar.Close)
		prices[series.Symbol] = bar.Close

		snap, err := e.provider.At(closes)
		if err != nil {
			return nil, err
		}

		decision := e.eval.Evaluate(bar.Close, snap, bar.Time)

		exitSignal := decision == strategy.ExitBySignal
		if exitSignal && e.noise.Drop() {
			log.Debug().Time("tick", bar.Time).Msg("slippage dropped exit")
			exitSignal = false
		}

		swept := led.MarkAndSweep(series.Symbol, bar.Close, bar.Time, exitSignal)
		for _, c := range swept.Closed {
			gov.RecordClose(c.RealizedPL, bar.Time)
			log.Info().
				Str("position", c.ID).
				Str("reason", string(c.Reason)).
				Float64("pl", c.RealizedPL).
				Time("tick", bar.Time).
				Msg("closed position")
		}
		res.Trades = append(res.Trades, swept.Closed...)

		if gov.CheckEquity(led.Equity(prices), bar.Time) {
			liq := led.LiquidateAll(prices, bar.Time, ledger.ReasonDrawdown)
			res.Trades = append(res.Trades, liq.Closed...)
			res.Halted = true
			res.EquityCurve = append(res.EquityCurve, EquityPoint{
				Time: bar.Time, Equity: led.Equity(prices), Price: bar.Close,
			})
			log.Warn().Time("tick", bar.Time).Float64("balance", led.Balance()).
				Msg("maximum drawdown reached, trading halted")
			break
		}

		if decision == strategy.Enter && gov.CanEnter(bar.Time) && !e.noise.Drop() {
			e.tryOpen(ctx, log, pips, led, series.Symbol, bar)
		}

		res.EquityCurve = append(res.EquityCurve, EquityPoint{
			Time: bar.Time, Equity: led.Equity(prices), Price: bar.Close,
		})
	}

	if led.OpenCount("") > 0 {
		fin := led.LiquidateAll(prices, last, ledger.ReasonEndOfRun)
		res.Trades = append(res.Trades, fin.Closed...)
	}
	res.FinalBalance = led.Balance()
	return res, nil
}

// tryOpen sizes and opens a buy position. Sizing failures skip the entry
// for this tick; they never abort the run.
func (e *Engine) tryOpen(ctx context.Context, log zerolog.Logger, pips broker.PipValueProvider, led *ledger.Ledger, symbol string, bar market.Bar) {
	pip, err := pips.PipValue(ctx, symbol, e.params.AccountCurrency)
	if err != nil {
		log.Warn().Err(err).Time("tick", bar.Time).Msg("pip value unavailable, entry skipped")
		return
	}

	sized, err := risk.Calculate(risk.Inputs{
		Balance:          led.Balance(),
		RiskPercent:      e.params.RiskPercent,
		PipValue:         pip,
		StopLossDistance: e.params.StopLossDistance,
	})
	if err != nil {
		log.Warn().Err(err).Time("tick", bar.Time).Msg("sizing failed, entry skipped")
		return
	}
	if sized.Size <= 0 {
		log.Warn().Time("tick", bar.Time).Msg("sized to zero, entry skipped")
		return
	}

	pos, err := led.Open(symbol, ledger.Buy, sized.Size, bar.Close, bar.Time,
		e.params.StopLossDistance, e.params.TakeProfitDistance)
	if err != nil {
		log.Warn().Err(err).Time("tick", bar.Time).Msg("open failed, entry skipped")
		return
	}

	log.Info().
		Str("position", pos.ID).
		Float64("size", pos.Size).
		Float64("entry", pos.EntryPrice).
		Time("tick", bar.Time).
		Msg("opened position")
}
