package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfx/trader/broker"
	"github.com/quantfx/trader/ledger"
	"github.com/quantfx/trader/market"
	"github.com/quantfx/trader/risk"
	"github.com/quantfx/trader/strategy"
)

// ErrHalted is returned once the drawdown breaker has tripped; the caller
// should stop scheduling further ticks.
var ErrHalted = errors.New("engine: trading halted by drawdown breaker")

// LiveDeps are the broker surfaces one live tick needs.
type LiveDeps struct {
	Data    broker.MarketDataSource
	Orders  broker.OrderSink
	Account broker.AccountInfoSource
	Pips    broker.PipValueProvider
}

// DepsFromSession wires every surface to one connected session.
func DepsFromSession(s broker.Session) LiveDeps {
	return LiveDeps{Data: s, Orders: s, Account: s, Pips: s}
}

// LiveTick advances one decision cycle for a symbol: it fetches the most
// recent completed bar, recomputes the daily loss count from the broker's
// deal history, closes broker positions that exceeded the holding limit,
// evaluates the signal, applies the circuit breaker against the
// broker-reported balance, and submits at most one entry. Failed order
// submissions leave all engine state unchanged.
//
// The engine keeps governor state and the last processed bar time between
// calls; an external scheduler invokes this once per timeframe step.
func (e *Engine) LiveTick(ctx context.Context, symbol, timeframe string, deps LiveDeps) error {
	if e.liveGov.State() == risk.Halted {
		return ErrHalted
	}

	now := time.Now().UTC()
	log := e.log.With().Str("symbol", symbol).Logger()

	tfSec, err := market.TimeframeSeconds(timeframe)
	if err != nil {
		return err
	}

	// Enough history to warm up every indicator, plus slack for gaps.
	// Warmup, not MaxPeriod: DEMA needs 2*period-1 closes.
	lookback := e.provider.Warmup() + 5
	from := now.Add(-time.Duration(lookback) * time.Duration(tfSec) * time.Second)

	series, err := deps.Data.FetchBars(ctx, symbol, timeframe, from, now)
	if err != nil {
		return err
	}

	bars := series.Bars
	if len(bars) > 0 && now.Sub(bars[len(bars)-1].Time) < time.Duration(tfSec)*time.Second {
		// The newest bar is still forming; decide on completed data only.
		bars = bars[:len(bars)-1]
	}
	if len(bars) == 0 {
		return fmt.Errorf("%w: no completed bars for %s", broker.ErrMarketDataUnavailable, symbol)
	}

	bar := bars[len(bars)-1]
	if !bar.Time.After(e.lastTick) {
		log.Debug().Time("bar", bar.Time).Msg("bar already processed")
		return nil
	}
	e.lastTick = bar.Time

	// Stops and targets close on the broker without the engine seeing
	// them, so the daily loss count is recomputed from the broker's deal
	// history since UTC midnight rather than trusting local bookkeeping.
	closedToday, err := deps.Account.ClosedTrades(ctx, now.Truncate(24*time.Hour))
	if err != nil {
		return err
	}
	losses := 0
	for _, c := range closedToday {
		if c.RealizedPL < 0 {
			losses++
		}
	}
	e.liveGov.SyncDailyLosses(losses, now)

	// Pre-tick sweep: the holding-time limit applies to broker-reported
	// positions even when no signal fires.
	if e.params.MaxHoldingDuration > 0 {
		open, err := deps.Account.OpenPositions(ctx)
		if err != nil {
			return err
		}
		for _, p := range open {
			if p.Symbol == symbol && now.Sub(p.EntryTime) >= e.params.MaxHoldingDuration {
				e.submitExit(ctx, log, deps, p, ledger.ReasonTimeLimit, now)
			}
		}
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	snap, err := e.provider.At(closes)
	if err != nil {
		return err
	}

	decision := e.eval.Evaluate(bar.Close, snap, bar.Time)

	if decision == strategy.ExitBySignal {
		open, err := deps.Account.OpenPositions(ctx)
		if err != nil {
			return err
		}
		for _, p := range open {
			if p.Symbol == symbol {
				e.submitExit(ctx, log, deps, p, ledger.ReasonSignalExit, now)
			}
		}
	}

	// The breaker runs against the broker's balance; a breach liquidates
	// every position, not just this symbol's.
	balance, err := deps.Account.CurrentBalance(ctx)
	if err != nil {
		return err
	}
	if e.liveGov.CheckEquity(balance, now) {
		log.Warn().Float64("balance", balance).Msg("maximum drawdown reached, liquidating")
		open, err := deps.Account.OpenPositions(ctx)
		if err != nil {
			return err
		}
		for _, p := range open {
			e.submitExit(ctx, log, deps, p, ledger.ReasonDrawdown, now)
		}
		return ErrHalted
	}

	if decision == strategy.Enter && e.liveGov.CanEnter(now) {
		e.submitEntry(ctx, log, deps, symbol, bar.Close, balance)
	}
	return nil
}

func (e *Engine) submitEntry(ctx context.Context, log zerolog.Logger, deps LiveDeps, symbol string, price, balance float64) {
	pip, err := deps.Pips.PipValue(ctx, symbol, e.params.AccountCurrency)
	if err != nil {
		log.Warn().Err(err).Msg("pip value unavailable, entry skipped")
		return
	}

	sized, err := risk.Calculate(risk.Inputs{
		Balance:          balance,
		RiskPercent:      e.params.RiskPercent,
		PipValue:         pip,
		StopLossDistance: e.params.StopLossDistance,
	})
	if err != nil || sized.Size <= 0 {
		log.Warn().Err(err).Msg("sizing failed, entry skipped")
		return
	}

	stop, take := e.stopTakePrices(price)
	fill, err := deps.Orders.SubmitEntry(ctx, broker.EntryRequest{
		Symbol:          symbol,
		Side:            ledger.Buy,
		Size:            sized.Size,
		StopLossPrice:   stop,
		TakeProfitPrice: take,
	})
	if err != nil {
		// No phantom position: nothing was recorded before the submit.
		log.Warn().Err(err).Msg("entry rejected")
		return
	}

	log.Info().
		Str("order", fill.OrderID).
		Float64("size", sized.Size).
		Float64("fill", fill.FilledPrice).
		Msg("entry submitted")
}

func (e *Engine) submitExit(ctx context.Context, log zerolog.Logger, deps LiveDeps, p ledger.Position, reason ledger.CloseReason, now time.Time) {
	fill, err := deps.Orders.SubmitExit(ctx, p.Symbol, p.ID)
	if err != nil {
		log.Warn().Err(err).Str("position", p.ID).Msg("exit rejected")
		return
	}

	realized := p.UnrealizedPL(fill.FilledPrice)
	e.liveGov.RecordClose(realized, now)

	log.Info().
		Str("position", p.ID).
		Str("reason", string(reason)).
		Float64("pl", realized).
		Msg("exit submitted")
}
