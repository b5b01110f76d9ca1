// Package strategy evaluates entry and exit signals per tick. The evaluator
// is stateless across ticks; all position state lives in the ledger.
package strategy

import (
	"fmt"
	"time"

	"github.com/quantfx/trader/indicators"
	"github.com/quantfx/trader/market"
)

// Decision is the per-tick output of the evaluator.
type Decision int

const (
	Hold Decision = iota
	Enter
	ExitBySignal
)

func (d Decision) String() string {
	switch d {
	case Enter:
		return "Enter"
	case ExitBySignal:
		return "ExitBySignal"
	default:
		return "Hold"
	}
}

// Evaluator implements the two-indicator crossover policy over named "fast"
// and "slow" indicator values:
//
//	Enter (Buy)  iff close > fast && close < slow
//	ExitBySignal iff close < fast && close > slow
//
// Outside the trading window, or before both indicators are warmed up, the
// decision is Hold.
type Evaluator struct {
	fastName string
	slowName string
	window   market.Window
}

func NewEvaluator(fastName, slowName string, window market.Window) (*Evaluator, error) {
	if fastName == "" || slowName == "" {
		return nil, fmt.Errorf("strategy: fast and slow indicator names are required")
	}
	if fastName == slowName {
		return nil, fmt.Errorf("strategy: fast and slow must name different indicators")
	}
	if err := window.Validate(); err != nil {
		return nil, fmt.Errorf("strategy: %w", err)
	}
	return &Evaluator{fastName: fastName, slowName: slowName, window: window}, nil
}

// Evaluate decides for one tick.
func (e *Evaluator) Evaluate(close float64, snap indicators.Snapshot, at time.Time) Decision {
	if !e.window.Contains(at) {
		return Hold
	}

	fast, okFast := snap[e.fastName]
	slow, okSlow := snap[e.slowName]
	if !okFast || !okSlow {
		// Insufficient indicator history; degrade to Hold.
		return Hold
	}

	switch {
	case close > fast && close < slow:
		return Enter
	case close < fast && close > slow:
		return ExitBySignal
	default:
		return Hold
	}
}
