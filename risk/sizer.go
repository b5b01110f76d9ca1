// Package risk provides percentage-risk position sizing and the
// portfolio-level circuit breaker that can halt a run.
package risk

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRiskInput is returned when sizing inputs are non-positive. The
// engine treats it as a skipped entry, not a fatal error.
var ErrInvalidRiskInput = errors.New("risk: invalid sizing input")

// Inputs for position sizing. PipValue is the monetary value of one price
// unit of stop distance, in the account currency, as supplied by the
// external FX-conversion collaborator.
type Inputs struct {
	Balance          float64
	RiskPercent      float64 // per-trade % of balance risked, (0, 100]
	PipValue         float64
	StopLossDistance float64 // in price units
}

// Result of a sizing calculation.
type Result struct {
	Size       float64 // lots, rounded to 2 decimal places
	RiskAmount float64 // account currency put at risk if the stop is hit
}

// Calculate sizes a position so that a stop-loss hit loses RiskPercent of
// the balance: size = (balance * riskPercent/100) / (pipValue * stopDistance).
func Calculate(in Inputs) (Result, error) {
	if in.Balance <= 0 {
		return Result{}, fmt.Errorf("%w: balance %v", ErrInvalidRiskInput, in.Balance)
	}
	if in.RiskPercent <= 0 || in.RiskPercent > 100 {
		return Result{}, fmt.Errorf("%w: risk percent %v", ErrInvalidRiskInput, in.RiskPercent)
	}
	if in.PipValue <= 0 {
		return Result{}, fmt.Errorf("%w: pip value %v", ErrInvalidRiskInput, in.PipValue)
	}
	if in.StopLossDistance <= 0 {
		return Result{}, fmt.Errorf("%w: stop distance %v", ErrInvalidRiskInput, in.StopLossDistance)
	}

	riskAmt := in.Balance * in.RiskPercent / 100
	size := math.Round(riskAmt/(in.PipValue*in.StopLossDistance)*100) / 100

	return Result{Size: size, RiskAmount: riskAmt}, nil
}
