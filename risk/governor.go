package risk

import "time"

// State of the Governor.
type State int

const (
	Active State = iota
	Halted // terminal for the run
)

func (s State) String() string {
	if s == Halted {
		return "Halted"
	}
	return "Active"
}

// Limits are the portfolio-level circuit breaker thresholds.
type Limits struct {
	InitialBalance   float64
	MaxDrawdownRatio float64 // equity below InitialBalance*ratio halts trading
	MaxDailyLosses   int     // losing closes allowed per UTC day before entries are vetoed
}

// Governor tracks drawdown and daily losses across ticks. It owns no
// positions; on a drawdown breach the caller liquidates the ledger.
// Not safe for concurrent use; the engine serializes access per account.
type Governor struct {
	limits    Limits
	state     State
	lossCount int
	day       time.Time // UTC midnight of the day lossCount belongs to
}

func NewGovernor(limits Limits) *Governor {
	return &Governor{limits: limits}
}

func (g *Governor) State() State { return g.state }

func (g *Governor) DailyLossCount() int { return g.lossCount }

// rollDay resets the daily loss counter when the UTC date advances.
func (g *Governor) rollDay(at time.Time) {
	day := at.UTC().Truncate(24 * time.Hour)
	if day.After(g.day) {
		g.day = day
		g.lossCount = 0
	}
}

// RecordClose feeds one realized close into the daily loss counter.
func (g *Governor) RecordClose(realizedPL float64, at time.Time) {
	g.rollDay(at)
	if realizedPL < 0 {
		g.lossCount++
	}
}

// SyncDailyLosses replaces the day's loss count with one recomputed from an
// external source, typically the broker's deal history since UTC midnight.
// Closes recorded afterwards on the same day still increment on top.
func (g *Governor) SyncDailyLosses(count int, at time.Time) {
	g.rollDay(at)
	if count < 0 {
		count = 0
	}
	g.lossCount = count
}

// CheckEquity transitions to Halted when equity breaches the drawdown floor.
// It reports whether the transition happened on this call, so the caller can
// liquidate exactly once. Halted is terminal: later recoveries don't revive
// the run.
func (g *Governor) CheckEquity(equity float64, at time.Time) (breached bool) {
	g.rollDay(at)
	if g.state == Halted {
		return false
	}
	if equity < g.limits.InitialBalance*g.limits.MaxDrawdownRatio {
		g.state = Halted
		return true
	}
	return false
}

// CanEnter reports whether a new entry is allowed right now: the run is not
// halted and the day's losing closes have not exceeded the limit. Exits and
// risk checks always run regardless.
func (g *Governor) CanEnter(at time.Time) bool {
	g.rollDay(at)
	return g.state == Active && g.lossCount <= g.limits.MaxDailyLosses
}
