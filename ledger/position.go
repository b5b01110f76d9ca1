// Package ledger owns open positions and the account balance: opening,
// mark-to-market, rule-based closes and forced liquidation.
package ledger

import (
	"time"
)

// Side of a position.
type Side int8

const (
	Buy  Side = +1
	Sell Side = -1
)

func (s Side) String() string {
	if s == Sell {
		return "Sell"
	}
	return "Buy"
}

// CloseReason records why a position was closed.
type CloseReason string

const (
	ReasonStopLoss   CloseReason = "StopLoss"
	ReasonTakeProfit CloseReason = "TakeProfit"
	ReasonSignalExit CloseReason = "SignalExit"
	ReasonTimeLimit  CloseReason = "TimeLimit"
	ReasonDrawdown   CloseReason = "DrawdownLiquidation"
	ReasonEndOfRun   CloseReason = "EndOfRun"
)

// Position is one open trade. Size-preserving mark-to-market only; partial
// closes are not supported.
type Position struct {
	ID                 string
	Symbol             string
	Side               Side
	Size               float64
	EntryPrice         float64
	EntryTime          time.Time
	StopLossDistance   float64 // price units below (Buy) / above (Sell) entry
	TakeProfitDistance float64 // price units above (Buy) / below (Sell) entry
}

// UnrealizedPL marks the position against the given price.
func (p *Position) UnrealizedPL(price float64) float64 {
	return float64(p.Side) * (price - p.EntryPrice) * p.Size
}

func (p *Position) stopHit(price float64) bool {
	if p.StopLossDistance <= 0 {
		return false
	}
	if p.Side == Buy {
		return price <= p.EntryPrice-p.StopLossDistance
	}
	return price >= p.EntryPrice+p.StopLossDistance
}

func (p *Position) takeHit(price float64) bool {
	if p.TakeProfitDistance <= 0 {
		return false
	}
	if p.Side == Buy {
		return price >= p.EntryPrice+p.TakeProfitDistance
	}
	return price <= p.EntryPrice-p.TakeProfitDistance
}

func (p *Position) expired(now time.Time, maxHold time.Duration) bool {
	return maxHold > 0 && now.Sub(p.EntryTime) >= maxHold
}

// Closed is a position after its close, with the realized outcome.
type Closed struct {
	Position
	ExitPrice  float64
	ExitTime   time.Time
	RealizedPL float64
	Reason     CloseReason
}
