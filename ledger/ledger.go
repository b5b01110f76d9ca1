package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/quantfx/trader/internal/id"
)

// Ledger tracks the open positions and balance of one account. The account
// may be shared by several symbols; a mutex serializes all mutation so
// per-symbol engines can run in parallel against one Ledger.
type Ledger struct {
	mu      sync.Mutex
	balance float64
	open    []*Position
	maxHold time.Duration // 0 disables the time-limit rule
}

func New(initialBalance float64, maxHold time.Duration) *Ledger {
	return &Ledger{balance: initialBalance, maxHold: maxHold}
}

// SweepResult reports the closes performed by one MarkAndSweep or
// LiquidateAll call.
type SweepResult struct {
	Closed       []Closed
	BalanceDelta float64 // summed realized P&L applied to the balance
}

// Open appends a new position. It validates inputs but never consults
// signals or risk limits; those live with the caller.
func (l *Ledger) Open(symbol string, side Side, size, entryPrice float64, entryTime time.Time, slDist, tpDist float64) (Position, error) {
	if symbol == "" {
		return Position{}, fmt.Errorf("ledger: open: symbol is required")
	}
	if side != Buy && side != Sell {
		return Position{}, fmt.Errorf("ledger: open: bad side %d", side)
	}
	if size <= 0 {
		return Position{}, fmt.Errorf("ledger: open: size must be positive, got %v", size)
	}
	if entryPrice <= 0 {
		return Position{}, fmt.Errorf("ledger: open: entry price must be positive, got %v", entryPrice)
	}

	p := &Position{
		ID:                 id.New(),
		Symbol:             symbol,
		Side:               side,
		Size:               size,
		EntryPrice:         entryPrice,
		EntryTime:          entryTime,
		StopLossDistance:   slDist,
		TakeProfitDistance: tpDist,
	}

	l.mu.Lock()
	l.open = append(l.open, p)
	l.mu.Unlock()

	return *p, nil
}

// MarkAndSweep closes every open position on the symbol whose exit condition
// holds at the given price and time, realizes the P&L into the balance and
// keeps the rest. When several conditions fire on the same tick the hard
// risk limits win: StopLoss, then TakeProfit, then SignalExit, then
// TimeLimit. All closes fill at the current price.
//
// Calling it again with the same price and time is a no-op: closed
// positions are gone from the open set.
func (l *Ledger) MarkAndSweep(symbol string, price float64, now time.Time, exitSignal bool) SweepResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	var res SweepResult
	kept := l.open[:0]
	for _, p := range l.open {
		if p.Symbol != symbol {
			kept = append(kept, p)
			continue
		}

		var reason CloseReason
		switch {
		case p.stopHit(price):
			reason = ReasonStopLoss
		case p.takeHit(price):
			reason = ReasonTakeProfit
		case exitSignal:
			reason = ReasonSignalExit
		case p.expired(now, l.maxHold):
			reason = ReasonTimeLimit
		default:
			kept = append(kept, p)
			continue
		}
		res.add(l.closeLocked(p, price, now, reason))
	}
	l.open = kept
	return res
}

// LiquidateAll force-closes every open position at the latest known price
// for its symbol. Used on a drawdown breach and at end of run. Positions
// whose symbol has no price entry close flat at their entry price.
func (l *Ledger) LiquidateAll(prices map[string]float64, now time.Time, reason CloseReason) SweepResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	var res SweepResult
	for _, p := range l.open {
		price, ok := prices[p.Symbol]
		if !ok {
			price = p.EntryPrice
		}
		res.add(l.closeLocked(p, price, now, reason))
	}
	l.open = l.open[:0]
	return res
}

// closeLocked realizes one position into the balance. Caller holds l.mu.
func (l *Ledger) closeLocked(p *Position, price float64, now time.Time, reason CloseReason) Closed {
	pl := p.UnrealizedPL(price)
	l.balance += pl
	return Closed{
		Position:   *p,
		ExitPrice:  price,
		ExitTime:   now,
		RealizedPL: pl,
		Reason:     reason,
	}
}

func (r *SweepResult) add(c Closed) {
	r.Closed = append(r.Closed, c)
	r.BalanceDelta += c.RealizedPL
}

// Balance returns the realized account balance.
func (l *Ledger) Balance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Equity is balance plus the unrealized P&L of all open positions, marked
// at the latest known price per symbol. Positions without a price mark flat.
func (l *Ledger) Equity(prices map[string]float64) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	eq := l.balance
	for _, p := range l.open {
		if price, ok := prices[p.Symbol]; ok {
			eq += p.UnrealizedPL(price)
		}
	}
	return eq
}

// OpenPositions returns a snapshot copy of the open set.
func (l *Ledger) OpenPositions() []Position {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Position, len(l.open))
	for i, p := range l.open {
		out[i] = *p
	}
	return out
}

// OpenCount returns the number of open positions, optionally filtered by
// symbol ("" counts all).
func (l *Ledger) OpenCount(symbol string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if symbol == "" {
		return len(l.open)
	}
	n := 0
	for _, p := range l.open {
		if p.Symbol == symbol {
			n++
		}
	}
	return n
}
