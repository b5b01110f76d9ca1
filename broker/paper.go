package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/quantfx/trader/internal/id"
	"github.com/quantfx/trader/ledger"
	"github.com/quantfx/trader/market"
)

// Paper is an in-memory broker session. It fills every order instantly at
// the last loaded price and keeps positions and balance locally, which makes
// it the reference OrderSink/AccountInfoSource for live-mode tests and dry
// runs.
type Paper struct {
	mu        sync.Mutex
	connected bool
	balance   float64
	positions map[string]*ledger.Position
	closed    []ledger.Closed
	series    map[string]market.Series
	last      map[string]float64
	pips      map[string]float64

	failNext error // injected failure for the next order call
}

func NewPaper(balance float64) *Paper {
	return &Paper{
		balance:   balance,
		positions: make(map[string]*ledger.Position),
		series:    make(map[string]market.Series),
		last:      make(map[string]float64),
		pips:      make(map[string]float64),
	}
}

// LoadSeries preloads bar history served by FetchBars/FetchLatestBar and
// marks the symbol's last price at the final bar's close.
func (p *Paper) LoadSeries(s market.Series) error {
	if err := s.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.series[s.Symbol] = s
	p.last[s.Symbol] = s.Bars[len(s.Bars)-1].Close
	return nil
}

// SetPrice moves the symbol's fill price.
func (p *Paper) SetPrice(symbol string, price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last[symbol] = price
}

// SetPipValue fixes the pip value returned for a symbol.
func (p *Paper) SetPipValue(symbol string, v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pips[symbol] = v
}

// AddPosition injects a broker-side position directly, bypassing order
// flow. Useful for reconciliation scenarios, e.g. positions opened before
// the engine started.
func (p *Paper) AddPosition(pos ledger.Position) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pos.ID == "" {
		pos.ID = id.New()
	}
	cp := pos
	p.positions[cp.ID] = &cp
}

// AddClosedTrade injects a broker-side closed trade directly, e.g. a
// stop-out the broker executed on its own.
func (p *Paper) AddClosedTrade(c ledger.Closed) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = append(p.closed, c)
}

// FailNextOrder makes the next SubmitEntry or SubmitExit fail with err.
func (p *Paper) FailNextOrder(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failNext = err
}

func (p *Paper) Connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = true
	return nil
}

func (p *Paper) Disconnect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = false
	return nil
}

func (p *Paper) checkConnectedLocked() error {
	if !p.connected {
		return fmt.Errorf("%w: paper session not connected", ErrMarketDataUnavailable)
	}
	return nil
}

func (p *Paper) FetchBars(ctx context.Context, symbol, timeframe string, from, to time.Time) (market.Series, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkConnectedLocked(); err != nil {
		return market.Series{}, err
	}

	s, ok := p.series[symbol]
	if !ok {
		return market.Series{}, fmt.Errorf("%w: no series for %s", ErrMarketDataUnavailable, symbol)
	}

	out := market.Series{Symbol: symbol}
	for _, b := range s.Bars {
		if b.Time.Before(from) || b.Time.After(to) {
			continue
		}
		out.Bars = append(out.Bars, b)
	}
	return out, nil
}

func (p *Paper) FetchLatestBar(ctx context.Context, symbol, timeframe string) (market.Bar, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkConnectedLocked(); err != nil {
		return market.Bar{}, err
	}

	s, ok := p.series[symbol]
	if !ok || len(s.Bars) == 0 {
		return market.Bar{}, fmt.Errorf("%w: no series for %s", ErrMarketDataUnavailable, symbol)
	}
	return s.Bars[len(s.Bars)-1], nil
}

func (p *Paper) SubmitEntry(ctx context.Context, req EntryRequest) (OrderResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failNext != nil {
		err := p.failNext
		p.failNext = nil
		return OrderResult{}, err
	}
	if req.Size <= 0 {
		return OrderResult{}, fmt.Errorf("%w: non-positive size %v", ErrOrderRejected, req.Size)
	}

	price, ok := p.last[req.Symbol]
	if !ok {
		return OrderResult{}, fmt.Errorf("%w: no price for %s", ErrOrderRejected, req.Symbol)
	}

	var slDist, tpDist float64
	if req.StopLossPrice > 0 {
		slDist = float64(req.Side) * (price - req.StopLossPrice)
	}
	if req.TakeProfitPrice > 0 {
		tpDist = float64(req.Side) * (req.TakeProfitPrice - price)
	}

	pos := &ledger.Position{
		ID:                 id.New(),
		Symbol:             req.Symbol,
		Side:               req.Side,
		Size:               req.Size,
		EntryPrice:         price,
		EntryTime:          time.Now().UTC(),
		StopLossDistance:   slDist,
		TakeProfitDistance: tpDist,
	}
	p.positions[pos.ID] = pos

	return OrderResult{OrderID: pos.ID, FilledPrice: price}, nil
}

func (p *Paper) SubmitExit(ctx context.Context, symbol, positionID string) (OrderResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failNext != nil {
		err := p.failNext
		p.failNext = nil
		return OrderResult{}, err
	}

	pos, ok := p.positions[positionID]
	if !ok || pos.Symbol != symbol {
		return OrderResult{}, fmt.Errorf("%w: position %q not found for %s", ErrOrderRejected, positionID, symbol)
	}

	price, ok := p.last[symbol]
	if !ok {
		return OrderResult{}, fmt.Errorf("%w: no price for %s", ErrOrderRejected, symbol)
	}

	pl := pos.UnrealizedPL(price)
	p.balance += pl
	delete(p.positions, positionID)
	p.closed = append(p.closed, ledger.Closed{
		Position:   *pos,
		ExitPrice:  price,
		ExitTime:   time.Now().UTC(),
		RealizedPL: pl,
	})

	return OrderResult{OrderID: positionID, FilledPrice: price}, nil
}

func (p *Paper) CurrentBalance(ctx context.Context) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.balance, nil
}

func (p *Paper) OpenPositions(ctx context.Context) ([]ledger.Position, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]ledger.Position, 0, len(p.positions))
	for _, pos := range p.positions {
		out = append(out, *pos)
	}
	return out, nil
}

func (p *Paper) ClosedTrades(ctx context.Context, since time.Time) ([]ledger.Closed, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []ledger.Closed
	for _, c := range p.closed {
		if c.ExitTime.Before(since) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (p *Paper) PipValue(ctx context.Context, symbol, accountCurrency string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	v, ok := p.pips[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: no pip value for %s/%s", ErrMarketDataUnavailable, symbol, accountCurrency)
	}
	return v, nil
}

var _ Session = (*Paper)(nil)
