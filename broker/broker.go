// Package broker defines the contracts the engine needs from a broker:
// market data, order submission, account state and pip-value conversion.
// Implementations live outside the core; the paper broker in this package
// backs tests and dry runs.
package broker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quantfx/trader/ledger"
	"github.com/quantfx/trader/market"
)

var (
	// ErrMarketDataUnavailable means bars or rates could not be fetched.
	ErrMarketDataUnavailable = errors.New("broker: market data unavailable")

	// ErrOrderRejected means the broker refused a submission. The engine
	// must leave its own state untouched when it sees this.
	ErrOrderRejected = errors.New("broker: order rejected")
)

// MarketDataSource supplies OHLC history and the latest completed bar.
type MarketDataSource interface {
	FetchBars(ctx context.Context, symbol, timeframe string, from, to time.Time) (market.Series, error)
	FetchLatestBar(ctx context.Context, symbol, timeframe string) (market.Bar, error)
}

// EntryRequest asks the broker to open a position at market.
type EntryRequest struct {
	Symbol          string
	Side            ledger.Side
	Size            float64
	StopLossPrice   float64 // absolute price, 0 disables
	TakeProfitPrice float64 // absolute price, 0 disables
}

// OrderResult reports a fill.
type OrderResult struct {
	OrderID     string
	FilledPrice float64
}

// OrderSink executes entries and exits against a real account (live mode
// only; backtests settle in the in-memory ledger).
type OrderSink interface {
	SubmitEntry(ctx context.Context, req EntryRequest) (OrderResult, error)
	SubmitExit(ctx context.Context, symbol, positionID string) (OrderResult, error)
}

// AccountInfoSource reports broker-side account state. Live mode reconciles
// against this instead of an in-memory ledger. ClosedTrades is the broker's
// deal history; the engine derives the daily loss count from it because
// stop and target orders close on the broker without the engine's
// involvement.
type AccountInfoSource interface {
	CurrentBalance(ctx context.Context) (float64, error)
	OpenPositions(ctx context.Context) ([]ledger.Position, error)
	ClosedTrades(ctx context.Context, since time.Time) ([]ledger.Closed, error)
}

// PipValueProvider converts one price unit of a symbol into the account
// currency, via an external FX rate lookup.
type PipValueProvider interface {
	PipValue(ctx context.Context, symbol, accountCurrency string) (float64, error)
}

// StaticPips is a fixed symbol-to-pip-value table, the PipValueProvider
// used by backtests where the conversion rate comes from config.
type StaticPips map[string]float64

func (s StaticPips) PipValue(ctx context.Context, symbol, accountCurrency string) (float64, error) {
	v, ok := s[symbol]
	if !ok || v <= 0 {
		return 0, fmt.Errorf("%w: no pip value for %s/%s", ErrMarketDataUnavailable, symbol, accountCurrency)
	}
	return v, nil
}

// Session bundles the collaborator surfaces behind one connected broker
// session with an explicit lifecycle.
type Session interface {
	Connect(ctx context.Context) error
	Disconnect() error

	MarketDataSource
	OrderSink
	AccountInfoSource
	PipValueProvider
}

// WithSession connects, runs fn, and guarantees the disconnect, so a unit
// of work cannot leak a session.
func WithSession(ctx context.Context, s Session, fn func(Session) error) error {
	if err := s.Connect(ctx); err != nil {
		return err
	}
	defer s.Disconnect()
	return fn(s)
}
