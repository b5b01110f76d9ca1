// Package journal persists trades, equity curves and run summaries to CSV
// files or a SQLite database.
package journal

import "time"

// TradeRecord is one closed position as written to storage.
type TradeRecord struct {
	TradeID    string
	RunID      string
	Symbol     string
	Side       string
	Size       float64
	EntryPrice float64
	ExitPrice  float64
	EntryTime  time.Time
	ExitTime   time.Time
	RealizedPL float64
	Reason     string
}

// EquityRecord is one equity-curve sample, with the price that produced it.
type EquityRecord struct {
	RunID  string
	Symbol string
	Time   time.Time
	Equity float64
	Price  float64
}

// RunRecord summarizes one backtest run.
type RunRecord struct {
	RunID     string
	Created   time.Time
	Symbol    string
	Timeframe string

	Start time.Time
	End   time.Time

	Trades int
	Wins   int
	Losses int

	StartBalance float64
	EndBalance   float64

	NetPL        float64
	ReturnPct    float64
	WinRate      float64
	ProfitFactor float64

	Halted bool
}

type Journal interface {
	RecordTrade(TradeRecord) error
	RecordEquity(EquityRecord) error
	Close() error
}
