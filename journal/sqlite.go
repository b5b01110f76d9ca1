package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, run_id, symbol, side, size, entry_price, exit_price, entry_time, exit_time, realized_pl, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.RunID, t.Symbol, t.Side, t.Size,
		t.EntryPrice, t.ExitPrice, t.EntryTime, t.ExitTime, t.RealizedPL, t.Reason,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquityRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(run_id, symbol, time, equity, price)
		VALUES (?, ?, ?, ?, ?)`,
		e.RunID, e.Symbol, e.Time, e.Equity, e.Price,
	)
	return err
}

func (j *SQLite) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, created, symbol, timeframe, start_time, end_time, trades, wins, losses,
		 start_balance, end_balance, net_pl, return_pct, win_rate, profit_factor, halted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Symbol, r.Timeframe, r.Start, r.End,
		r.Trades, r.Wins, r.Losses,
		r.StartBalance, r.EndBalance, r.NetPL, r.ReturnPct, r.WinRate, r.ProfitFactor,
		r.Halted,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
