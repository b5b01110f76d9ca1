package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	_, path := newTestSQLite(t)

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('trades','equity','runs')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["trades"])
	assert.True(t, found["equity"])
	assert.True(t, found["runs"])
}

func TestSQLiteTradeRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	entry := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	exit := time.Date(2024, 1, 2, 4, 5, 6, 0, time.UTC)

	rec := TradeRecord{
		TradeID:    "T1",
		RunID:      "R1",
		Symbol:     "GBP_USD",
		Side:       "Buy",
		Size:       10,
		EntryPrice: 1.2,
		ExitPrice:  1.199,
		EntryTime:  entry,
		ExitTime:   exit,
		RealizedPL: -0.011,
		Reason:     "StopLoss",
	}
	require.NoError(t, j.RecordTrade(rec))

	got, err := j.GetTrade("T1")
	require.NoError(t, err)

	assert.Equal(t, rec.TradeID, got.TradeID)
	assert.Equal(t, rec.RunID, got.RunID)
	assert.Equal(t, rec.Symbol, got.Symbol)
	assert.Equal(t, rec.Side, got.Side)
	assert.InDelta(t, rec.Size, got.Size, 1e-9)
	assert.InDelta(t, rec.EntryPrice, got.EntryPrice, 1e-9)
	assert.InDelta(t, rec.ExitPrice, got.ExitPrice, 1e-9)
	assert.True(t, got.EntryTime.Equal(entry))
	assert.True(t, got.ExitTime.Equal(exit))
	assert.InDelta(t, rec.RealizedPL, got.RealizedPL, 1e-9)
	assert.Equal(t, rec.Reason, got.Reason)

	_, err = j.GetTrade("nope")
	assert.Error(t, err)
}

func TestSQLiteListByRun(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	t0 := time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC)
	for i, id := range []string{"T2", "T1"} {
		require.NoError(t, j.RecordTrade(TradeRecord{
			TradeID:  id,
			RunID:    "R1",
			Symbol:   "GBP_USD",
			Side:     "Buy",
			ExitTime: t0.Add(time.Duration(1-i) * time.Hour),
		}))
	}
	require.NoError(t, j.RecordTrade(TradeRecord{TradeID: "T3", RunID: "R2", Symbol: "EUR_USD", Side: "Buy"}))

	trades, err := j.ListTradesByRun("R1")
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "T1", trades[0].TradeID, "ordered by exit time")
	assert.Equal(t, "T2", trades[1].TradeID)

	require.NoError(t, j.RecordEquity(EquityRecord{RunID: "R1", Symbol: "GBP_USD", Time: t0, Equity: 1000, Price: 1.2}))
	require.NoError(t, j.RecordEquity(EquityRecord{RunID: "R2", Symbol: "EUR_USD", Time: t0, Equity: 500, Price: 1.1}))

	eq, err := j.ListEquityByRun("R1")
	require.NoError(t, err)
	require.Len(t, eq, 1)
	assert.InDelta(t, 1000, eq[0].Equity, 1e-9)
}

func TestSQLiteRunRoundTrip(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)

	rec := RunRecord{
		RunID:        "R1",
		Created:      time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC),
		Symbol:       "GBP_USD",
		Timeframe:    "M15",
		Start:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:          time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Trades:       10,
		Wins:         6,
		Losses:       4,
		StartBalance: 1000,
		EndBalance:   1040,
		NetPL:        40,
		ReturnPct:    4,
		WinRate:      0.6,
		ProfitFactor: 1.8,
		Halted:       false,
	}
	require.NoError(t, j.RecordRun(rec))

	got, err := j.GetRun("R1")
	require.NoError(t, err)

	assert.Equal(t, rec.RunID, got.RunID)
	assert.Equal(t, rec.Symbol, got.Symbol)
	assert.Equal(t, rec.Timeframe, got.Timeframe)
	assert.Equal(t, rec.Trades, got.Trades)
	assert.Equal(t, rec.Wins, got.Wins)
	assert.Equal(t, rec.Losses, got.Losses)
	assert.InDelta(t, rec.NetPL, got.NetPL, 1e-9)
	assert.InDelta(t, rec.WinRate, got.WinRate, 1e-9)
	assert.False(t, got.Halted)
}
