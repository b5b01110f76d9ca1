package journal

import (
	"bytes"
	"os"
	"text/template"
	"time"

	"github.com/quantfx/trader/engine"
)

// TradesFromRun converts a run's closed positions into storage records.
func TradesFromRun(res *engine.Result) []TradeRecord {
	out := make([]TradeRecord, 0, len(res.Trades))
	for _, c := range res.Trades {
		out = append(out, TradeRecord{
			TradeID:    c.ID,
			RunID:      res.RunID,
			Symbol:     c.Symbol,
			Side:       c.Side.String(),
			Size:       c.Size,
			EntryPrice: c.EntryPrice,
			ExitPrice:  c.ExitPrice,
			EntryTime:  c.EntryTime,
			ExitTime:   c.ExitTime,
			RealizedPL: c.RealizedPL,
			Reason:     string(c.Reason),
		})
	}
	return out
}

// EquityFromRun converts a run's equity curve into storage records.
func EquityFromRun(res *engine.Result) []EquityRecord {
	out := make([]EquityRecord, 0, len(res.EquityCurve))
	for _, p := range res.EquityCurve {
		out = append(out, EquityRecord{
			RunID:  res.RunID,
			Symbol: res.Symbol,
			Time:   p.Time,
			Equity: p.Equity,
			Price:  p.Price,
		})
	}
	return out
}

// Summarize computes the run summary: trade tally, net result and the
// derived performance figures.
func Summarize(res *engine.Result, timeframe string, startBalance float64) RunRecord {
	rec := RunRecord{
		RunID:        res.RunID,
		Created:      time.Now().UTC(),
		Symbol:       res.Symbol,
		Timeframe:    timeframe,
		Trades:       len(res.Trades),
		StartBalance: startBalance,
		EndBalance:   res.FinalBalance,
		NetPL:        res.FinalBalance - startBalance,
		Halted:       res.Halted,
	}

	if len(res.EquityCurve) > 0 {
		rec.Start = res.EquityCurve[0].Time
		rec.End = res.EquityCurve[len(res.EquityCurve)-1].Time
	}

	var grossProfit, grossLoss float64
	for _, c := range res.Trades {
		if c.RealizedPL >= 0 {
			rec.Wins++
			grossProfit += c.RealizedPL
		} else {
			rec.Losses++
			grossLoss += -c.RealizedPL
		}
	}

	if rec.Trades > 0 {
		rec.WinRate = float64(rec.Wins) / float64(rec.Trades)
	}
	if grossLoss > 0 {
		rec.ProfitFactor = grossProfit / grossLoss
	}
	if startBalance > 0 {
		rec.ReturnPct = rec.NetPL / startBalance * 100
	}
	return rec
}

var runOrgFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
}

// WriteOrg renders the run summary as an Org-mode block at path, handy for
// keeping a research log of runs.
func (r *RunRecord) WriteOrg(path string) error {
	t, err := template.New("run").Funcs(runOrgFuncs).Parse(runOrgTemplate)
	if err != nil {
		return err
	}

	buf := new(bytes.Buffer)
	if err := t.Execute(buf, r); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

const runOrgTemplate = `
* BACKTEST: {{.Symbol}} {{.Timeframe}}
:PROPERTIES:
:RUN_ID:      {{.RunID}}
:SYMBOL:      {{.Symbol}}
:TIMEFRAME:   {{.Timeframe}}
:START_DATE:  {{.Start.Format "2006-01-02"}}
:END_DATE:    {{.End.Format "2006-01-02"}}
:START_BAL:   {{printf "%.2f" .StartBalance}}
:END_BAL:     {{printf "%.2f" .EndBalance}}
:NET_PL:      {{printf "%.2f" .NetPL}}
:RETURN_PCT:  {{printf "%.2f" .ReturnPct}}
:TRADES:      {{.Trades}}
:WINS:        {{.Wins}}
:LOSSES:      {{.Losses}}
:WIN_RATE:    {{printf "%.2f" (mul100 .WinRate)}}
:PROFIT_FAC:  {{if ne .ProfitFactor 0.0}}{{printf "%.2f" .ProfitFactor}}{{else}}n/a{{end}}
:HALTED:      {{.Halted}}
:CREATED:     [{{.Created.Format "2006-01-02 Mon 15:04"}}]
:END:

** Performance Summary
- Net P/L:       *{{printf "%.2f" .NetPL}}*
- Return:        *{{printf "%.2f" .ReturnPct}}%*
- Win Rate:      *{{printf "%.2f" (mul100 .WinRate)}}%*
- Profit Factor: *{{if ne .ProfitFactor 0.0}}{{printf "%.2f" .ProfitFactor}}{{else}}n/a{{end}}*

** Trade Distribution
| Outcome | Count |
|---------+-------|
| Wins    | {{.Wins}} |
| Losses  | {{.Losses}} |
| Total   | {{.Trades}} |
`
