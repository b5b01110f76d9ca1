// Package market holds the price-series primitives the engine consumes.
package market

import (
	"fmt"
	"time"
)

// Bar represents one OHLC price bar for a single instrument and timeframe step.
type Bar struct {
	Time  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// Series is a time-ordered sequence of bars for one instrument.
// Timestamps are strictly increasing; Validate enforces that.
type Series struct {
	Symbol string
	Bars   []Bar
}

// Closes returns the close prices of the first n bars. It is the causal
// prefix handed to indicator functions: bars after index n-1 never leak in.
func (s *Series) Closes(n int) []float64 {
	if n > len(s.Bars) {
		n = len(s.Bars)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = s.Bars[i].Close
	}
	return out
}

// Validate checks that the series is non-empty with strictly increasing
// timestamps and sane OHLC values.
func (s *Series) Validate() error {
	if s.Symbol == "" {
		return fmt.Errorf("series: symbol is required")
	}
	if len(s.Bars) == 0 {
		return fmt.Errorf("series %s: no bars", s.Symbol)
	}

	var prev time.Time
	for i, b := range s.Bars {
		if b.Time.IsZero() {
			return fmt.Errorf("series %s: bar %d has zero time", s.Symbol, i)
		}
		if i > 0 && !b.Time.After(prev) {
			return fmt.Errorf("series %s: bar %d time %s not after %s",
				s.Symbol, i, b.Time.Format(time.RFC3339), prev.Format(time.RFC3339))
		}
		if b.Low > b.High {
			return fmt.Errorf("series %s: bar %d low %v above high %v", s.Symbol, i, b.Low, b.High)
		}
		prev = b.Time
	}
	return nil
}
