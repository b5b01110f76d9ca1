package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// ReadCSVSeries loads a bar series from a CSV file with the header
// time,open,high,low,close and RFC3339 timestamps. The loaded series is
// validated before it is returned.
func ReadCSVSeries(path, symbol string) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return Series{}, fmt.Errorf("open bars file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return Series{}, fmt.Errorf("read bars header: %w", err)
	}
	if len(header) < 5 || header[0] != "time" {
		return Series{}, fmt.Errorf("bars file %s: want header time,open,high,low,close", path)
	}

	s := Series{Symbol: symbol}
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Series{}, fmt.Errorf("bars file %s line %d: %w", path, line, err)
		}
		if len(rec) < 5 {
			return Series{}, fmt.Errorf("bars file %s line %d: want 5 fields, got %d", path, line, len(rec))
		}

		ts, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return Series{}, fmt.Errorf("bars file %s line %d: %w", path, line, err)
		}

		var vals [4]float64
		for i := 0; i < 4; i++ {
			v, err := strconv.ParseFloat(rec[i+1], 64)
			if err != nil {
				return Series{}, fmt.Errorf("bars file %s line %d: %w", path, line, err)
			}
			vals[i] = v
		}

		s.Bars = append(s.Bars, Bar{
			Time: ts.UTC(),
			Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3],
		})
	}

	if err := s.Validate(); err != nil {
		return Series{}, fmt.Errorf("bars file %s: %w", path, err)
	}
	return s, nil
}
