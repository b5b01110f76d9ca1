// Package indicators provides causal technical indicators over close-price
// series. Every function maps a price prefix to the indicator value at the
// prefix's last index, using only data up to and including that index.
package indicators

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is returned when the prefix is shorter than the
// indicator's warmup. Callers typically degrade to a Hold decision.
var ErrInsufficientData = errors.New("indicators: insufficient data")

// Kind identifies an indicator formula.
type Kind string

const (
	SMA         Kind = "SMA"
	EMA         Kind = "EMA"
	WMA         Kind = "WMA"
	LinearReg   Kind = "LinearReg"
	TRIMA       Kind = "TRIMA"
	DEMA        Kind = "DEMA"
	HTTrendline Kind = "HT_Trendline"
	TSF         Kind = "TSF"
)

// Func computes one indicator value from a close-price prefix. Deterministic
// and side-effect free; re-running on a longer series must not change the
// value at any earlier index.
type Func func(closes []float64, period int) (float64, error)

// ForKind returns the compute function for a kind.
func ForKind(kind Kind) (Func, error) {
	switch kind {
	case SMA:
		return SimpleMA, nil
	case EMA:
		return ExponentialMA, nil
	case WMA:
		return WeightedMA, nil
	case LinearReg:
		return LinearRegression, nil
	case TRIMA:
		return TriangularMA, nil
	case DEMA:
		return DoubleEMA, nil
	case HTTrendline:
		return Trendline, nil
	case TSF:
		return TimeSeriesForecast, nil
	default:
		return nil, fmt.Errorf("unknown indicator kind %q", kind)
	}
}

func checkArgs(closes []float64, period int) error {
	if period <= 0 {
		return fmt.Errorf("period must be positive, got %d", period)
	}
	if len(closes) < period {
		return fmt.Errorf("%w: need %d closes, got %d", ErrInsufficientData, period, len(closes))
	}
	return nil
}
