package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleMA(t *testing.T) {
	t.Parallel()

	closes := []float64{1, 2, 3, 4, 5}

	v, err := SimpleMA(closes, 3)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, v, 1e-9)

	v, err = SimpleMA(closes, 5)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, v, 1e-9)

	_, err = SimpleMA(closes, 6)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = SimpleMA(closes, 0)
	assert.Error(t, err)
}

func TestExponentialMA(t *testing.T) {
	t.Parallel()

	// Seeded with SMA(1,2,3)=2, then multiplier 0.5:
	// ema(4) = (4-2)*0.5+2 = 3; ema(5) = (5-3)*0.5+3 = 4
	v, err := ExponentialMA([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, v, 1e-9)

	_, err = ExponentialMA([]float64{1, 2}, 3)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestWeightedMA(t *testing.T) {
	t.Parallel()

	// (3*1 + 4*2 + 5*3) / 6 = 26/6
	v, err := WeightedMA([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	assert.InDelta(t, 26.0/6.0, v, 1e-9)
}

func TestTriangularMA(t *testing.T) {
	t.Parallel()

	// Odd period 5 weights 1,2,3,2,1: (1+4+9+8+5)/9 = 3
	v, err := TriangularMA([]float64{1, 2, 3, 4, 5}, 5)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, v, 1e-9)

	// Even period 4 weights 1,2,2,1: (2+6+8+5)/6 = 3.5
	v, err = TriangularMA([]float64{1, 2, 3, 4, 5}, 4)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, v, 1e-9)
}

func TestDoubleEMA(t *testing.T) {
	t.Parallel()

	// On a linear ramp DEMA tracks close to the last value.
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	v, err := DoubleEMA(closes, 5)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, v, 0.5)

	_, err = DoubleEMA(closes[:5], 5) // needs 2*5-1 = 9
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestLinearRegressionAndTSF(t *testing.T) {
	t.Parallel()

	// Perfect line y = 2x + 1 over the lookback.
	closes := []float64{1, 3, 5, 7, 9}

	v, err := LinearRegression(closes, 5)
	require.NoError(t, err)
	assert.InDelta(t, 9.0, v, 1e-9)

	v, err = TimeSeriesForecast(closes, 5)
	require.NoError(t, err)
	assert.InDelta(t, 11.0, v, 1e-9)
}

func TestTrendlineFollowsFlatSeries(t *testing.T) {
	t.Parallel()

	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 1.25
	}
	v, err := Trendline(closes, 10)
	require.NoError(t, err)
	assert.InDelta(t, 1.25, v, 1e-6)
}

// Appending future bars must not change the value computed at an earlier
// index: indicators are causal.
func TestNoLookAhead(t *testing.T) {
	t.Parallel()

	closes := []float64{1.10, 1.12, 1.11, 1.15, 1.13, 1.18, 1.16, 1.20, 1.17, 1.22,
		1.19, 1.25, 1.21, 1.28, 1.24, 1.30}

	for _, kind := range []Kind{SMA, EMA, WMA, LinearReg, TRIMA, DEMA, HTTrendline, TSF} {
		kind := kind
		t.Run(string(kind), func(t *testing.T) {
			t.Parallel()
			fn, err := ForKind(kind)
			require.NoError(t, err)

			prefix := closes[:12]
			want, err := fn(prefix, 5)
			require.NoError(t, err)

			got, err := fn(closes[:12], 5)
			require.NoError(t, err)
			assert.InDelta(t, want, got, 1e-12)

			// Same prefix inside a longer slice, value at index 11 unchanged.
			longer := append([]float64{}, closes...)
			got, err = fn(longer[:12], 5)
			require.NoError(t, err)
			assert.InDelta(t, want, got, 1e-12)
		})
	}
}

func TestForKindUnknown(t *testing.T) {
	t.Parallel()

	_, err := ForKind("MACD")
	assert.Error(t, err)
}

func TestProvider(t *testing.T) {
	t.Parallel()

	p, err := NewProvider([]Spec{
		{Name: "fast", Kind: EMA, Period: 3},
		{Name: "slow", Kind: SMA, Period: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, p.MaxPeriod())

	// Only the fast EMA is warmed up at 3 closes.
	snap, err := p.At([]float64{1, 2, 3})
	require.NoError(t, err)
	assert.Contains(t, snap, "fast")
	assert.NotContains(t, snap, "slow")

	snap, err = p.At([]float64{1, 2, 3, 4, 5})
	require.NoError(t, err)
	assert.Len(t, snap, 2)
	assert.InDelta(t, 3.0, snap["slow"], 1e-9)
}

// DEMA smooths an EMA series, so its warmup is longer than its period; a
// caller sizing history off MaxPeriod alone would never see its value.
func TestProviderWarmupCoversDEMA(t *testing.T) {
	t.Parallel()

	p, err := NewProvider([]Spec{
		{Name: "fast", Kind: DEMA, Period: 10},
		{Name: "slow", Kind: SMA, Period: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, 10, p.MaxPeriod())
	assert.Equal(t, 19, p.Warmup())

	closes := make([]float64, 0, p.Warmup())
	for i := 0; i < p.MaxPeriod()+5; i++ {
		closes = append(closes, 1.2+float64(i)*0.001)
	}

	// A period's worth of closes is not enough for the DEMA.
	snap, err := p.At(closes)
	require.NoError(t, err)
	assert.NotContains(t, snap, "fast")

	for len(closes) < p.Warmup() {
		closes = append(closes, 1.2+float64(len(closes))*0.001)
	}
	snap, err = p.At(closes)
	require.NoError(t, err)
	assert.Contains(t, snap, "fast")
}

func TestProviderRejectsBadSpecs(t *testing.T) {
	t.Parallel()

	_, err := NewProvider(nil)
	assert.Error(t, err)

	_, err = NewProvider([]Spec{{Name: "", Kind: SMA, Period: 3}})
	assert.Error(t, err)

	_, err = NewProvider([]Spec{
		{Name: "a", Kind: SMA, Period: 3},
		{Name: "a", Kind: EMA, Period: 5},
	})
	assert.Error(t, err)

	_, err = NewProvider([]Spec{{Name: "a", Kind: SMA, Period: 0}})
	assert.Error(t, err)

	_, err = NewProvider([]Spec{{Name: "a", Kind: "RSI", Period: 14}})
	assert.Error(t, err)
}
