package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       Inputs
		wantSize float64
		wantErr  bool
	}{
		{
			name:     "one_percent",
			in:       Inputs{Balance: 10_000, RiskPercent: 1, PipValue: 10, StopLossDistance: 20},
			wantSize: 0.5,
		},
		{
			name:     "rounds_to_two_places",
			in:       Inputs{Balance: 1000, RiskPercent: 1, PipValue: 9.13, StopLossDistance: 3},
			wantSize: 0.37, // 10 / 27.39 = 0.3651...
		},
		{
			name:     "full_risk",
			in:       Inputs{Balance: 500, RiskPercent: 100, PipValue: 10, StopLossDistance: 10},
			wantSize: 5,
		},
		{
			name:    "zero_balance",
			in:      Inputs{Balance: 0, RiskPercent: 1, PipValue: 10, StopLossDistance: 20},
			wantErr: true,
		},
		{
			name:    "negative_balance",
			in:      Inputs{Balance: -10, RiskPercent: 1, PipValue: 10, StopLossDistance: 20},
			wantErr: true,
		},
		{
			name:    "zero_risk",
			in:      Inputs{Balance: 1000, RiskPercent: 0, PipValue: 10, StopLossDistance: 20},
			wantErr: true,
		},
		{
			name:    "risk_over_hundred",
			in:      Inputs{Balance: 1000, RiskPercent: 101, PipValue: 10, StopLossDistance: 20},
			wantErr: true,
		},
		{
			name:    "zero_pip_value",
			in:      Inputs{Balance: 1000, RiskPercent: 1, PipValue: 0, StopLossDistance: 20},
			wantErr: true,
		},
		{
			name:    "zero_stop",
			in:      Inputs{Balance: 1000, RiskPercent: 1, PipValue: 10, StopLossDistance: 0},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Calculate(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRiskInput)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.wantSize, got.Size, 1e-9)
			assert.InDelta(t, tt.in.Balance*tt.in.RiskPercent/100, got.RiskAmount, 1e-9)
		})
	}
}

// size * pipValue * stopDistance ≈ balance * riskPercent/100 within the
// tolerance introduced by 2dp rounding.
func TestCalculateRiskIdentity(t *testing.T) {
	t.Parallel()

	cases := []Inputs{
		{Balance: 10_000, RiskPercent: 1, PipValue: 10, StopLossDistance: 20},
		{Balance: 2_500, RiskPercent: 2.5, PipValue: 9.4, StopLossDistance: 15},
		{Balance: 150_000, RiskPercent: 0.5, PipValue: 8.71, StopLossDistance: 33},
	}

	for _, in := range cases {
		got, err := Calculate(in)
		require.NoError(t, err)

		want := in.Balance * in.RiskPercent / 100
		// Rounding the size by up to 0.005 shifts the product by at most
		// 0.005 * pipValue * stopDistance.
		tol := 0.005 * in.PipValue * in.StopLossDistance
		assert.InDelta(t, want, got.Size*in.PipValue*in.StopLossDistance, tol+1e-9)
	}
}
