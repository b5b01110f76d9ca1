package engine

import "math/rand"

// Noise models slippage as probabilistically dropped executions: with
// probability p an attempted entry or exit simply does not happen on that
// tick. The generator is seeded so backtests stay reproducible. A nil Noise
// never drops anything.
type Noise struct {
	prob float64
	rng  *rand.Rand
}

func NewNoise(prob float64, seed int64) *Noise {
	if prob < 0 {
		prob = 0
	}
	if prob > 1 {
		prob = 1
	}
	return &Noise{prob: prob, rng: rand.New(rand.NewSource(seed))}
}

// Drop reports whether this attempt is lost to slippage.
func (n *Noise) Drop() bool {
	if n == nil || n.prob == 0 {
		return false
	}
	return n.rng.Float64() < n.prob
}
