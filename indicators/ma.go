package indicators

// SimpleMA calculates the Simple Moving Average for the given period.
func SimpleMA(closes []float64, period int) (float64, error) {
	if err := checkArgs(closes, period); err != nil {
		return 0, err
	}

	sum := 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		sum += closes[i]
	}
	return sum / float64(period), nil
}

// ExponentialMA calculates the Exponential Moving Average for the given
// period, seeded with the SMA of the first period closes.
func ExponentialMA(closes []float64, period int) (float64, error) {
	if err := checkArgs(closes, period); err != nil {
		return 0, err
	}

	multiplier := 2.0 / float64(period+1)

	sma := 0.0
	for i := 0; i < period; i++ {
		sma += closes[i]
	}
	ema := sma / float64(period)

	for i := period; i < len(closes); i++ {
		ema = (closes[i]-ema)*multiplier + ema
	}
	return ema, nil
}

// WeightedMA calculates the linearly Weighted Moving Average: the most
// recent close carries weight period, the oldest in the lookback weight 1.
func WeightedMA(closes []float64, period int) (float64, error) {
	if err := checkArgs(closes, period); err != nil {
		return 0, err
	}

	var sum, norm float64
	start := len(closes) - period
	for i := 0; i < period; i++ {
		w := float64(i + 1)
		sum += closes[start+i] * w
		norm += w
	}
	return sum / norm, nil
}

// DoubleEMA calculates the Double Exponential Moving Average,
// 2*EMA - EMA(EMA). Warmup is 2*period-1 closes.
func DoubleEMA(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, checkArgs(closes, period)
	}
	if err := checkArgs(closes, 2*period-1); err != nil {
		return 0, err
	}

	series, err := emaSeries(closes, period)
	if err != nil {
		return 0, err
	}
	ema2, err := ExponentialMA(series, period)
	if err != nil {
		return 0, err
	}
	return 2*series[len(series)-1] - ema2, nil
}

// TriangularMA calculates the Triangular Moving Average: a weighted average
// whose weights rise linearly to the middle of the lookback and fall again.
func TriangularMA(closes []float64, period int) (float64, error) {
	if err := checkArgs(closes, period); err != nil {
		return 0, err
	}

	var sum, norm float64
	start := len(closes) - period
	for i := 0; i < period; i++ {
		// 1..k..1 for odd periods, 1..k,k..1 for even.
		w := float64(i + 1)
		if mirror := float64(period - i); mirror < w {
			w = mirror
		}
		sum += closes[start+i] * w
		norm += w
	}
	return sum / norm, nil
}

// emaSeries returns the EMA value at every index from period-1 onward.
func emaSeries(closes []float64, period int) ([]float64, error) {
	if err := checkArgs(closes, period); err != nil {
		return nil, err
	}

	multiplier := 2.0 / float64(period+1)

	sma := 0.0
	for i := 0; i < period; i++ {
		sma += closes[i]
	}
	ema := sma / float64(period)

	out := make([]float64, 0, len(closes)-period+1)
	out = append(out, ema)
	for i := period; i < len(closes); i++ {
		ema = (closes[i]-ema)*multiplier + ema
		out = append(out, ema)
	}
	return out, nil
}
