package indicators

// linearFit computes the least-squares slope and intercept over the last
// period closes, with x = 0..period-1.
func linearFit(closes []float64, period int) (slope, intercept float64) {
	start := len(closes) - period
	n := float64(period)

	var sumX, sumY, sumXY, sumXX float64
	for i := 0; i < period; i++ {
		x := float64(i)
		y := closes[start+i]
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

// LinearRegression calculates the value of the least-squares regression line
// fitted to the last period closes, evaluated at the current bar.
func LinearRegression(closes []float64, period int) (float64, error) {
	if err := checkArgs(closes, period); err != nil {
		return 0, err
	}
	slope, intercept := linearFit(closes, period)
	return intercept + slope*float64(period-1), nil
}

// TimeSeriesForecast calculates the regression line's one-step-ahead
// projection: the fitted value at the bar after the current one.
func TimeSeriesForecast(closes []float64, period int) (float64, error) {
	if err := checkArgs(closes, period); err != nil {
		return 0, err
	}
	slope, intercept := linearFit(closes, period)
	return intercept + slope*float64(period), nil
}
