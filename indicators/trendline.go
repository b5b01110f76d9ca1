package indicators

// Trendline calculates an instantaneous trendline after Ehlers, the usual
// stand-in for the Hilbert-transform trendline. It runs a second-order
// smoothing filter over the whole prefix with constant alpha = 2/(period+1)
// and requires a full period of warmup before the output settles.
func Trendline(closes []float64, period int) (float64, error) {
	if err := checkArgs(closes, period); err != nil {
		return 0, err
	}

	a := 2.0 / float64(period+1)

	var it1, it2 float64
	for i, p := range closes {
		var it float64
		if i < 2 {
			it = p
		} else {
			p1 := closes[i-1]
			p2 := closes[i-2]
			it = (a-a*a/4)*p +
				0.5*a*a*p1 -
				(a-0.75*a*a)*p2 +
				2*(1-a)*it1 -
				(1-a)*(1-a)*it2
		}
		it2 = it1
		it1 = it
	}
	return it1, nil
}
