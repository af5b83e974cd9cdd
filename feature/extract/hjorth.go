package extract

import "math"

// Hjorth returns log-activity, mobility, and complexity (spec.md §4.4's
// HJORTH feature, 3 output columns).
func Hjorth(x []float64) (activity, mobility, complexity float64) {
	if len(x) < 3 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	d1 := diff(x)
	d2 := diff(d1)

	varX := variance(x)
	varD1 := variance(d1)
	varD2 := variance(d2)

	activity = math.Log(varX + 1e-300)
	if varX <= 0 {
		return activity, math.NaN(), math.NaN()
	}
	mobility = math.Sqrt(varD1 / varX)
	if varD1 <= 0 || mobility == 0 {
		return activity, mobility, math.NaN()
	}
	mobilityD1 := math.Sqrt(varD2 / varD1)
	complexity = mobilityD1 / mobility
	return activity, mobility, complexity
}

func diff(x []float64) []float64 {
	out := make([]float64, len(x)-1)
	for i := range out {
		out[i] = x[i+1] - x[i]
	}
	return out
}

func variance(x []float64) float64 {
	mean := meanOf(x)
	var ss float64
	for _, v := range x {
		d := v - mean
		ss += d * d
	}
	return ss / float64(len(x))
}
