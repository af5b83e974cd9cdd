package extract

import "math"

// Mean returns the arithmetic mean of x.
func Mean(x []float64) float64 { return meanOf(x) }

// Skewness returns the sample skewness (Fisher-Pearson, not bias-corrected).
func Skewness(x []float64) float64 {
	n := float64(len(x))
	if n < 2 {
		return math.NaN()
	}
	mean := meanOf(x)
	var m2, m3 float64
	for _, v := range x {
		d := v - mean
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= n
	m3 /= n
	sd := math.Sqrt(m2)
	if sd == 0 {
		return 0
	}
	return m3 / (sd * sd * sd)
}

// Kurtosis returns the sample excess kurtosis.
func Kurtosis(x []float64) float64 {
	n := float64(len(x))
	if n < 2 {
		return math.NaN()
	}
	mean := meanOf(x)
	var m2, m4 float64
	for _, v := range x {
		d := v - mean
		m2 += d * d
		m4 += d * d * d * d
	}
	m2 /= n
	m4 /= n
	if m2 == 0 {
		return 0
	}
	return m4/(m2*m2) - 3
}

// FractalDimension returns the Petrosian fractal dimension estimate of x
// (the FD feature of spec.md §4.4), matching MiscMath::petrosian_FD:
// PFD = log10(N) / (log10(N) + log10(N/(N+0.4*Nd))), where Nd counts sign
// changes in x's first difference.
func FractalDimension(x []float64) float64 {
	n := len(x)
	if n < 3 {
		return math.NaN()
	}
	d := diff(x)
	nd := 0
	for i := 1; i < len(d); i++ {
		if (d[i] > 0) != (d[i-1] > 0) {
			nd++
		}
	}
	logN := math.Log10(float64(n))
	return logN / (logN + math.Log10(float64(n)/(float64(n)+0.4*float64(nd))))
}
