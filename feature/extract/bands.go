package extract

import "math"

// band is one of the six canonical PSG bands of spec.md §4.4 (BANDS/
// RBANDS/VBANDS), in column order.
type band struct {
	name     string
	lwr, upr float64
}

var bands = []band{
	{"SLOW", 0.5, 1},
	{"DELTA", 1, 4},
	{"THETA", 4, 8},
	{"ALPHA", 8, 12},
	{"SIGMA", 12, 15},
	{"BETA", 15, 30},
}

// BandPowers returns log-power for each of the six bands.
func BandPowers(freqs, power []float64) [6]float64 {
	var out [6]float64
	for i, b := range bands {
		out[i] = math.Log(sumBand(freqs, power, b.lwr, b.upr) + 1e-300)
	}
	return out
}

// RelativeBandPowers returns each band's fraction of 0.5-30 Hz total
// power (un-logged).
func RelativeBandPowers(freqs, power []float64) [6]float64 {
	total := sumBand(freqs, power, 0.5, 30)
	var out [6]float64
	if total <= 0 {
		return out
	}
	for i, b := range bands {
		out[i] = sumBand(freqs, power, b.lwr, b.upr) / total
	}
	return out
}

// VarianceBandPowers returns the coefficient of variation, across Welch
// segments, of each band's summed power.
func VarianceBandPowers(freqs []float64, segments [][]float64) [6]float64 {
	var out [6]float64
	for i, b := range bands {
		vals := make([]float64, len(segments))
		for s, seg := range segments {
			vals[s] = sumBand(freqs, seg, b.lwr, b.upr)
		}
		out[i] = cv(vals)
	}
	return out
}

// CVPSDColumns returns the coefficient of variation, across Welch
// segments, of each bin's power in [lwr, upr] — spec.md §4.4's CVPSD.
func CVPSDColumns(freqs []float64, segments [][]float64, lwr, upr float64) []float64 {
	idx := BinRange(freqs, lwr, upr)
	out := make([]float64, len(idx))
	for i, bi := range idx {
		vals := make([]float64, len(segments))
		for s, seg := range segments {
			vals[s] = seg[bi]
		}
		out[i] = cv(vals)
	}
	return out
}

func sumBand(freqs, power []float64, lwr, upr float64) float64 {
	var sum float64
	for i, f := range freqs {
		if f >= lwr && f < upr {
			sum += power[i]
		}
	}
	return sum
}

func cv(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	mean := meanOf(x)
	if mean == 0 {
		return 0
	}
	var ss float64
	for _, v := range x {
		d := v - mean
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(len(x)))
	return sd / mean
}

// LogPSDColumns returns the log-power of each Welch bin in [lwr, upr].
func LogPSDColumns(freqs, power []float64, lwr, upr float64) []float64 {
	idx := BinRange(freqs, lwr, upr)
	out := make([]float64, len(idx))
	for i, bi := range idx {
		out[i] = math.Log(power[bi] + 1e-300)
	}
	return out
}

// RelPSDColumns returns the log of each bin's power divided by the total
// power in [zLwr, zUpr].
func RelPSDColumns(freqs, power []float64, lwr, upr, zLwr, zUpr float64) []float64 {
	total := sumBand(freqs, power, zLwr, zUpr)
	idx := BinRange(freqs, lwr, upr)
	out := make([]float64, len(idx))
	for i, bi := range idx {
		if total <= 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = math.Log(power[bi]/total + 1e-300)
	}
	return out
}

// SpectralSlope fits a linear regression of log-power against log-frequency
// over 30-45 Hz and returns its slope (spec.md §4.4's SLOPE feature).
func SpectralSlope(freqs, power []float64) float64 {
	idx := BinRange(freqs, 30, 45)
	if len(idx) < 2 {
		return math.NaN()
	}
	var sx, sy, sxx, sxy float64
	n := float64(len(idx))
	for _, i := range idx {
		x := math.Log(freqs[i] + 1e-300)
		y := math.Log(power[i] + 1e-300)
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	denom := n*sxx - sx*sx
	if denom == 0 {
		return math.NaN()
	}
	return (n*sxy - sx*sy) / denom
}
