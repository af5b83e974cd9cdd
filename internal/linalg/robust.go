// Package linalg wraps gonum.org/v1/gonum (mat, stat) for the core's
// numerical machinery: robust statistics for NORM, reduced SVD for the
// SVD feature block and SOAP's compaction step, and a Gaussian LDA
// classifier for SOAP's self-consistent refit. No pack example exercises
// gonum's mat/stat/lda submodules directly, but gonum itself is already a
// real dependency of the corpus (kortschak-ins's go.mod); this package
// gives its numerical submodules, unused elsewhere in the pack, a home
// matching SPEC_FULL.md's "DOMAIN STACK" wiring goal.
package linalg

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/remnrem/luna-core/internal/errs"
)

// Median returns the median of x. x is not modified.
func Median(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// MAD returns the median absolute deviation of x about center, scaled by
// the usual 1.4826 constant so that it estimates the standard deviation
// under normality.
func MAD(x []float64, center float64) float64 {
	if len(x) == 0 {
		return 0
	}
	dev := make([]float64, len(x))
	for i, v := range x {
		d := v - center
		if d < 0 {
			d = -d
		}
		dev[i] = d
	}
	return 1.4826 * Median(dev)
}

// Winsorize clamps each element of x to the [q, 1-q] empirical quantile
// range, returning a new slice.
func Winsorize(x []float64, q float64) []float64 {
	if len(x) == 0 || q <= 0 {
		return append([]float64(nil), x...)
	}
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	lo := stat.Quantile(q, stat.Empirical, sorted, nil)
	hi := stat.Quantile(1-q, stat.Empirical, sorted, nil)
	out := make([]float64, len(x))
	for i, v := range x {
		switch {
		case v < lo:
			out[i] = lo
		case v > hi:
			out[i] = hi
		default:
			out[i] = v
		}
	}
	return out
}

// RobustNormalize implements the NORM level-2 block of SPEC_FULL.md §4.6:
// subtract the median, divide by MAD, optionally winsorize at winsor
// (skip winsorizing when winsor <= 0), then rescale to unit variance.
func RobustNormalize(x []float64, winsor float64) ([]float64, error) {
	if len(x) == 0 {
		return nil, errs.New(errs.DegenerateNumerics, "linalg: RobustNormalize on empty input")
	}
	med := Median(x)
	mad := MAD(x, med)
	out := make([]float64, len(x))
	if mad == 0 {
		for i := range out {
			out[i] = 0
		}
		return out, nil
	}
	for i, v := range x {
		out[i] = (v - med) / mad
	}
	if winsor > 0 {
		out = Winsorize(out, winsor)
	}
	_, sd := stat.MeanStdDev(out, nil)
	if sd == 0 {
		return out, nil
	}
	for i := range out {
		out[i] /= sd
	}
	return out, nil
}
