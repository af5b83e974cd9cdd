package extract

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/remnrem/luna-core/internal/errs"
)

// WelchOptions configures the averaged-periodogram spectral estimate of
// spec.md §4.5: segment length, overlap, and window (Tukey-50% by
// default), averaged across segments by mean or median.
type WelchOptions struct {
	SegmentSeconds float64
	OverlapFrac    float64
	SampleRate     int
	TukeyAlpha     float64 // 0 disables tapering (rectangular); default 0.5
	UseMedian      bool
}

// DefaultWelchOptions matches Luna's own Welch defaults.
func DefaultWelchOptions(hz int) WelchOptions {
	return WelchOptions{SegmentSeconds: 4, OverlapFrac: 0.5, SampleRate: hz, TukeyAlpha: 0.5}
}

// Welch returns the frequency bins (Hz) and their averaged power for
// mean-centred samples. Input shorter than one whole segment, or a
// sample rate/segment length combination giving a segment of fewer than
// 2 samples, reports DegenerateNumerics.
func Welch(samples []float64, opts WelchOptions) (freqs, power []float64, err error) {
	freqs, _, power, err = WelchSegments(samples, opts)
	return freqs, power, err
}

// WelchSegments is Welch with the per-segment periodogram matrix exposed
// (segments x bins), for callers that need cross-segment variability
// (CVPSD, VBANDS).
func WelchSegments(samples []float64, opts WelchOptions) (freqs []float64, segments [][]float64, power []float64, err error) {
	segLen := int(opts.SegmentSeconds * float64(opts.SampleRate))
	if segLen < 2 || segLen > len(samples) {
		return nil, nil, nil, errs.New(errs.DegenerateNumerics, "extract: Welch segment length", segLen, "exceeds sample count", len(samples))
	}
	step := int(float64(segLen) * (1 - opts.OverlapFrac))
	if step < 1 {
		step = 1
	}
	window := tukeyWindow(segLen, opts.TukeyAlpha)
	var winPower float64
	for _, w := range window {
		winPower += w * w
	}

	fft := fourier.NewFFT(segLen)
	nBins := segLen/2 + 1

	buf := make([]float64, segLen)
	coeffs := make([]complex128, nBins)
	for start := 0; start+segLen <= len(samples); start += step {
		for i := 0; i < segLen; i++ {
			buf[i] = samples[start+i] * window[i]
		}
		fft.Coefficients(coeffs, buf)
		bins := make([]float64, nBins)
		for i, c := range coeffs {
			mag := real(c)*real(c) + imag(c)*imag(c)
			bins[i] = mag / (winPower * float64(opts.SampleRate))
			if i > 0 && i < nBins-1 {
				bins[i] *= 2 // one-sided spectrum
			}
		}
		segments = append(segments, bins)
	}
	if len(segments) == 0 {
		return nil, nil, nil, errs.New(errs.DegenerateNumerics, "extract: Welch produced zero segments")
	}

	freqs = make([]float64, nBins)
	for i := range freqs {
		freqs[i] = float64(i) * float64(opts.SampleRate) / float64(segLen)
	}
	power = make([]float64, nBins)
	for bin := 0; bin < nBins; bin++ {
		vals := make([]float64, len(segments))
		for s, seg := range segments {
			vals[s] = seg[bin]
		}
		if opts.UseMedian {
			power[bin] = medianOf(vals)
		} else {
			power[bin] = meanOf(vals)
		}
	}
	return freqs, segments, power, nil
}

// tukeyWindow returns a Tukey (tapered-cosine) window of length n with
// taper fraction alpha. alpha == 0 is rectangular; alpha == 1 is Hann.
func tukeyWindow(n int, alpha float64) []float64 {
	w := make([]float64, n)
	if alpha <= 0 {
		for i := range w {
			w[i] = 1
		}
		return w
	}
	taper := int(alpha * float64(n-1) / 2)
	for i := 0; i < n; i++ {
		switch {
		case i < taper:
			w[i] = 0.5 * (1 + math.Cos(math.Pi*(float64(i)/float64(taper)-1)))
		case i > n-1-taper:
			w[i] = 0.5 * (1 + math.Cos(math.Pi*(float64(i-(n-1-taper))/float64(taper))))
		default:
			w[i] = 1
		}
	}
	return w
}

func meanOf(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

func medianOf(x []float64) float64 {
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// BinRange returns the indices of freqs within [lwr, upr], inclusive.
func BinRange(freqs []float64, lwr, upr float64) []int {
	var out []int
	for i, f := range freqs {
		if f >= lwr-1e-9 && f <= upr+1e-9 {
			out = append(out, i)
		}
	}
	return out
}
