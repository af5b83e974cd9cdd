// Package extract implements the per-epoch feature extractor of
// spec.md §4.5: for every retained epoch, pull signal samples from the
// edf.Source collaborator, run Welch, and compute the columns a
// feature/spec.Spec declares.
package extract

import (
	"context"
	"math"

	"github.com/antzucaro/matchr"

	"github.com/remnrem/luna-core/edf"
	"github.com/remnrem/luna-core/feature"
	fspec "github.com/remnrem/luna-core/feature/spec"
	"github.com/remnrem/luna-core/internal/errs"
	"github.com/remnrem/luna-core/tick"
)

// Extractor computes a feature.Matrix from an edf.Source and a compiled
// feature specification.
type Extractor struct {
	// Covariates supplies individual-level scalars for COVAR blocks.
	Covariates map[string]float64
	// Welch overrides the default Welch options for a channel sampled at
	// hz; a nil func uses DefaultWelchOptions(hz).
	Welch func(hz int) WelchOptions
}

// SuggestChannel returns src's signal label most similar to want (by
// Jaro-Winkler distance), for "did you mean" diagnostics when a spec
// references an absent channel.
func SuggestChannel(src edf.Source, want string) string {
	best := ""
	bestScore := -1.0
	for i := 0; ; i++ {
		label := src.SignalLabel(i)
		if label == "" {
			break
		}
		score := matchr.JaroWinkler(want, label)
		if score > bestScore {
			bestScore = score
			best = label
		}
	}
	return best
}

// Run extracts every declared level-1 column of sp for every epoch of
// src, returning a feature.Matrix with one row per epoch. Rows of an
// epoch whose Welch estimate has a non-positive bin in [0.5, 45] Hz are
// set entirely to NaN (the UNKNOWN flag of spec.md §4.5); dropping those
// rows is EPOCH_OUTLIER's and the caller's job, via feature.Matrix.KeepRows.
func (ex *Extractor) Run(ctx context.Context, src edf.Source, sp *fspec.Spec) (*feature.Matrix, error) {
	epochs := collectEpochs(src)
	m := feature.NewMatrix(len(epochs), columnNames(sp))

	for row, e := range epochs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		iv := src.Epoch(e)
		unusable := false
		for bi, b := range sp.Blocks {
			if b.Kind.Level() != 1 {
				continue
			}
			cols := columnsOf(sp, bi)
			if len(cols) == 0 {
				continue
			}
			vals, bad, err := ex.computeBlock(src, b, iv)
			if err != nil {
				return nil, err
			}
			if bad {
				unusable = true
			}
			for j, v := range vals {
				if j >= len(cols) {
					break
				}
				m.Data.Set(row, cols[j], v)
			}
		}
		if unusable {
			for c := 0; c < m.NCols(); c++ {
				m.Data.Set(row, c, math.NaN())
			}
		}
	}
	return m, nil
}

// computeBlock evaluates one level-1 block over iv, returning its declared
// columns in order and whether the epoch should be flagged unusable (a
// Welch bin <= 0 in [0.5, 45] Hz, per spec.md §4.5).
func (ex *Extractor) computeBlock(src edf.Source, b fspec.Block, iv tick.Interval) ([]float64, bool, error) {
	if b.Kind == fspec.Covar {
		out := make([]float64, len(b.Vars))
		for i, v := range b.Vars {
			out[i] = ex.Covariates[v]
		}
		return out, false, nil
	}

	if !src.HasSignal(b.Channel) {
		suggestion := SuggestChannel(src, b.Channel)
		return nil, false, errs.New(errs.MissingResource, "extract: channel", b.Channel, "not found; did you mean", suggestion, "?")
	}
	samples, err := src.Read(b.Channel, iv)
	if err != nil {
		return nil, false, err
	}

	// Time-domain features work on the raw samples; the demeaned copy
	// feeding Welch is a separate buffer so MEAN isn't computed on
	// already-demeaned (and therefore always-zero) data.
	switch b.Kind {
	case fspec.Mean:
		return []float64{meanOf(samples)}, false, nil
	case fspec.Skew:
		return []float64{Skewness(samples)}, false, nil
	case fspec.Kurtosis:
		return []float64{Kurtosis(samples)}, false, nil
	case fspec.FD:
		return []float64{FractalDimension(samples)}, false, nil
	case fspec.Hjorth:
		a, mo, c := Hjorth(samples)
		return []float64{a, mo, c}, false, nil
	case fspec.PE:
		out := make([]float64, 0, b.To-b.From+1)
		for order := b.From; order <= b.To; order++ {
			out = append(out, PermutationEntropy(samples, order))
		}
		return out, false, nil
	}

	demeaned := append([]float64(nil), samples...)
	meanCenter(demeaned)
	hz := src.SamplingFreq(b.Channel)

	welchOpts := DefaultWelchOptions(hz)
	if ex.Welch != nil {
		welchOpts = ex.Welch(hz)
	}
	freqs, segments, power, werr := WelchSegments(demeaned, welchOpts)
	bad := false
	if werr != nil {
		bad = true
	} else if hasNonPositiveBin(freqs, power, 0.5, 45) {
		bad = true
	}
	if bad {
		return nil, true, nil
	}

	switch b.Kind {
	case fspec.LogPSD:
		return LogPSDColumns(freqs, power, b.Lwr, b.Upr), false, nil
	case fspec.RelPSD:
		return RelPSDColumns(freqs, power, b.Lwr, b.Upr, b.ZLwr, b.ZUpr), false, nil
	case fspec.CVPSD:
		return CVPSDColumns(freqs, segments, b.Lwr, b.Upr), false, nil
	case fspec.Bands:
		bp := BandPowers(freqs, power)
		return bp[:], false, nil
	case fspec.RBands:
		bp := RelativeBandPowers(freqs, power)
		return bp[:], false, nil
	case fspec.VBands:
		bp := VarianceBandPowers(freqs, segments)
		return bp[:], false, nil
	case fspec.Slope:
		return []float64{SpectralSlope(freqs, power)}, false, nil
	default:
		return nil, false, errs.New(errs.ConstraintViolation, "extract: unsupported level-1 kind", b.Kind.String())
	}
}

func hasNonPositiveBin(freqs, power []float64, lwr, upr float64) bool {
	for _, i := range BinRange(freqs, lwr, upr) {
		if power[i] <= 0 {
			return true
		}
	}
	return false
}

func meanCenter(x []float64) {
	mean := meanOf(x)
	for i := range x {
		x[i] -= mean
	}
}

func collectEpochs(src edf.Source) []int {
	var out []int
	for e := src.FirstEpoch(); e != -1; e = src.NextEpoch() {
		out = append(out, e)
	}
	return out
}

func columnNames(sp *fspec.Spec) []string {
	names := make([]string, len(sp.Columns))
	for i, c := range sp.Columns {
		names[i] = c.Name
	}
	return names
}

func columnsOf(sp *fspec.Spec, blockIdx int) []int {
	var out []int
	for i, c := range sp.Columns {
		if c.Block == blockIdx {
			out = append(out, i)
		}
	}
	return out
}
