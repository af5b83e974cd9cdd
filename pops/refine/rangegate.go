package refine

import (
	"math"

	"github.com/remnrem/luna-core/feature"
	"github.com/remnrem/luna-core/internal/errs"
)

// RangeStat is one feature column's training-cohort mean/SD, the unit
// row of a "ranges" file (spec.md §4.7's "Feature-range gate").
type RangeStat struct {
	Mean, SD float64
}

// RangeGate masks a feature column to NaN for every row of a target
// individual when that individual strays from the training
// distribution too often: the fraction of its epochs outside
// mean +/- Th*SD exceeds Prop. Defaults Th=4, Prop=0.33, matching
// original_source/pops/indiv.cpp's range_th/range_prop defaults.
type RangeGate struct {
	Stats map[string]RangeStat
	Th    float64
	Prop  float64
}

// NewRangeGate builds a RangeGate from a training cohort's per-column
// mean/SD table and the th and prop given by the caller, used as passed
// (config.Options.RangesTh/RangesProp supply the defaults 4 and 0.33).
func NewRangeGate(stats map[string]RangeStat, th, prop float64) (*RangeGate, error) {
	if th < 0 {
		return nil, errs.New(errs.ConstraintViolation, "refine: ranges-th should be positive")
	}
	if prop < 0 || prop > 1 {
		return nil, errs.New(errs.ConstraintViolation, "refine: ranges-prop should be 0-1")
	}
	return &RangeGate{Stats: stats, Th: th, Prop: prop}, nil
}

// Apply masks out-of-range columns of x in place, for one target
// individual's full set of rows, and returns the masked column names.
func (g *RangeGate) Apply(x *feature.Matrix) []string {
	var masked []string
	nr := x.NRows()
	if nr == 0 {
		return nil
	}
	for ci, name := range x.Columns {
		st, ok := g.Stats[name]
		if !ok || st.SD <= 0 {
			continue
		}
		lo, hi := st.Mean-g.Th*st.SD, st.Mean+g.Th*st.SD
		outliers := 0
		for r := 0; r < nr; r++ {
			v := x.Data.At(r, ci)
			if math.IsNaN(v) {
				continue
			}
			if v < lo || v > hi {
				outliers++
			}
		}
		if float64(outliers)/float64(nr) > g.Prop {
			for r := 0; r < nr; r++ {
				x.Data.Set(r, ci, math.NaN())
			}
			masked = append(masked, name)
		}
	}
	return masked
}
