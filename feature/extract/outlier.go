package extract

import (
	"math"

	"github.com/remnrem/luna-core/feature"
	fspec "github.com/remnrem/luna-core/feature/spec"
)

// ApplyEpochOutlierRules runs every EPOCH_OUTLIER block of sp against m in
// declaration order (spec.md §4.5): for the named source block's columns,
// compute mean and SD across epochs not already marked unknown, and mark
// any epoch outside mean ± th*SD unknown. Rules apply cumulatively. known
// reports, per row, whether the row is still usable; it is updated in
// place and also returned.
func ApplyEpochOutlierRules(m *feature.Matrix, sp *fspec.Spec, known []bool) []bool {
	for _, b := range sp.Blocks {
		if b.Kind != fspec.EpochOutlier {
			continue
		}
		if b.Th <= 0 {
			continue // th <= 0 marks nothing (spec.md §8 boundary behaviour)
		}
		cols := sourceColumns(sp, b.SourceBlock)
		for _, c := range cols {
			markColumnOutliers(m, c, b.Th, known)
		}
	}
	return known
}

func sourceColumns(sp *fspec.Spec, blockName string) []int {
	var blockIdx = -1
	for i, bl := range sp.Blocks {
		if bl.Name == blockName {
			blockIdx = i
			break
		}
	}
	if blockIdx < 0 {
		return nil
	}
	var out []int
	for i, c := range sp.Columns {
		if c.Block == blockIdx {
			out = append(out, i)
		}
	}
	return out
}

func markColumnOutliers(m *feature.Matrix, col int, th float64, known []bool) {
	var vals []float64
	for r := 0; r < m.NRows(); r++ {
		if known[r] {
			v := m.Data.At(r, col)
			if !math.IsNaN(v) {
				vals = append(vals, v)
			}
		}
	}
	if len(vals) < 2 {
		return
	}
	mean := meanOf(vals)
	sd := math.Sqrt(variance(vals))
	if sd == 0 {
		return
	}
	for r := 0; r < m.NRows(); r++ {
		if !known[r] {
			continue
		}
		v := m.Data.At(r, col)
		if math.Abs(v-mean) > th*sd {
			known[r] = false
		}
	}
}

// InitialKnown marks every row usable except one Extractor.Run already
// flagged unusable by filling it entirely with NaN.
func InitialKnown(m *feature.Matrix) []bool {
	known := make([]bool, m.NRows())
	for r := range known {
		usable := false
		for c := 0; c < m.NCols(); c++ {
			if !math.IsNaN(m.Data.At(r, c)) {
				usable = true
				break
			}
		}
		known[r] = usable || m.NCols() == 0
	}
	return known
}

// CompactUnknown returns a new matrix keeping only rows marked known.
func CompactUnknown(m *feature.Matrix, known []bool) *feature.Matrix {
	var rows []int
	for r, ok := range known {
		if ok {
			rows = append(rows, r)
		}
	}
	return m.KeepRows(rows)
}
