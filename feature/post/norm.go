package post

import (
	"github.com/remnrem/luna-core/internal/errs"
	"github.com/remnrem/luna-core/internal/linalg"
)

// Norm applies robust within-individual scaling to x within each block
// independently: subtract the median, divide by MAD, optionally winsorize
// at the given quantile (winsor <= 0 disables it), then rescale to unit
// variance (spec.md §4.4's NORM). winsor must be in [0, 0.5].
func Norm(x []float64, winsor float64, blocks []Block) ([]float64, error) {
	if winsor < 0 || winsor > 0.5 {
		return nil, errs.New(errs.ConstraintViolation, "post: winsor", winsor, "must be in [0, 0.5]")
	}
	if err := validateBlocks(len(x), blocks); err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	copy(out, x)
	for _, b := range blocks {
		seg := out[b.Start : b.Stop+1]
		normed, err := linalg.RobustNormalize(seg, winsor)
		if err != nil {
			return nil, err
		}
		copy(seg, normed)
	}
	return out, nil
}
