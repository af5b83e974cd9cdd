// Package post implements the level-2, cross-epoch feature transforms of
// spec.md §4.4/§4.6: temporal smoothing, total-variation denoising,
// within-individual robust normalization, and cohort-level SVD
// projection. Every transform operates within Block boundaries so that a
// multi-individual feature matrix (as loaded from the binary corpus) never
// blends neighbouring individuals' epochs.
package post

import "github.com/remnrem/luna-core/internal/errs"

// Block is one individual's row range [Start, Stop] (inclusive) within a
// concatenated feature.Matrix, mirroring the corpus reader's per-block
// Istart/Iend bookkeeping (spec.md §6).
type Block struct {
	Start, Stop int
}

// SingleBlock returns the Block set for a matrix holding a single
// individual's n epochs.
func SingleBlock(n int) []Block {
	if n == 0 {
		return nil
	}
	return []Block{{Start: 0, Stop: n - 1}}
}

func validateBlocks(n int, blocks []Block) error {
	for _, b := range blocks {
		if b.Start < 0 || b.Stop >= n || b.Start > b.Stop {
			return errs.New(errs.ConstraintViolation, "post: block", b, "out of range for", n, "rows")
		}
	}
	return nil
}
