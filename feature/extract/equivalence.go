package extract

import (
	"context"

	"github.com/remnrem/luna-core/edf"
	"github.com/remnrem/luna-core/feature"
	fspec "github.com/remnrem/luna-core/feature/spec"
)

// EquivalenceResult is one run of the extractor against a single
// candidate channel substituted for the spec's nominated one.
type EquivalenceResult struct {
	Channel string
	Matrix  *feature.Matrix
	Err     error
}

// RunEquivalence re-runs ex.Run once per candidate in equivalents,
// substituting candidate for every block in sp bound to primary (spec.md
// §4.5: "an equivalence set can rotate a nominated channel through a list
// of physiological equivalents, re-running the entire predict pipeline
// once per equivalent"). A candidate absent from src is skipped, not
// fatal (SPEC_FULL.md §7's MissingResource policy for equivalence
// channels).
func (ex *Extractor) RunEquivalence(ctx context.Context, src edf.Source, sp *fspec.Spec, primary string, equivalents []string) []EquivalenceResult {
	var out []EquivalenceResult
	for _, candidate := range equivalents {
		if !src.HasSignal(candidate) {
			continue
		}
		substituted := substituteChannel(sp, primary, candidate)
		m, err := ex.Run(ctx, src, substituted)
		out = append(out, EquivalenceResult{Channel: candidate, Matrix: m, Err: err})
	}
	return out
}

// substituteChannel returns a copy of sp with every block bound to
// primary rebound to candidate, then recompiled.
func substituteChannel(sp *fspec.Spec, primary, candidate string) *fspec.Spec {
	blocks := make([]fspec.Block, len(sp.Blocks))
	copy(blocks, sp.Blocks)
	for i, b := range blocks {
		if b.Channel == primary {
			b.Channel = candidate
			blocks[i] = b
		}
	}
	out := &fspec.Spec{Blocks: blocks}
	// Compile cannot fail on a spec that already compiled successfully
	// once with the same arities; a substitution only changes Channel.
	_ = out.Compile()
	return out
}
