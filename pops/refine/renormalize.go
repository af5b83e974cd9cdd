// Package refine implements POPS posterior refinement: the feature-range
// gate, elapsed-sleep priors, SOAP self-consistent refitting, and
// channel-equivalence consensus combining (spec.md §3 module 9,
// "Posterior refinement"). Grounded on
// original_source/pops/{indiv,espriors,post-soap}.cpp.
package refine

import "gonum.org/v1/gonum/mat"

// Renormalize rescales every row of p to sum to 1, falling back to a
// uniform distribution when a row's sum underflows below 1e-10 (spec.md
// §9's posterior-normalization design note, applied identically after
// every refinement step that reweights posteriors).
func Renormalize(p *mat.Dense) {
	nr, nc := p.Dims()
	for r := 0; r < nr; r++ {
		row := p.RawRowView(r)
		sum := 0.0
		for _, v := range row {
			sum += v
		}
		if sum < 1e-10 {
			uniform := 1.0 / float64(nc)
			for c := 0; c < nc; c++ {
				p.Set(r, c, uniform)
			}
			continue
		}
		for c := 0; c < nc; c++ {
			p.Set(r, c, row[c]/sum)
		}
	}
}
