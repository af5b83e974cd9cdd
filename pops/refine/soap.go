package refine

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/remnrem/luna-core/internal/errs"
	"github.com/remnrem/luna-core/internal/linalg"
	"github.com/remnrem/luna-core/pops"
)

// SOAPOptions configures one SOAP refitting pass (spec.md §4.7's "SOAP
// refinement"): nc principal components for the LDA feature space, a
// confidence threshold, and the minimum confident-epoch count a stage
// needs to enter the LDA fit. Defaults (th=0.5, mine=5) match
// original_source/pops/post-soap.cpp.
type SOAPOptions struct {
	NC        int
	Threshold float64
	MinCount  int
}

// DefaultSOAPOptions returns the original's defaults for the given
// number of components.
func DefaultSOAPOptions(nc int) SOAPOptions {
	return SOAPOptions{NC: nc, Threshold: 0.5, MinCount: 5}
}

// Result is one SOAP pass's output: the revised posterior matrix and
// which row indices were actually changed (every change is a confidence
// increase, never a decrease — spec.md §8's SOAP idempotence/
// monotonicity invariant).
type Result struct {
	Posteriors *mat.Dense
	Changed    []int
}

// SOAP compacts xFull (the full, pre-NaN-injection feature matrix) to
// opts.NC components via a reduced SVD, identifies confidently-assigned
// epochs, fits a Gaussian LDA on them, and re-predicts every epoch,
// replacing a row's posterior only when the LDA's confidence exceeds the
// original (spec.md §4.7, §8 scenario 5's idempotence property: a
// recording already fully confident and dominated by one stage should
// see Changed come back empty).
func SOAP(xFull *mat.Dense, posteriors *mat.Dense, order []pops.Stage, opts SOAPOptions) (*Result, error) {
	nr, nc := posteriors.Dims()
	if nc != len(order) {
		return nil, errs.New(errs.ConstraintViolation, "refine: posterior columns", nc, "!= len(order)", len(order))
	}
	fr, _ := xFull.Dims()
	if fr != nr {
		return nil, errs.New(errs.ConstraintViolation, "refine: feature rows", fr, "!= posterior rows", nr)
	}

	svd, err := linalg.SVD(xFull, opts.NC)
	if err != nil {
		return nil, err
	}
	u := svd.U // nr x nc

	hard, confidence := hardCalls(posteriors, order)

	counts := map[pops.Stage]int{}
	for i := 0; i < nr; i++ {
		if confidence[i] >= opts.Threshold {
			counts[hard[i]]++
		}
	}
	included := map[pops.Stage]bool{}
	for s, n := range counts {
		if n >= opts.MinCount {
			included[s] = true
		}
	}

	var rows []int
	var labels []int
	for i := 0; i < nr; i++ {
		if confidence[i] >= opts.Threshold && included[hard[i]] {
			rows = append(rows, i)
			labels = append(labels, pops.ClassID(order, hard[i]))
		}
	}
	if len(rows) < 3 {
		return nil, errs.New(errs.DegenerateNumerics, "refine: fewer than 3 confident epochs available for SOAP")
	}

	uConfident := mat.NewDense(len(rows), opts.NC, nil)
	for i, r := range rows {
		uConfident.SetRow(i, u.RawRowView(r))
	}
	lda, err := linalg.Fit(uConfident, labels)
	if err != nil {
		return nil, err
	}

	revised := mat.DenseCopyOf(posteriors)
	var changed []int
	for i := 0; i < nr; i++ {
		_, post := lda.Predict(u.RawRowView(i))
		newConf := maxOf(post)
		if newConf <= confidence[i] {
			continue
		}
		for c, s := range order {
			revised.Set(i, c, post[pops.ClassID(order, s)])
		}
		changed = append(changed, i)
	}
	Renormalize(revised)

	return &Result{Posteriors: revised, Changed: changed}, nil
}

func hardCalls(p *mat.Dense, order []pops.Stage) ([]pops.Stage, []float64) {
	nr, nc := p.Dims()
	hard := make([]pops.Stage, nr)
	conf := make([]float64, nr)
	for r := 0; r < nr; r++ {
		best, bestV := 0, -1.0
		for c := 0; c < nc; c++ {
			v := p.At(r, c)
			if v > bestV {
				bestV, best = v, c
			}
		}
		hard[r] = order[best]
		conf[r] = bestV
	}
	return hard, conf
}

func maxOf(m map[int]float64) float64 {
	best := -1.0
	for _, v := range m {
		if v > best {
			best = v
		}
	}
	return best
}

// RescaleGrid searches a per-class likelihood rescaling factor for a
// stage that SOAP's main LDA fit excluded as under-represented
// (spec.md §4.7's "optionally ... grid-search a per-class likelihood
// rescaling factor maximizing SOAP's kappa against the resulting hard
// calls"). It rescales stage's posterior column by each candidate
// factor, takes the resulting hard calls, and returns the factor whose
// hard calls best agree (by Cohen's kappa) with the baseline hard calls
// computed before rescaling.
func RescaleGrid(posteriors *mat.Dense, order []pops.Stage, stage pops.Stage, candidates []float64) (float64, error) {
	nr, nc := posteriors.Dims()
	if nc != len(order) {
		return 0, errs.New(errs.ConstraintViolation, "refine: posterior columns != len(order)")
	}
	col := pops.ClassID(order, stage)
	if col < 0 {
		return 0, errs.New(errs.ConstraintViolation, "refine: stage not in order")
	}
	baseline, _ := hardCalls(posteriors, order)

	best, bestKappa := 1.0, -2.0
	for _, factor := range candidates {
		scaled := mat.DenseCopyOf(posteriors)
		for r := 0; r < nr; r++ {
			scaled.Set(r, col, scaled.At(r, col)*factor)
		}
		Renormalize(scaled)
		rescaledHard, _ := hardCalls(scaled, order)
		k, err := pops.Evaluate(rescaledHard, baseline, order)
		if err != nil {
			return 0, err
		}
		if k.Kappa > bestKappa {
			bestKappa, best = k.Kappa, factor
		}
	}
	return best, nil
}

// DefaultRescaleGrid is a reasonable default search range for
// RescaleGrid, a geometric sweep from 0.5x in steps of 1.5x while the
// factor stays at or below 8x (the largest factor is about 5.7x).
func DefaultRescaleGrid() []float64 {
	grid := make([]float64, 0, 16)
	for f := 0.5; f <= 8.0; f *= 1.5 {
		grid = append(grid, f)
	}
	sort.Float64s(grid)
	return grid
}
