package pops

import "github.com/remnrem/luna-core/internal/errs"

// Report is a staging evaluation against a manual (reference) scoring:
// overall Cohen's kappa and the raw confusion matrix (rows = manual,
// columns = predicted, both indexed by Order's position), per spec.md
// §7's "kappas against manual staging" user-visible output.
type Report struct {
	Order     []Stage
	Confusion [][]int
	Kappa     float64
}

// Evaluate compares predicted against manual stages, both already
// restricted to order's classes (by the caller, e.g. via Collapse5).
func Evaluate(predicted, manual []Stage, order []Stage) (*Report, error) {
	if len(predicted) != len(manual) {
		return nil, errs.New(errs.ConstraintViolation, "pops: predicted/manual length mismatch")
	}
	k := len(order)
	confusion := make([][]int, k)
	for i := range confusion {
		confusion[i] = make([]int, k)
	}
	n := 0
	for i := range predicted {
		pi := ClassID(order, predicted[i])
		mi := ClassID(order, manual[i])
		if pi < 0 || mi < 0 {
			continue // unscored/unknown rows contribute to neither kappa nor the table
		}
		confusion[mi][pi]++
		n++
	}
	kappa := cohenKappa(confusion, n)
	return &Report{Order: order, Confusion: confusion, Kappa: kappa}, nil
}

// cohenKappa computes Cohen's kappa from a k x k confusion matrix
// (rows = reference, columns = predicted) with n total scored epochs.
func cohenKappa(confusion [][]int, n int) float64 {
	if n == 0 {
		return 0
	}
	k := len(confusion)
	rowSum := make([]int, k)
	colSum := make([]int, k)
	agree := 0
	for i := 0; i < k; i++ {
		for j := 0; j < k; j++ {
			rowSum[i] += confusion[i][j]
			colSum[j] += confusion[i][j]
		}
		agree += confusion[i][i]
	}
	po := float64(agree) / float64(n)
	pe := 0.0
	for i := 0; i < k; i++ {
		pe += float64(rowSum[i]) * float64(colSum[i]) / (float64(n) * float64(n))
	}
	if pe >= 1 {
		return 0
	}
	return (po - pe) / (1 - pe)
}
