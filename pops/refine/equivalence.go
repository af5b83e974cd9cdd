package refine

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/remnrem/luna-core/config"
	"github.com/remnrem/luna-core/internal/errs"
	"github.com/remnrem/luna-core/pops"
)

// Solution is one equivalence channel's full predict-refine result: the
// epoch indices it covers and the resulting posterior matrix over
// order, per spec.md §4.7's "(E, S, P) solution" per equivalent channel.
type Solution struct {
	Epochs     []int
	Posteriors *mat.Dense
	Order      []pops.Stage
}

// Combine merges solutions into one consensus posterior matrix over the
// union of every solution's epoch indices (spec.md §4.7's "Equivalence
// combining"). An epoch present in only one solution is copied as-is;
// an epoch present in several is combined by method. confThreshold is
// the minimum confidence a row must have to be included in
// config.GeometricMean's combination.
func Combine(solutions []Solution, method config.EquivMethod, confThreshold float64) (*Solution, error) {
	if len(solutions) == 0 {
		return nil, errs.New(errs.MissingResource, "refine: no equivalence solutions to combine")
	}
	order := solutions[0].Order
	k := len(order)

	byEpoch := map[int][][]float64{}
	var epochs []int
	seen := map[int]bool{}
	for _, s := range solutions {
		if len(s.Order) != k {
			return nil, errs.New(errs.ConstraintViolation, "refine: solutions have mismatched class orders")
		}
		for i, e := range s.Epochs {
			row := append([]float64(nil), s.Posteriors.RawRowView(i)...)
			byEpoch[e] = append(byEpoch[e], row)
			if !seen[e] {
				seen[e] = true
				epochs = append(epochs, e)
			}
		}
	}

	out := mat.NewDense(len(epochs), k, nil)
	for r, e := range epochs {
		rows := byEpoch[e]
		var combined []float64
		if len(rows) == 1 {
			combined = rows[0]
		} else {
			switch method {
			case config.GeometricMean:
				combined = geometricMean(rows, confThreshold)
			case config.ConfidenceWeightedMean:
				combined = confidenceWeightedMean(rows)
			default:
				combined = mostConfident(rows)
			}
		}
		out.SetRow(r, combined)
	}
	Renormalize(out)

	return &Solution{Epochs: epochs, Posteriors: out, Order: order}, nil
}

func rowConfidence(row []float64) float64 {
	best := 0.0
	for _, v := range row {
		if v > best {
			best = v
		}
	}
	return best
}

func mostConfident(rows [][]float64) []float64 {
	best, bestConf := rows[0], rowConfidence(rows[0])
	for _, r := range rows[1:] {
		if c := rowConfidence(r); c > bestConf {
			best, bestConf = r, c
		}
	}
	return append([]float64(nil), best...)
}

func geometricMean(rows [][]float64, confThreshold float64) []float64 {
	var eligible [][]float64
	for _, r := range rows {
		if rowConfidence(r) >= confThreshold {
			eligible = append(eligible, r)
		}
	}
	if len(eligible) == 0 {
		eligible = rows // spec doesn't define behaviour when none clear the bar; fall back to all
	}
	k := len(eligible[0])
	out := make([]float64, k)
	for c := 0; c < k; c++ {
		logSum := 0.0
		for _, r := range eligible {
			v := r[c]
			if v <= 0 {
				v = 1e-300
			}
			logSum += math.Log(v)
		}
		out[c] = math.Exp(logSum / float64(len(eligible)))
	}
	return out
}

func confidenceWeightedMean(rows [][]float64) []float64 {
	k := len(rows[0])
	out := make([]float64, k)
	weightSum := 0.0
	for _, r := range rows {
		w := rowConfidence(r)
		weightSum += w
		for c := 0; c < k; c++ {
			out[c] += w * r[c]
		}
	}
	if weightSum <= 0 {
		return mostConfident(rows)
	}
	for c := range out {
		out[c] /= weightSum
	}
	return out
}
