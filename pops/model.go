package pops

import (
	"gonum.org/v1/gonum/mat"

	"github.com/remnrem/luna-core/feature"
	"github.com/remnrem/luna-core/internal/errs"
	"github.com/remnrem/luna-core/lgbm"
)

// Model is a trained or loaded POPS booster together with the class
// ordering it predicts over (5-class or 3-class, spec.md §2).
type Model struct {
	Booster    *lgbm.Booster
	Order      []Stage
	Iterations int
}

// Train fits a new booster on x/stages under order, running up to
// iterations boosting rounds (spec.md §6's "iter" option). params is the
// LightGBM parameter string; lgbm.DefaultPOPSConfig(len(order)) is the
// usual starting point.
func Train(x *feature.Matrix, stages []Stage, order []Stage, iterations int, params string) (*Model, error) {
	ds, _, err := NewTrainingData(x, stages, order, params)
	if err != nil {
		return nil, err
	}
	return TrainDataset(ds, nil, order, iterations, params)
}

// TrainDataset fits a new booster on a Dataset already built by
// NewTrainingData, optionally with per-row weights attached via
// AttachWeights and a validation set from AttachValidation.
func TrainDataset(ds *Dataset, validation *lgbm.Dataset, order []Stage, iterations int, params string) (*Model, error) {
	b, err := lgbm.NewBooster(ds.Build(), validation, params)
	if err != nil {
		return nil, err
	}
	done, err := b.Train(iterations)
	if err != nil {
		return nil, err
	}
	return &Model{Booster: b, Order: order, Iterations: done}, nil
}

// Save writes m's booster to path.
func (m *Model) Save(path string) error { return m.Booster.Save(path) }

// Load reads a booster from path and pairs it with order, which the
// caller must supply (LightGBM model files do not record Luna's stage
// labels, only class ids).
func Load(path string, order []Stage) (*Model, error) {
	b, err := lgbm.Load(path)
	if err != nil {
		return nil, err
	}
	if b.NClasses() != len(order) {
		return nil, errs.New(errs.ConstraintViolation, "pops: model has", b.NClasses(), "classes, order has", len(order))
	}
	return &Model{Booster: b, Order: order}, nil
}

// Posteriors is an n x k posterior-probability matrix, one row per
// predicted epoch, columns in Order's order.
type Posteriors struct {
	P     *mat.Dense
	Order []Stage
}

// Predict computes posterior probabilities for every row of x. Each row
// is renormalized to sum to 1 (spec.md §9's "soft invariant": renormalize
// after every reweighting; if the row sum is below 1e-10, fall back to
// the uniform distribution).
func (m *Model) Predict(x *feature.Matrix) (*Posteriors, error) {
	data, nr, nc := flattenRows(x)
	flat, err := m.Booster.Predict(data, nr, nc)
	if err != nil {
		return nil, err
	}
	k := len(m.Order)
	if nr*k != len(flat) {
		return nil, errs.New(errs.StateError, "pops: predict returned", len(flat), "values, want", nr*k)
	}
	p := mat.NewDense(nr, k, flat)
	renormalizeRows(p)
	return &Posteriors{P: p, Order: m.Order}, nil
}

// SHAP returns per-class, per-feature attributions plus an expected
// value, shape n x (k*(nf+1)), per spec.md §4.7.
func (m *Model) SHAP(x *feature.Matrix) (*mat.Dense, error) {
	data, nr, nc := flattenRows(x)
	flat, err := m.Booster.SHAP(data, nr, nc)
	if err != nil {
		return nil, err
	}
	k := len(m.Order)
	width := k * (nc + 1)
	if nr*width != len(flat) {
		return nil, errs.New(errs.StateError, "pops: SHAP returned", len(flat), "values, want", nr*width)
	}
	return mat.NewDense(nr, width, flat), nil
}

// Hard returns, for each row, the Stage with the highest posterior.
func (po *Posteriors) Hard() []Stage {
	nr, _ := po.P.Dims()
	out := make([]Stage, nr)
	for r := 0; r < nr; r++ {
		best, bestV := 0, -1.0
		row := po.P.RawRowView(r)
		for c, v := range row {
			if v > bestV {
				bestV, best = v, c
			}
		}
		out[r] = po.Order[best]
	}
	return out
}

// Confidence returns each row's max posterior value.
func (po *Posteriors) Confidence() []float64 {
	nr, _ := po.P.Dims()
	out := make([]float64, nr)
	for r := 0; r < nr; r++ {
		row := po.P.RawRowView(r)
		best := 0.0
		for _, v := range row {
			if v > best {
				best = v
			}
		}
		out[r] = best
	}
	return out
}

// renormalizeRows rescales every row to sum to 1, falling back to a
// uniform distribution for rows whose sum underflows (spec.md §9's
// posterior-normalization design note).
func renormalizeRows(p *mat.Dense) {
	nr, nc := p.Dims()
	for r := 0; r < nr; r++ {
		sum := 0.0
		row := p.RawRowView(r)
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
