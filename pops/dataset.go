package pops

import (
	"github.com/remnrem/luna-core/feature"
	"github.com/remnrem/luna-core/feature/post"
	"github.com/remnrem/luna-core/internal/errs"
	"github.com/remnrem/luna-core/lgbm"
)

// Dataset wraps a raw LightGBM dataset together with the original
// feature-matrix row each dataset row came from, so that weights and a
// validation set can be attached after label-based dropping.
type Dataset struct {
	raw  *lgbm.Dataset
	kept []int
}

// Build returns the underlying LightGBM dataset, ready for
// lgbm.NewBooster.
func (d *Dataset) Build() *lgbm.Dataset { return d.raw }

// NewTrainingData flattens x (epochs x features) row-major and maps
// stages to class ids via order, building a Dataset ready for Train.
// Rows whose stage is not present in order are dropped (spec.md §7's
// MissingResource policy: "target unlabelled while training → record
// count and skip"); droppedCount reports how many.
func NewTrainingData(x *feature.Matrix, stages []Stage, order []Stage, params string) (ds *Dataset, droppedCount int, err error) {
	if len(stages) != x.NRows() {
		return nil, 0, errs.New(errs.ConstraintViolation, "pops: stages length", len(stages), "!= matrix rows", x.NRows())
	}
	nr, nc := x.NRows(), x.NCols()
	data := make([]float64, 0, nr*nc)
	labels := make([]int32, 0, nr)
	kept := make([]int, 0, nr)
	for r := 0; r < nr; r++ {
		id := ClassID(order, stages[r])
		if id < 0 {
			droppedCount++
			continue
		}
		for c := 0; c < nc; c++ {
			data = append(data, x.Data.At(r, c))
		}
		labels = append(labels, int32(id))
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		return nil, droppedCount, errs.New(errs.MissingResource, "pops: no labelled training rows")
	}
	raw, err := lgbm.NewDataset(data, len(kept), nc, labels, params)
	if err != nil {
		return nil, droppedCount, err
	}
	return &Dataset{raw: raw, kept: kept}, droppedCount, nil
}

// AttachValidation builds a validation LightGBM dataset from valX/
// valStages under the same class order, for LGBM_BoosterAddValidData
// (spec.md §7: "optionally attach a validation dataset referencing the
// training one, for alignment of categorical encoding").
func AttachValidation(valX *feature.Matrix, valStages []Stage, order []Stage, params string) (*lgbm.Dataset, error) {
	val, _, err := NewTrainingData(valX, valStages, order, params)
	if err != nil {
		return nil, err
	}
	return val.raw, nil
}

// LabelWeights maps a Stage to its label-level multiplicative weight.
type LabelWeights map[Stage]float64

// AttachWeights sets per-row training weights on d, composed
// multiplicatively from a label-level weight (keyed by class),
// an optional per-observation weight aligned to the original feature
// matrix d was built from, and optional per-individual block weights
// aligned to blocks (spec.md §7: "multiplicative composition of
// label-level weights, per-observation weight files, and per-individual
// block weights").
func (d *Dataset) AttachWeights(stages []Stage, label LabelWeights, perObservation []float64, blocks []post.Block, blockWeights []float64) error {
	return d.raw.SetWeights(composeWeights(d.kept, stages, label, perObservation, blocks, blockWeights))
}

// composeWeights multiplies, for each dataset row (identified by its
// original feature-matrix row index in kept), the label-level weight for
// its stage, its per-observation weight, and the per-individual block
// weight of the block it falls in. Unset factors default to 1.
func composeWeights(kept []int, stages []Stage, label LabelWeights, perObservation []float64, blocks []post.Block, blockWeights []float64) []float64 {
	blockOf := make([]float64, len(stages))
	for i := range blockOf {
		blockOf[i] = 1
	}
	for bi, b := range blocks {
		if bi >= len(blockWeights) {
			break
		}
		for r := b.Start; r <= b.Stop && r < len(blockOf); r++ {
			blockOf[r] = blockWeights[bi]
		}
	}
	w := make([]float64, len(kept))
	for i, orig := range kept {
		v := 1.0
		if label != nil {
			if lw, ok := label[stages[orig]]; ok {
				v *= lw
			}
		}
		if perObservation != nil && orig < len(perObservation) {
			v *= perObservation[orig]
		}
		if orig < len(blockOf) {
			v *= blockOf[orig]
		}
		w[i] = v
	}
	return w
}

// flattenRows row-major flattens x for prediction/SHAP calls, which take
// a plain dense matrix rather than an *lgbm.Dataset.
func flattenRows(x *feature.Matrix) ([]float64, int, int) {
	nr, nc := x.NRows(), x.NCols()
	data := make([]float64, 0, nr*nc)
	for r := 0; r < nr; r++ {
		for c := 0; c < nc; c++ {
			data = append(data, x.Data.At(r, c))
		}
	}
	return data, nr, nc
}
