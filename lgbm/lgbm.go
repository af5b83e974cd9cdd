// +build cgo

// Package lgbm wraps LightGBM's C API (LGBM_*) for the gradient-boosted
// tree classifier POPS uses for sleep staging. Grounded directly on
// original_source/lgbm/lgbm.{h,cpp}'s lgbm_t: dataset creation from a
// dense row-major matrix, training via repeated LGBM_BoosterUpdateOneIter,
// LGBM_BoosterPredictForMat for posteriors, and
// LGBM_BoosterPredictForMat with the SHAP contribution predict type for
// attributions. There is no pure-Go LightGBM binding anywhere in the
// example corpus; this follows the teacher's own cgo convention (a
// `+build cgo` tag gating the real implementation, as in
// encoding/bgzf/writer_cgo.go) rather than any direct precedent for
// wrapping this particular C API.
package lgbm

/*
#cgo LDFLAGS: -l_lightgbm
#include <stdlib.h>
#include <LightGBM/c_api.h>
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/remnrem/luna-core/internal/errs"
)

// Dataset wraps a LightGBM DatasetHandle built from a dense row-major
// matrix of features, with an int32 label per row.
type Dataset struct {
	handle C.DatasetHandle
	rows   int
	cols   int
}

// NewDataset builds a LightGBM dataset from a row-major dense matrix (nr
// rows, nc columns) and per-row int labels, matching
// lgbm_t::attach_training_matrix + attach_training_labels.
func NewDataset(data []float64, nr, nc int, labels []int32, params string) (*Dataset, error) {
	if len(data) != nr*nc {
		return nil, errs.New(errs.ConstraintViolation, "lgbm: data length", len(data), "!=", nr*nc)
	}
	if len(labels) != nr {
		return nil, errs.New(errs.ConstraintViolation, "lgbm: labels length", len(labels), "!=", nr)
	}
	cParams := C.CString(params)
	defer C.free(unsafe.Pointer(cParams))

	var handle C.DatasetHandle
	ret := C.LGBM_DatasetCreateFromMat(
		unsafe.Pointer(&data[0]),
		C.C_API_DTYPE_FLOAT64,
		C.int32_t(nr),
		C.int32_t(nc),
		C.int(1), // row-major
		cParams,
		nil,
		&handle,
	)
	if ret != 0 {
		return nil, errs.New(errs.StateError, "lgbm: LGBM_DatasetCreateFromMat failed")
	}
	d := &Dataset{handle: handle, rows: nr, cols: nc}
	runtime.SetFinalizer(d, (*Dataset).free)

	cField := C.CString("label")
	defer C.free(unsafe.Pointer(cField))
	cLabels := make([]C.float, nr)
	for i, l := range labels {
		cLabels[i] = C.float(l)
	}
	ret = C.LGBM_DatasetSetField(d.handle, cField, unsafe.Pointer(&cLabels[0]), C.int32_t(nr), C.C_API_DTYPE_FLOAT32)
	if ret != 0 {
		return nil, errs.New(errs.StateError, "lgbm: LGBM_DatasetSetField(label) failed")
	}
	return d, nil
}

// SetWeights attaches a per-row training weight, via
// LGBM_DatasetSetField("weight", ...), mirroring lgbm_t's weight-field
// support used for label-level, per-observation, and per-individual
// block weight composition.
func (d *Dataset) SetWeights(weights []float64) error {
	if len(weights) != d.rows {
		return errs.New(errs.ConstraintViolation, "lgbm: weights length", len(weights), "!=", d.rows)
	}
	cField := C.CString("weight")
	defer C.free(unsafe.Pointer(cField))
	cWeights := make([]C.float, d.rows)
	for i, w := range weights {
		cWeights[i] = C.float(w)
	}
	if C.LGBM_DatasetSetField(d.handle, cField, unsafe.Pointer(&cWeights[0]), C.int32_t(d.rows), C.C_API_DTYPE_FLOAT32) != 0 {
		return errs.New(errs.StateError, "lgbm: LGBM_DatasetSetField(weight) failed")
	}
	return nil
}

func (d *Dataset) free() {
	if d.handle != nil {
		C.LGBM_DatasetFree(d.handle)
		d.handle = nil
	}
}

// Rows and Cols report the dataset's declared shape.
func (d *Dataset) Rows() int { return d.rows }
func (d *Dataset) Cols() int { return d.cols }

// Booster wraps a LightGBM BoosterHandle: the trained or loaded model
// used for Predict/SHAP. Mirrors lgbm_t's booster lifecycle (create,
// repeated UpdateOneIter, save/load).
type Booster struct {
	handle   C.BoosterHandle
	nClasses int
}

// NewBooster creates a booster bound to training (and optionally a
// validation dataset), mirroring lgbm_t::create_booster.
func NewBooster(training *Dataset, validation *Dataset, params string) (*Booster, error) {
	cParams := C.CString(params)
	defer C.free(unsafe.Pointer(cParams))

	var handle C.BoosterHandle
	ret := C.LGBM_BoosterCreate(training.handle, cParams, &handle)
	if ret != 0 {
		return nil, errs.New(errs.StateError, "lgbm: LGBM_BoosterCreate failed")
	}
	b := &Booster{handle: handle}
	runtime.SetFinalizer(b, (*Booster).free)

	if validation != nil {
		if C.LGBM_BoosterAddValidData(b.handle, validation.handle) != 0 {
			return nil, errs.New(errs.StateError, "lgbm: LGBM_BoosterAddValidData failed")
		}
	}
	var nc C.int
	if C.LGBM_BoosterGetNumClasses(b.handle, &nc) != 0 {
		return nil, errs.New(errs.StateError, "lgbm: LGBM_BoosterGetNumClasses failed")
	}
	b.nClasses = int(nc)
	return b, nil
}

func (b *Booster) free() {
	if b.handle != nil {
		C.LGBM_BoosterFree(b.handle)
		b.handle = nil
	}
}

// NClasses reports the number of stage classes the booster predicts
// over (5 for the full stage set, 3 for the collapsed set).
func (b *Booster) NClasses() int { return b.nClasses }

// Train runs up to iterations boosting rounds, stopping early if
// LightGBM reports convergence, mirroring lgbm_t::train's
// LGBM_BoosterUpdateOneIter loop.
func (b *Booster) Train(iterations int) (int, error) {
	var isFinished C.int
	done := 0
	for i := 0; i < iterations; i++ {
		if C.LGBM_BoosterUpdateOneIter(b.handle, &isFinished) != 0 {
			return done, errs.New(errs.StateError, "lgbm: LGBM_BoosterUpdateOneIter failed at iteration", i)
		}
		done++
		if isFinished != 0 {
			break
		}
	}
	return done, nil
}

// Predict returns, for nr rows of nc-column dense row-major data, the
// flattened nr x (nClasses) posterior matrix, via
// LGBM_BoosterPredictForMat with C_API_PREDICT_NORMAL.
func (b *Booster) Predict(data []float64, nr, nc int) ([]float64, error) {
	return b.predict(data, nr, nc, C.C_API_PREDICT_NORMAL)
}

// SHAP returns the flattened nr x (nClasses*(nc+1)) per-class,
// per-feature contribution matrix (the final +1 column per class is the
// expected value), via C_API_PREDICT_CONTRIB, matching
// lgbm_t::SHAP_values.
func (b *Booster) SHAP(data []float64, nr, nc int) ([]float64, error) {
	return b.predict(data, nr, nc, C.C_API_PREDICT_CONTRIB)
}

func (b *Booster) predict(data []float64, nr, nc int, predictType int) ([]float64, error) {
	if len(data) != nr*nc {
		return nil, errs.New(errs.ConstraintViolation, "lgbm: data length", len(data), "!=", nr*nc)
	}
	var outLen C.int64_t
	ret := C.LGBM_BoosterCalcNumPredict(b.handle, C.int(nr), C.int(predictType), C.int(0), C.int(-1), &outLen)
	if ret != 0 {
		return nil, errs.New(errs.StateError, "lgbm: LGBM_BoosterCalcNumPredict failed")
	}
	out := make([]C.double, int(outLen))
	var written C.int64_t
	ret = C.LGBM_BoosterPredictForMat(
		b.handle,
		unsafe.Pointer(&data[0]),
		C.C_API_DTYPE_FLOAT64,
		C.int32_t(nr),
		C.int32_t(nc),
		C.int(1),
		C.int(predictType),
		C.int(0),
		C.int(-1),
		nil,
		&written,
		&out[0],
	)
	if ret != 0 {
		return nil, errs.New(errs.StateError, "lgbm: LGBM_BoosterPredictForMat failed")
	}
	result := make([]float64, int(written))
	for i, v := range out[:int(written)] {
		result[i] = float64(v)
	}
	return result, nil
}

// Save writes the booster's model to path, via LGBM_BoosterSaveModel.
func (b *Booster) Save(path string) error {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	if C.LGBM_BoosterSaveModel(b.handle, C.int(0), C.int(-1), C.int(C.C_API_FEATURE_IMPORTANCE_SPLIT), cPath) != 0 {
		return errs.New(errs.StateError, "lgbm: LGBM_BoosterSaveModel failed for", path)
	}
	return nil
}

// Load reads a booster from a saved model file, via
// LGBM_BoosterCreateFromModelfile, mirroring lgbm_t::load_model.
func Load(path string) (*Booster, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	var numIter C.int
	var handle C.BoosterHandle
	if C.LGBM_BoosterCreateFromModelfile(cPath, &numIter, &handle) != 0 {
		return nil, errs.New(errs.MissingResource, "lgbm: failed to load model from", path)
	}
	b := &Booster{handle: handle}
	runtime.SetFinalizer(b, (*Booster).free)
	var nc C.int
	if C.LGBM_BoosterGetNumClasses(b.handle, &nc) != 0 {
		return nil, errs.New(errs.StateError, "lgbm: LGBM_BoosterGetNumClasses failed")
	}
	b.nClasses = int(nc)
	return b, nil
}

// DefaultPOPSConfig returns the LightGBM training-parameter string POPS
// uses by default, matching lgbm_t::load_pops_default_config's
// multiclass objective and tree-shape defaults.
func DefaultPOPSConfig(nClasses int) string {
	return fmt.Sprintf(
		"objective=multiclass num_class=%d metric=multi_logloss learning_rate=0.05 "+
			"num_leaves=31 min_data_in_leaf=20 feature_fraction=0.9 bagging_fraction=0.8 bagging_freq=5 verbose=-1",
		nClasses,
	)
}
