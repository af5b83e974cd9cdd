// +build !cgo

package lgbm

import "fmt"

// Dataset is the no-cgo stand-in; every operation panics.
type Dataset struct{}

// Booster is the no-cgo stand-in; every operation panics.
type Booster struct{}

func (d *Dataset) Rows() int                        { panic("lgbm: requires cgo") }
func (d *Dataset) Cols() int                        { panic("lgbm: requires cgo") }
func (d *Dataset) SetWeights(weights []float64) error { panic("lgbm: requires cgo") }

func NewDataset(data []float64, nr, nc int, labels []int32, params string) (*Dataset, error) {
	panic("lgbm: requires cgo")
}

func NewBooster(training *Dataset, validation *Dataset, params string) (*Booster, error) {
	panic("lgbm: requires cgo")
}

func (b *Booster) NClasses() int                                       { panic("lgbm: requires cgo") }
func (b *Booster) Train(iterations int) (int, error)                   { panic("lgbm: requires cgo") }
func (b *Booster) Predict(data []float64, nr, nc int) ([]float64, error) { panic("lgbm: requires cgo") }
func (b *Booster) SHAP(data []float64, nr, nc int) ([]float64, error)  { panic("lgbm: requires cgo") }
func (b *Booster) Save(path string) error                              { panic("lgbm: requires cgo") }

func Load(path string) (*Booster, error) { panic("lgbm: requires cgo") }

// DefaultPOPSConfig has no cgo dependency and works in both builds.
func DefaultPOPSConfig(nClasses int) string {
	return fmt.Sprintf("objective=multiclass num_class=%d", nClasses)
}
