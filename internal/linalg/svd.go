package linalg

import (
	"gonum.org/v1/gonum/mat"

	"github.com/remnrem/luna-core/internal/errs"
)

// ReducedSVD is the result of a thin SVD: X ≈ U * diag(S) * V^T, with U and
// V truncated to the first NC components.
type ReducedSVD struct {
	U  *mat.Dense // rows x nc
	S  []float64  // length nc
	V  *mat.Dense // cols x nc
	NC int
}

// SVD computes a reduced SVD of x (rows = epochs, cols = features,
// already mean-centred per individual by the caller per spec.md §4.6) and
// keeps the first nc components. Returns DegenerateNumerics if x has fewer
// than nc independent directions.
func SVD(x *mat.Dense, nc int) (*ReducedSVD, error) {
	r, c := x.Dims()
	if nc <= 0 || nc > r || nc > c {
		return nil, errs.New(errs.DegenerateNumerics, "linalg: SVD rank deficiency requesting nc components", nc)
	}
	var svd mat.SVD
	ok := svd.Factorize(x, mat.SVDThin)
	if !ok {
		return nil, errs.New(errs.DegenerateNumerics, "linalg: SVD factorization failed")
	}
	values := svd.Values(nil)

	var uFull, vFull mat.Dense
	svd.UTo(&uFull)
	svd.VTo(&vFull)

	u := mat.NewDense(r, nc, nil)
	u.Copy(uFull.Slice(0, r, 0, nc))
	v := mat.NewDense(c, nc, nil)
	v.Copy(vFull.Slice(0, c, 0, nc))

	return &ReducedSVD{U: u, S: values[:nc], V: v, NC: nc}, nil
}

// Project multiplies new, already mean-centred rows x by a previously-saved
// V, returning x*V (prediction-time use of the SVD block). It does not
// scale by the singular values.
func Project(x *mat.Dense, v *mat.Dense) *mat.Dense {
	r, _ := x.Dims()
	_, nc := v.Dims()
	out := mat.NewDense(r, nc, nil)
	out.Mul(x, v)
	return out
}
