package post

import (
	"bytes"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSVDReducesToRequestedComponents(t *testing.T) {
	data := []float64{
		1, 2, 3,
		2, 4, 6,
		3, 1, 2,
		5, 5, 5,
		1, 0, 1,
		4, 2, 6,
	}
	x := mat.NewDense(6, 3, data)
	u, basis, err := SVD(x, 2, SingleBlock(6))
	if err != nil {
		t.Fatalf("SVD: %v", err)
	}
	r, c := u.Dims()
	if r != 6 || c != 2 {
		t.Fatalf("U dims = %dx%d, want 6x2", r, c)
	}
	vr, vc := basis.V.Dims()
	if vr != 3 || vc != 2 {
		t.Fatalf("V dims = %dx%d, want 3x2", vr, vc)
	}
	if len(basis.S) != 2 {
		t.Fatalf("len(S) = %d, want 2", len(basis.S))
	}
}

func TestSaveLoadBasisRoundTrips(t *testing.T) {
	v := mat.NewDense(3, 2, []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6})
	basis := &Basis{V: v, S: []float64{9.5, 3.25}}

	var buf bytes.Buffer
	if err := SaveBasis(&buf, basis); err != nil {
		t.Fatalf("SaveBasis: %v", err)
	}
	got, err := LoadBasis(&buf)
	if err != nil {
		t.Fatalf("LoadBasis: %v", err)
	}
	gr, gc := got.V.Dims()
	if gr != 3 || gc != 2 {
		t.Fatalf("loaded V dims = %dx%d, want 3x2", gr, gc)
	}
	for i := 0; i < gr; i++ {
		for j := 0; j < gc; j++ {
			if math.Abs(got.V.At(i, j)-v.At(i, j)) > 1e-9 {
				t.Fatalf("V[%d][%d] = %v, want %v", i, j, got.V.At(i, j), v.At(i, j))
			}
		}
	}
	for i, s := range got.S {
		if math.Abs(s-basis.S[i]) > 1e-9 {
			t.Fatalf("S[%d] = %v, want %v", i, s, basis.S[i])
		}
	}
}

func TestProjectMatchesSavedBasis(t *testing.T) {
	data := []float64{
		1, 2, 3,
		2, 4, 6,
		3, 1, 2,
		5, 5, 5,
	}
	x := mat.NewDense(4, 3, data)
	u, basis, err := SVD(x, 2, SingleBlock(4))
	if err != nil {
		t.Fatalf("SVD: %v", err)
	}
	centered := mat.DenseCopyOf(x)
	meanCenterBlocks(centered, SingleBlock(4))
	projected := Project(centered, basis)
	r, c := projected.Dims()
	if r != 4 || c != 2 {
		t.Fatalf("projected dims = %dx%d, want 4x2", r, c)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if math.Abs(projected.At(i, j)-u.At(i, j)) > 1e-6 {
				t.Fatalf("Project(centered)[%d][%d] = %v, want %v (matching U)", i, j, projected.At(i, j), u.At(i, j))
			}
		}
	}
}

func TestSVDRejectsOutOfRangeBlock(t *testing.T) {
	x := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	if _, _, err := SVD(x, 1, []Block{{0, 5}}); err == nil {
		t.Fatal("expected an error for a block exceeding the matrix row count")
	}
}
