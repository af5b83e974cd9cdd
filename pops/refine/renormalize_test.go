package refine

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestRenormalizeRescalesRowsToSumOne(t *testing.T) {
	p := mat.NewDense(2, 2, []float64{
		1, 1,
		3, 1,
	})
	Renormalize(p)
	for r := 0; r < 2; r++ {
		row := p.RawRowView(r)
		sum := row[0] + row[1]
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("row %d sums to %v, want 1", r, sum)
		}
	}
	if math.Abs(p.At(1, 0)-0.75) > 1e-9 {
		t.Errorf("p[1][0] = %v, want 0.75", p.At(1, 0))
	}
}

func TestRenormalizeFallsBackToUniformOnUnderflow(t *testing.T) {
	p := mat.NewDense(1, 4, []float64{1e-12, 1e-12, 0, 0})
	Renormalize(p)
	row := p.RawRowView(0)
	for _, v := range row {
		if math.Abs(v-0.25) > 1e-12 {
			t.Errorf("row = %v, want all 0.25", row)
		}
	}
}
