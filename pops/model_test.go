package pops

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestRenormalizeRowsRescalesToSumOne(t *testing.T) {
	p := mat.NewDense(2, 3, []float64{1, 1, 2, 0, 0, 0})
	renormalizeRows(p)
	row0 := p.RawRowView(0)
	sum := row0[0] + row0[1] + row0[2]
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("row 0 sums to %v, want 1", sum)
	}
	row1 := p.RawRowView(1)
	for _, v := range row1 {
		if math.Abs(v-1.0/3) > 1e-9 {
			t.Fatalf("degenerate row should fall back to uniform, got %v", row1)
		}
	}
}

func TestPosteriorsHardAndConfidence(t *testing.T) {
	p := mat.NewDense(2, 3, []float64{0.1, 0.7, 0.2, 0.6, 0.2, 0.2})
	po := &Posteriors{P: p, Order: ClassOrder3}
	hard := po.Hard()
	if hard[0] != ClassOrder3[1] || hard[1] != ClassOrder3[0] {
		t.Fatalf("Hard() = %v", hard)
	}
	conf := po.Confidence()
	if math.Abs(conf[0]-0.7) > 1e-9 || math.Abs(conf[1]-0.6) > 1e-9 {
		t.Fatalf("Confidence() = %v", conf)
	}
}

func TestContextEnsureModelCachesLoad(t *testing.T) {
	c := NewContext()
	calls := 0
	load := func() (*Model, error) {
		calls++
		return &Model{Order: ClassOrder5}, nil
	}
	m1, err := c.EnsureModel(load)
	if err != nil {
		t.Fatalf("EnsureModel: %v", err)
	}
	m2, err := c.EnsureModel(load)
	if err != nil {
		t.Fatalf("EnsureModel: %v", err)
	}
	if m1 != m2 {
		t.Fatal("expected the same cached model on the second call")
	}
	if calls != 1 {
		t.Fatalf("load called %d times, want 1", calls)
	}
}

func TestContextSetModelOverridesLazyLoad(t *testing.T) {
	c := NewContext()
	direct := &Model{Order: ClassOrder3}
	c.SetModel(direct)
	if c.Model() != direct {
		t.Fatal("expected Model() to return the directly-set model")
	}
}
