package refine

import (
	"math"
	"testing"

	"github.com/remnrem/luna-core/feature"
)

func matrixOf(rows [][]float64, columns []string) *feature.Matrix {
	m := feature.NewMatrix(len(rows), columns)
	for r, row := range rows {
		for c, v := range row {
			m.Data.Set(r, c, v)
		}
	}
	return m
}

func TestRangeGateMasksColumnExceedingProportion(t *testing.T) {
	stats := map[string]RangeStat{"MEAN": {Mean: 0, SD: 1}}
	g, err := NewRangeGate(stats, 2, 0.33)
	if err != nil {
		t.Fatalf("NewRangeGate: %v", err)
	}
	// 2 of 3 rows exceed mean +/- 2*SD: fraction 0.67 > 0.33.
	x := matrixOf([][]float64{{10}, {10}, {0.1}}, []string{"MEAN"})
	masked := g.Apply(x)
	if len(masked) != 1 || masked[0] != "MEAN" {
		t.Fatalf("masked = %v, want [MEAN]", masked)
	}
	for r := 0; r < x.NRows(); r++ {
		if !math.IsNaN(x.Data.At(r, 0)) {
			t.Fatalf("row %d not masked", r)
		}
	}
}

func TestRangeGateLeavesColumnBelowProportion(t *testing.T) {
	stats := map[string]RangeStat{"MEAN": {Mean: 0, SD: 1}}
	g, _ := NewRangeGate(stats, 4, 0.33)
	x := matrixOf([][]float64{{0.1}, {0.2}, {0.3}}, []string{"MEAN"})
	masked := g.Apply(x)
	if len(masked) != 0 {
		t.Fatalf("masked = %v, want none", masked)
	}
}

func TestNewRangeGateRejectsInvalidParams(t *testing.T) {
	if _, err := NewRangeGate(nil, -1, 0.3); err == nil {
		t.Fatal("expected error for negative th")
	}
	if _, err := NewRangeGate(nil, 4, 1.5); err == nil {
		t.Fatal("expected error for prop outside [0,1]")
	}
}
