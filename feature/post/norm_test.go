package post

import (
	"math"
	"testing"
)

func TestNormUnitVarianceWithinBlock(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 100}
	out, err := Norm(x, 0, SingleBlock(len(x)))
	if err != nil {
		t.Fatalf("Norm: %v", err)
	}
	mean := meanOf(out)
	var ss float64
	for _, v := range out {
		ss += (v - mean) * (v - mean)
	}
	sd := math.Sqrt(ss / float64(len(out)))
	if math.Abs(sd-1) > 0.2 {
		t.Fatalf("Norm output sd = %v, want close to 1", sd)
	}
}

func TestNormRejectsWinsorOutOfRange(t *testing.T) {
	x := []float64{1, 2, 3}
	if _, err := Norm(x, 0.6, SingleBlock(len(x))); err == nil {
		t.Fatal("expected an error for winsor > 0.5")
	}
	if _, err := Norm(x, -0.1, SingleBlock(len(x))); err == nil {
		t.Fatal("expected an error for winsor < 0")
	}
}

func TestNormWinsorizesOutliers(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 1000}
	winsorized, err := Norm(x, 0.1, SingleBlock(len(x)))
	if err != nil {
		t.Fatalf("Norm: %v", err)
	}
	unwinsorized, err := Norm(x, 0, SingleBlock(len(x)))
	if err != nil {
		t.Fatalf("Norm: %v", err)
	}
	if winsorized[5] >= unwinsorized[5] {
		t.Fatalf("winsorized extreme value %v should be pulled in from the unwinsorized %v", winsorized[5], unwinsorized[5])
	}
}

func TestNormRespectsBlockBoundaries(t *testing.T) {
	x := []float64{1, 1, 1, 1000, 1000, 1000}
	blocks := []Block{{0, 2}, {3, 5}}
	out, err := Norm(x, 0, blocks)
	if err != nil {
		t.Fatalf("Norm: %v", err)
	}
	for i := 0; i < 6; i++ {
		if math.Abs(out[i]) > 1e-9 {
			t.Fatalf("out[%d] = %v, want ~0 since every block is internally constant", i, out[i])
		}
	}
}
