package extract

import (
	"math"
	"testing"
)

func TestHjorthConstantSignal(t *testing.T) {
	x := make([]float64, 10)
	_, mo, c := Hjorth(x)
	if !math.IsNaN(mo) {
		t.Fatalf("mobility of a constant signal should be NaN, got %v", mo)
	}
	if !math.IsNaN(c) {
		t.Fatalf("complexity of a constant signal should be NaN, got %v", c)
	}
}

func TestHjorthSineVsNoiseComplexity(t *testing.T) {
	sine := sineWave(10, 128, 4)
	noise := make([]float64, len(sine))
	seed := uint64(98765)
	for i := range noise {
		seed = seed*6364136223846793005 + 1
		noise[i] = float64(seed>>40)/float64(1<<24) - 0.5
	}
	_, _, cSine := Hjorth(sine)
	_, _, cNoise := Hjorth(noise)
	if cNoise <= cSine {
		t.Fatalf("complexity(noise)=%v should exceed complexity(sine)=%v", cNoise, cSine)
	}
}

func TestHjorthTooShort(t *testing.T) {
	a, mo, c := Hjorth([]float64{1, 2})
	if !math.IsNaN(a) || !math.IsNaN(mo) || !math.IsNaN(c) {
		t.Fatalf("Hjorth on <3 samples should be all NaN, got %v %v %v", a, mo, c)
	}
}
