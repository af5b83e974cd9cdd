package post

import "testing"

func TestDenoiseFlattensSpike(t *testing.T) {
	x := []float64{1, 1, 1, 1, 20, 1, 1, 1, 1}
	out, err := Denoise(x, 2.0, SingleBlock(len(x)))
	if err != nil {
		t.Fatalf("Denoise: %v", err)
	}
	if out[4] >= x[4] {
		t.Fatalf("out[4] = %v, want reduced from the raw spike %v", out[4], x[4])
	}
	if out[4] <= 1 {
		t.Fatalf("out[4] = %v, total-variation denoising should not erase the spike entirely", out[4])
	}
}

func TestDenoiseZeroLambdaIsIdentity(t *testing.T) {
	x := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	out, err := Denoise(x, 0, SingleBlock(len(x)))
	if err != nil {
		t.Fatalf("Denoise: %v", err)
	}
	for i, v := range out {
		if v != x[i] {
			t.Fatalf("out[%d] = %v, want %v unchanged for lambda<=0", i, v, x[i])
		}
	}
}

func TestDenoiseRespectsBlockBoundaries(t *testing.T) {
	x := []float64{0, 0, 0, 50, 50, 50}
	blocks := []Block{{0, 2}, {3, 5}}
	out, err := Denoise(x, 5, blocks)
	if err != nil {
		t.Fatalf("Denoise: %v", err)
	}
	for i := 0; i < 3; i++ {
		if out[i] > 10 {
			t.Fatalf("out[%d] = %v leaked influence from the second block", i, out[i])
		}
	}
	for i := 3; i < 6; i++ {
		if out[i] < 40 {
			t.Fatalf("out[%d] = %v leaked influence from the first block", i, out[i])
		}
	}
}

func TestDenoiseConstantSignalUnchanged(t *testing.T) {
	x := make([]float64, 6)
	for i := range x {
		x[i] = 7
	}
	out, err := Denoise(x, 3, SingleBlock(len(x)))
	if err != nil {
		t.Fatalf("Denoise: %v", err)
	}
	for i, v := range out {
		if v < 6.99 || v > 7.01 {
			t.Fatalf("out[%d] = %v, want ~7 for a constant segment (sd=0 => lambda=0)", i, v)
		}
	}
}
