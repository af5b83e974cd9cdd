package post

import "math"

// Denoise applies 1D total-variation denoising to x within each block
// independently, with regularization strength lambda * sd(segment) per
// spec.md §4.4's DENOISE (grounded on original_source/pops/pops.cpp's
// dsptools::TV1D_denoise(segment, lambda*sd) call).
func Denoise(x []float64, lambda float64, blocks []Block) ([]float64, error) {
	if err := validateBlocks(len(x), blocks); err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	copy(out, x)
	for _, b := range blocks {
		seg := out[b.Start : b.Stop+1]
		sd := stddev(seg)
		tv1DDenoise(seg, lambda*sd)
	}
	return out, nil
}

func stddev(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	var mean float64
	for _, v := range x {
		mean += v
	}
	mean /= float64(len(x))
	var ss float64
	for _, v := range x {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(x)-1))
}

// tv1DDenoise solves min_x 0.5*||x-y||^2 + lambda*TV(x) in place via
// Chambolle's dual projected-gradient iteration restricted to a 1D chain:
// the dual variable q (one per adjacent pair) is projected onto
// [-lambda, lambda] after each ascent step, and the denoised signal is
// recovered as x = y - D^T q. A fixed iteration count trades exactness for
// a bounded, predictable cost; lambda <= 0 is a no-op.
func tv1DDenoise(x []float64, lambda float64) {
	n := len(x)
	if n < 2 || lambda <= 0 {
		return
	}
	y := append([]float64(nil), x...)
	q := make([]float64, n-1)
	const tau = 0.2
	const iterations = 200

	dTq := func(i int) float64 {
		var qi, qim1 float64
		if i < len(q) {
			qi = q[i]
		}
		if i-1 >= 0 && i-1 < len(q) {
			qim1 = q[i-1]
		}
		return qi - qim1
	}

	r := make([]float64, n)
	for iter := 0; iter < iterations; iter++ {
		for i := 0; i < n; i++ {
			r[i] = dTq(i) - y[i]
		}
		for k := 0; k < len(q); k++ {
			grad := r[k+1] - r[k]
			v := q[k] + tau*grad
			if v > lambda {
				v = lambda
			} else if v < -lambda {
				v = -lambda
			}
			q[k] = v
		}
	}
	for i := 0; i < n; i++ {
		x[i] = y[i] - dTq(i)
	}
}
