package post

// Smooth applies a centered moving average of window 2*halfWindow+1 to x
// within each block independently, per spec.md §4.4's SMOOTH. Near a
// block's edges the window shrinks to whatever neighbours are available
// rather than crossing into the next individual's epochs.
func Smooth(x []float64, halfWindow int, blocks []Block) ([]float64, error) {
	if err := validateBlocks(len(x), blocks); err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	copy(out, x)
	for _, b := range blocks {
		smoothSegment(x[b.Start:b.Stop+1], out[b.Start:b.Stop+1], halfWindow)
	}
	return out, nil
}

func smoothSegment(in, out []float64, halfWindow int) {
	n := len(in)
	for i := 0; i < n; i++ {
		lo := i - halfWindow
		if lo < 0 {
			lo = 0
		}
		hi := i + halfWindow
		if hi > n-1 {
			hi = n - 1
		}
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += in[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
}
