package post

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/remnrem/luna-core/internal/errs"
	"github.com/remnrem/luna-core/internal/linalg"
)

// Basis is a saved SVD projection basis: nfrom x nc right singular vectors
// plus their singular values, written by SVD and consumed by Project at
// prediction time.
type Basis struct {
	V *mat.Dense // nfrom x nc
	S []float64  // length nc
}

// SVD mean-centres each of x's columns within each block independently,
// computes a reduced SVD of the whole nfrom-column block, and returns the
// first nc columns of U alongside the Basis to save for later projection
// (spec.md §4.4's SVD: "mean-centre per individual... save V and Sigma to
// file for later prediction-time projection").
func SVD(x *mat.Dense, nc int, blocks []Block) (*mat.Dense, *Basis, error) {
	rows, _ := x.Dims()
	if err := validateBlocks(rows, blocks); err != nil {
		return nil, nil, err
	}
	centered := mat.DenseCopyOf(x)
	meanCenterBlocks(centered, blocks)
	svd, err := linalg.SVD(centered, nc)
	if err != nil {
		return nil, nil, err
	}
	return svd.U, &Basis{V: svd.V, S: svd.S}, nil
}

func meanCenterBlocks(x *mat.Dense, blocks []Block) {
	_, cols := x.Dims()
	for _, b := range blocks {
		n := b.Stop - b.Start + 1
		means := make([]float64, cols)
		for r := b.Start; r <= b.Stop; r++ {
			for c := 0; c < cols; c++ {
				means[c] += x.At(r, c)
			}
		}
		for c := range means {
			means[c] /= float64(n)
		}
		for r := b.Start; r <= b.Stop; r++ {
			for c := 0; c < cols; c++ {
				x.Set(r, c, x.At(r, c)-means[c])
			}
		}
	}
}

// Project applies a saved Basis to new, already mean-centred rows (a test
// individual's feature block, centred the same way training was), for
// prediction-time use of an SVD block.
func Project(x *mat.Dense, basis *Basis) *mat.Dense {
	out := linalg.Project(x, basis.V)
	r, c := out.Dims()
	for j := 0; j < c && j < len(basis.S); j++ {
		if basis.S[j] == 0 {
			continue
		}
		for i := 0; i < r; i++ {
			out.Set(i, j, out.At(i, j)/basis.S[j])
		}
	}
	return out
}

// SaveBasis writes basis in the plain-text layout of the original
// implementation's projection file (original_source/pops/pops.cpp: row
// count and nc, then V row-major, then the singular values).
func SaveBasis(w io.Writer, basis *Basis) error {
	rows, cols := basis.V.Dims()
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d %d\n", rows, cols); err != nil {
		return err
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if _, err := fmt.Fprintf(bw, " %g", basis.V.At(i, j)); err != nil {
				return err
			}
		}
	}
	if _, err := bw.WriteString("\n"); err != nil {
		return err
	}
	for _, s := range basis.S {
		if _, err := fmt.Fprintf(bw, " %g", s); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString("\n"); err != nil {
		return err
	}
	return bw.Flush()
}

// LoadBasis reads the format SaveBasis writes.
func LoadBasis(r io.Reader) (*Basis, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)
	readInt := func() (int, error) {
		if !sc.Scan() {
			return 0, errs.New(errs.MalformedInput, "post: unexpected end of basis file")
		}
		return strconv.Atoi(sc.Text())
	}
	readFloat := func() (float64, error) {
		if !sc.Scan() {
			return 0, errs.New(errs.MalformedInput, "post: unexpected end of basis file")
		}
		return strconv.ParseFloat(sc.Text(), 64)
	}
	rows, err := readInt()
	if err != nil {
		return nil, err
	}
	cols, err := readInt()
	if err != nil {
		return nil, err
	}
	v := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			f, err := readFloat()
			if err != nil {
				return nil, err
			}
			v.Set(i, j, f)
		}
	}
	s := make([]float64, cols)
	for j := 0; j < cols; j++ {
		f, err := readFloat()
		if err != nil {
			return nil, err
		}
		s[j] = f
	}
	return &Basis{V: v, S: s}, nil
}
