package main

import (
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/remnrem/luna-core/feature"
	"github.com/remnrem/luna-core/feature/post"
	fspec "github.com/remnrem/luna-core/feature/spec"
	"github.com/remnrem/luna-core/internal/errs"
)

// applyLevel2 walks sp's level-2 blocks in declaration order and fills
// their output columns into m, mirroring
// original_source/pops/pops.cpp's level2(): a block's "from" columns are
// whatever earlier block its SourceBlock option names; its "to" columns
// are its own compiled output columns. train selects whether an SVD
// block fits a fresh basis (and saves it to b.File) or loads and
// projects a previously-saved one, matching train vs predict time.
func applyLevel2(sp *fspec.Spec, m *feature.Matrix, blocks []post.Block, train bool) error {
	for bi, b := range sp.Blocks {
		if b.Kind.Level() != 2 {
			continue
		}
		from := columnsOfBlockName(sp, b.SourceBlock)
		to := columnsOfBlock(sp, bi)
		if len(from) == 0 {
			return errs.New(errs.ConstraintViolation, "popstool:", b.Kind.String(), "block", b.Name, "references unknown source block", b.SourceBlock)
		}

		switch b.Kind {
		case fspec.Smooth:
			if len(from) != len(to) {
				return errs.New(errs.ConstraintViolation, "popstool: SMOOTH column count mismatch")
			}
			for j, fc := range from {
				out, err := post.Smooth(m.Column(fc.Name), b.HalfWindow, blocks)
				if err != nil {
					return err
				}
				m.SetColumn(to[j].Name, out)
			}
		case fspec.Denoise:
			if len(from) != len(to) {
				return errs.New(errs.ConstraintViolation, "popstool: DENOISE column count mismatch")
			}
			for j, fc := range from {
				out, err := post.Denoise(m.Column(fc.Name), b.Lambda, blocks)
				if err != nil {
					return err
				}
				m.SetColumn(to[j].Name, out)
			}
		case fspec.Norm:
			if len(from) != len(to) {
				return errs.New(errs.ConstraintViolation, "popstool: NORM column count mismatch")
			}
			for j, fc := range from {
				out, err := post.Norm(m.Column(fc.Name), b.Winsor, blocks)
				if err != nil {
					return err
				}
				m.SetColumn(to[j].Name, out)
			}
		case fspec.SVD:
			x := mat.NewDense(m.NRows(), len(from), nil)
			for j, fc := range from {
				x.SetCol(j, m.Column(fc.Name))
			}
			if train {
				u, basis, err := post.SVD(x, b.NC, blocks)
				if err != nil {
					return err
				}
				for j := range to {
					col := make([]float64, m.NRows())
					mat.Col(col, j, u)
					m.SetColumn(to[j].Name, col)
				}
				if b.File != "" {
					if err := saveBasisFile(b.File, basis); err != nil {
						return err
					}
				}
			} else {
				if b.File == "" {
					return errs.New(errs.ConstraintViolation, "popstool: SVD block", b.Name, "needs file= at prediction time")
				}
				basis, err := loadBasisFile(b.File)
				if err != nil {
					return err
				}
				meanCenterInPlace(x, blocks)
				u := post.Project(x, basis)
				for j := range to {
					col := make([]float64, m.NRows())
					mat.Col(col, j, u)
					m.SetColumn(to[j].Name, col)
				}
			}
		}
	}
	return nil
}

func meanCenterInPlace(x *mat.Dense, blocks []post.Block) {
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

func saveBasisFile(path string, basis *post.Basis) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return post.SaveBasis(f, basis)
}

func loadBasisFile(path string) (*post.Basis, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return post.LoadBasis(f)
}
