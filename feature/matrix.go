// Package feature holds the dense feature matrix shared by feature
// extraction, post-processing, POPS staging, and the binary corpus
// (SPEC_FULL.md §3's FeatureMatrix X1).
package feature

import "gonum.org/v1/gonum/mat"

// Matrix is a dense epochs-by-features table. Unavailable values are NaN.
// E records, for each retained row, the 0-based original epoch index —
// rows are compacted after dropping epochs flagged unusable, so row index
// and epoch index diverge once any row has been dropped.
type Matrix struct {
	Data    *mat.Dense
	Columns []string
	E       []int
}

// NewMatrix allocates an empty rows x len(columns) matrix with epoch index
// e[i] == i for every row (no rows dropped yet).
func NewMatrix(rows int, columns []string) *Matrix {
	e := make([]int, rows)
	for i := range e {
		e[i] = i
	}
	return &Matrix{
		Data:    mat.NewDense(rows, len(columns), nil),
		Columns: append([]string(nil), columns...),
		E:       e,
	}
}

// NRows and NCols report the matrix's current dimensions.
func (m *Matrix) NRows() int { r, _ := m.Data.Dims(); return r }
func (m *Matrix) NCols() int { _, c := m.Data.Dims(); return c }

// ColumnIndex returns the index of name, or -1 if absent.
func (m *Matrix) ColumnIndex(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of column name's values, or nil if absent.
func (m *Matrix) Column(name string) []float64 {
	idx := m.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	out := make([]float64, m.NRows())
	for r := 0; r < m.NRows(); r++ {
		out[r] = m.Data.At(r, idx)
	}
	return out
}

// SetColumn overwrites column name in place.
func (m *Matrix) SetColumn(name string, values []float64) {
	idx := m.ColumnIndex(name)
	if idx < 0 {
		return
	}
	for r, v := range values {
		m.Data.Set(r, idx, v)
	}
}

// KeepRows returns a new Matrix containing only the given row indices, in
// order, with E remapped accordingly (the "compact the matrix" step of
// spec.md §4.5 after dropping unknown-flagged epochs).
func (m *Matrix) KeepRows(rows []int) *Matrix {
	out := &Matrix{
		Data:    mat.NewDense(len(rows), m.NCols(), nil),
		Columns: append([]string(nil), m.Columns...),
		E:       make([]int, len(rows)),
	}
	for i, r := range rows {
		for c := 0; c < m.NCols(); c++ {
			out.Data.Set(i, c, m.Data.At(r, c))
		}
		out.E[i] = m.E[r]
	}
	return out
}

// SelectColumns returns a new Matrix containing only the given column
// indices, in order (the final2orig compaction of spec.md §4.4).
func (m *Matrix) SelectColumns(cols []int) *Matrix {
	out := &Matrix{
		Data:    mat.NewDense(m.NRows(), len(cols), nil),
		Columns: make([]string, len(cols)),
		E:       append([]int(nil), m.E...),
	}
	for j, c := range cols {
		out.Columns[j] = m.Columns[c]
		for r := 0; r < m.NRows(); r++ {
			out.Data.Set(r, j, m.Data.At(r, c))
		}
	}
	return out
}
