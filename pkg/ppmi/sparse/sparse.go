// Package sparse provides an immutable compressed-sparse-row matrix.
//
// Matrix implements gonum's mat.Matrix, mat.NonZeroDoer and
// mat.RowNonZeroDoer, so it can be handed to gonum routines directly.
// Absent entries read as zero.
package sparse

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

var (
	_ mat.Matrix         = (*Matrix)(nil)
	_ mat.NonZeroDoer    = (*Matrix)(nil)
	_ mat.RowNonZeroDoer = (*Matrix)(nil)
)

type entry struct {
	col int
	val float64
}

// Builder accumulates entries for a Matrix
type Builder struct {
	rows, cols int
	data       [][]entry
}

// NewBuilder creates a builder for a rows × cols matrix
func NewBuilder(rows, cols int) *Builder {
	if rows < 0 || cols < 0 {
		panic(mat.ErrNegativeDimension)
	}
	return &Builder{rows: rows, cols: cols, data: make([][]entry, rows)}
}

// Set stores v at (i, j). Setting the same coordinate twice keeps the last value.
func (b *Builder) Set(i, j int, v float64) {
	if i < 0 || i >= b.rows {
		panic(mat.ErrRowAccess)
	}
	if j < 0 || j >= b.cols {
		panic(mat.ErrColAccess)
	}
	b.data[i] = append(b.data[i], entry{col: j, val: v})
}

// Build freezes the accumulated entries. The builder must not be used afterwards.
func (b *Builder) Build() *Matrix {
	m := &Matrix{
		rows:   b.rows,
		cols:   b.cols,
		rowPtr: make([]int, b.rows+1),
	}

	nnz := 0
	for _, row := range b.data {
		nnz += len(row)
	}
	m.colIdx = make([]int, 0, nnz)
	m.values = make([]float64, 0, nnz)

	for i, row := range b.data {
		sort.SliceStable(row, func(x, y int) bool { return row[x].col < row[y].col })
		for k, e := range row {
			if k+1 < len(row) && row[k+1].col == e.col {
				continue
			}
			m.colIdx = append(m.colIdx, e.col)
			m.values = append(m.values, e.val)
		}
		m.rowPtr[i+1] = len(m.colIdx)
	}
	b.data = nil
	return m
}

// Matrix is an immutable CSR matrix
type Matrix struct {
	rows, cols int
	rowPtr     []int
	colIdx     []int
	values     []float64
}

// Dims returns the number of rows and columns
func (m *Matrix) Dims() (r, c int) {
	return m.rows, m.cols
}

// At returns the value at (i, j), zero when no entry is stored
func (m *Matrix) At(i, j int) float64 {
	if i < 0 || i >= m.rows {
		panic(mat.ErrRowAccess)
	}
	if j < 0 || j >= m.cols {
		panic(mat.ErrColAccess)
	}
	lo, hi := m.rowPtr[i], m.rowPtr[i+1]
	cols := m.colIdx[lo:hi]
	k := sort.SearchInts(cols, j)
	if k < len(cols) && cols[k] == j {
		return m.values[lo+k]
	}
	return 0
}

// Get is At without the zero ambiguity
func (m *Matrix) Get(i, j int) (float64, bool) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		return 0, false
	}
	lo, hi := m.rowPtr[i], m.rowPtr[i+1]
	cols := m.colIdx[lo:hi]
	k := sort.SearchInts(cols, j)
	if k < len(cols) && cols[k] == j {
		return m.values[lo+k], true
	}
	return 0, false
}

// T returns the implicit transpose
func (m *Matrix) T() mat.Matrix {
	return mat.Transpose{Matrix: m}
}

// NNZ returns the number of stored entries
func (m *Matrix) NNZ() int {
	return len(m.values)
}

// RowNNZ returns the number of stored entries in row i
func (m *Matrix) RowNNZ(i int) int {
	if i < 0 || i >= m.rows {
		panic(mat.ErrRowAccess)
	}
	return m.rowPtr[i+1] - m.rowPtr[i]
}

// DoNonZero calls fn for every stored entry in row-major order
func (m *Matrix) DoNonZero(fn func(i, j int, v float64)) {
	for i := 0; i < m.rows; i++ {
		m.DoRowNonZero(i, fn)
	}
}

// DoRowNonZero calls fn for every stored entry of row i in column order
func (m *Matrix) DoRowNonZero(i int, fn func(i, j int, v float64)) {
	if i < 0 || i >= m.rows {
		panic(mat.ErrRowAccess)
	}
	for k := m.rowPtr[i]; k < m.rowPtr[i+1]; k++ {
		fn(i, m.colIdx[k], m.values[k])
	}
}

// Row returns copies of the column indices and values stored in row i
func (m *Matrix) Row(i int) ([]int, []float64) {
	if i < 0 || i >= m.rows {
		panic(mat.ErrRowAccess)
	}
	lo, hi := m.rowPtr[i], m.rowPtr[i+1]
	cols := make([]int, hi-lo)
	vals := make([]float64, hi-lo)
	copy(cols, m.colIdx[lo:hi])
	copy(vals, m.values[lo:hi])
	return cols, vals
}

// RowVector densifies row i. It panics for a matrix without columns.
func (m *Matrix) RowVector(i int) *mat.VecDense {
	v := mat.NewVecDense(m.cols, nil)
	m.DoRowNonZero(i, func(_, j int, val float64) {
		v.SetVec(j, val)
	})
	return v
}
