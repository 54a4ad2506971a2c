package model

import "fmt"

// Matrix is a dense row-major embedding matrix: one row per entity, one
// column per embedding dimension. It is an immutable input to the engine;
// none of the operations in this module mutate it.
type Matrix struct {
	Data []float32
	Rows int
	Cols int
}

// NewMatrix wraps data as a Rows x Cols matrix.
// len(data) must equal rows*cols.
func NewMatrix(data []float32, rows, cols int) (Matrix, error) {
	if rows < 0 || cols <= 0 {
		return Matrix{}, fmt.Errorf("invalid matrix shape %dx%d", rows, cols)
	}
	if len(data) != rows*cols {
		return Matrix{}, fmt.Errorf("matrix data length %d does not match shape %dx%d", len(data), rows, cols)
	}
	return Matrix{Data: data, Rows: rows, Cols: cols}, nil
}

// Row returns the i-th row as a sub-slice of the underlying data.
// The slice must not be modified.
func (m Matrix) Row(i int) []float32 {
	return m.Data[i*m.Cols : (i+1)*m.Cols]
}

// Empty reports whether the matrix holds no rows.
func (m Matrix) Empty() bool { return m.Rows == 0 }

// Select returns a new matrix containing the rows whose indices are listed
// in idx, in that order.
func (m Matrix) Select(idx []int) Matrix {
	out := Matrix{
		Data: make([]float32, len(idx)*m.Cols),
		Rows: len(idx),
		Cols: m.Cols,
	}
	for r, i := range idx {
		copy(out.Data[r*m.Cols:(r+1)*m.Cols], m.Row(i))
	}
	return out
}
