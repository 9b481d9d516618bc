// SPDX-License-Identifier: MIT

// Dense: the transition-rate matrix, stored flat with checked accessors.
// Derivative loops read the buffer through Raw once the shape is validated.

package matrix

import (
	"fmt"
	"math"
	"strings"
)

// Operation tags used in wrapped errors.
const (
	ctxAt       = "At"
	ctxSet      = "Set"
	ctxFromRows = "FromRows"
)

// denseErrorf prefixes err with the operation tag and the offending cell.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is an r×c matrix kept in one slice, cell (i, j) at offset i*c + j.
type Dense struct {
	r, c int       // row and column counts (> 0)
	data []float64 // contiguous row-major storage (len == r*c)
}

var _ fmt.Stringer = (*Dense)(nil)

// NewDense returns a zeroed rows×cols matrix. Both sizes must be positive.
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// FromRows copies nested rows into a Dense. Empty input yields
// ErrInvalidDimensions, ragged rows ErrDimensionMismatch and NaN or ±Inf
// cells ErrNaNInf.
func FromRows(rows [][]float64) (*Dense, error) {
	// 1) Shape from the first row.
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%s: %w", ctxFromRows, ErrInvalidDimensions)
	}
	m, err := NewDense(len(rows), len(rows[0]))
	if err != nil {
		return nil, err
	}

	// 2) Copy row by row.
	var i, j int
	for i = range rows {
		if len(rows[i]) != m.c {
			return nil, fmt.Errorf("%s: row %d has %d columns, want %d: %w",
				ctxFromRows, i, len(rows[i]), m.c, ErrDimensionMismatch)
		}
		for j = range rows[i] {
			if math.IsNaN(rows[i][j]) || math.IsInf(rows[i][j], 0) {
				return nil, denseErrorf(ctxFromRows, i, j, ErrNaNInf)
			}
			m.data[i*m.c+j] = rows[i][j]
		}
	}

	return m, nil
}

// Rows is the row count.
func (m *Dense) Rows() int { return m.r }

// Cols is the column count.
func (m *Dense) Cols() int { return m.c }

// indexOf maps (row, col) to a buffer offset.
func (m *Dense) indexOf(method string, row, col int) (int, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, denseErrorf(method, row, col, ErrOutOfRange)
	}

	return row*m.c + col, nil
}

// At reads cell (row, col).
func (m *Dense) At(row, col int) (float64, error) {
	idx, err := m.indexOf(ctxAt, row, col)
	if err != nil {
		return 0, err
	}

	return m.data[idx], nil
}

// Set writes v into cell (row, col); NaN and ±Inf are refused.
func (m *Dense) Set(row, col int, v float64) error {
	idx, err := m.indexOf(ctxSet, row, col)
	if err != nil {
		return err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return denseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[idx] = v

	return nil
}

// Raw exposes the row-major backing slice. Callers must not resize it; it is
// meant for read-only hot loops after validation.
func (m *Dense) Raw() []float64 { return m.data }

// Clone copies the matrix and its buffer.
func (m *Dense) Clone() *Dense {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)

	return &Dense{r: m.r, c: m.c, data: cp}
}

// String prints one bracketed row per line.
func (m *Dense) String() string {
	var sb strings.Builder
	var i, j int
	for i = 0; i < m.r; i++ {
		sb.WriteString("[")
		for j = 0; j < m.c; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%g", m.data[i*m.c+j])
		}
		sb.WriteString("]\n")
	}

	return sb.String()
}
