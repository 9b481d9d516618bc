// SPDX-License-Identifier: MIT
package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ssetree/matrix"
)

// TestNewDense_BadShape ensures non-positive shapes are rejected.
func TestNewDense_BadShape(t *testing.T) {
	_, err := matrix.NewDense(0, 2)
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions)
	_, err = matrix.NewDense(2, -1)
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

// TestDense_AtSet covers bounds checks and the finite-value guard.
func TestDense_AtSet(t *testing.T) {
	m, err := matrix.NewDense(2, 3)
	require.NoError(t, err)

	require.NoError(t, m.Set(1, 2, 4.5))
	v, err := m.At(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 4.5, v)

	_, err = m.At(2, 0)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)
	assert.ErrorIs(t, m.Set(0, 3, 1), matrix.ErrOutOfRange)
	assert.ErrorIs(t, m.Set(0, 0, math.NaN()), matrix.ErrNaNInf)
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 4.5}, m.Raw())
}

// TestFromRows verifies copy semantics and ragged-input rejection.
func TestFromRows(t *testing.T) {
	rows := [][]float64{{0, 0.01}, {0.02, 0}}
	m, err := matrix.FromRows(rows)
	require.NoError(t, err)
	rows[0][1] = 99 // must not leak into m
	v, _ := m.At(0, 1)
	assert.Equal(t, 0.01, v)
	assert.Equal(t, "[0, 0.01]\n[0.02, 0]\n", m.String())

	_, err = matrix.FromRows([][]float64{{1, 2}, {3}})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.FromRows(nil)
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions)
	_, err = matrix.FromRows([][]float64{{math.Inf(1)}})
	assert.ErrorIs(t, err, matrix.ErrNaNInf)

	cp := m.Clone()
	require.NoError(t, cp.Set(0, 0, 7))
	v, _ = m.At(0, 0)
	assert.Equal(t, 0.0, v)
}

// TestTensor3 covers nested construction, sparse listing and slice sums.
func TestTensor3(t *testing.T) {
	tt, err := matrix.FromNested([][][]float64{
		{{0.1, 0}, {0, 0}},
		{{0, 0.05}, {0.05, 0.2}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, tt.Dim())

	nz := tt.NonZero()
	require.Len(t, nz, 4)
	assert.Equal(t, matrix.Entry{I: 0, J: 0, K: 0, V: 0.1}, nz[0])
	assert.Equal(t, matrix.Entry{I: 1, J: 1, K: 1, V: 0.2}, nz[3])
	assert.InDeltaSlice(t, []float64{0.1, 0.3}, tt.SliceSums(), 1e-15)

	v, err := tt.At(1, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.05, v)
	_, err = tt.At(2, 0, 0)
	assert.ErrorIs(t, err, matrix.ErrOutOfRange)

	_, err = matrix.FromNested([][][]float64{{{1}, {2}}})
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.FromNested(nil)
	assert.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

// TestValidators walks the sentinel priority of the rate validators.
func TestValidators(t *testing.T) {
	q, _ := matrix.FromRows([][]float64{{-0.3, 0.3}, {0.1, -0.1}})
	assert.NoError(t, matrix.ValidateRateMatrix(q, 2), "negative diagonal is ignored")
	assert.ErrorIs(t, matrix.ValidateRateMatrix(nil, 2), matrix.ErrNilMatrix)
	assert.ErrorIs(t, matrix.ValidateRateMatrix(q, 3), matrix.ErrDimensionMismatch)

	rect, _ := matrix.NewDense(2, 3)
	assert.ErrorIs(t, matrix.ValidateSquare(rect, 2), matrix.ErrNonSquare)

	bad, _ := matrix.FromRows([][]float64{{0, -0.3}, {0.1, 0}})
	assert.ErrorIs(t, matrix.ValidateRateMatrix(bad, 2), matrix.ErrNegative)

	assert.NoError(t, matrix.ValidateRates([]float64{0.1, 0}, 2))
	assert.ErrorIs(t, matrix.ValidateRates([]float64{0.1}, 2), matrix.ErrDimensionMismatch)
	assert.ErrorIs(t, matrix.ValidateRates([]float64{0.1, -1}, 2), matrix.ErrNegative)
	assert.ErrorIs(t, matrix.ValidateRates([]float64{math.NaN(), 0}, 2), matrix.ErrNaNInf)

	tt, _ := matrix.NewTensor3(2)
	require.NoError(t, tt.Set(0, 1, 1, -0.5))
	assert.ErrorIs(t, matrix.ValidateTensor(tt, 2), matrix.ErrNegative)
	assert.ErrorIs(t, matrix.ValidateTensor(tt, 3), matrix.ErrDimensionMismatch)
	assert.ErrorIs(t, matrix.ValidateTensor(nil, 3), matrix.ErrNilMatrix)
}
