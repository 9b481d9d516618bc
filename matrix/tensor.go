// SPDX-License-Identifier: MIT

// Tensor3: cubic d×d×d storage for cladogenetic rates.
//
// Layout:
//   - flat buffer, offset = (i*d + j)*d + k.
//   - NonZero lists entries in (i,j,k) lexicographic order; derivative and merge
//     kernels iterate that list instead of the full cube.

package matrix

import (
	"fmt"
	"math"
)

const ctxFromNested = "FromNested"

// Entry is one non-zero tensor cell: rate of parent state I splitting into
// daughter states J and K.
type Entry struct {
	I, J, K int
	V       float64
}

// Tensor3 is a cubic d×d×d tensor of float64.
type Tensor3 struct {
	d    int
	data []float64
}

// NewTensor3 allocates a zero d×d×d tensor.
func NewTensor3(d int) (*Tensor3, error) {
	if d <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Tensor3{d: d, data: make([]float64, d*d*d)}, nil
}

// FromNested builds a tensor from t[i][j][k], rejecting non-cubic shapes and
// non-finite values.
// Complexity: O(d³).
func FromNested(t [][][]float64) (*Tensor3, error) {
	d := len(t)
	out, err := NewTensor3(d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ctxFromNested, err)
	}
	var i, j, k int
	for i = range t {
		if len(t[i]) != d {
			return nil, fmt.Errorf("%s: slice %d has %d rows, want %d: %w", ctxFromNested, i, len(t[i]), d, ErrDimensionMismatch)
		}
		for j = range t[i] {
			if len(t[i][j]) != d {
				return nil, fmt.Errorf("%s: row (%d,%d) has %d columns, want %d: %w",
					ctxFromNested, i, j, len(t[i][j]), d, ErrDimensionMismatch)
			}
			for k = range t[i][j] {
				v := t[i][j][k]
				if math.IsNaN(v) || math.IsInf(v, 0) {
					return nil, fmt.Errorf("%s(%d,%d,%d): %w", ctxFromNested, i, j, k, ErrNaNInf)
				}
				out.data[(i*d+j)*d+k] = v
			}
		}
	}

	return out, nil
}

// Dim returns d.
func (t *Tensor3) Dim() int { return t.d }

// At returns λ[i][j][k].
func (t *Tensor3) At(i, j, k int) (float64, error) {
	if i < 0 || i >= t.d || j < 0 || j >= t.d || k < 0 || k >= t.d {
		return 0, fmt.Errorf("Tensor3.At(%d,%d,%d): %w", i, j, k, ErrOutOfRange)
	}

	return t.data[(i*t.d+j)*t.d+k], nil
}

// Set assigns λ[i][j][k] = v.
func (t *Tensor3) Set(i, j, k int, v float64) error {
	if i < 0 || i >= t.d || j < 0 || j >= t.d || k < 0 || k >= t.d {
		return fmt.Errorf("Tensor3.Set(%d,%d,%d): %w", i, j, k, ErrOutOfRange)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("Tensor3.Set(%d,%d,%d): %w", i, j, k, ErrNaNInf)
	}
	t.data[(i*t.d+j)*t.d+k] = v

	return nil
}

// NonZero returns every entry with V != 0 in (i,j,k) order.
func (t *Tensor3) NonZero() []Entry {
	var out []Entry
	var i, j, k int
	for i = 0; i < t.d; i++ {
		for j = 0; j < t.d; j++ {
			for k = 0; k < t.d; k++ {
				if v := t.data[(i*t.d+j)*t.d+k]; v != 0 {
					out = append(out, Entry{I: i, J: j, K: k, V: v})
				}
			}
		}
	}

	return out
}

// SliceSums returns Λ_i = Σ_j Σ_k λ[i][j][k] for every parent state i.
func (t *Tensor3) SliceSums() []float64 {
	sums := make([]float64, t.d)
	stride := t.d * t.d
	var i, n int
	for i = 0; i < t.d; i++ {
		for n = 0; n < stride; n++ {
			sums[i] += t.data[i*stride+n]
		}
	}

	return sums
}
