// SPDX-License-Identifier: MIT

// Rate checks shared by the model constructors. Every validator inspects
// presence first, then shape, then the values, and never allocates.

package matrix

import (
	"fmt"
	"math"
)

// validatorErrorf tags err with the validator that rejected the input.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateSquare checks that m is non-nil and n×n.
// Errors: ErrNilMatrix, ErrNonSquare, ErrDimensionMismatch (n differs).
func ValidateSquare(m *Dense, n int) error {
	if m == nil {
		return validatorErrorf("ValidateSquare", ErrNilMatrix)
	}
	if m.r != m.c {
		return validatorErrorf("ValidateSquare", ErrNonSquare)
	}
	if m.r != n {
		return validatorErrorf(fmt.Sprintf("ValidateSquare: %d×%d, want %d×%d", m.r, m.c, n, n), ErrDimensionMismatch)
	}

	return nil
}

// ValidateRateMatrix checks a transition-rate matrix: square n×n with finite,
// non-negative off-diagonal entries. The diagonal is ignored (rows are balanced
// implicitly by the model).
func ValidateRateMatrix(m *Dense, n int) error {
	if err := ValidateSquare(m, n); err != nil {
		return err
	}
	var i, j int
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			if i == j {
				continue // diagonal carries no information
			}
			if m.data[i*n+j] < 0 {
				return validatorErrorf(fmt.Sprintf("ValidateRateMatrix(%d,%d)", i, j), ErrNegative)
			}
		}
	}

	return nil
}

// ValidateRates checks a per-state rate vector: exact length n, finite, ≥ 0.
func ValidateRates(x []float64, n int) error {
	if len(x) != n {
		return validatorErrorf(fmt.Sprintf("ValidateRates: len %d, want %d", len(x), n), ErrDimensionMismatch)
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return validatorErrorf(fmt.Sprintf("ValidateRates[%d]", i), ErrNaNInf)
		}
		if v < 0 {
			return validatorErrorf(fmt.Sprintf("ValidateRates[%d]", i), ErrNegative)
		}
	}

	return nil
}

// ValidateTensor checks a speciation tensor: non-nil, dimension n, entries ≥ 0
// (finiteness is guaranteed by construction).
func ValidateTensor(t *Tensor3, n int) error {
	if t == nil {
		return validatorErrorf("ValidateTensor", ErrNilMatrix)
	}
	if t.d != n {
		return validatorErrorf(fmt.Sprintf("ValidateTensor: dim %d, want %d", t.d, n), ErrDimensionMismatch)
	}
	for idx, v := range t.data {
		if v < 0 {
			i, rem := idx/(n*n), idx%(n*n)
			return validatorErrorf(fmt.Sprintf("ValidateTensor(%d,%d,%d)", i, rem/n, rem%n), ErrNegative)
		}
	}

	return nil
}
