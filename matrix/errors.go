// SPDX-License-Identifier: MIT

// Sentinels returned, usually wrapped, by the constructors and validators.

package matrix

import "errors"

var (
	// ErrInvalidDimensions: a size is zero or negative.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrOutOfRange: an index falls outside the matrix.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch: ragged rows or a length other than the model dimension.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNonSquare: rows and columns differ.
	ErrNonSquare = errors.New("matrix: matrix is not square")

	// ErrNaNInf: a NaN or infinite entry.
	ErrNaNInf = errors.New("matrix: NaN or Inf encountered")

	// ErrNegative: a rate below zero.
	ErrNegative = errors.New("matrix: negative rate")

	// ErrNilMatrix: the matrix or tensor is missing.
	ErrNilMatrix = errors.New("matrix: nil receiver")
)
