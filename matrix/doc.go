// SPDX-License-Identifier: MIT

// Package matrix holds the small numeric containers used by the SSE rate
// parameters: a row-major Dense matrix for the state-transition rates Q and a
// cubic Tensor3 for the cladogenetic speciation rates λ[i][j][k].
//
// What & Why:
//
//	Rate parameters arrive from the host as nested slices. The model layer
//	needs them flat, bounds-checked and validated once, before any branch is
//	integrated, so that the derivative kernels can index raw storage without
//	further checks.
//
// Errors:
//
//	ErrInvalidDimensions - non-positive shape.
//	ErrOutOfRange        - index outside the shape.
//	ErrDimensionMismatch - ragged rows or wrong vector length.
//	ErrNonSquare         - square matrix required.
//	ErrNaNInf            - NaN or ±Inf where finite values are required.
//	ErrNegative          - negative rate where a rate must be ≥ 0.
//
// Complexity:
//
//	At/Set are O(1). FromRows/FromNested are O(size). NonZero is O(d³).
package matrix
