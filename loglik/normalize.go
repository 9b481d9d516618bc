// SPDX-License-Identifier: MIT
package loglik

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DefaultBand is the half-width of the safe range around unit mass. A vector
// whose L1 mass m satisfies |m-1| ≤ DefaultBand is left unchanged.
const DefaultBand = 1e-12

var (
	// ErrDegenerate indicates an all-zero probability vector (zero likelihood path).
	ErrDegenerate = errors.New("loglik: all components are zero")

	// ErrNonFinite indicates a NaN or ±Inf component.
	ErrNonFinite = errors.New("loglik: non-finite component")

	// ErrOddLength indicates a state vector whose length is not 2d.
	ErrOddLength = errors.New("loglik: state vector length is not even")
)

// Normalize rescales v in place to unit L1 mass and adds ln(mass) to sum.
// Vectors already within DefaultBand of unit mass are left as they are.
//
// Steps:
//  1. m = Σ|v_i| (gonum floats.Norm, L1).
//  2. Reject NaN/Inf mass (ErrNonFinite) and zero mass (ErrDegenerate).
//  3. Inside the band: no-op, zero contribution.
//  4. Otherwise scale by 1/m and add ln(m).
//
// Complexity: O(len(v)).
func Normalize(v []float64, sum *Sum) error {
	// 1) L1 mass.
	m := floats.Norm(v, 1)

	// 2) Guards.
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return ErrNonFinite
	}
	if m == 0 {
		return ErrDegenerate
	}

	// 3) Already unit-ish.
	if math.Abs(m-1) <= DefaultBand {
		return nil
	}

	// 4) Rescale and record the discarded scale.
	floats.Scale(1/m, v)
	sum.Add(math.Log(m))

	return nil
}

// NormalizeNode applies Normalize to the observation half (the last d of 2d
// entries) of a state vector; the extinction half is never rescaled.
func NormalizeNode(state []float64, sum *Sum) error {
	if len(state)%2 != 0 {
		return fmt.Errorf("NormalizeNode: len=%d: %w", len(state), ErrOddLength)
	}
	d := len(state) / 2

	return Normalize(state[d:], sum)
}
