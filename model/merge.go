// SPDX-License-Identifier: MIT
package model

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/ssetree/loglik"
)

// Merge combines the integrated states of the first and second child of an
// internal node into a fresh 2d state and normalizes its observation half,
// adding the discarded scale to sum. Neither input is modified.
//
// Steps:
//  1. Check both lengths are 2d.
//  2. Optionally compare the extinction halves (WithExtinctionCheck).
//  3. Copy E from the second child.
//  4. Apply the kind-specific observation rule (time zones use the before set).
//  5. loglik.Normalize on the new D half.
//
// Complexity: O(d) standard, O(nnz) cladogenetic.
func (m *Model) Merge(first, second []float64, sum *loglik.Sum) ([]float64, error) {
	// 1) Shape.
	d := m.d
	if len(first) != 2*d || len(second) != 2*d {
		return nil, fmt.Errorf("Merge: len=%d,%d, want %d: %w", len(first), len(second), 2*d, ErrDimension)
	}

	// 2) Extinction agreement.
	if m.opts.checkExt && !floats.EqualApprox(first[:d], second[:d], m.opts.extTol) {
		return nil, fmt.Errorf("Merge: tol=%g: %w", m.opts.extTol, ErrExtinctionMismatch)
	}

	// 3) Extinction half.
	out := make([]float64, 2*d)
	copy(out[:d], second[:d])

	// 4) Observation half.
	rule := m
	if m.kind == KindTimeZone {
		rule = m.before
	}
	rule.mergeObservation(first[d:], second[d:], out[d:])

	// 5) Normalize.
	if err := loglik.Normalize(out[d:], sum); err != nil {
		return nil, fmt.Errorf("Merge: %w", err)
	}

	return out, nil
}

// mergeObservation writes the merged D half of a standard or cladogenetic
// model into dst.
func (m *Model) mergeObservation(d1, d2, dst []float64) {
	if m.kind == KindCladogenetic {
		for _, e := range m.entries {
			dst[e.I] += 0.5 * e.V * (d1[e.J]*d2[e.K] + d2[e.J]*d1[e.K])
		}

		return
	}
	for i := range dst {
		dst[i] = d1[i] * d2[i] * m.lambda[i]
	}
}
