// SPDX-License-Identifier: MIT
package loglik

import "math"

// Sum is a running log-likelihood with Neumaier compensation. The zero value
// is an empty sum. Sum is a value type: copy it into a stage, add to it, and
// hand it on; concurrent stages never share one.
type Sum struct {
	hi float64 // running total
	lo float64 // accumulated rounding error
}

// Add folds x into the sum.
func (s *Sum) Add(x float64) {
	t := s.hi + x
	if math.Abs(s.hi) >= math.Abs(x) {
		s.lo += (s.hi - t) + x
	} else {
		s.lo += (x - t) + s.hi
	}
	s.hi = t
}

// Merge folds another sum into s. Merge(a) then Merge(b) is the reduction used
// at a merge stage, always in first-child, second-child order.
func (s *Sum) Merge(o Sum) {
	s.Add(o.hi)
	s.Add(o.lo)
}

// Value returns the compensated total.
func (s Sum) Value() float64 {
	return s.hi + s.lo
}
