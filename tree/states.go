// SPDX-License-Identifier: MIT
package tree

import (
	"fmt"
	"sync/atomic"
)

// States is the per-node state table. Each slot holds one vector and is
// single-assignment: Set succeeds once until the slot is cleared. Distinct
// slots may be written concurrently without further locking.
type States struct {
	slots []atomic.Pointer[[]float64]
}

// NewStates allocates n empty slots.
func NewStates(n int) *States {
	if n < 0 {
		n = 0
	}

	return &States{slots: make([]atomic.Pointer[[]float64], n)}
}

// FromRows builds a table with one slot per row; nil or empty rows stay empty.
// Rows are copied.
func FromRows(rows [][]float64) *States {
	s := NewStates(len(rows))
	for i, r := range rows {
		if len(r) == 0 {
			continue
		}
		cp := append([]float64(nil), r...)
		s.slots[i].Store(&cp)
	}

	return s
}

// Len returns the number of slots.
func (s *States) Len() int { return len(s.slots) }

// Set stores v in slot node, taking ownership of v.
// Errors: ErrNodeOutOfRange, ErrAlreadyWritten.
func (s *States) Set(node int, v []float64) error {
	if node < 0 || node >= len(s.slots) {
		return fmt.Errorf("States.Set(%d): %w", node, ErrNodeOutOfRange)
	}
	if !s.slots[node].CompareAndSwap(nil, &v) {
		return fmt.Errorf("States.Set(%d): %w", node, ErrAlreadyWritten)
	}

	return nil
}

// Get returns the vector in slot node. The slice is shared; callers must not
// modify it.
// Errors: ErrNodeOutOfRange, ErrNotWritten.
func (s *States) Get(node int) ([]float64, error) {
	if node < 0 || node >= len(s.slots) {
		return nil, fmt.Errorf("States.Get(%d): %w", node, ErrNodeOutOfRange)
	}
	p := s.slots[node].Load()
	if p == nil {
		return nil, fmt.Errorf("States.Get(%d): %w", node, ErrNotWritten)
	}

	return *p, nil
}

// Written reports whether slot node holds a vector.
func (s *States) Written(node int) bool {
	return node >= 0 && node < len(s.slots) && s.slots[node].Load() != nil
}

// Clear empties slot node; out-of-range ids are ignored.
func (s *States) Clear(node int) {
	if node >= 0 && node < len(s.slots) {
		s.slots[node].Store(nil)
	}
}

// Rows returns a copy of the table; empty slots are nil.
func (s *States) Rows() [][]float64 {
	out := make([][]float64, len(s.slots))
	for i := range s.slots {
		if p := s.slots[i].Load(); p != nil {
			out[i] = append([]float64(nil), (*p)...)
		}
	}

	return out
}
