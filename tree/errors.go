// SPDX-License-Identifier: MIT
package tree

import "errors"

// Sentinel errors for tree construction and the state table.
var (
	// ErrEmpty indicates a tree without internal nodes or without a state table.
	ErrEmpty = errors.New("tree: empty tree description")

	// ErrNodeOutOfRange indicates a node id outside the state table.
	ErrNodeOutOfRange = errors.New("tree: node id out of range")

	// ErrBadLength indicates a negative or non-finite branch length.
	ErrBadLength = errors.New("tree: invalid branch length")

	// ErrMalformed indicates the branches do not form a rooted binary tree.
	ErrMalformed = errors.New("tree: malformed tree")

	// ErrCycleDetected indicates parent links that loop back on themselves.
	ErrCycleDetected = errors.New("tree: cycle detected")

	// ErrNotTopological indicates Ances is not in bottom-up order.
	ErrNotTopological = errors.New("tree: ancestors not in bottom-up order")

	// ErrMissingTipState indicates a tip whose state slot was never written.
	ErrMissingTipState = errors.New("tree: missing tip state")

	// ErrDimensionMismatch indicates a state row whose length is not 2d.
	ErrDimensionMismatch = errors.New("tree: state dimension mismatch")

	// ErrBadTipState indicates a tip entry that is NaN, ±Inf or negative.
	ErrBadTipState = errors.New("tree: tip state must be finite and non-negative")

	// ErrAlreadyWritten indicates a second write to a single-assignment slot.
	ErrAlreadyWritten = errors.New("tree: state slot already written")

	// ErrNotWritten indicates a read from an empty slot.
	ErrNotWritten = errors.New("tree: state slot not written")
)
