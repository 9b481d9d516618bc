// SPDX-License-Identifier: MIT

// Package tree describes a rooted binary phylogeny for likelihood evaluation
// and holds the per-node state table the engine fills in.
//
// What:
//
//   - Description: the validated tree. Ances lists internal nodes bottom-up
//     (every internal node after its internal children, root last); Branches
//     connects each non-root node to its parent with a length and a Side
//     (First/Second) telling the two children apart.
//   - States: an arena of per-node slots. A slot is written at most once per
//     run; tips are written by the caller, internal nodes by the engine.
//   - FromTable: builds a Description from raw [parent, child, length] rows,
//     giving First to the first row of each parent and Second to the next.
//
// Validation (New, FromTable) rejects, in order:
//
//	ErrEmpty            no internal nodes or no state table.
//	ErrNodeOutOfRange   a node id outside [0, States.Len()).
//	ErrBadLength        negative, NaN or infinite branch length.
//	ErrMalformed        not a binary tree (multiple parents, missing or
//	                    duplicated sides, unreachable nodes, wrong root).
//	ErrCycleDetected    parent links form a cycle (White/Gray/Black colouring).
//	ErrNotTopological   Ances lists an internal node before one of its
//	                    internal children.
//
// CheckStates(dim) additionally requires every tip slot to be written with a
// 2·dim vector (ErrMissingTipState, ErrDimensionMismatch).
//
// Complexity: validation is O(n) time and memory for n nodes.
package tree
