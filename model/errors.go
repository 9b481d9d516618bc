// SPDX-License-Identifier: MIT
package model

import "errors"

var (
	// ErrDimension indicates inconsistent rate shapes or a state vector whose
	// length is not 2d.
	ErrDimension = errors.New("model: dimension mismatch")

	// ErrUnsupported indicates a model composition that is not available.
	ErrUnsupported = errors.New("model: unsupported model composition")

	// ErrCriticalTime indicates a NaN or infinite critical time.
	ErrCriticalTime = errors.New("model: invalid critical time")

	// ErrExtinctionMismatch indicates two children whose extinction halves
	// differ beyond the configured tolerance.
	ErrExtinctionMismatch = errors.New("model: extinction probabilities of merged children differ")

	// ErrNilModel indicates a nil sub-model.
	ErrNilModel = errors.New("model: nil sub-model")
)
