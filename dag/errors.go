// SPDX-License-Identifier: MIT
package dag

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph construction and execution.
var (
	// ErrNilFunc indicates AddStage was given a nil stage function.
	ErrNilFunc = errors.New("dag: stage function is nil")

	// ErrBadArity indicates a negative arity.
	ErrBadArity = errors.New("dag: arity must be non-negative")

	// ErrStageNotFound indicates a StageID outside the arena.
	ErrStageNotFound = errors.New("dag: stage not found")

	// ErrPortOutOfRange indicates a port index outside [0, arity).
	ErrPortOutOfRange = errors.New("dag: port out of range")

	// ErrPortTaken indicates a port that is already connected.
	ErrPortTaken = errors.New("dag: port already connected")

	// ErrPortUnfilled indicates a stage with an unconnected input port.
	ErrPortUnfilled = errors.New("dag: input port not connected")

	// ErrCycleDetected indicates the stage graph contains a cycle.
	ErrCycleDetected = errors.New("dag: cycle detected")

	// ErrBadWorkers indicates a negative worker count.
	ErrBadWorkers = errors.New("dag: worker count must be non-negative")

	// ErrStagePanic indicates a stage function panicked.
	ErrStagePanic = errors.New("dag: stage panicked")
)

// StageError reports the stage whose function failed first.
type StageError struct {
	ID   StageID // failing stage
	Kind string  // stage kind as given to AddStage
	Node int     // domain node the stage works on
	Err  error   // error returned by the stage function
}

// Error implements error.
func (e *StageError) Error() string {
	return fmt.Sprintf("dag: stage #%d %s node=%d: %v", e.ID, e.Kind, e.Node, e.Err)
}

// Unwrap exposes the stage function's error to errors.Is / errors.As.
func (e *StageError) Unwrap() error { return e.Err }
