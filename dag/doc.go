// SPDX-License-Identifier: MIT

// Package dag is a small dataflow executor: an arena of typed stages joined by
// numbered input ports, run by a bounded pool of workers.
//
// What:
//
//   - Graph[T]: stages are appended with AddStage and referenced by StageID
//     (an index into the arena). Each stage declares an arity; Connect feeds
//     the output of one stage into a specific input port of another. Port
//     numbers carry meaning (a merge stage sees its first child on port 0),
//     so inputs are never reordered.
//   - TopologicalOrder: Kahn's algorithm with ties broken by StageID.
//   - Execute: runs every stage once its ports are filled, on at most
//     `workers` goroutines, and returns the output of every stage.
//   - Describe: a stable, line-per-stage text rendering of the plan.
//
// Execution model:
//
//	pending[s] = arity(s)            counters updated with atomics
//	ready      = buffered queue       seeded with all arity-0 stages
//	worker     : pop → run → write outputs into successor ports →
//	             decrement their counters → enqueue those reaching zero
//
// A stage never waits on another while running. The first failing stage
// cancels the run; Execute then returns a *StageError naming the stage.
// Panics inside a stage are recovered and reported as ErrStagePanic.
//
// Errors:
//
//   - ErrNilFunc, ErrBadArity, ErrStageNotFound, ErrPortOutOfRange,
//     ErrPortTaken              construction misuse.
//   - ErrPortUnfilled           Execute on a graph with an open port.
//   - ErrCycleDetected          the stage graph is not acyclic.
//   - ErrBadWorkers             negative worker count.
//   - *StageError               a stage function failed (wraps its error).
//
// Complexity: O(S + E) scheduling work for S stages and E connections, plus
// the cost of the stage functions themselves.
package dag
