// SPDX-License-Identifier: MIT
//
// File: graph.go
// Role: stage arena, port wiring and Kahn ordering.
// Policy:
//   - A Graph is built by one goroutine and is read-only once Execute starts.
//   - Stages are referenced by index; there are no pointers between stages.

package dag

import (
	"context"
	"fmt"
)

// StageID indexes a stage inside its Graph.
type StageID int

// noStage marks an unconnected port.
const noStage StageID = -1

// Func computes a stage output from its inputs, delivered in port order.
// The inputs slice is owned by the executor; Func must not retain it.
type Func[T any] func(ctx context.Context, in []T) (T, error)

// Info is a read-only view of one stage.
type Info struct {
	ID     StageID
	Kind   string    // free-form label, e.g. "merge"
	Node   int       // domain node id, -1 when not applicable
	Inputs []StageID // producer per port
	Next   []StageID // consumers, in connection order
}

type edge struct {
	to   StageID
	port int
}

type stage[T any] struct {
	kind string
	node int
	fn   Func[T]
	in   []StageID // producer per port, noStage when open
	out  []edge
}

// Graph is an arena of stages producing values of type T.
type Graph[T any] struct {
	stages []stage[T]
	edges  int
}

// New returns an empty graph.
func New[T any]() *Graph[T] {
	return &Graph[T]{}
}

// Len returns the number of stages.
func (g *Graph[T]) Len() int { return len(g.stages) }

// Edges returns the number of connections.
func (g *Graph[T]) Edges() int { return g.edges }

// AddStage appends a stage with arity input ports and returns its id.
// Errors: ErrNilFunc, ErrBadArity.
// Complexity: amortized O(arity).
func (g *Graph[T]) AddStage(kind string, node, arity int, fn Func[T]) (StageID, error) {
	if fn == nil {
		return noStage, fmt.Errorf("AddStage(%s, node=%d): %w", kind, node, ErrNilFunc)
	}
	if arity < 0 {
		return noStage, fmt.Errorf("AddStage(%s, node=%d): arity=%d: %w", kind, node, arity, ErrBadArity)
	}
	in := make([]StageID, arity)
	for i := range in {
		in[i] = noStage
	}
	g.stages = append(g.stages, stage[T]{kind: kind, node: node, fn: fn, in: in})

	return StageID(len(g.stages) - 1), nil
}

// Connect routes the output of from into input port `port` of to.
// Errors: ErrStageNotFound, ErrPortOutOfRange, ErrPortTaken,
// ErrCycleDetected (from == to).
// Complexity: O(1).
func (g *Graph[T]) Connect(from, to StageID, port int) error {
	if !g.has(from) || !g.has(to) {
		return fmt.Errorf("Connect(#%d→#%d): %w", from, to, ErrStageNotFound)
	}
	if from == to {
		return fmt.Errorf("Connect(#%d→#%d): %w", from, to, ErrCycleDetected)
	}
	dst := &g.stages[to]
	if port < 0 || port >= len(dst.in) {
		return fmt.Errorf("Connect(#%d→#%d:%d): arity %d: %w", from, to, port, len(dst.in), ErrPortOutOfRange)
	}
	if dst.in[port] != noStage {
		return fmt.Errorf("Connect(#%d→#%d:%d): fed by #%d: %w", from, to, port, dst.in[port], ErrPortTaken)
	}
	dst.in[port] = from
	g.stages[from].out = append(g.stages[from].out, edge{to: to, port: port})
	g.edges++

	return nil
}

// Stage returns a copy of the descriptor of id.
func (g *Graph[T]) Stage(id StageID) (Info, error) {
	if !g.has(id) {
		return Info{}, fmt.Errorf("Stage(#%d): %w", id, ErrStageNotFound)
	}
	s := &g.stages[id]
	info := Info{
		ID:     id,
		Kind:   s.kind,
		Node:   s.node,
		Inputs: append([]StageID(nil), s.in...),
		Next:   make([]StageID, len(s.out)),
	}
	for i, e := range s.out {
		info.Next[i] = e.to
	}

	return info, nil
}

// Validate checks that every input port is connected.
func (g *Graph[T]) Validate() error {
	for id := range g.stages {
		for port, from := range g.stages[id].in {
			if from == noStage {
				return fmt.Errorf("Validate: #%d %s port %d: %w", id, g.stages[id].kind, port, ErrPortUnfilled)
			}
		}
	}

	return nil
}

// TopologicalOrder returns every stage so that producers precede consumers.
// Among stages that become ready together the lower id comes first, so the
// order is a pure function of the graph.
//
// Steps:
//  1. indegree[s] = number of connected ports of s.
//  2. Seed a FIFO with indegree-0 stages in id order.
//  3. Pop, emit, decrement successors; enqueue those reaching zero.
//  4. Fewer emitted than stages ⇒ ErrCycleDetected.
//
// Complexity: O(S + E).
func (g *Graph[T]) TopologicalOrder() ([]StageID, error) {
	// 1) In-degrees over connected ports only.
	n := len(g.stages)
	indeg := make([]int, n)
	for id := range g.stages {
		for _, from := range g.stages[id].in {
			if from != noStage {
				indeg[id]++
			}
		}
	}

	// 2) Seed.
	queue := make([]StageID, 0, n)
	for id := 0; id < n; id++ {
		if indeg[id] == 0 {
			queue = append(queue, StageID(id))
		}
	}

	// 3) Drain; queue doubles as the output slice.
	for head := 0; head < len(queue); head++ {
		for _, e := range g.stages[queue[head]].out {
			indeg[e.to]--
			if indeg[e.to] == 0 {
				queue = append(queue, e.to)
			}
		}
	}

	// 4) Leftovers sit on a cycle.
	if len(queue) != n {
		return nil, fmt.Errorf("TopologicalOrder: %d of %d stages ordered: %w", len(queue), n, ErrCycleDetected)
	}

	return queue, nil
}

func (g *Graph[T]) has(id StageID) bool {
	return id >= 0 && int(id) < len(g.stages)
}
