// SPDX-License-Identifier: MIT
//
// File: execute.go
// Role: bounded worker pool driving a Graph to completion.

package dag

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Hook observes each finished stage. It runs on the worker goroutine and must
// be safe for concurrent use.
type Hook func(info Info, elapsed time.Duration, err error)

// ExecOption configures Execute.
type ExecOption func(*execOptions)

type execOptions struct {
	hook Hook
}

// WithHook installs h, called once per executed stage.
// Panics if h is nil.
func WithHook(h Hook) ExecOption {
	if h == nil {
		panic("dag: WithHook(nil)")
	}

	return func(o *execOptions) { o.hook = h }
}

// run is the shared state of one Execute call.
type run[T any] struct {
	g       *Graph[T]
	opts    execOptions
	inputs  [][]T   // per stage, indexed by port
	outputs []T     // per stage
	pending []int32 // unfilled ports per stage
	left    atomic.Int64
	ready   chan StageID

	once   sync.Once
	err    error
	cancel context.CancelFunc
}

// EffectiveWorkers is the number of goroutines Execute starts for n stages:
// 0 means GOMAXPROCS, and the count never exceeds n.
func EffectiveWorkers(workers, n int) int {
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	return workers
}

// Execute runs every stage of g and returns their outputs indexed by
// StageID. workers == 0 uses runtime.GOMAXPROCS(0) goroutines.
//
// Steps:
//  1. Validate ports, ordering and worker count.
//  2. Seed the ready queue with arity-0 stages.
//  3. Start the workers; each loops pop → run → release successors.
//  4. Wait; report the first stage failure or the context error.
//
// The ready queue has room for every stage, so enqueueing never blocks.
func (g *Graph[T]) Execute(ctx context.Context, workers int, opts ...ExecOption) ([]T, error) {
	// 1) Preconditions.
	if workers < 0 {
		return nil, fmt.Errorf("Execute: workers=%d: %w", workers, ErrBadWorkers)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if _, err := g.TopologicalOrder(); err != nil {
		return nil, err
	}
	n := len(g.stages)
	if n == 0 {
		return nil, nil
	}
	workers = EffectiveWorkers(workers, n)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	r := &run[T]{
		g:       g,
		inputs:  make([][]T, n),
		outputs: make([]T, n),
		pending: make([]int32, n),
		ready:   make(chan StageID, n),
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(&r.opts)
	}
	r.left.Store(int64(n))

	// 2) Seed.
	for id := range g.stages {
		arity := len(g.stages[id].in)
		r.inputs[id] = make([]T, arity)
		r.pending[id] = int32(arity)
		if arity == 0 {
			r.ready <- StageID(id)
		}
	}

	// 3) Workers.
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			r.work(ctx)
		}()
	}

	// 4) Join.
	wg.Wait()
	if r.err != nil {
		return nil, r.err
	}
	if r.left.Load() != 0 {
		return nil, fmt.Errorf("Execute: %d stages not run: %w", r.left.Load(), context.Cause(ctx))
	}

	return r.outputs, nil
}

// work pops stages until the queue is closed or the run is cancelled.
func (r *run[T]) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-r.ready:
			if !ok {
				return
			}
			if !r.step(ctx, id) {
				return
			}
		}
	}
}

// step runs one stage and releases its successors. It reports false once the
// run has failed.
func (r *run[T]) step(ctx context.Context, id StageID) bool {
	s := &r.g.stages[id]
	start := time.Now()
	out, err := r.call(ctx, s, r.inputs[id])
	if r.opts.hook != nil {
		info, _ := r.g.Stage(id)
		r.opts.hook(info, time.Since(start), err)
	}
	if err != nil {
		r.fail(&StageError{ID: id, Kind: s.kind, Node: s.node, Err: err})

		return false
	}

	r.outputs[id] = out
	r.inputs[id] = nil // inputs are dead once consumed
	for _, e := range s.out {
		r.inputs[e.to][e.port] = out
		if atomic.AddInt32(&r.pending[e.to], -1) == 0 {
			r.ready <- e.to
		}
	}
	if r.left.Add(-1) == 0 {
		close(r.ready) // last stage: no sender remains
	}

	return true
}

// call invokes the stage function, turning a panic into ErrStagePanic.
func (r *run[T]) call(ctx context.Context, s *stage[T], in []T) (out T, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrStagePanic, p)
		}
	}()
	if err = ctx.Err(); err != nil {
		return out, err
	}

	return s.fn(ctx, in)
}

// fail records the first error and cancels the run.
func (r *run[T]) fail(err error) {
	r.once.Do(func() {
		r.err = err
		r.cancel()
	})
}

// IsStageError reports whether err carries a *StageError and returns it.
func IsStageError(err error) (*StageError, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se, true
	}

	return nil, false
}
