// SPDX-License-Identifier: MIT
package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/katalvlaran/ssetree/dag"
	"github.com/katalvlaran/ssetree/loglik"
	"github.com/katalvlaran/ssetree/model"
	"github.com/katalvlaran/ssetree/tree"
)

// Stage kinds.
const (
	KindSeed      = "seed"
	KindIntegrate = "integrate"
	KindMerge     = "merge"
	KindCollect   = "collect"
)

// Schedule is the stage graph of one tree under one model, ready to run.
type Schedule struct {
	graph   *dag.Graph[Packet]
	desc    *tree.Description
	model   *model.Model
	cfg     config
	collect dag.StageID
}

// Plan builds the stage graph for desc under m without running it.
//
// Steps:
//  1. One seed stage per tip, in ascending node order.
//  2. For each ancestor in bottom-up order: an integrate stage for each
//     child (First, then Second) fed by the child's producer, then the
//     merge stage with ports 0/1 = First/Second.
//  3. A collect stage joining the root merge (port 0) and the integrated
//     Second child of the root (port 1).
//
// Complexity: O(n) stages and connections for n nodes.
func Plan(desc *tree.Description, m *model.Model, opts ...Option) (*Schedule, error) {
	return plan(desc, m, applyOptions(opts))
}

func plan(desc *tree.Description, m *model.Model, cfg config) (*Schedule, error) {
	if desc == nil || m == nil {
		return nil, fmt.Errorf("Plan: nil tree or model: %w", tree.ErrEmpty)
	}
	s := &Schedule{
		graph: dag.New[Packet](),
		desc:  desc,
		model: m,
		cfg:   cfg,
	}
	n := desc.NumNodes()
	producer := make([]dag.StageID, n)
	integ := make([]dag.StageID, n)
	for i := range integ {
		producer[i], integ[i] = -1, -1
	}

	// 1) Seeds.
	for _, tip := range desc.Tips() {
		id, err := s.graph.AddStage(KindSeed, tip, 0, s.seed(tip))
		if err != nil {
			return nil, fmt.Errorf("Plan: %w", err)
		}
		producer[tip] = id
	}

	// 2) Branches and merges.
	for _, a := range desc.Ances() {
		first, second, _ := desc.Children(a)
		for _, c := range [2]int{first, second} {
			b, _ := desc.BranchOf(c)
			id, err := s.graph.AddStage(KindIntegrate, c, 1, s.integrate(b.Length))
			if err != nil {
				return nil, fmt.Errorf("Plan: %w", err)
			}
			if err = s.graph.Connect(producer[c], id, 0); err != nil {
				return nil, fmt.Errorf("Plan: node %d: %w", c, err)
			}
			integ[c] = id
		}
		id, err := s.graph.AddStage(KindMerge, a, 2, s.merge(a))
		if err != nil {
			return nil, fmt.Errorf("Plan: %w", err)
		}
		for port, c := range [2]int{first, second} {
			if err = s.graph.Connect(integ[c], id, port); err != nil {
				return nil, fmt.Errorf("Plan: node %d: %w", a, err)
			}
		}
		producer[a] = id
	}

	// 3) Collect.
	root := desc.Root()
	_, rootSecond, _ := desc.Children(root)
	id, err := s.graph.AddStage(KindCollect, root, 2, collect)
	if err != nil {
		return nil, fmt.Errorf("Plan: %w", err)
	}
	if err = s.graph.Connect(producer[root], id, 0); err != nil {
		return nil, fmt.Errorf("Plan: collect: %w", err)
	}
	if err = s.graph.Connect(integ[rootSecond], id, 1); err != nil {
		return nil, fmt.Errorf("Plan: collect: %w", err)
	}
	s.collect = id
	cfg.logger.Debug("plan built",
		"model", m.String(),
		"stages", s.graph.Len(),
		"edges", s.graph.Edges(),
	)

	return s, nil
}

// Stages returns the number of stages.
func (s *Schedule) Stages() int { return s.graph.Len() }

// Describe writes the stage graph, one stage per line in topological order.
func (s *Schedule) Describe(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# model %s, %d nodes, %d tips, %d stages\n",
		s.model, s.desc.NumNodes(), len(s.desc.Tips()), s.graph.Len()); err != nil {
		return err
	}

	return s.graph.Describe(w)
}

// seed emits a private copy of the tip state.
func (s *Schedule) seed(tip int) dag.Func[Packet] {
	states := s.desc.States()

	return func(context.Context, []Packet) (Packet, error) {
		v, err := states.Get(tip)
		if err != nil {
			return Packet{}, err
		}

		return Packet{State: append([]float64(nil), v...)}, nil
	}
}

// integrate propagates the child state along its branch and normalizes the
// observation half.
func (s *Schedule) integrate(length float64) dag.Func[Packet] {
	m, cfg := s.model, s.cfg.solver

	return func(_ context.Context, in []Packet) (Packet, error) {
		out := Packet{
			State:  append([]float64(nil), in[0].State...),
			LogLik: in[0].LogLik,
		}
		if err := m.Integrate(out.State, 0, length, cfg); err != nil {
			return Packet{}, err
		}
		if err := loglik.NormalizeNode(out.State, &out.LogLik); err != nil {
			return Packet{}, err
		}

		return out, nil
	}
}

// merge combines the two integrated children and records the node state.
func (s *Schedule) merge(node int) dag.Func[Packet] {
	m, states := s.model, s.desc.States()

	return func(_ context.Context, in []Packet) (Packet, error) {
		sum := in[0].LogLik
		sum.Merge(in[1].LogLik)
		state, err := m.Merge(in[0].State, in[1].State, &sum)
		if err != nil {
			return Packet{}, err
		}
		if err = states.Set(node, state); err != nil {
			return Packet{}, err
		}

		return Packet{State: state, LogLik: sum}, nil
	}
}

// collect emits [D_root (d) | nodeM (2d)] with the root log-likelihood.
func collect(_ context.Context, in []Packet) (Packet, error) {
	root, nodeM := in[0], in[1]
	d := len(root.State) / 2
	out := make([]float64, 0, d+len(nodeM.State))
	out = append(out, root.State[d:]...)
	out = append(out, nodeM.State...)

	return Packet{State: out, LogLik: root.LogLik}, nil
}
