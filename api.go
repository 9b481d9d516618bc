// SPDX-License-Identifier: MIT
package ssetree

import (
	"context"
	"math"

	"github.com/katalvlaran/ssetree/engine"
	"github.com/katalvlaran/ssetree/matrix"
	"github.com/katalvlaran/ssetree/model"
	"github.com/katalvlaran/ssetree/ode"
	"github.com/katalvlaran/ssetree/tree"
)

// Tree is the raw tree description.
type Tree struct {
	// Ances lists the internal nodes bottom-up, root last.
	Ances []int
	// ForTime holds one [parent, child, length] row per branch. The first row
	// of a parent names its First child, the second row its Second child.
	ForTime [][]float64
	// States has one row per node: 2d values [E | D] for tips; internal rows
	// may be nil and are overwritten.
	States [][]float64
}

// Solver selects the integration method and tolerances. Zero values mean
// engine defaults (Cash–Karp 5(4), 1e-10 / 1e-10).
//
// ExtinctionCheck makes every merge verify that both children carry the same
// extinction half, within ExtinctionTol (0 demands equality); a mismatch is an
// ErrNumerical failure.
type Solver struct {
	Method string // "odeint::runge_kutta4", "odeint::runge_kutta_cash_karp54", "odeint::runge_kutta_dopri5"
	AbsTol float64
	RelTol float64

	ExtinctionCheck bool
	ExtinctionTol   float64
}

// ParamSet is one side of a time-zone model. Exactly one of Lambda and
// LambdaTensor is set.
type ParamSet struct {
	Lambda       []float64     // standard speciation rates (d)
	LambdaTensor [][][]float64 // cladogenetic speciation tensor (d×d×d)
	Mu           []float64     // extinction rates (d)
	Q            [][]float64   // transition rates (d×d), diagonal ignored
}

// Output is the result of one evaluation.
type Output struct {
	LogLik      float64
	MergeBranch []float64   // normalized D half of the root (d)
	NodeM       []float64   // integrated, normalized Second child of the root (2d)
	States      [][]float64 // filled state table, one 2d row per node
}

// ComputeTreeLoglik evaluates the standard model with per-state speciation
// rates lambda, extinction rates mu and transition matrix q. workers = 0 uses
// GOMAXPROCS. Extra engine options (logger, tracer, step policy) go last.
func ComputeTreeLoglik(ctx context.Context, lambda, mu []float64, q [][]float64, t Tree, workers int, s Solver, opts ...engine.Option) (*Output, error) {
	mopts, err := s.modelOptions()
	if err != nil {
		return nil, err
	}
	m, err := standard(lambda, mu, q, mopts...)
	if err != nil {
		return nil, classify(err)
	}

	return compute(ctx, m, t, workers, s, opts)
}

// ComputeTreeLoglikCla evaluates the cladogenetic model with speciation tensor
// lambda[i][j][k]. completeTree conditions on a fully observed tree.
func ComputeTreeLoglikCla(ctx context.Context, lambda [][][]float64, mu []float64, q [][]float64, t Tree, workers int, s Solver, completeTree bool, opts ...engine.Option) (*Output, error) {
	mopts, err := s.modelOptions()
	if err != nil {
		return nil, err
	}
	if completeTree {
		mopts = append(mopts, model.WithCompleteTree())
	}
	m, err := cladogenetic(lambda, mu, q, mopts...)
	if err != nil {
		return nil, classify(err)
	}

	return compute(ctx, m, t, workers, s, opts)
}

// ComputeTreeLoglikTimeZone evaluates a model whose parameters switch from
// before to after at time crit, measured from the start of each branch. Both
// sets must be of the same kind and dimension. completeTree is not available
// with time zones and yields ErrUnsupported.
func ComputeTreeLoglikTimeZone(ctx context.Context, before, after ParamSet, crit float64, t Tree, workers int, s Solver, completeTree bool, opts ...engine.Option) (*Output, error) {
	if completeTree {
		return nil, classify(model.ErrUnsupported)
	}
	mopts, err := s.modelOptions()
	if err != nil {
		return nil, err
	}
	b, err := before.build()
	if err != nil {
		return nil, classify(err)
	}
	a, err := after.build()
	if err != nil {
		return nil, classify(err)
	}
	m, err := model.NewTimeZone(b, a, crit, mopts...)
	if err != nil {
		return nil, classify(err)
	}

	return compute(ctx, m, t, workers, s, opts)
}

// compute validates the tree and solver, runs the engine and copies the
// results out.
func compute(ctx context.Context, m *model.Model, t Tree, workers int, s Solver, opts []engine.Option) (*Output, error) {
	// 1) Engine options.
	if workers < 0 {
		return nil, invalidf("workers=%d must be ≥ 0", workers)
	}
	if !(s.AbsTol >= 0) || !(s.RelTol >= 0) || math.IsInf(s.AbsTol, 0) || math.IsInf(s.RelTol, 0) {
		return nil, invalidf("tolerances (%g, %g) must be finite and ≥ 0", s.AbsTol, s.RelTol)
	}
	eopts := []engine.Option{engine.WithWorkers(workers)}
	if s.Method != "" {
		eopts = append(eopts, engine.WithMethod(ode.Method(s.Method)))
	}
	if s.AbsTol > 0 || s.RelTol > 0 {
		abs, rel := s.AbsTol, s.RelTol
		if abs == 0 {
			abs = engine.DefaultAbsTol
		}
		if rel == 0 {
			rel = engine.DefaultRelTol
		}
		eopts = append(eopts, engine.WithTolerances(abs, rel))
	}
	eopts = append(eopts, opts...)

	// 2) Tree.
	desc, err := tree.FromTable(t.Ances, t.ForTime, tree.FromRows(t.States))
	if err != nil {
		return nil, classify(err)
	}

	// 3) Run.
	res, err := engine.Run(ctx, desc, m, eopts...)
	if err != nil {
		return nil, classify(err)
	}

	return &Output{
		LogLik:      res.LogLik,
		MergeBranch: res.MergeBranch,
		NodeM:       res.NodeM,
		States:      desc.States().Rows(),
	}, nil
}

// modelOptions maps the merge checks of s onto model options.
func (s Solver) modelOptions() ([]model.Option, error) {
	if !s.ExtinctionCheck {
		return nil, nil
	}
	if !(s.ExtinctionTol >= 0) || math.IsInf(s.ExtinctionTol, 0) {
		return nil, invalidf("extinction tolerance %g must be finite and ≥ 0", s.ExtinctionTol)
	}

	return []model.Option{model.WithExtinctionCheck(s.ExtinctionTol)}, nil
}

func standard(lambda, mu []float64, q [][]float64, opts ...model.Option) (*model.Model, error) {
	qm, err := matrix.FromRows(q)
	if err != nil {
		return nil, err
	}

	return model.NewStandard(model.Rates{Lambda: lambda, Mu: mu, Q: qm}, opts...)
}

func cladogenetic(lambda [][][]float64, mu []float64, q [][]float64, opts ...model.Option) (*model.Model, error) {
	lam, err := matrix.FromNested(lambda)
	if err != nil {
		return nil, err
	}
	qm, err := matrix.FromRows(q)
	if err != nil {
		return nil, err
	}

	return model.NewCladogenetic(model.CladoRates{Lambda: lam, Mu: mu, Q: qm}, opts...)
}

// build turns a parameter set into a standard or cladogenetic model.
func (p ParamSet) build() (*model.Model, error) {
	switch {
	case p.Lambda != nil && p.LambdaTensor != nil:
		return nil, invalidf("parameter set has both lambda and lambda tensor")
	case p.LambdaTensor != nil:
		return cladogenetic(p.LambdaTensor, p.Mu, p.Q)
	default:
		return standard(p.Lambda, p.Mu, p.Q)
	}
}
