// SPDX-License-Identifier: MIT
package ssetree_test

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ssetree"
	"github.com/katalvlaran/ssetree/engine"
	"github.com/katalvlaran/ssetree/loglik"
	"github.com/katalvlaran/ssetree/model"
	"github.com/katalvlaran/ssetree/ode"
	"github.com/katalvlaran/ssetree/tree"
)

var (
	lambda = []float64{0.1, 0.2}
	mu     = []float64{0.05, 0.05}
	q      = [][]float64{{0, 0.01}, {0.01, 0}}
	quiet  = engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
)

// threeTips is ((0,1)3,2)4 with unit branches.
func threeTips() ssetree.Tree {
	return ssetree.Tree{
		Ances:   []int{3, 4},
		ForTime: [][]float64{{3, 0, 1}, {3, 1, 1}, {4, 3, 1}, {4, 2, 1}},
		States: [][]float64{
			{0, 0, 1, 0},
			{0, 0, 0, 1},
			{0, 0, 1, 0},
			nil,
			nil,
		},
	}
}

func TestComputeTreeLoglik(t *testing.T) {
	out, err := ssetree.ComputeTreeLoglik(context.Background(), lambda, mu, q, threeTips(), 2, ssetree.Solver{}, quiet)
	require.NoError(t, err)

	assert.Less(t, out.LogLik, 0.0)
	require.Len(t, out.MergeBranch, 2)
	assert.InDelta(t, 1.0, out.MergeBranch[0]+out.MergeBranch[1], 1e-12)
	require.Len(t, out.NodeM, 4)
	assert.InDelta(t, 1.0, out.NodeM[2]+out.NodeM[3], 1e-12)
	require.Len(t, out.States, 5)
	for node, row := range out.States {
		assert.Len(t, row, 4, "node %d", node)
	}
	assert.Equal(t, out.MergeBranch, out.States[4][2:])
}

// TestComputeTreeLoglik_Methods: all methods agree on a smooth problem.
func TestComputeTreeLoglik_Methods(t *testing.T) {
	base, err := ssetree.ComputeTreeLoglik(context.Background(), lambda, mu, q, threeTips(), 1, ssetree.Solver{}, quiet)
	require.NoError(t, err)
	for _, m := range ode.Methods() {
		out, err := ssetree.ComputeTreeLoglik(context.Background(), lambda, mu, q, threeTips(), 1,
			ssetree.Solver{Method: string(m), AbsTol: 1e-12, RelTol: 1e-12}, quiet)
		require.NoError(t, err, m)
		assert.InDelta(t, base.LogLik, out.LogLik, 1e-7, m)
	}
}

func TestComputeTreeLoglikCla_Diagonal(t *testing.T) {
	base, err := ssetree.ComputeTreeLoglik(context.Background(), lambda, mu, q, threeTips(), 0, ssetree.Solver{}, quiet)
	require.NoError(t, err)

	tensor := [][][]float64{
		{{0.1, 0}, {0, 0}},
		{{0, 0}, {0, 0.2}},
	}
	out, err := ssetree.ComputeTreeLoglikCla(context.Background(), tensor, mu, q, threeTips(), 0, ssetree.Solver{}, false, quiet)
	require.NoError(t, err)
	assert.InDelta(t, base.LogLik, out.LogLik, 1e-9)
	assert.InDeltaSlice(t, base.MergeBranch, out.MergeBranch, 1e-9)

	// Complete-tree conditioning changes the answer but stays valid.
	full, err := ssetree.ComputeTreeLoglikCla(context.Background(), tensor, mu, q, threeTips(), 0, ssetree.Solver{}, true, quiet)
	require.NoError(t, err)
	assert.NotEqual(t, out.LogLik, full.LogLik)
}

func TestComputeTreeLoglikTimeZone(t *testing.T) {
	base, err := ssetree.ComputeTreeLoglik(context.Background(), lambda, mu, q, threeTips(), 0, ssetree.Solver{}, quiet)
	require.NoError(t, err)

	set := ssetree.ParamSet{Lambda: lambda, Mu: mu, Q: q}
	out, err := ssetree.ComputeTreeLoglikTimeZone(context.Background(), set, set, 0.5, threeTips(), 0, ssetree.Solver{}, false, quiet)
	require.NoError(t, err)
	assert.InDelta(t, base.LogLik, out.LogLik, 1e-9)
	assert.InDeltaSlice(t, base.NodeM, out.NodeM, 1e-9)

	// Faster speciation after the switch moves the result.
	faster := ssetree.ParamSet{Lambda: []float64{0.4, 0.8}, Mu: mu, Q: q}
	moved, err := ssetree.ComputeTreeLoglikTimeZone(context.Background(), set, faster, 0.5, threeTips(), 0, ssetree.Solver{}, false, quiet)
	require.NoError(t, err)
	assert.NotEqual(t, base.LogLik, moved.LogLik)
}

func TestComputeTreeLoglikTimeZone_Unsupported(t *testing.T) {
	set := ssetree.ParamSet{Lambda: lambda, Mu: mu, Q: q}
	_, err := ssetree.ComputeTreeLoglikTimeZone(context.Background(), set, set, 0.5, threeTips(), 0, ssetree.Solver{}, true, quiet)
	assert.ErrorIs(t, err, ssetree.ErrUnsupported)
	assert.ErrorIs(t, err, model.ErrUnsupported)

	cla := ssetree.ParamSet{
		LambdaTensor: [][][]float64{{{0.1, 0}, {0, 0}}, {{0, 0}, {0, 0.2}}},
		Mu:           mu,
		Q:            q,
	}
	_, err = ssetree.ComputeTreeLoglikTimeZone(context.Background(), set, cla, 0.5, threeTips(), 0, ssetree.Solver{}, false, quiet)
	assert.ErrorIs(t, err, ssetree.ErrUnsupported)
}

// TestCompute_Errors checks the category of each failure.
func TestCompute_Errors(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		run  func() error
		cat  error
		want error
	}{
		{
			name: "short mu",
			run: func() error {
				_, err := ssetree.ComputeTreeLoglik(ctx, lambda, []float64{0.1}, q, threeTips(), 0, ssetree.Solver{}, quiet)
				return err
			},
			cat: ssetree.ErrInvalidInput,
		},
		{
			name: "negative workers",
			run: func() error {
				_, err := ssetree.ComputeTreeLoglik(ctx, lambda, mu, q, threeTips(), -1, ssetree.Solver{}, quiet)
				return err
			},
			cat: ssetree.ErrInvalidInput,
		},
		{
			name: "negative tolerance",
			run: func() error {
				_, err := ssetree.ComputeTreeLoglik(ctx, lambda, mu, q, threeTips(), 0, ssetree.Solver{AbsTol: -1}, quiet)
				return err
			},
			cat: ssetree.ErrInvalidInput,
		},
		{
			name: "unknown method",
			run: func() error {
				_, err := ssetree.ComputeTreeLoglik(ctx, lambda, mu, q, threeTips(), 0, ssetree.Solver{Method: "euler"}, quiet)
				return err
			},
			cat:  ssetree.ErrInvalidInput,
			want: ode.ErrUnknownMethod,
		},
		{
			name: "wide tip state",
			run: func() error {
				tr := threeTips()
				tr.States[2] = []float64{0, 0, 0, 1, 0, 0}
				_, err := ssetree.ComputeTreeLoglik(ctx, lambda, mu, q, tr, 0, ssetree.Solver{}, quiet)
				return err
			},
			cat: ssetree.ErrInvalidInput,
		},
		{
			name: "nan tip state",
			run: func() error {
				tr := threeTips()
				tr.States[0] = []float64{0, 0, math.NaN(), 1}
				_, err := ssetree.ComputeTreeLoglik(ctx, lambda, mu, q, tr, 0, ssetree.Solver{}, quiet)
				return err
			},
			cat:  ssetree.ErrInvalidInput,
			want: tree.ErrBadTipState,
		},
		{
			name: "negative tip state",
			run: func() error {
				tr := threeTips()
				tr.States[1] = []float64{0, 0, -1, 1}
				_, err := ssetree.ComputeTreeLoglik(ctx, lambda, mu, q, tr, 0, ssetree.Solver{}, quiet)
				return err
			},
			cat:  ssetree.ErrInvalidInput,
			want: tree.ErrBadTipState,
		},
		{
			name: "bad ances",
			run: func() error {
				tr := threeTips()
				tr.Ances = []int{4, 3}
				_, err := ssetree.ComputeTreeLoglik(ctx, lambda, mu, q, tr, 0, ssetree.Solver{}, quiet)
				return err
			},
			cat: ssetree.ErrInvalidInput,
		},
		{
			name: "both lambdas",
			run: func() error {
				set := ssetree.ParamSet{Lambda: lambda, LambdaTensor: [][][]float64{}, Mu: mu, Q: q}
				_, err := ssetree.ComputeTreeLoglikTimeZone(ctx, set, set, 0.5, threeTips(), 0, ssetree.Solver{}, false, quiet)
				return err
			},
			cat: ssetree.ErrInvalidInput,
		},
		{
			name: "all-zero observation",
			run: func() error {
				tr := threeTips()
				tr.States[0] = []float64{0, 0, 0, 0}
				_, err := ssetree.ComputeTreeLoglik(ctx, lambda, mu, q, tr, 0, ssetree.Solver{}, quiet)
				return err
			},
			cat:  ssetree.ErrNumerical,
			want: loglik.ErrDegenerate,
		},
		{
			name: "step budget",
			run: func() error {
				_, err := ssetree.ComputeTreeLoglik(ctx, lambda, mu, q, threeTips(), 0, ssetree.Solver{}, quiet, engine.WithMaxSteps(1))
				return err
			},
			cat:  ssetree.ErrIntegrator,
			want: ode.ErrTooManySteps,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.cat)
			if tc.want != nil {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

// TestCompute_ExtinctionCheck compares the children's extinction halves at
// every merge when asked to.
func TestCompute_ExtinctionCheck(t *testing.T) {
	ctx := context.Background()
	exact := ssetree.Solver{ExtinctionCheck: true}

	// Tip 2 sits one unit closer to the root than its sibling subtree.
	_, err := ssetree.ComputeTreeLoglik(ctx, lambda, mu, q, threeTips(), 0, exact, quiet)
	assert.ErrorIs(t, err, ssetree.ErrNumerical)
	assert.ErrorIs(t, err, model.ErrExtinctionMismatch)

	set := ssetree.ParamSet{Lambda: lambda, Mu: mu, Q: q}
	_, err = ssetree.ComputeTreeLoglikTimeZone(ctx, set, set, 0.5, threeTips(), 0, exact, false, quiet)
	assert.ErrorIs(t, err, model.ErrExtinctionMismatch)

	// Ultrametric: both children of the root are two units deep.
	ultra := threeTips()
	ultra.ForTime[3][2] = 2
	plain, err := ssetree.ComputeTreeLoglik(ctx, lambda, mu, q, ultra, 0, ssetree.Solver{}, quiet)
	require.NoError(t, err)
	checked, err := ssetree.ComputeTreeLoglik(ctx, lambda, mu, q, ultra, 0,
		ssetree.Solver{ExtinctionCheck: true, ExtinctionTol: 1e-6}, quiet)
	require.NoError(t, err)
	assert.Equal(t, plain.LogLik, checked.LogLik)

	_, err = ssetree.ComputeTreeLoglik(ctx, lambda, mu, q, ultra, 0,
		ssetree.Solver{ExtinctionCheck: true, ExtinctionTol: -1}, quiet)
	assert.ErrorIs(t, err, ssetree.ErrInvalidInput)
}

func TestCompute_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ssetree.ComputeTreeLoglik(ctx, lambda, mu, q, threeTips(), 0, ssetree.Solver{}, quiet)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ssetree.ErrInvalidInput)
}
