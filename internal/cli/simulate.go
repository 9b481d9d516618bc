// SPDX-License-Identifier: MIT
package cli

import (
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/ssetree/treegen"
)

// Tree shapes accepted by simulate.
var shapes = map[string]func(int, ...treegen.Option) (*treegen.Fixture, error){
	"balanced":    treegen.Balanced,
	"caterpillar": treegen.Caterpillar,
	"coalescent":  treegen.Coalescent,
}

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Shape       string
	Tips        int
	Dim         int
	Seed        uint64
	Ultrametric bool
	MinLength   float64
	MaxLength   float64
	Lambda      float64
	Mu          float64
	Q           float64
	Output      string
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate a random tree and write it as a problem file",
		Long: `Generate a tree of the given shape with uniformly drawn branch lengths and
random one-hot tip observations, and write a standard-model problem file.
Speciation rates grow with the state index: lambda_i = lambda·(i+1).

Examples:
  ssetree simulate --shape coalescent --tips 200 --seed 7 -o big.yaml
  ssetree simulate --tips 64 | ssetree compute -`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := opts.problem()
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to simulate", err)
			}
			if opts.Output == "" || opts.Output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err = os.WriteFile(opts.Output, data, 0o644); err != nil {
				return WrapExitError(ExitCommandError, "failed to write problem", err)
			}
			opts.logger().Info("problem written", "path", opts.Output, "tips", opts.Tips)

			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Shape, "shape", "balanced", "tree shape (balanced|caterpillar|coalescent)")
	f.IntVarP(&opts.Tips, "tips", "n", 16, "number of tips")
	f.IntVarP(&opts.Dim, "dim", "d", treegen.DefaultDim, "number of observable states")
	f.Uint64Var(&opts.Seed, "seed", treegen.DefaultSeed, "random seed")
	f.BoolVar(&opts.Ultrametric, "ultrametric", false, "place all tips at the same depth")
	f.Float64Var(&opts.MinLength, "min-length", 0.1, "shortest branch increment")
	f.Float64Var(&opts.MaxLength, "max-length", 1, "longest branch increment")
	f.Float64Var(&opts.Lambda, "lambda", 0.1, "base speciation rate")
	f.Float64Var(&opts.Mu, "mu", 0.05, "extinction rate of every state")
	f.Float64Var(&opts.Q, "q", 0.01, "rate of every state transition")
	f.StringVarP(&opts.Output, "output", "o", "", "write to this file instead of stdout")

	return cmd
}

// problem generates the tree and renders the problem file.
func (o *SimulateOptions) problem() ([]byte, error) {
	gen, ok := shapes[o.Shape]
	if !ok {
		return nil, fmt.Errorf("unknown shape %q", o.Shape)
	}
	if o.Dim < 1 {
		return nil, fmt.Errorf("dim=%d must be ≥ 1", o.Dim)
	}
	if !(o.MinLength >= 0 && o.MaxLength >= o.MinLength) {
		return nil, fmt.Errorf("branch lengths [%g, %g] are not a valid range", o.MinLength, o.MaxLength)
	}
	lo, span := o.MinLength, o.MaxLength-o.MinLength
	gopts := []treegen.Option{
		treegen.WithSeed(o.Seed),
		treegen.WithDim(o.Dim),
		treegen.WithRandomTipStates(),
		treegen.WithLengthFn(func(r *rand.Rand) float64 { return lo + span*r.Float64() }),
	}
	if o.Ultrametric {
		gopts = append(gopts, treegen.WithUltrametric())
	}
	fix, err := gen(o.Tips, gopts...)
	if err != nil {
		return nil, err
	}
	desc, err := fix.Description()
	if err != nil {
		return nil, err
	}

	p := &Problem{
		Name:    fmt.Sprintf("%s-%d-seed%d", o.Shape, o.Tips, o.Seed),
		Variant: VariantStandard,
		Params:  uniformParams(o.Dim, o.Lambda, o.Mu, o.Q),
		Tree: TreeSpec{
			Ances:   fix.Ances,
			ForTime: toRows(desc.Table()),
			States:  toRows(fix.States),
		},
	}

	return p.Marshal()
}

func uniformParams(d int, lambda, mu, q float64) Params {
	p := Params{Lambda: make(Row, d), Mu: make(Row, d), Q: make([]Row, d)}
	for i := 0; i < d; i++ {
		p.Lambda[i] = lambda * float64(i+1)
		p.Mu[i] = mu
		p.Q[i] = make(Row, d)
		for j := range p.Q[i] {
			if j != i {
				p.Q[i][j] = q
			}
		}
	}

	return p
}

func toRows(m [][]float64) []Row {
	out := make([]Row, len(m))
	for i, r := range m {
		out[i] = r
	}

	return out
}
