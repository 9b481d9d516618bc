// SPDX-License-Identifier: MIT
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/ssetree/dag"
	"github.com/katalvlaran/ssetree/engine"
	"github.com/katalvlaran/ssetree/model"
	"github.com/katalvlaran/ssetree/ode"
	"github.com/katalvlaran/ssetree/store"
	"github.com/katalvlaran/ssetree/tree"
)

// ComputeOptions holds flags for the compute command.
type ComputeOptions struct {
	*RootOptions
	Workers  int // < 0: take the problem's value
	Method   string
	AbsTol   float64
	RelTol   float64
	Database string
}

// ComputeResult is the output of compute.
type ComputeResult struct {
	RunID       uuid.UUID `json:"run_id"`
	Name        string    `json:"name,omitempty"`
	Model       string    `json:"model"`
	Method      string    `json:"method"`
	Tips        int       `json:"tips"`
	Stages      int       `json:"stages"`
	Workers     int       `json:"workers"`
	LogLik      float64   `json:"loglik"`
	MergeBranch []float64 `json:"merge_branch"`
	NodeM       []float64 `json:"node_m"`
	ElapsedMS   float64   `json:"elapsed_ms"`
}

// NewComputeCommand creates the compute command.
func NewComputeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ComputeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compute <problem.yaml|->",
		Short: "Evaluate the log-likelihood of a problem file",
		Long: `Evaluate the log-likelihood of the tree and model described by a YAML
problem file. Flags override the solver and worker settings of the file.

Exit codes:
  0 - success
  1 - the evaluation failed (non-finite or degenerate state, step budget)
  2 - command error (unreadable or invalid problem, database error)

Examples:
  ssetree compute problem.yaml
  ssetree compute --workers 8 --method odeint::runge_kutta_dopri5 problem.yaml
  ssetree simulate --tips 64 | ssetree compute --db runs.db -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompute(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", -1, "worker goroutines, 0 = GOMAXPROCS (default: from the problem)")
	cmd.Flags().StringVarP(&opts.Method, "method", "m", "", fmt.Sprintf("integration method %v", ode.Methods()))
	cmd.Flags().Float64Var(&opts.AbsTol, "atol", 0, "absolute tolerance of adaptive methods")
	cmd.Flags().Float64Var(&opts.RelTol, "rtol", 0, "relative tolerance of adaptive methods")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")

	return cmd
}

func runCompute(ctx context.Context, opts *ComputeOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// 1) Problem.
	p, err := LoadProblem(path, cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load problem", err)
	}
	m, desc, err := p.build()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid problem", err)
	}

	// 2) Solver and workers.
	eopts, method, err := opts.engineOptions(p)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid solver settings", err)
	}

	// 3) Run.
	res, err := engine.Run(ctx, desc, m, eopts...)
	if err != nil {
		if _, ok := dag.IsStageError(err); ok {
			return WrapExitError(ExitFailure, "evaluation failed", err)
		}
		return WrapExitError(ExitCommandError, "evaluation rejected", err)
	}
	tips := len(desc.Tips())

	// 4) History.
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()
		if err = st.Save(ctx, store.NewRecord(p.Name, m.String(), method, tips, res)); err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		opts.logger().Debug("run recorded", "db", opts.Database, "run_id", res.RunID)
	}

	out := ComputeResult{
		RunID:       res.RunID,
		Name:        p.Name,
		Model:       m.String(),
		Method:      method,
		Tips:        tips,
		Stages:      res.Stages,
		Workers:     res.Workers,
		LogLik:      res.LogLik,
		MergeBranch: res.MergeBranch,
		NodeM:       res.NodeM,
		ElapsedMS:   float64(res.Elapsed) / float64(time.Millisecond),
	}
	if opts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), out)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "run      %s\n", out.RunID)
	if out.Name != "" {
		fmt.Fprintf(w, "name     %s\n", out.Name)
	}
	fmt.Fprintf(w, "model    %s\n", out.Model)
	fmt.Fprintf(w, "method   %s\n", out.Method)
	fmt.Fprintf(w, "loglik   %.12g\n", out.LogLik)
	fmt.Fprintf(w, "merge    %v\n", out.MergeBranch)
	fmt.Fprintf(w, "node_m   %v\n", out.NodeM)
	fmt.Fprintf(w, "stages   %d on %d workers in %.3fms\n", out.Stages, out.Workers, out.ElapsedMS)

	return nil
}

// build turns the problem into a model and a tree.
func (p *Problem) build() (*model.Model, *tree.Description, error) {
	m, err := p.Model()
	if err != nil {
		return nil, nil, err
	}
	desc, err := p.Description()
	if err != nil {
		return nil, nil, err
	}

	return m, desc, nil
}

// engineOptions merges the problem's solver settings with the flags. It
// returns the method that will be used.
func (o *ComputeOptions) engineOptions(p *Problem) ([]engine.Option, string, error) {
	workers := p.Workers
	if o.Workers >= 0 {
		workers = o.Workers
	}
	if workers < 0 {
		return nil, "", fmt.Errorf("workers=%d must be ≥ 0", workers)
	}
	name := p.Solver.Method
	if o.Method != "" {
		name = o.Method
	}
	method := engine.DefaultMethod
	if name != "" {
		var err error
		if method, err = ode.ParseMethod(name); err != nil {
			return nil, "", err
		}
	}
	abs, rel := pick(o.AbsTol, p.Solver.AbsTol, engine.DefaultAbsTol), pick(o.RelTol, p.Solver.RelTol, engine.DefaultRelTol)
	if !(abs >= 0) || !(rel >= 0) {
		return nil, "", fmt.Errorf("tolerances (%g, %g) must be ≥ 0", abs, rel)
	}

	return []engine.Option{
		engine.WithWorkers(workers),
		engine.WithMethod(method),
		engine.WithTolerances(abs, rel),
		engine.WithLogger(o.logger()),
	}, string(method), nil
}

// pick returns the first non-zero value.
func pick(vals ...float64) float64 {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}

	return 0
}
