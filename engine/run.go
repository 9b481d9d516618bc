// SPDX-License-Identifier: MIT
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/ssetree/dag"
	"github.com/katalvlaran/ssetree/model"
	"github.com/katalvlaran/ssetree/ode"
	"github.com/katalvlaran/ssetree/tree"
)

// Result is the outcome of one evaluation.
type Result struct {
	RunID       uuid.UUID     // UUIDv7, time-ordered
	LogLik      float64       // log-likelihood at the root
	MergeBranch []float64     // normalized observation half of the root (d)
	NodeM       []float64     // integrated, normalized Second child of the root (2d)
	Stages      int           // number of executed stages
	Workers     int           // effective worker count
	Elapsed     time.Duration // wall time of the execution
}

// Run evaluates the log-likelihood of desc under m.
//
// Steps:
//  1. Resolve the solver method and check the tip states (2d each).
//  2. Clear the internal-node slots of the state table.
//  3. Build the stage graph (Plan).
//  4. Execute it on the worker pool inside an "engine.Run" span.
//  5. Unpack the collect output into a Result.
//
// On success every internal node row of desc.States() holds its merged 2d
// state. On failure the table may be partially filled.
func Run(ctx context.Context, desc *tree.Description, m *model.Model, opts ...Option) (*Result, error) {
	if desc == nil || m == nil {
		return nil, fmt.Errorf("Run: nil tree or model: %w", tree.ErrEmpty)
	}

	// 1) Inputs.
	var err error
	cfg := applyOptions(opts)
	if cfg.solver.Method, err = ode.ParseMethod(string(cfg.solver.Method)); err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}
	if err = desc.CheckStates(m.Dim()); err != nil {
		return nil, fmt.Errorf("Run: %w", err)
	}

	// 2) Internal slots are single-assignment per run.
	states := desc.States()
	for _, a := range desc.Ances() {
		states.Clear(a)
	}

	// 3) Stage graph.
	s, err := plan(desc, m, cfg)
	if err != nil {
		return nil, err
	}

	workers := dag.EffectiveWorkers(cfg.workers, s.Stages())
	tips := len(desc.Tips())
	runID := uuid.Must(uuid.NewV7())

	// 4) Execute.
	ctx, span := cfg.tracer.Start(ctx, "engine.Run",
		trace.WithAttributes(
			attribute.String("run_id", runID.String()),
			attribute.String("model", m.String()),
			attribute.Int("tips", tips),
			attribute.Int("stages", s.Stages()),
			attribute.Int("workers", workers),
			attribute.String("method", string(cfg.solver.Method)),
		),
	)
	defer span.End()
	if _, _, crit, ok := m.Zones(); ok {
		span.SetAttributes(attribute.Float64("critical_time", crit))
		cfg.logger.Debug("time zones", "run_id", runID, "critical_time", crit)
	}

	cfg.logger.Info("run start",
		"run_id", runID,
		"model", m.String(),
		"tips", tips,
		"stages", s.Stages(),
		"workers", workers,
		"method", cfg.solver.Method,
	)
	start := time.Now()
	outs, err := s.graph.Execute(ctx, workers, dag.WithHook(cfg.stageHook()))
	elapsed := time.Since(start)
	cfg.observeRun(tips, elapsed, err)
	if err != nil {
		attrs := []any{"run_id", runID, "elapsed", elapsed, "err", err}
		if se, ok := dag.IsStageError(err); ok {
			attrs = append(attrs, "stage", se.Kind, "node", se.Node)
		}
		cfg.logger.Error("run failed", attrs...)
		span.RecordError(err)
		span.SetStatus(codes.Error, "likelihood evaluation failed")

		return nil, fmt.Errorf("Run: %w", err)
	}

	// 5) Unpack.
	d := m.Dim()
	flat := outs[s.collect].Flatten()
	res := &Result{
		RunID:       runID,
		LogLik:      flat[3*d],
		MergeBranch: flat[:d:d],
		NodeM:       flat[d : 3*d : 3*d],
		Stages:      s.Stages(),
		Workers:     workers,
		Elapsed:     elapsed,
	}
	span.SetAttributes(attribute.Float64("loglik", res.LogLik))
	span.SetStatus(codes.Ok, "likelihood computed")
	cfg.logger.Info("run done",
		"run_id", runID,
		"loglik", res.LogLik,
		"elapsed", elapsed,
	)

	return res, nil
}
