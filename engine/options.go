// SPDX-License-Identifier: MIT
package engine

import (
	"fmt"
	"log/slog"
	"math"

	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/ssetree/ode"
)

// Defaults (single source of truth).
const (
	DefaultWorkers      = 0 // runtime.GOMAXPROCS(0)
	DefaultMethod       = ode.CashKarp54
	DefaultAbsTol       = 1e-10
	DefaultRelTol       = 1e-10
	DefaultStepFraction = ode.DefaultStepFraction
	DefaultMaxSteps     = ode.DefaultMaxSteps
)

// Option configures Run and Plan.
type Option func(*config)

type config struct {
	workers int
	solver  ode.Config
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics bool
}

func defaultConfig() config {
	return config{
		workers: DefaultWorkers,
		solver: ode.Config{
			Method:       DefaultMethod,
			StepFraction: DefaultStepFraction,
			AbsTol:       DefaultAbsTol,
			RelTol:       DefaultRelTol,
			MaxSteps:     DefaultMaxSteps,
		},
		metrics: true,
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.tracer == nil {
		cfg.tracer = getTracer()
	}

	return cfg
}

// WithWorkers bounds the number of concurrently running stages; 0 means
// runtime.GOMAXPROCS(0). Panics if n < 0.
func WithWorkers(n int) Option {
	if n < 0 {
		panic(fmt.Sprintf("engine: WithWorkers(%d): must be ≥ 0", n))
	}

	return func(c *config) { c.workers = n }
}

// WithMethod selects the integration method. Unknown methods are reported by
// Run as ode.ErrUnknownMethod.
func WithMethod(m ode.Method) Option {
	return func(c *config) { c.solver.Method = m }
}

// WithTolerances sets the absolute and relative error tolerances of the
// adaptive methods. Panics on negative or NaN values.
func WithTolerances(abs, rel float64) Option {
	if abs < 0 || rel < 0 || math.IsNaN(abs) || math.IsNaN(rel) {
		panic(fmt.Sprintf("engine: WithTolerances(%g, %g): must be ≥ 0", abs, rel))
	}

	return func(c *config) {
		c.solver.AbsTol = abs
		c.solver.RelTol = rel
	}
}

// WithStepFraction sets the initial step as a fraction of each branch (or
// time-zone piece). Panics unless 0 < f ≤ 1.
func WithStepFraction(f float64) Option {
	if !(f > 0 && f <= 1) {
		panic(fmt.Sprintf("engine: WithStepFraction(%g): must be in (0,1]", f))
	}

	return func(c *config) { c.solver.StepFraction = f }
}

// WithMaxSteps bounds the integrator steps per branch. Panics if n ≤ 0.
func WithMaxSteps(n int) Option {
	if n <= 0 {
		panic(fmt.Sprintf("engine: WithMaxSteps(%d): must be > 0", n))
	}

	return func(c *config) { c.solver.MaxSteps = n }
}

// WithLogger routes run logs to l. Panics if l is nil.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("engine: WithLogger(nil)")
	}

	return func(c *config) { c.logger = l }
}

// WithTracer replaces the global OpenTelemetry tracer. Panics if t is nil.
func WithTracer(t trace.Tracer) Option {
	if t == nil {
		panic("engine: WithTracer(nil)")
	}

	return func(c *config) { c.tracer = t }
}

// WithMetrics toggles Prometheus recording (on by default).
func WithMetrics(on bool) Option {
	return func(c *config) { c.metrics = on }
}
