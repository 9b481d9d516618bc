// SPDX-License-Identifier: MIT
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/ssetree/dag"
)

var (
	// stageTotal counts executed stages by kind and result ("ok", "error").
	stageTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ssetree_engine_stages_total",
		Help: "Executed stages by kind and result",
	}, []string{"kind", "result"})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ssetree_engine_stage_duration_seconds",
		Help:    "Stage execution time",
		Buckets: []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01, 0.1},
	}, []string{"kind"})

	runTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ssetree_engine_runs_total",
		Help: "Likelihood evaluations by result",
	}, []string{"result"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ssetree_engine_run_duration_seconds",
		Help:    "Wall time of one likelihood evaluation",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	runTips = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ssetree_engine_run_tips",
		Help:    "Tips per evaluated tree",
		Buckets: prometheus.ExponentialBuckets(2, 2, 14),
	})
)

var (
	tracerOnce sync.Once
	tracer     trace.Tracer
)

// getTracer returns the package tracer from the global provider.
func getTracer() trace.Tracer {
	tracerOnce.Do(func() {
		tracer = otel.Tracer("github.com/katalvlaran/ssetree/engine")
	})

	return tracer
}

func result(err error) string {
	if err != nil {
		return "error"
	}

	return "ok"
}

// stageHook records per-stage metrics and debug timings.
func (c *config) stageHook() dag.Hook {
	return func(info dag.Info, elapsed time.Duration, err error) {
		if c.metrics {
			stageTotal.WithLabelValues(info.Kind, result(err)).Inc()
			stageDuration.WithLabelValues(info.Kind).Observe(elapsed.Seconds())
		}
		if c.logger.Enabled(context.Background(), slog.LevelDebug) {
			c.logger.Debug("stage done",
				"stage", int(info.ID),
				"kind", info.Kind,
				"node", info.Node,
				"elapsed", elapsed,
				"ok", err == nil,
			)
		}
	}
}

func (c *config) observeRun(tips int, elapsed time.Duration, err error) {
	if !c.metrics {
		return
	}
	runTotal.WithLabelValues(result(err)).Inc()
	if err == nil {
		runDuration.Observe(elapsed.Seconds())
		runTips.Observe(float64(tips))
	}
}
