// SPDX-License-Identifier: MIT

// Package engine evaluates the SSE log-likelihood of a tree by turning it into
// a dag.Graph whose shape mirrors the tree and running that graph on a
// bounded worker pool.
//
// Stages:
//
//	seed       one per tip; emits the caller's tip state.
//	integrate  one per non-root node; integrates the state along the branch
//	           above the node over [0, length], then normalizes its
//	           observation half into the running log-likelihood.
//	merge      one per internal node; port 0 = First child, port 1 = Second
//	           child. Sums the children's log-likelihoods, applies
//	           model.Merge and records the node state in the state table.
//	collect    port 0 = root merge, port 1 = integrated Second child of the
//	           root; emits the final diagnostics.
//
// Values travel as Packet{State, LogLik}: State is the 2d vector [E | D] and
// LogLik the compensated running sum. Every stage is a pure function of its
// inputs, so the result is identical for every worker count.
//
// Ambient behaviour:
//
//   - Logging: log/slog, "run start" and "run done" at Info, failures at
//     Error, per-stage timings at Debug. WithLogger overrides slog.Default().
//   - Metrics: Prometheus counters and histograms registered with promauto
//     (ssetree_engine_*). WithMetrics(false) disables recording.
//   - Tracing: one OpenTelemetry span per Run ("engine.Run").
//
// Errors are returned wrapped; a failing stage surfaces as *dag.StageError
// carrying the stage kind and node id around the model/ode/loglik sentinel.
package engine
