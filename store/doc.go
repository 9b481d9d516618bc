// SPDX-License-Identifier: MIT

// Package store keeps a SQLite history of likelihood evaluations.
//
// One row per run, keyed by the engine's UUIDv7 run id. Rows are written once
// (ON CONFLICT DO NOTHING) and listed in id order, which for UUIDv7 is the
// order the runs were started in.
//
// Database configuration:
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - one open connection (SQLite has a single writer)
package store
