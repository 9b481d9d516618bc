// SPDX-License-Identifier: MIT
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/katalvlaran/ssetree/engine"
)

// Record is one stored run.
type Record struct {
	ID          uuid.UUID
	Name        string // problem name, may be empty
	Model       string // model description, e.g. "standard(d=2)"
	Method      string
	Tips        int
	Stages      int
	Workers     int
	LogLik      float64
	MergeBranch []float64
	NodeM       []float64
	Elapsed     time.Duration
	CreatedAt   time.Time
}

// NewRecord copies an engine result into a Record stamped with the current
// time.
func NewRecord(name, model, method string, tips int, res *engine.Result) Record {
	return Record{
		ID:          res.RunID,
		Name:        name,
		Model:       model,
		Method:      method,
		Tips:        tips,
		Stages:      res.Stages,
		Workers:     res.Workers,
		LogLik:      res.LogLik,
		MergeBranch: append([]float64(nil), res.MergeBranch...),
		NodeM:       append([]float64(nil), res.NodeM...),
		Elapsed:     res.Elapsed,
		CreatedAt:   time.Now().UTC(),
	}
}

// Save inserts r. Saving an id twice keeps the first row.
func (s *Store) Save(ctx context.Context, r Record) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	mb, err := json.Marshal(r.MergeBranch)
	if err != nil {
		return fmt.Errorf("Save: merge branch: %w", err)
	}
	nm, err := json.Marshal(r.NodeM)
	if err != nil {
		return fmt.Errorf("Save: node M: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO runs
		(id, name, model, method, tips, stages, workers, loglik, merge_branch, node_m, elapsed_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		r.ID.String(),
		r.Name,
		r.Model,
		r.Method,
		r.Tips,
		r.Stages,
		r.Workers,
		r.LogLik,
		string(mb),
		string(nm),
		r.Elapsed.Nanoseconds(),
		r.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}

	return nil
}

const selectRuns = `
	SELECT id, name, model, method, tips, stages, workers, loglik, merge_branch, node_m, elapsed_ns, created_at
	FROM runs`

// Get returns the run with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	db, err := s.conn()
	if err != nil {
		return Record{}, err
	}
	r, err := scanRecord(db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("Get: %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("Get: %s: %w", id, err)
	}

	return r, nil
}

// List returns up to limit runs, newest first; limit ≤ 0 means all. A
// non-empty name restricts the list to that problem.
func (s *Store) List(ctx context.Context, name string, limit int) ([]Record, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	query := selectRuns + ` WHERE (? = '' OR name = ?) ORDER BY id COLLATE BINARY DESC LIMIT ?`
	rows, err := db.QueryContext(ctx, query, name, name, limit)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("List: %w", err)
		}
		out = append(out, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}

	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		r                 Record
		id, mb, nm, stamp string
		elapsed           int64
	)
	err := row.Scan(&id, &r.Name, &r.Model, &r.Method, &r.Tips, &r.Stages, &r.Workers,
		&r.LogLik, &mb, &nm, &elapsed, &stamp)
	if err != nil {
		return Record{}, err
	}
	if r.ID, err = uuid.Parse(id); err != nil {
		return Record{}, fmt.Errorf("id %q: %w", id, err)
	}
	if err = json.Unmarshal([]byte(mb), &r.MergeBranch); err != nil {
		return Record{}, fmt.Errorf("merge_branch: %w", err)
	}
	if err = json.Unmarshal([]byte(nm), &r.NodeM); err != nil {
		return Record{}, fmt.Errorf("node_m: %w", err)
	}
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, stamp); err != nil {
		return Record{}, fmt.Errorf("created_at: %w", err)
	}
	r.Elapsed = time.Duration(elapsed)

	return r, nil
}
