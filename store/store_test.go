// SPDX-License-Identifier: MIT
package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/ssetree/engine"
	"github.com/katalvlaran/ssetree/store"
)

func openTemp(t *testing.T) (*store.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s, path
}

func record(name string, ll float64) store.Record {
	res := &engine.Result{
		RunID:       uuid.Must(uuid.NewV7()),
		LogLik:      ll,
		MergeBranch: []float64{0.25, 0.75},
		NodeM:       []float64{0.01, 0.02, 0.4, 0.6},
		Stages:      10,
		Workers:     2,
		Elapsed:     1500 * time.Microsecond,
	}

	return store.NewRecord(name, "standard(d=2)", "odeint::runge_kutta_cash_karp54", 3, res)
}

func TestOpen_SchemaVersion(t *testing.T) {
	s, path := openTemp(t)
	v, err := s.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// Reopening an existing file is fine.
	require.NoError(t, s.Close())
	again, err := store.Open(path)
	require.NoError(t, err)
	assert.NoError(t, again.Close())
}

func TestSaveGet_RoundTrip(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	want := record("three-tips", -4.25)
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Get(ctx, want.ID)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Model, got.Model)
	assert.Equal(t, want.Method, got.Method)
	assert.Equal(t, 3, got.Tips)
	assert.Equal(t, 10, got.Stages)
	assert.Equal(t, 2, got.Workers)
	assert.Equal(t, -4.25, got.LogLik)
	assert.Equal(t, want.MergeBranch, got.MergeBranch)
	assert.Equal(t, want.NodeM, got.NodeM)
	assert.Equal(t, want.Elapsed, got.Elapsed)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
}

func TestSave_Idempotent(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	r := record("a", -1)
	require.NoError(t, s.Save(ctx, r))
	r.LogLik = -2
	require.NoError(t, s.Save(ctx, r))

	got, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, -1.0, got.LogLik, "first write wins")

	all, err := s.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestList_OrderAndFilter(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()
	var ids []uuid.UUID
	for i, name := range []string{"a", "b", "a", "a"} {
		r := record(name, float64(-i))
		ids = append(ids, r.ID)
		require.NoError(t, s.Save(ctx, r))
	}

	all, err := s.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, ids[3], all[0].ID, "newest first")
	assert.Equal(t, ids[0], all[3].ID)

	onlyA, err := s.List(ctx, "a", 2)
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	assert.Equal(t, ids[3], onlyA[0].ID)
	assert.Equal(t, ids[2], onlyA[1].ID)

	none, err := s.List(ctx, "missing", 0)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestErrors(t *testing.T) {
	s, _ := openTemp(t)
	ctx := context.Background()

	_, err := s.Get(ctx, uuid.Must(uuid.NewV7()))
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Close())
	assert.NoError(t, s.Close())
	assert.ErrorIs(t, s.Save(ctx, record("x", 0)), store.ErrClosed)
	_, err = s.List(ctx, "", 0)
	assert.ErrorIs(t, err, store.ErrClosed)
}

func TestOpen_Memory(t *testing.T) {
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Save(context.Background(), record("m", -3)))
	all, err := s.List(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
