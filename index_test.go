package hnswix

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nnidx/hnswix/store"
)

func TestIndexAddSearchRoundTrip(t *testing.T) {
	ix, err := Open("t1", WithIndexM(4), WithIndexEfConstruction(10), WithIndexSeed(1))
	require.NoError(t, err)
	defer ix.Close()

	ctx := context.Background()
	require.NoError(t, ix.AddPoint(ctx, "a", Vector{1, 0, 0}))
	require.NoError(t, ix.AddPoint(ctx, "b", Vector{0, 1, 0}))
	require.NoError(t, ix.AddPoint(ctx, "c", Vector{0, 0, 1}))

	results, err := ix.SearchKNN(ctx, Vector{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "a", results[0].ID)
}

func TestIndexRemoveThenSearchExcludes(t *testing.T) {
	ix, err := Open("t2", WithIndexM(4), WithIndexEfConstruction(10), WithIndexSeed(1))
	require.NoError(t, err)
	defer ix.Close()

	ctx := context.Background()
	require.NoError(t, ix.AddPoint(ctx, "a", Vector{1, 0, 0}))
	require.NoError(t, ix.AddPoint(ctx, "b", Vector{0, 1, 0}))
	require.NoError(t, ix.RemovePoint(ctx, "a"))

	results, err := ix.SearchKNN(ctx, Vector{1, 0, 0}, 2, WithTau(-1))
	require.NoError(t, err)
	for _, r := range results {
		require.NotEqual(t, "a", r.ID)
	}
}

func TestIndexSaveLoadWithMemStore(t *testing.T) {
	st := store.NewMemStore()
	ix, err := Open("t3", WithIndexM(4), WithIndexEfConstruction(10), WithStore(st))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, ix.AddPoint(ctx, "a", Vector{1, 0, 0}))
	require.NoError(t, ix.Save(ctx))
	require.NoError(t, ix.Close())

	ix2, err := Open("t3", WithIndexM(4), WithIndexEfConstruction(10), WithStore(st))
	require.NoError(t, err)
	defer ix2.Close()
	require.NoError(t, ix2.Load(ctx))
	require.Equal(t, 1, ix2.Len())
}

func TestIndexLoadMissingSnapshot(t *testing.T) {
	st := store.NewMemStore()
	ix, err := Open("missing", WithStore(st))
	require.NoError(t, err)
	defer ix.Close()

	err = ix.Load(context.Background())
	require.ErrorIs(t, err, ErrSnapshotMissing)
}

func TestIndexSaveWithoutStoreFails(t *testing.T) {
	ix, err := Open("nostore")
	require.NoError(t, err)
	defer ix.Close()

	err = ix.Save(context.Background())
	require.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestIndexBuildIndexReplacesGraph(t *testing.T) {
	ix, err := Open("t4", WithIndexM(4), WithIndexEfConstruction(10), WithIndexSeed(1))
	require.NoError(t, err)
	defer ix.Close()

	ctx := context.Background()
	require.NoError(t, ix.AddPoint(ctx, "stale", Vector{9, 9, 9}))

	items := []Item{
		{ID: "a", Vector: Vector{1, 0, 0}},
		{ID: "b", Vector: Vector{0, 1, 0}},
	}
	require.NoError(t, ix.BuildIndex(ctx, items))
	require.Equal(t, 2, ix.Len())
}

func TestIndexWaitDrainsAsyncMutations(t *testing.T) {
	ix, err := Open("t5", WithIndexM(4), WithIndexEfConstruction(10), WithAsyncMutations(4))
	require.NoError(t, err)
	defer ix.Close()

	ctx := context.Background()
	require.NoError(t, ix.AddPoint(ctx, "a", Vector{1, 0, 0}))
	require.NoError(t, ix.Wait(ctx))
	require.Equal(t, 1, ix.Len())
}

func TestIndexJournalReplay(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	st, err := store.OpenLevelDB(dir)
	require.NoError(t, err)

	ix, err := Open("t6", WithIndexM(4), WithIndexEfConstruction(10), WithStore(st), WithJournal())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, ix.AddPoint(ctx, "a", Vector{1, 0, 0}))
	require.NoError(t, ix.UpdatePoint(ctx, "a", Vector{0, 1, 0}))
	require.NoError(t, ix.RemovePoint(ctx, "a"))
	require.NoError(t, ix.Close())

	st2, err := store.OpenLevelDB(dir)
	require.NoError(t, err)
	defer st2.Close()

	target, err := Open("t7", WithIndexM(4), WithIndexEfConstruction(10))
	require.NoError(t, err)
	defer target.Close()

	j := newJournal(st2.DB())
	n, err := j.Replay(target)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}
