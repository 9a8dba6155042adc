package integration_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aifocal/vecdex"
)

func TestE2E_SnapshotRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "e2e.snapshot")

	// 1. Build and insert
	db := vecdex.HNSW(2).M(8).RandomSeed(42).MustBuild()
	require.NoError(t, db.Insert(ctx, "a", []float32{1, 0}))
	require.NoError(t, db.Insert(ctx, "b", []float32{0, 1}))
	require.NoError(t, db.Insert(ctx, "c", []float32{1, 1}))

	// 2. Snapshot
	require.NoError(t, db.SaveToFile(ctx, path))

	// 3. Restore and verify
	restored, err := vecdex.LoadFromFile(ctx, path)
	require.NoError(t, err)

	res, err := restored.Search(ctx, []float32{0.9, 0.1}, 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.Equal(t, "a", res[0].ID)

	// 4. The restored index accepts new writes
	require.NoError(t, restored.Insert(ctx, "d", []float32{0.5, 0.5}))
	require.Equal(t, 4, restored.Len())
}

func TestE2E_CompactThenSnapshot(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "compacted.snapshot")

	db := vecdex.HNSW(2).M(8).RandomSeed(7).MustBuild()
	vectors := map[string][]float32{
		"a": {0, 0},
		"b": {1, 0},
		"c": {0, 1},
		"d": {1, 1},
		"e": {2, 2},
	}
	for id, vec := range vectors {
		require.NoError(t, db.Insert(ctx, id, vec))
	}

	require.NoError(t, db.Delete(ctx, "b"))
	require.NoError(t, db.Delete(ctx, "e"))
	require.Equal(t, 2, db.Stats().Deleted)

	require.NoError(t, db.Compact(ctx))
	require.Equal(t, 0, db.Stats().Deleted)

	require.NoError(t, db.SaveToFile(ctx, path))

	restored, err := vecdex.LoadFromFile(ctx, path)
	require.NoError(t, err)
	require.Equal(t, 3, restored.Len())
	require.Equal(t, 0, restored.Stats().Deleted)

	_, err = restored.Get("b")
	require.ErrorIs(t, err, vecdex.ErrNotFound)

	res, err := restored.Search(ctx, []float32{0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, res, 3)
	require.Equal(t, "a", res[0].ID)
}
