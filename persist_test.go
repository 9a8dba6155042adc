package vecdex

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aifocal/vecdex/index"
)

func newSnapshotFixture(t *testing.T, kind string) *Vecdex {
	t.Helper()

	var db *Vecdex
	var err error
	switch kind {
	case index.KindFlat:
		db, err = Flat(2).Build()
	case index.KindHNSW:
		db, err = HNSW(2).M(8).EFConstruction(32).RandomSeed(42).Build()
	default:
		t.Fatalf("unknown kind %q", kind)
	}
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		for j := 0; j < 3; j++ {
			id := fmt.Sprintf("p%d-%d", i, j)
			require.NoError(t, db.Insert(ctx, id, []float32{float32(i), float32(j)}))
		}
	}
	require.NoError(t, db.Delete(ctx, "p3-2"))

	return db
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	query := []float32{0.4, 1.3}

	for _, kind := range []string{index.KindFlat, index.KindHNSW} {
		for _, compression := range []string{CompressionZstd, CompressionLZ4, CompressionNone} {
			t.Run(kind+"/"+compression, func(t *testing.T) {
				db := newSnapshotFixture(t, kind)

				var buf bytes.Buffer
				require.NoError(t, db.SaveToWriter(&buf, WithCompression(compression)))

				restored, err := LoadFromReader(&buf)
				require.NoError(t, err)

				assert.Equal(t, db.Len(), restored.Len())
				assert.Equal(t, db.Stats(), restored.Stats())

				want, err := db.Search(ctx, query, 5)
				require.NoError(t, err)
				got, err := restored.Search(ctx, query, 5)
				require.NoError(t, err)
				assert.Equal(t, want, got)

				// The deleted vector stays gone.
				_, err = restored.Get("p3-2")
				assert.ErrorIs(t, err, ErrNotFound)

				// The restored index accepts writes.
				require.NoError(t, restored.Insert(ctx, "new", []float32{9, 9}))
			})
		}
	}
}

func TestSnapshotInfoHeader(t *testing.T) {
	db := newSnapshotFixture(t, index.KindHNSW)

	var buf bytes.Buffer
	require.NoError(t, db.SaveToWriter(&buf, WithCompression(CompressionLZ4)))

	info, err := ReadSnapshotInfo(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, index.KindHNSW, info.Kind)
	assert.Equal(t, 2, info.Dimension)
	assert.Equal(t, "euclidean", info.Metric)
	assert.Equal(t, CompressionLZ4, info.Compression)
	assert.Len(t, info.UUID, 36)

	// Each save mints a fresh snapshot id.
	var second bytes.Buffer
	require.NoError(t, db.SaveToWriter(&second, WithCompression(CompressionLZ4)))
	secondInfo, err := ReadSnapshotInfo(bytes.NewReader(second.Bytes()))
	require.NoError(t, err)
	assert.NotEqual(t, info.UUID, secondInfo.UUID)
}

func TestSaveToFileAndLoadFromFile(t *testing.T) {
	ctx := context.Background()
	db := newSnapshotFixture(t, index.KindFlat)

	filename := filepath.Join(t.TempDir(), "index.vdx")
	require.NoError(t, db.SaveToFile(ctx, filename))

	fi, err := os.Stat(filename)
	require.NoError(t, err)
	assert.Positive(t, fi.Size())

	restored, err := LoadFromFile(ctx, filename)
	require.NoError(t, err)
	assert.Equal(t, db.Len(), restored.Len())

	// Saving over an existing snapshot replaces it.
	require.NoError(t, db.Delete(ctx, "p0-0"))
	require.NoError(t, db.SaveToFile(ctx, filename))

	replaced, err := LoadFromFile(ctx, filename)
	require.NoError(t, err)
	assert.Equal(t, db.Len(), replaced.Len())

	_, err = LoadFromFile(ctx, filepath.Join(t.TempDir(), "missing.vdx"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadRejectsBadStreams(t *testing.T) {
	db := newSnapshotFixture(t, index.KindFlat)

	var saved bytes.Buffer
	require.NoError(t, db.SaveToWriter(&saved))

	t.Run("Garbage", func(t *testing.T) {
		_, err := LoadFromReader(bytes.NewReader([]byte("definitely not a snapshot")))
		require.ErrorIs(t, err, ErrInvalidSnapshot)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := LoadFromReader(bytes.NewReader(nil))
		require.ErrorIs(t, err, ErrInvalidSnapshot)
	})

	t.Run("WrongVersion", func(t *testing.T) {
		corrupted := bytes.Clone(saved.Bytes())
		corrupted[4] = 0xFF // version field follows the 4-byte magic
		_, err := LoadFromReader(bytes.NewReader(corrupted))
		require.ErrorIs(t, err, ErrInvalidSnapshot)
		assert.Contains(t, err.Error(), "version")
	})

	t.Run("Truncated", func(t *testing.T) {
		truncated := saved.Bytes()[:saved.Len()/2]
		_, err := LoadFromReader(bytes.NewReader(truncated))
		require.ErrorIs(t, err, ErrInvalidSnapshot)
	})
}

func TestSaveRejectsUnknownCompression(t *testing.T) {
	db := newSnapshotFixture(t, index.KindFlat)

	var buf bytes.Buffer
	err := db.SaveToWriter(&buf, WithCompression("brotli"))
	require.ErrorIs(t, err, ErrInvalidSnapshot)
	assert.Contains(t, err.Error(), "brotli")
}

func TestCompressionReducesSnapshotSize(t *testing.T) {
	db, err := Flat(64).Build()
	require.NoError(t, err)

	// Identical vectors make the payload highly compressible.
	ctx := context.Background()
	vector := make([]float32, 64)
	for i := range vector {
		vector[i] = 1.5
	}
	for i := 0; i < 500; i++ {
		require.NoError(t, db.Insert(ctx, fmt.Sprintf("v%04d", i), vector))
	}

	var plain, compressed bytes.Buffer
	require.NoError(t, db.SaveToWriter(&plain, WithCompression(CompressionNone)))
	require.NoError(t, db.SaveToWriter(&compressed, WithCompression(CompressionZstd)))

	assert.Less(t, compressed.Len(), plain.Len())
}
