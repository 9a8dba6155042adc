package hnsw

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aifocal/vecdex/index"
	"github.com/aifocal/vecdex/testutil"
)

func TestGobRoundTrip(t *testing.T) {
	const dim = 8

	rng := testutil.NewRNG(9)
	vectors := rng.UniformVectors(40, dim)
	ids := testutil.IDs("vec-", len(vectors))

	h := newTestIndex(t, dim, func(o *Options) {
		o.M = 8
	})

	for i, vec := range vectors {
		require.NoError(t, h.Insert(ids[i], vec))
	}

	// Tombstones must survive the round trip untouched.
	for _, i := range []int{3, 11, 18, 25, 31, 39} {
		require.NoError(t, h.Delete(ids[i]))
	}

	query := rng.UniformVectors(1, dim)[0]

	want, err := h.Search(query, 10, nil)
	require.NoError(t, err)
	require.Len(t, want, 10)

	data, err := h.GobEncode()
	require.NoError(t, err)

	restored := &HNSW{}
	require.NoError(t, restored.GobDecode(data))

	assert.Equal(t, h.Len(), restored.Len())
	assert.Equal(t, h.Stats(), restored.Stats())

	got, err := restored.Search(query, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Live and deleted ids resolve the same way.
	v, ok := restored.Get(ids[0])
	require.True(t, ok)
	assert.Equal(t, vectors[0], v)

	_, ok = restored.Get(ids[3])
	assert.False(t, ok)

	// The restored graph keeps working: inserts, compaction, search.
	require.NoError(t, restored.Insert("after-restore", vectors[3]))
	require.NoError(t, restored.Compact())
	assert.Equal(t, 0, restored.Stats().Deleted)

	results, err := restored.Search(vectors[3], 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "after-restore", results[0].ID)
}

func TestGobRoundTripThroughEncoder(t *testing.T) {
	h := newTestIndex(t, 2, func(o *Options) {
		o.M = 8
	})
	insertGrid(t, h, nil, 3, 3)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(h))

	restored := &HNSW{}
	require.NoError(t, gob.NewDecoder(&buf).Decode(restored))

	assert.Equal(t, 9, restored.Len())
}

func TestGobDecodeGarbage(t *testing.T) {
	h := &HNSW{}
	assert.Error(t, h.GobDecode([]byte("not a graph")))
}

func TestGobDecodeRejectsDeadEntryPoint(t *testing.T) {
	// Hand-build a stream whose entry point refers to a tombstoned
	// node, which a well-formed snapshot never contains.
	var buf bytes.Buffer
	encoder := gob.NewEncoder(&buf)

	opts := DefaultOptions
	opts.Dimension = 2

	require.NoError(t, encoder.Encode(opts))
	require.NoError(t, encoder.Encode(1))
	require.NoError(t, encoder.Encode([]uint32{0}))
	require.NoError(t, encoder.Encode(&Node{Vector: []float32{1, 2}, Level: 0, Conns: make([][]uint32, 1)}))
	require.NoError(t, encoder.Encode(map[uint32]string{}))
	require.NoError(t, encoder.Encode(uint32(0)))
	require.NoError(t, encoder.Encode(0))

	tombstones := roaring.New()
	tombstones.Add(0)

	var bitmap bytes.Buffer
	_, err := tombstones.WriteTo(&bitmap)
	require.NoError(t, err)
	require.NoError(t, encoder.Encode(bitmap.Bytes()))

	h := &HNSW{}
	err = h.GobDecode(buf.Bytes())

	var internal *index.ErrInternal
	require.ErrorAs(t, err, &internal)
	assert.Equal(t, "decode", internal.Op)
}
