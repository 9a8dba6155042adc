package vecdex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aifocal/vecdex/index"
)

func TestBuilderValidation(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*Vecdex, error)
		param string
	}{
		{
			name:  "FlatZeroDimension",
			build: func() (*Vecdex, error) { return Flat(0).Build() },
			param: "dimension",
		},
		{
			name:  "HNSWZeroDimension",
			build: func() (*Vecdex, error) { return HNSW(0).Build() },
			param: "dimension",
		},
		{
			name:  "HNSWSmallM",
			build: func() (*Vecdex, error) { return HNSW(4).M(1).Build() },
			param: "m",
		},
		{
			name:  "HNSWBadEFConstruction",
			build: func() (*Vecdex, error) { return HNSW(4).EFConstruction(0).Build() },
			param: "efConstruction",
		},
		{
			name:  "HNSWBadEFSearch",
			build: func() (*Vecdex, error) { return HNSW(4).EFSearch(-1).Build() },
			param: "efSearch",
		},
		{
			name:  "AutoZeroDimension",
			build: func() (*Vecdex, error) { return Auto(0).Build() },
			param: "dimension",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			require.ErrorIs(t, err, ErrInvalidParameter)

			var paramErr *index.ErrInvalidParameter
			require.ErrorAs(t, err, &paramErr)
			assert.Equal(t, tt.param, paramErr.Param)
		})
	}
}

func TestBuilderMetricSelection(t *testing.T) {
	flatDB, err := Flat(4).Cosine().Build()
	require.NoError(t, err)
	assert.Equal(t, "cosine", flatDB.Stats().Metric)

	hnswDB, err := HNSW(4).DotProduct().Build()
	require.NoError(t, err)
	assert.Equal(t, "dot", hnswDB.Stats().Metric)

	defaultDB, err := HNSW(4).Build()
	require.NoError(t, err)
	assert.Equal(t, "euclidean", defaultDB.Stats().Metric)
}

func TestBuilderKinds(t *testing.T) {
	flatDB, err := Flat(4).Build()
	require.NoError(t, err)
	assert.Equal(t, index.KindFlat, flatDB.Stats().Kind)

	hnswDB, err := HNSW(4).Build()
	require.NoError(t, err)
	assert.Equal(t, index.KindHNSW, hnswDB.Stats().Kind)
}

func TestAutoBuilderSelection(t *testing.T) {
	tests := []struct {
		name     string
		expected int
		wantKind string
	}{
		{name: "SmallCorpus", expected: 100, wantKind: index.KindFlat},
		{name: "AtThreshold", expected: FlatThreshold, wantKind: index.KindFlat},
		{name: "AboveThreshold", expected: FlatThreshold + 1, wantKind: index.KindHNSW},
		{name: "Unset", expected: 0, wantKind: index.KindHNSW},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Auto(4)
			if tt.expected > 0 {
				b = b.ExpectedSize(tt.expected)
			}

			db, err := b.Build()
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, db.Stats().Kind)
		})
	}
}

func TestAutoBuilderCarriesConfiguration(t *testing.T) {
	collector := &BasicMetricsCollector{}

	db, err := Auto(2).
		ExpectedSize(50).
		Cosine().
		Metrics(collector).
		Build()
	require.NoError(t, err)

	st := db.Stats()
	assert.Equal(t, index.KindFlat, st.Kind)
	assert.Equal(t, "cosine", st.Metric)

	require.NoError(t, db.Insert(context.Background(), "a", []float32{1, 0}))
	assert.Equal(t, int64(1), collector.GetStats().InsertCount)
}

func TestHNSWBuilderDeterministicSeed(t *testing.T) {
	ctx := context.Background()

	build := func() *Vecdex {
		db, err := HNSW(2).M(8).EFConstruction(32).RandomSeed(7).Build()
		require.NoError(t, err)
		for _, e := range []Entry{
			{ID: "a", Vector: []float32{0, 0}},
			{ID: "b", Vector: []float32{1, 0}},
			{ID: "c", Vector: []float32{0, 1}},
			{ID: "d", Vector: []float32{2, 2}},
			{ID: "e", Vector: []float32{3, 1}},
		} {
			require.NoError(t, db.Insert(ctx, e.ID, e.Vector))
		}
		return db
	}

	first := build()
	second := build()

	query := []float32{0.2, 0.3}
	wantResults, err := first.Search(ctx, query, 5)
	require.NoError(t, err)
	gotResults, err := second.Search(ctx, query, 5)
	require.NoError(t, err)

	assert.Equal(t, wantResults, gotResults)
}

func TestMustBuild(t *testing.T) {
	assert.Panics(t, func() {
		Flat(0).MustBuild()
	})
	assert.Panics(t, func() {
		HNSW(0).MustBuild()
	})
	assert.Panics(t, func() {
		Auto(0).MustBuild()
	})

	assert.NotPanics(t, func() {
		db := Flat(4).MustBuild()
		assert.NotNil(t, db)
	})
}

func TestBuilderIsImmutable(t *testing.T) {
	base := HNSW(8)
	tuned := base.M(32)

	// The original builder keeps its defaults.
	db, err := base.Build()
	require.NoError(t, err)
	assert.Equal(t, index.KindHNSW, db.Stats().Kind)

	tunedDB, err := tuned.Build()
	require.NoError(t, err)
	assert.NotNil(t, tunedDB)
}
