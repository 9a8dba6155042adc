package benchmark_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aifocal/vecdex"
	"github.com/aifocal/vecdex/testutil"
)

func fillUniform(rng *testutil.RNG, vec []float32) {
	for i := range vec {
		vec[i] = rng.Float32()
	}
}

// TestStressConcurrency runs a mixed insert/search/delete workload against a
// single index from several goroutines. Mutations are exclusive and reads are
// shared, so no operation may observe a torn state: every search result set
// is duplicate-free and the only errors are the documented ones.
func TestStressConcurrency(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	const (
		dim          = 32
		workingSet   = 200
		numWorkers   = 8
		opsPerWorker = 400
		k            = 10
	)

	db := vecdex.HNSW(dim).M(8).RandomSeed(7).MustBuild()
	ctx := context.Background()

	// Pre-fill half the working set so searches have something to find.
	ids := testutil.IDs("vec-", workingSet)
	vectors := testutil.NewRNG(1).UniformVectors(workingSet/2, dim)
	entries := make([]vecdex.Entry, len(vectors))
	for i, vec := range vectors {
		entries[i] = vecdex.Entry{ID: ids[i], Vector: vec}
	}
	result := db.BatchInsert(ctx, entries)
	require.Len(t, result.IDs, len(entries))

	var (
		unexpected atomic.Int64
		duplicates atomic.Int64
		searches   atomic.Int64
		wg         sync.WaitGroup
	)

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			rng := testutil.NewRNG(int64(100 + workerID))
			vec := make([]float32, dim)

			for op := 0; op < opsPerWorker; op++ {
				fillUniform(rng, vec)

				// 40% insert, 40% search, 20% delete.
				switch n := rng.Intn(10); {
				case n < 4:
					// Ids are drawn from a fixed working set, so racing
					// inserts legitimately collide with live entries.
					id := ids[rng.Intn(workingSet)]
					if err := db.Insert(ctx, id, vec); err != nil && !errors.Is(err, vecdex.ErrAlreadyExists) {
						unexpected.Add(1)
						t.Errorf("insert %s: %v", id, err)
					}
				case n < 8:
					res, err := db.Search(ctx, vec, k)
					if err != nil {
						unexpected.Add(1)
						t.Errorf("search: %v", err)
						continue
					}

					seen := make(map[string]struct{}, len(res))
					for _, r := range res {
						if _, ok := seen[r.ID]; ok {
							duplicates.Add(1)
							t.Errorf("duplicate id %s in search results", r.ID)
						}
						seen[r.ID] = struct{}{}
					}
					searches.Add(1)
				default:
					// Deleting an absent id is a no-op, never an error.
					id := ids[rng.Intn(workingSet)]
					if err := db.Delete(ctx, id); err != nil {
						unexpected.Add(1)
						t.Errorf("delete %s: %v", id, err)
					}
				}
			}
		}(w)
	}

	wg.Wait()

	t.Logf("searches: %d, live after run: %d, deleted: %d", searches.Load(), db.Len(), db.Stats().Deleted)
	assert.Equal(t, int64(0), unexpected.Load(), "expected only documented errors")
	assert.Equal(t, int64(0), duplicates.Load(), "expected duplicate-free result sets")

	// The index stays fully usable after the run.
	probe := testutil.NewRNG(999).UniformVectors(1, dim)[0]
	res, err := db.Search(ctx, probe, k)
	require.NoError(t, err)
	require.LessOrEqual(t, len(res), k)
}

// TestConcurrentSearchDeterminism checks that read-only searches are
// deterministic under parallelism: with no writer active, every goroutine
// must produce exactly the ordered results of the serial pass.
func TestConcurrentSearchDeterminism(t *testing.T) {
	const (
		dim        = 16
		count      = 300
		numQueries = 20
		numWorkers = 8
		k          = 10
	)

	db := vecdex.HNSW(dim).M(8).RandomSeed(11).MustBuild()
	ctx := context.Background()

	ids := testutil.IDs("vec-", count)
	vectors := testutil.NewRNG(1).UniformVectors(count, dim)
	entries := make([]vecdex.Entry, count)
	for i := range entries {
		entries[i] = vecdex.Entry{ID: ids[i], Vector: vectors[i]}
	}
	result := db.BatchInsert(ctx, entries)
	require.Len(t, result.IDs, count)

	queries := testutil.NewRNG(2).UniformVectors(numQueries, dim)

	baseline := make([][]vecdex.SearchResult, numQueries)
	for i, q := range queries {
		res, err := db.Search(ctx, q, k)
		require.NoError(t, err)
		baseline[i] = res
	}

	got := make([][][]vecdex.SearchResult, numWorkers)

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			results := make([][]vecdex.SearchResult, numQueries)
			for i, q := range queries {
				res, err := db.Search(ctx, q, k)
				if err != nil {
					t.Errorf("worker %d query %d: %v", workerID, i, err)
					return
				}
				results[i] = res
			}
			got[workerID] = results
		}(w)
	}
	wg.Wait()

	for w := range got {
		require.Equal(t, baseline, got[w], "worker %d diverged from the serial pass", w)
	}
}
