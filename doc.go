// Package vecdex provides an embedded in-memory vector similarity
// search index for Go.
//
// Vecdex keeps a collection of string-keyed float32 vectors and answers
// k-nearest-neighbor queries over them:
//
//   - Two engines behind one façade: Flat (exact, exhaustive) and
//     HNSW (approximate, graph-based)
//   - Euclidean, cosine, and dot-product metrics with a unified
//     "smaller distance is closer" ordering
//   - SIMD-accelerated distance kernels (via vek)
//   - Thread-safe: concurrent searches, exclusive mutations
//   - Soft deletes with explicit compaction on the HNSW engine
//   - Compressed, self-describing snapshots (zstd, lz4, or none)
//   - Structured logging (log/slog) and pluggable metrics, including a
//     Prometheus adapter
//
// # Engine Selection
//
// Flat computes every distance, so results are exact; cost grows
// linearly with the collection. HNSW answers from a layered proximity
// graph; recall is tunable through M, efConstruction, and efSearch.
// A few thousand vectors favor Flat, larger collections HNSW. The Auto
// builder encodes that rule of thumb.
//
// # Quick Start
//
// Build an HNSW index and search it:
//
//	ctx := context.Background()
//	db, err := vecdex.HNSW(128).
//	    Cosine().
//	    M(32).
//	    EFConstruction(400).
//	    Build()
//	if err != nil {
//	    panic(err)
//	}
//
//	_ = db.Insert(ctx, "doc-1", embedding)
//
//	results, err := db.Search(ctx, query, 10,
//	    vecdex.WithEF(200),
//	    vecdex.WithFilter(func(id string) bool { return id != "doc-1" }),
//	)
//
// Batch insertion amortizes locking across entries:
//
//	result := db.BatchInsert(ctx, []vecdex.Entry{
//	    {ID: "a", Vector: va},
//	    {ID: "b", Vector: vb},
//	})
//	for i, err := range result.Errors {
//	    if err != nil {
//	        log.Printf("entry %d: %v", i, err)
//	    }
//	}
//
// # Snapshots
//
// Snapshots capture the whole index, graph included, in a compressed
// envelope:
//
//	if err := db.SaveToFile(ctx, "index.vdx"); err != nil {
//	    panic(err)
//	}
//	db, err = vecdex.LoadFromFile(ctx, "index.vdx")
//
// # Deletes and Compaction
//
// The HNSW engine tombstones deleted vectors: they stop appearing in
// results immediately but keep routing searches until Compact rebuilds
// the affected neighborhoods and frees their slots. Call Compact when
// Stats().Deleted grows past a workload-appropriate share, commonly
// 10-20% of the collection.
package vecdex
