package index

import (
	"encoding/gob"
)

// Kind names for the built-in index implementations, as reported by
// Stats and recorded in snapshots.
const (
	KindFlat = "flat"
	KindHNSW = "hnsw"
)

// Entry pairs an external identifier with its vector for batch insertion.
type Entry struct {
	ID     string
	Vector []float32
}

// SearchResult represents a search result.
type SearchResult struct {
	// ID is the external identifier of the matched vector.
	ID string

	// Distance is the distance between the query vector and the result
	// vector. Smaller is closer, regardless of metric.
	Distance float32
}

// SearchOptions tunes a single search call. The zero value uses the
// index defaults.
type SearchOptions struct {
	// EF is the size of the dynamic candidate list for graph search.
	// Zero or negative means the configured efSearch. Flat indexes
	// ignore it.
	EF int

	// Filter, when set, drops results whose id it rejects. Graph
	// traversal is unaffected; only the returned set is filtered.
	Filter func(id string) bool
}

// Stats is a point-in-time snapshot of index state.
type Stats struct {
	Kind        string // index implementation name
	Dimension   int    // configured vector dimensionality
	Metric      string // configured distance metric
	Size        int    // live (searchable) vectors
	Deleted     int    // soft-deleted vectors awaiting compaction
	MaxLevel    int    // highest graph layer in use; -1 when empty or not layered
	LevelCounts []int  // live nodes by top layer, bottom first; nil when not layered
}

// Index represents an index for vector search.
//
// Implementations are safe for concurrent use: searches run in
// parallel, mutations are exclusive.
type Index interface {
	gob.GobEncoder
	gob.GobDecoder

	// Insert adds a vector under the given id.
	Insert(id string, vector []float32) error

	// InsertBatch adds several vectors under one lock acquisition.
	// The returned slice has one entry per input; nil means success.
	InsertBatch(entries []Entry) []error

	// Search returns the k nearest neighbors of query, ordered by
	// (distance, id) ascending. opts may be nil.
	Search(query []float32, k int, opts *SearchOptions) ([]SearchResult, error)

	// Delete removes the vector with the given id. Deleting an absent
	// id is a no-op.
	Delete(id string) error

	// Get returns a copy of the stored vector and whether id is live.
	Get(id string) ([]float32, bool)

	// Len returns the number of live vectors.
	Len() int

	// Clear removes all vectors, keeping the configuration.
	Clear()

	// Compact reclaims space held by deleted vectors. Implementations
	// without deferred deletion treat it as a no-op.
	Compact() error

	// Stats returns a snapshot of index state.
	Stats() Stats
}
