package vecdex

import (
	"context"
	"time"

	"github.com/aifocal/vecdex/index"
)

// Entry pairs an external identifier with its vector for batch insertion.
type Entry = index.Entry

// SearchResult is a single search hit: the vector's id and its distance
// to the query. Smaller is closer, regardless of metric.
type SearchResult = index.SearchResult

// Stats is a point-in-time snapshot of index state.
type Stats = index.Stats

// Vecdex is an embedded vector similarity search index, backed by a
// flat (exact) or HNSW (approximate) engine behind a single façade.
// Instances are created through the Flat, HNSW, and Auto builders.
//
// All methods are safe for concurrent use: searches run in parallel,
// mutations are exclusive.
//
// Operations take a context for log and trace propagation only; they
// never suspend on it.
type Vecdex struct {
	engine  index.Index
	metrics MetricsCollector
	logger  *Logger
}

// newVecdex wires an engine with the ambient stack. The builders are
// the public entry points.
func newVecdex(engine index.Index, optFns ...Option) *Vecdex {
	opts := applyOptions(optFns)

	return &Vecdex{
		engine:  engine,
		metrics: opts.metricsCollector,
		logger:  opts.logger,
	}
}

// Insert adds a vector under the given id.
// Inserting an id that is already live returns ErrAlreadyExists; delete
// the old entry first to replace a vector.
func (v *Vecdex) Insert(ctx context.Context, id string, vector []float32) error {
	start := time.Now()
	err := translateError(v.engine.Insert(id, vector))
	v.metrics.RecordInsert(time.Since(start), err)
	v.logger.LogInsert(ctx, id, len(vector), err)
	return err
}

// BatchInsertResult reports per-entry outcomes of a batch insert.
type BatchInsertResult struct {
	IDs    []string // ids of successfully inserted entries
	Errors []error  // one per input entry; nil means success
}

// BatchInsert adds several vectors under one lock acquisition, which is
// cheaper than calling Insert in a loop. Entries fail or succeed
// individually; one bad vector does not abort the rest.
func (v *Vecdex) BatchInsert(ctx context.Context, entries []Entry) BatchInsertResult {
	start := time.Now()

	errs := v.engine.InsertBatch(entries)

	result := BatchInsertResult{
		IDs:    make([]string, 0, len(entries)),
		Errors: errs,
	}

	failed := 0
	for i, err := range errs {
		if err != nil {
			errs[i] = translateError(err)
			failed++
			continue
		}
		result.IDs = append(result.IDs, entries[i].ID)
	}

	v.metrics.RecordBatchInsert(len(entries), failed, time.Since(start))
	v.logger.LogBatchInsert(ctx, len(entries), failed)
	return result
}

// SearchOptions contains options for a single Search call.
// The zero value uses the index defaults.
type SearchOptions struct {
	// EF is the candidate list size for graph search. Larger values
	// improve recall at the cost of latency; the engine never uses
	// less than k. Zero means the configured efSearch. Flat indexes
	// ignore it.
	EF int

	// Filter, when set, drops results whose id it rejects. Graph
	// traversal is unaffected; only the returned set is filtered.
	Filter func(id string) bool

	efSet bool
}

// WithEF overrides the candidate list size for one query.
// ef must be at least 1.
func WithEF(ef int) func(*SearchOptions) {
	return func(o *SearchOptions) {
		o.EF = ef
		o.efSet = true
	}
}

// WithFilter drops results whose id the filter rejects.
func WithFilter(fn func(id string) bool) func(*SearchOptions) {
	return func(o *SearchOptions) {
		o.Filter = fn
	}
}

// Search returns the k nearest neighbors of query, ordered by
// (distance, id) ascending. Fewer than k results are returned when
// fewer than k vectors are live; searching an empty index returns an
// empty slice.
func (v *Vecdex) Search(ctx context.Context, query []float32, k int, optFns ...func(*SearchOptions)) ([]SearchResult, error) {
	start := time.Now()

	var opts SearchOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.EF < 0 || (opts.efSet && opts.EF < 1) {
		err := translateError(&index.ErrInvalidParameter{Param: "ef", Reason: "must be at least 1"})
		v.metrics.RecordSearch(k, time.Since(start), err)
		v.logger.LogSearch(ctx, k, 0, err)
		return nil, err
	}

	results, err := v.engine.Search(query, k, &index.SearchOptions{
		EF:     opts.EF,
		Filter: opts.Filter,
	})
	if err != nil {
		err = translateError(err)
		v.metrics.RecordSearch(k, time.Since(start), err)
		v.logger.LogSearch(ctx, k, 0, err)
		return nil, err
	}

	v.metrics.RecordSearch(k, time.Since(start), nil)
	v.logger.LogSearch(ctx, k, len(results), nil)
	return results, nil
}

// Delete removes the vector with the given id. Deleting an absent id
// is a no-op.
func (v *Vecdex) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := translateError(v.engine.Delete(id))
	v.metrics.RecordDelete(time.Since(start), err)
	v.logger.LogDelete(ctx, id, err)
	return err
}

// Get returns a copy of the stored vector, or ErrNotFound when id is
// not live.
func (v *Vecdex) Get(id string) ([]float32, error) {
	vector, ok := v.engine.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return vector, nil
}

// Len returns the number of live vectors.
func (v *Vecdex) Len() int {
	return v.engine.Len()
}

// IsEmpty reports whether the index holds no live vectors.
func (v *Vecdex) IsEmpty() bool {
	return v.engine.Len() == 0
}

// Clear removes all vectors, keeping the configuration.
func (v *Vecdex) Clear(ctx context.Context) {
	v.engine.Clear()
	v.logger.InfoContext(ctx, "index cleared")
}

// Compact reclaims space held by tombstoned vectors. On a flat engine,
// which deletes physically, it is a no-op.
func (v *Vecdex) Compact(ctx context.Context) error {
	start := time.Now()

	before := v.engine.Stats().Deleted
	err := translateError(v.engine.Compact())

	reclaimed := 0
	if err == nil {
		reclaimed = before - v.engine.Stats().Deleted
	}

	v.metrics.RecordCompact(reclaimed, time.Since(start), err)
	v.logger.LogCompact(ctx, reclaimed, err)
	return err
}

// Stats returns a snapshot of index state.
func (v *Vecdex) Stats() Stats {
	return v.engine.Stats()
}
