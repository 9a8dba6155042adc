// Package flat provides an exact (brute-force) vector index.
//
// Every search scans all live vectors, which makes the flat index the
// correctness oracle for the approximate indexes: its results define
// the true k nearest neighbors.
package flat

import (
	"sync"

	"github.com/aifocal/vecdex/distance"
	"github.com/aifocal/vecdex/index"
)

// Compile-time check to ensure Flat satisfies the index contract.
var _ index.Index = (*Flat)(nil)

// Options contains configuration options for the flat index.
type Options struct {
	// Dimension is the fixed vector dimensionality for this index.
	// It must be > 0 and is enforced for all inserts and searches.
	Dimension int

	// Metric is the distance metric used for vector comparison.
	Metric distance.Metric
}

// DefaultOptions contains the default configuration options for the flat index.
var DefaultOptions = Options{
	Dimension: 0,
	Metric:    distance.MetricEuclidean,
}

// Flat represents an exact index over dense slot storage. Deleted
// slots are recycled through a free list, so deletion is physical and
// Compact has nothing to do.
type Flat struct {
	mu       sync.RWMutex
	vectors  [][]float32       // slot storage; nil entries are free
	ids      []string          // external id per slot
	slots    map[string]uint32 // external id -> slot
	freeList []uint32          // slots available for reuse
	distFunc distance.Func
	opts     Options
}

// New creates a new instance of the flat index.
func New(optFns ...func(o *Options)) (*Flat, error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Dimension <= 0 {
		return nil, &index.ErrInvalidParameter{Param: "dimension", Reason: "must be greater than zero"}
	}

	distFunc, err := distance.Provider(opts.Metric)
	if err != nil {
		return nil, &index.ErrInvalidParameter{Param: "metric", Reason: err.Error()}
	}

	return &Flat{
		slots:    make(map[string]uint32),
		distFunc: distFunc,
		opts:     opts,
	}, nil
}

// Insert adds a vector under the given id.
func (f *Flat) Insert(id string, vector []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.insert(id, vector)
}

// InsertBatch adds several vectors under one lock acquisition.
// The returned slice has one entry per input; nil means success.
func (f *Flat) InsertBatch(entries []index.Entry) []error {
	errs := make([]error, len(entries))

	f.mu.Lock()
	defer f.mu.Unlock()

	for i, e := range entries {
		errs[i] = f.insert(e.ID, e.Vector)
	}

	return errs
}

func (f *Flat) insert(id string, vector []float32) error {
	if err := f.validate(vector); err != nil {
		return err
	}

	if _, ok := f.slots[id]; ok {
		return &index.ErrAlreadyExists{ID: id}
	}

	// Copy so later changes to the caller's slice don't affect the index.
	stored := make([]float32, len(vector))
	copy(stored, vector)

	var slot uint32
	if n := len(f.freeList); n > 0 {
		slot = f.freeList[n-1]
		f.freeList = f.freeList[:n-1]
		f.vectors[slot] = stored
		f.ids[slot] = id
	} else {
		slot = uint32(len(f.vectors))
		f.vectors = append(f.vectors, stored)
		f.ids = append(f.ids, id)
	}

	f.slots[id] = slot

	return nil
}

func (f *Flat) validate(vector []float32) error {
	if len(vector) != f.opts.Dimension {
		return &index.ErrDimensionMismatch{Expected: f.opts.Dimension, Actual: len(vector)}
	}

	if err := distance.Validate(f.opts.Metric, vector); err != nil {
		return &index.ErrInvalidParameter{Param: "vector", Reason: err.Error()}
	}

	return nil
}

// Search returns the k nearest neighbors of query by scanning every
// live vector, ordered by (distance, id) ascending.
func (f *Flat) Search(query []float32, k int, opts *index.SearchOptions) ([]index.SearchResult, error) {
	if k <= 0 {
		return nil, &index.ErrInvalidParameter{Param: "k", Reason: "must be greater than zero"}
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(query) != f.opts.Dimension {
		return nil, &index.ErrDimensionMismatch{Expected: f.opts.Dimension, Actual: len(query)}
	}

	if err := distance.Validate(f.opts.Metric, query); err != nil {
		return nil, &index.ErrInvalidParameter{Param: "query", Reason: err.Error()}
	}

	var filter func(string) bool
	if opts != nil {
		filter = opts.Filter
	}

	h := resultHeap{items: make([]index.SearchResult, 0, min(k, len(f.slots)))}

	for slot, v := range f.vectors {
		if v == nil {
			continue
		}

		id := f.ids[slot]
		if filter != nil && !filter(id) {
			continue
		}

		h.push(index.SearchResult{ID: id, Distance: f.distFunc(query, v)}, k)
	}

	return h.extract(), nil
}

// Delete removes the vector with the given id, recycling its slot.
// Deleting an absent id is a no-op.
func (f *Flat) Delete(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	slot, ok := f.slots[id]
	if !ok {
		return nil
	}

	f.vectors[slot] = nil
	f.ids[slot] = ""
	f.freeList = append(f.freeList, slot)
	delete(f.slots, id)

	return nil
}

// Get returns a copy of the stored vector and whether id is live.
func (f *Flat) Get(id string) ([]float32, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	slot, ok := f.slots[id]
	if !ok {
		return nil, false
	}

	v := make([]float32, len(f.vectors[slot]))
	copy(v, f.vectors[slot])

	return v, true
}

// Len returns the number of live vectors.
func (f *Flat) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return len(f.slots)
}

// Clear removes all vectors, keeping the configuration.
func (f *Flat) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.vectors = nil
	f.ids = nil
	f.freeList = nil
	f.slots = make(map[string]uint32)
}

// Compact is a no-op: deleted slots are recycled immediately.
func (f *Flat) Compact() error {
	return nil
}

// resultHeap is a bounded worst-first heap over search hits: the root
// is the farthest kept hit, with distance ties resolved so the larger
// id is worse. Extraction therefore yields exact ascending
// (distance, id) order.
type resultHeap struct {
	items []index.SearchResult
}

func worse(a, b index.SearchResult) bool {
	if a.Distance != b.Distance {
		return a.Distance > b.Distance
	}
	return a.ID > b.ID
}

// push inserts r into a heap capped at bound elements, evicting the
// root when full and r beats it.
func (h *resultHeap) push(r index.SearchResult, bound int) {
	if len(h.items) < bound {
		h.items = append(h.items, r)
		h.up(len(h.items) - 1)
		return
	}

	if worse(r, h.items[0]) {
		return
	}

	h.items[0] = r
	h.down(0)
}

// extract empties the heap, returning its contents in ascending
// (distance, id) order.
func (h *resultHeap) extract() []index.SearchResult {
	out := h.items

	for n := len(h.items); n > 1; n-- {
		h.items[0], h.items[n-1] = h.items[n-1], h.items[0]
		h.items = h.items[:n-1]
		h.down(0)
	}

	h.items = nil

	return out
}

func (h *resultHeap) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !worse(h.items[i], h.items[parent]) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *resultHeap) down(i int) {
	n := len(h.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		if right := left + 1; right < n && worse(h.items[right], h.items[left]) {
			child = right
		}
		if !worse(h.items[child], h.items[i]) {
			break
		}
		h.items[i], h.items[child] = h.items[child], h.items[i]
		i = child
	}
}
