// Package hnsw implements the Hierarchical Navigable Small World (HNSW) graph for approximate nearest neighbor search.
package hnsw

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/aifocal/vecdex/distance"
	"github.com/aifocal/vecdex/index"
	"github.com/aifocal/vecdex/internal/searcher"
)

const (
	// layerNormalizationBase is the base constant for the exponential layer probability distribution.
	layerNormalizationBase = 1.0

	// mmax0Multiplier is the multiplier for calculating maximum connections at layer 0.
	mmax0Multiplier = 2

	// minimumM is the minimum valid value for M.
	minimumM = 2

	// DefaultM is the default number of bidirectional links per node and layer.
	DefaultM = 16

	// DefaultEFConstruction is the default size of the dynamic candidate list during construction.
	DefaultEFConstruction = 200

	// DefaultEFSearch is the default size of the dynamic candidate list during search.
	DefaultEFSearch = 50
)

// Compile-time check to ensure HNSW satisfies the index contract.
var _ index.Index = (*HNSW)(nil)

// Options represents the options for configuring HNSW.
type Options struct {
	// Dimension is the fixed vector dimensionality for this index.
	// It must be > 0 and is enforced for all inserts and searches.
	Dimension int

	// Metric is the distance metric used for vector comparison.
	Metric distance.Metric

	// M is the number of bidirectional links created per node and layer
	// during construction. Layer 0 admits 2*M.
	M int

	// EFConstruction is the size of the dynamic candidate list while
	// building the graph. Larger values improve graph quality at the
	// cost of slower inserts.
	EFConstruction int

	// EFSearch is the default candidate list size during search.
	// Individual calls may override it through SearchOptions.
	EFSearch int

	// RandomSeed seeds the level sampler. Nil seeds from the clock; a
	// fixed value makes graph construction reproducible.
	RandomSeed *int64
}

// DefaultOptions contains the default configuration options for the HNSW index.
var DefaultOptions = Options{
	Metric:         distance.MetricEuclidean,
	M:              DefaultM,
	EFConstruction: DefaultEFConstruction,
	EFSearch:       DefaultEFSearch,
}

// HNSW represents the Hierarchical Navigable Small World graph.
//
// Nodes live in a dense arena indexed by internal id. Delete tombstones
// a node instead of unlinking it, so searches keep traversing through
// it until Compact rebuilds the affected neighborhoods and frees the
// slot. Adjacency lists never reference freed slots.
type HNSW struct {
	mu sync.RWMutex

	nodes    []*Node // arena; nil entries are free slots
	freeList []uint32

	extToInt map[string]uint32
	intToExt map[uint32]string
	deleted  *roaring.Bitmap // tombstoned internal ids

	entryPoint uint32
	maxLevel   int // -1 while no live nodes exist

	maxConnectionsPerLayer int
	maxConnectionsLayer0   int

	sampler  *levelSampler
	seed     int64
	distFunc distance.Func
	opts     Options
}

// New creates a new HNSW instance.
func New(optFns ...func(o *Options)) (*HNSW, error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Dimension <= 0 {
		return nil, &index.ErrInvalidParameter{Param: "dimension", Reason: "must be greater than zero"}
	}

	if opts.M < minimumM {
		return nil, &index.ErrInvalidParameter{Param: "m", Reason: fmt.Sprintf("must be at least %d", minimumM)}
	}

	if opts.EFConstruction < 1 {
		return nil, &index.ErrInvalidParameter{Param: "efConstruction", Reason: "must be greater than zero"}
	}

	if opts.EFSearch < 1 {
		return nil, &index.ErrInvalidParameter{Param: "efSearch", Reason: "must be greater than zero"}
	}

	distFunc, err := distance.Provider(opts.Metric)
	if err != nil {
		return nil, &index.ErrInvalidParameter{Param: "metric", Reason: err.Error()}
	}

	seed := time.Now().UnixNano()
	if opts.RandomSeed != nil {
		seed = *opts.RandomSeed
	}

	return &HNSW{
		extToInt:               make(map[string]uint32),
		intToExt:               make(map[uint32]string),
		deleted:                roaring.New(),
		maxLevel:               -1,
		maxConnectionsPerLayer: opts.M,
		maxConnectionsLayer0:   mmax0Multiplier * opts.M,
		sampler:                newLevelSampler(opts.M, seed),
		seed:                   seed,
		distFunc:               distFunc,
		opts:                   opts,
	}, nil
}

// Insert adds a vector under the given id.
func (h *HNSW) Insert(id string, vector []float32) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.insert(id, vector)
}

// InsertBatch adds several vectors under one lock acquisition.
// The returned slice has one entry per input; nil means success.
func (h *HNSW) InsertBatch(entries []index.Entry) []error {
	errs := make([]error, len(entries))

	h.mu.Lock()
	defer h.mu.Unlock()

	for i, e := range entries {
		errs[i] = h.insert(e.ID, e.Vector)
	}

	return errs
}

func (h *HNSW) insert(id string, vector []float32) error {
	if err := h.validate(vector); err != nil {
		return err
	}

	if _, ok := h.extToInt[id]; ok {
		return &index.ErrAlreadyExists{ID: id}
	}

	// Copy so later changes to the caller's slice don't affect the index.
	stored := make([]float32, len(vector))
	copy(stored, vector)

	level := h.sampler.next()
	node := newNode(stored, level)

	var nid uint32
	if n := len(h.freeList); n > 0 {
		nid = h.freeList[n-1]
		h.freeList = h.freeList[:n-1]
		h.nodes[nid] = node
	} else {
		nid = uint32(len(h.nodes))
		h.nodes = append(h.nodes, node)
	}

	h.extToInt[id] = nid
	h.intToExt[nid] = id

	// The first node becomes the entry point.
	if h.maxLevel < 0 {
		h.entryPoint = nid
		h.maxLevel = level
		return nil
	}

	s := searcher.Get()
	defer searcher.Put(s)

	// Greedy descent from the entry point down to one layer above the
	// node's level, carrying the single closest node.
	curr := h.entryPoint
	currDist := h.distFunc(stored, h.nodes[curr].Vector)

	for layer := h.maxLevel; layer > level; layer-- {
		curr, currDist = h.greedyStep(stored, curr, currDist, layer)
	}

	// Connect on every layer the node participates in, seeding each
	// layer with the best result of the one above.
	for layer := min(level, h.maxLevel); layer >= 0; layer-- {
		h.searchLayer(s, stored, curr, currDist, h.opts.EFConstruction, layer)
		s.ExtractFrontier()

		if len(s.Frontier) > 0 {
			curr = s.Frontier[0].Node
			currDist = s.Frontier[0].Distance
		}

		h.selectNeighbors(s, h.maxConns(layer))

		conns := make([]uint32, len(s.Selected))
		for i, it := range s.Selected {
			conns[i] = it.Node
		}
		node.Conns[layer] = conns

		// Reciprocal edges. This reuses the scratch space, so the seed
		// for the next layer is already captured above.
		for _, neighbor := range conns {
			h.link(s, neighbor, nid, layer)
		}
	}

	if level > h.maxLevel {
		h.entryPoint = nid
		h.maxLevel = level
	}

	return nil
}

// Search returns the k nearest live neighbors of query, ordered by
// (distance, id) ascending.
func (h *HNSW) Search(query []float32, k int, opts *index.SearchOptions) ([]index.SearchResult, error) {
	if k <= 0 {
		return nil, &index.ErrInvalidParameter{Param: "k", Reason: "must be greater than zero"}
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(query) != h.opts.Dimension {
		return nil, &index.ErrDimensionMismatch{Expected: h.opts.Dimension, Actual: len(query)}
	}

	if err := distance.Validate(h.opts.Metric, query); err != nil {
		return nil, &index.ErrInvalidParameter{Param: "query", Reason: err.Error()}
	}

	if h.maxLevel < 0 {
		return []index.SearchResult{}, nil
	}

	ef := h.opts.EFSearch
	var filter func(string) bool

	if opts != nil {
		if opts.EF > 0 {
			ef = opts.EF
		}
		filter = opts.Filter
	}

	// The candidate list must be at least as large as the result set.
	if ef < k {
		ef = k
	}

	s := searcher.Get()
	defer searcher.Put(s)

	curr := h.entryPoint
	currDist := h.distFunc(query, h.nodes[curr].Vector)

	for layer := h.maxLevel; layer > 0; layer-- {
		curr, currDist = h.greedyStep(query, curr, currDist, layer)
	}

	h.searchLayer(s, query, curr, currDist, ef, 0)
	s.ExtractFrontier()

	results := make([]index.SearchResult, 0, min(k, len(s.Frontier)))

	for _, it := range s.Frontier {
		if len(results) == k {
			break
		}

		id := h.intToExt[it.Node]
		if filter != nil && !filter(id) {
			continue
		}

		results = append(results, index.SearchResult{ID: id, Distance: it.Distance})
	}

	// Equal distances come back in id order.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].ID < results[j].ID
	})

	return results, nil
}

// Delete tombstones the vector with the given id. The node stays in
// the graph for traversal until Compact reclaims it; deleting an
// absent id is a no-op.
func (h *HNSW) Delete(id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	nid, ok := h.extToInt[id]
	if !ok {
		return nil
	}

	h.deleted.Add(nid)
	delete(h.extToInt, id)
	delete(h.intToExt, nid)

	if nid == h.entryPoint {
		h.reelectEntryPoint()
	}

	return nil
}

// reelectEntryPoint promotes the live node with the highest level, or
// resets to the empty state when none remain. The entry point is never
// a tombstone.
func (h *HNSW) reelectEntryPoint() {
	best := uint32(0)
	bestLevel := -1

	for nid, node := range h.nodes {
		if node == nil || h.deleted.Contains(uint32(nid)) {
			continue
		}
		if node.Level > bestLevel {
			best = uint32(nid)
			bestLevel = node.Level
		}
	}

	h.entryPoint = best
	h.maxLevel = bestLevel
}

// Get returns a copy of the stored vector and whether id is live.
func (h *HNSW) Get(id string) ([]float32, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	nid, ok := h.extToInt[id]
	if !ok {
		return nil, false
	}

	v := make([]float32, len(h.nodes[nid].Vector))
	copy(v, h.nodes[nid].Vector)

	return v, true
}

// Len returns the number of live vectors.
func (h *HNSW) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.extToInt)
}

// Clear removes all vectors, keeping the configuration. The level
// sampler restarts from the original seed, so a cleared index builds
// the same graph for the same insertion sequence.
func (h *HNSW) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nodes = nil
	h.freeList = nil
	h.extToInt = make(map[string]uint32)
	h.intToExt = make(map[uint32]string)
	h.deleted = roaring.New()
	h.entryPoint = 0
	h.maxLevel = -1
	h.sampler = newLevelSampler(h.opts.M, h.seed)
}

func (h *HNSW) validate(vector []float32) error {
	if len(vector) != h.opts.Dimension {
		return &index.ErrDimensionMismatch{Expected: h.opts.Dimension, Actual: len(vector)}
	}

	if err := distance.Validate(h.opts.Metric, vector); err != nil {
		return &index.ErrInvalidParameter{Param: "vector", Reason: err.Error()}
	}

	return nil
}

func (h *HNSW) maxConns(layer int) int {
	if layer == 0 {
		return h.maxConnectionsLayer0
	}
	return h.maxConnectionsPerLayer
}

// greedyStep walks one layer greedily, moving to the closest neighbor
// until no neighbor improves on the current distance.
func (h *HNSW) greedyStep(query []float32, curr uint32, currDist float32, layer int) (uint32, float32) {
	for {
		improved := false

		node := h.nodes[curr]
		if layer < len(node.Conns) {
			for _, n := range node.Conns[layer] {
				if d := h.distFunc(query, h.nodes[n].Vector); d < currDist {
					curr = n
					currDist = d
					improved = true
				}
			}
		}

		if !improved {
			return curr, currDist
		}
	}
}

// searchLayer runs the ef-bounded best-first search of a single layer,
// seeded from entry. Live results accumulate in s.Results with the
// worst on top; tombstoned nodes are traversed but never kept.
func (h *HNSW) searchLayer(s *searcher.Searcher, query []float32, entry uint32, entryDist float32, ef, layer int) {
	s.Visited.Reset()
	s.Candidates.Reset()
	s.Results.Reset()

	s.Visited.Visit(entry)
	s.Candidates.Push(searcher.Item{Node: entry, Distance: entryDist})
	if !h.deleted.Contains(entry) {
		s.Results.Push(searcher.Item{Node: entry, Distance: entryDist})
	}

	for s.Candidates.Len() > 0 {
		candidate, _ := s.Candidates.Pop()

		// The nearest unexpanded candidate cannot improve a full result
		// set anymore.
		if worst, ok := s.Results.Top(); ok && s.Results.Len() >= ef && candidate.Distance > worst.Distance {
			break
		}

		node := h.nodes[candidate.Node]
		if layer >= len(node.Conns) {
			continue
		}

		for _, n := range node.Conns[layer] {
			if !s.Visited.Visit(n) {
				continue
			}

			d := h.distFunc(query, h.nodes[n].Vector)
			if worst, ok := s.Results.Top(); ok && s.Results.Len() >= ef && d >= worst.Distance {
				continue
			}

			s.Candidates.Push(searcher.Item{Node: n, Distance: d})
			if !h.deleted.Contains(n) {
				s.Results.PushBounded(searcher.Item{Node: n, Distance: d}, ef)
			}
		}
	}
}

// selectNeighbors runs the diversity heuristic over s.Frontier, which
// must be sorted ascending by distance: a candidate survives only if
// it is closer to the query than to every neighbor already selected.
// When fewer than m survive, the closest rejected candidates fill the
// remaining slots. Tombstoned candidates are never selected. The
// result lands in s.Selected.
func (h *HNSW) selectNeighbors(s *searcher.Searcher, m int) {
	s.Selected = s.Selected[:0]
	s.Discarded = s.Discarded[:0]

	for _, c := range s.Frontier {
		if len(s.Selected) >= m {
			break
		}

		if h.deleted.Contains(c.Node) {
			continue
		}

		diverse := true
		for _, kept := range s.Selected {
			if h.distFunc(h.nodes[c.Node].Vector, h.nodes[kept.Node].Vector) < c.Distance {
				diverse = false
				break
			}
		}

		if diverse {
			s.Selected = append(s.Selected, c)
		} else {
			s.Discarded = append(s.Discarded, c)
		}
	}

	for _, c := range s.Discarded {
		if len(s.Selected) >= m {
			break
		}
		s.Selected = append(s.Selected, c)
	}
}

// link adds a reciprocal edge from neighbor back to entrant. When the
// neighbor's list overflows, the selection heuristic re-runs from the
// neighbor's perspective over all current links. Clobbers the scratch
// space in s.
func (h *HNSW) link(s *searcher.Searcher, neighbor, entrant uint32, layer int) {
	maxConns := h.maxConns(layer)
	node := h.nodes[neighbor]

	node.Conns[layer] = append(node.Conns[layer], entrant)
	if len(node.Conns[layer]) <= maxConns {
		return
	}

	s.Frontier = s.Frontier[:0]
	for _, n := range node.Conns[layer] {
		s.Frontier = append(s.Frontier, searcher.Item{Node: n, Distance: h.distFunc(node.Vector, h.nodes[n].Vector)})
	}

	sort.Slice(s.Frontier, func(i, j int) bool {
		return s.Frontier[i].Distance < s.Frontier[j].Distance
	})

	h.selectNeighbors(s, maxConns)

	conns := make([]uint32, len(s.Selected))
	for i, it := range s.Selected {
		conns[i] = it.Node
	}
	node.Conns[layer] = conns
}
