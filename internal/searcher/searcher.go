package searcher

import (
	"sync"
)

// Searcher is a reusable execution context for graph search operations.
// It owns all scratch memory a single pass needs, eliminating heap
// allocations in the steady state.
//
// Searcher is NOT thread-safe. Callers take one from the pool per
// operation and return it when done.
type Searcher struct {
	// Visited tracks nodes already expanded during traversal.
	Visited *Visited

	// Candidates is the min-queue of nodes still to expand.
	Candidates *Queue

	// Results is the max-queue of the best nodes found so far, bounded
	// by ef; its root is the current worst keeper.
	Results *Queue

	// Frontier receives the extracted result set in ascending distance
	// order after a layer search completes.
	Frontier []Item

	// Selected collects neighbors admitted by the selection heuristic.
	Selected []Item

	// Discarded buffers heuristic-rejected neighbors for backfill.
	Discarded []Item
}

var pool = sync.Pool{
	New: func() any {
		return &Searcher{
			Visited:    NewVisited(1024),
			Candidates: NewMin(),
			Results:    NewMax(),
			Frontier:   make([]Item, 0, 64),
			Selected:   make([]Item, 0, 64),
			Discarded:  make([]Item, 0, 64),
		}
	},
}

// Get returns a reset Searcher from the pool.
func Get() *Searcher {
	s := pool.Get().(*Searcher)
	s.Reset()
	return s
}

// Put returns a Searcher to the pool.
func Put(s *Searcher) {
	pool.Put(s)
}

// Reset clears the searcher state for reuse without freeing memory.
func (s *Searcher) Reset() {
	s.Visited.Reset()
	s.Candidates.Reset()
	s.Results.Reset()
	s.Frontier = s.Frontier[:0]
	s.Selected = s.Selected[:0]
	s.Discarded = s.Discarded[:0]
}

// ExtractFrontier drains Results into Frontier in ascending distance
// order. Results is empty afterwards.
func (s *Searcher) ExtractFrontier() {
	n := s.Results.Len()
	if cap(s.Frontier) < n {
		s.Frontier = make([]Item, n)
	} else {
		s.Frontier = s.Frontier[:n]
	}
	// The max-queue pops worst first, so fill back to front.
	for i := n - 1; i >= 0; i-- {
		it, _ := s.Results.Pop()
		s.Frontier[i] = it
	}
}
