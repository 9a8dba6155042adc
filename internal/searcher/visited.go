package searcher

import "github.com/bits-and-blooms/bitset"

// Visited tracks which internal node ids a search pass has already
// expanded.
type Visited struct {
	bits *bitset.BitSet
}

// NewVisited creates a visited set sized for capacity nodes. The set
// grows automatically when larger ids are marked.
func NewVisited(capacity int) *Visited {
	return &Visited{bits: bitset.New(uint(capacity))}
}

// Visit marks id as visited and reports whether it was unseen before.
func (v *Visited) Visit(id uint32) bool {
	if v.bits.Test(uint(id)) {
		return false
	}
	v.bits.Set(uint(id))
	return true
}

// Visited reports whether id has been marked.
func (v *Visited) Visited(id uint32) bool {
	return v.bits.Test(uint(id))
}

// Reset clears all marks, keeping allocated capacity.
func (v *Visited) Reset() {
	v.bits.ClearAll()
}
