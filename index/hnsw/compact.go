package hnsw

import (
	"fmt"
	"sort"

	"github.com/aifocal/vecdex/index"
	"github.com/aifocal/vecdex/internal/searcher"
)

// Compact physically removes tombstoned nodes. Live nodes that link to
// a tombstone get their adjacency rebuilt from a fresh candidate
// search, then the corpses leave the arena and their slots return to
// the free list.
func (h *HNSW) Compact() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.deleted.IsEmpty() {
		return nil
	}

	s := searcher.Get()
	defer searcher.Put(s)

	// Repair live nodes whose adjacency touches a tombstone.
	for nid, node := range h.nodes {
		if node == nil || h.deleted.Contains(uint32(nid)) {
			continue
		}

		if !h.touchesDeleted(node) {
			continue
		}

		if err := h.reconnect(s, uint32(nid), node); err != nil {
			return err
		}
	}

	// Release the corpses.
	it := h.deleted.Iterator()
	for it.HasNext() {
		nid := it.Next()
		h.nodes[nid] = nil
		h.freeList = append(h.freeList, nid)
	}
	h.deleted.Clear()

	return nil
}

func (h *HNSW) touchesDeleted(node *Node) bool {
	for _, conns := range node.Conns {
		for _, n := range conns {
			if h.deleted.Contains(n) {
				return true
			}
		}
	}

	return false
}

// reconnect rebuilds every layer list of a single live node: a fresh
// ef-bounded search supplies candidates, surviving neighbors merge in,
// and the selection heuristic picks the final list.
func (h *HNSW) reconnect(s *searcher.Searcher, nid uint32, node *Node) error {
	for layer := 0; layer <= node.Level; layer++ {
		curr := h.entryPoint
		currDist := h.distFunc(node.Vector, h.nodes[curr].Vector)

		for l := h.maxLevel; l > layer; l-- {
			curr, currDist = h.greedyStep(node.Vector, curr, currDist, l)
		}

		h.searchLayer(s, node.Vector, curr, currDist, h.opts.EFConstruction, layer)
		s.ExtractFrontier()

		// Merge surviving neighbors the search may have missed.
		for _, n := range node.Conns[layer] {
			if h.deleted.Contains(n) {
				continue
			}

			if h.nodes[n] == nil {
				return &index.ErrInternal{
					Op:    "compact",
					ID:    h.intToExt[nid],
					Layer: layer,
					Err:   fmt.Errorf("adjacency references freed slot %d", n),
				}
			}

			s.Frontier = append(s.Frontier, searcher.Item{Node: n, Distance: h.distFunc(node.Vector, h.nodes[n].Vector)})
		}

		sort.Slice(s.Frontier, func(i, j int) bool {
			if s.Frontier[i].Distance != s.Frontier[j].Distance {
				return s.Frontier[i].Distance < s.Frontier[j].Distance
			}
			return s.Frontier[i].Node < s.Frontier[j].Node
		})

		// Drop the node itself and merge duplicates, which sit adjacent
		// after the sort.
		merged := s.Frontier[:0]
		last := uint32(0)
		hasLast := false

		for _, c := range s.Frontier {
			if c.Node == nid {
				continue
			}
			if hasLast && c.Node == last {
				continue
			}
			merged = append(merged, c)
			last = c.Node
			hasLast = true
		}
		s.Frontier = merged

		h.selectNeighbors(s, h.maxConns(layer))

		conns := make([]uint32, len(s.Selected))
		for i, it := range s.Selected {
			conns[i] = it.Node
		}
		node.Conns[layer] = conns
	}

	return nil
}
