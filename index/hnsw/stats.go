package hnsw

import "github.com/aifocal/vecdex/index"

// Stats returns a snapshot of graph state. LevelCounts tallies live
// nodes by their top layer.
func (h *HNSW) Stats() index.Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	st := index.Stats{
		Kind:      index.KindHNSW,
		Dimension: h.opts.Dimension,
		Metric:    h.opts.Metric.String(),
		Size:      len(h.extToInt),
		Deleted:   int(h.deleted.GetCardinality()),
		MaxLevel:  h.maxLevel,
	}

	if h.maxLevel < 0 {
		return st
	}

	st.LevelCounts = make([]int, h.maxLevel+1)
	for nid, node := range h.nodes {
		if node == nil || h.deleted.Contains(uint32(nid)) {
			continue
		}
		if node.Level < len(st.LevelCounts) {
			st.LevelCounts[node.Level]++
		}
	}

	return st
}
