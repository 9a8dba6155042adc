package flat

import "github.com/aifocal/vecdex/index"

// Stats returns a snapshot of index state.
func (f *Flat) Stats() index.Stats {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return index.Stats{
		Kind:      index.KindFlat,
		Dimension: f.opts.Dimension,
		Metric:    f.opts.Metric.String(),
		Size:      len(f.slots),
		MaxLevel:  -1,
	}
}
