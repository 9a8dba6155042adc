package flat

import (
	"bytes"
	"encoding/gob"

	"github.com/aifocal/vecdex/distance"
)

// GobEncode method for Flat.
func (f *Flat) GobEncode() ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var buf bytes.Buffer
	encoder := gob.NewEncoder(&buf)

	if err := encoder.Encode(f.opts); err != nil {
		return nil, err
	}

	if err := encoder.Encode(f.vectors); err != nil {
		return nil, err
	}

	if err := encoder.Encode(f.ids); err != nil {
		return nil, err
	}

	if err := encoder.Encode(f.freeList); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// GobDecode method for Flat.
func (f *Flat) GobDecode(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	decoder := gob.NewDecoder(bytes.NewBuffer(data))

	if err := decoder.Decode(&f.opts); err != nil {
		return err
	}

	if err := decoder.Decode(&f.vectors); err != nil {
		return err
	}

	if err := decoder.Decode(&f.ids); err != nil {
		return err
	}

	if err := decoder.Decode(&f.freeList); err != nil {
		return err
	}

	// Free slots must come back as nil regardless of how the codec
	// round-trips empty slices, and the id table is derived state.
	free := make(map[uint32]bool, len(f.freeList))
	for _, slot := range f.freeList {
		free[slot] = true
		f.vectors[slot] = nil
		f.ids[slot] = ""
	}

	f.slots = make(map[string]uint32, len(f.ids))
	for slot, id := range f.ids {
		if !free[uint32(slot)] {
			f.slots[id] = uint32(slot)
		}
	}

	distFunc, err := distance.Provider(f.opts.Metric)
	if err != nil {
		return err
	}
	f.distFunc = distFunc

	return nil
}
