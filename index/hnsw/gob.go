package hnsw

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/aifocal/vecdex/distance"
	"github.com/aifocal/vecdex/index"
)

// GobEncode serializes the graph. Free arena slots are implied by the
// occupied slot list, and the tombstone bitmap travels in its roaring
// wire format. Sampler state is not part of the snapshot.
func (h *HNSW) GobEncode() ([]byte, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var buf bytes.Buffer
	encoder := gob.NewEncoder(&buf)

	if err := encoder.Encode(h.opts); err != nil {
		return nil, err
	}

	if err := encoder.Encode(len(h.nodes)); err != nil {
		return nil, err
	}

	occupied := make([]uint32, 0, len(h.nodes))
	for nid, node := range h.nodes {
		if node != nil {
			occupied = append(occupied, uint32(nid))
		}
	}

	if err := encoder.Encode(occupied); err != nil {
		return nil, err
	}

	for _, nid := range occupied {
		if err := encoder.Encode(h.nodes[nid]); err != nil {
			return nil, err
		}
	}

	if err := encoder.Encode(h.intToExt); err != nil {
		return nil, err
	}

	if err := encoder.Encode(h.entryPoint); err != nil {
		return nil, err
	}

	if err := encoder.Encode(h.maxLevel); err != nil {
		return nil, err
	}

	var bitmap bytes.Buffer
	if _, err := h.deleted.WriteTo(&bitmap); err != nil {
		return nil, err
	}

	if err := encoder.Encode(bitmap.Bytes()); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// GobDecode restores the graph. The distance function, free list,
// forward id map and level sampler are derived rather than stored.
func (h *HNSW) GobDecode(data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	decoder := gob.NewDecoder(bytes.NewBuffer(data))

	var opts Options
	if err := decoder.Decode(&opts); err != nil {
		return err
	}

	var total int
	if err := decoder.Decode(&total); err != nil {
		return err
	}

	var occupied []uint32
	if err := decoder.Decode(&occupied); err != nil {
		return err
	}

	nodes := make([]*Node, total)
	for _, nid := range occupied {
		if int(nid) >= total {
			return &index.ErrInternal{Op: "decode", Err: fmt.Errorf("node slot %d outside arena of size %d", nid, total)}
		}

		node := &Node{}
		if err := decoder.Decode(node); err != nil {
			return err
		}
		nodes[nid] = node
	}

	var intToExt map[uint32]string
	if err := decoder.Decode(&intToExt); err != nil {
		return err
	}

	var entryPoint uint32
	if err := decoder.Decode(&entryPoint); err != nil {
		return err
	}

	var maxLevel int
	if err := decoder.Decode(&maxLevel); err != nil {
		return err
	}

	var bitmapBytes []byte
	if err := decoder.Decode(&bitmapBytes); err != nil {
		return err
	}

	deleted := roaring.New()
	if _, err := deleted.ReadFrom(bytes.NewBuffer(bitmapBytes)); err != nil {
		return err
	}

	distFunc, err := distance.Provider(opts.Metric)
	if err != nil {
		return err
	}

	extToInt := make(map[string]uint32, len(intToExt))
	for nid, id := range intToExt {
		if int(nid) >= total || nodes[nid] == nil {
			return &index.ErrInternal{Op: "decode", ID: id, Err: fmt.Errorf("id maps to missing node %d", nid)}
		}
		extToInt[id] = nid
	}

	if maxLevel >= 0 && (int(entryPoint) >= total || nodes[entryPoint] == nil || deleted.Contains(entryPoint)) {
		return &index.ErrInternal{Op: "decode", Err: fmt.Errorf("entry point %d is not a live node", entryPoint)}
	}

	var freeList []uint32
	for nid, node := range nodes {
		if node == nil {
			freeList = append(freeList, uint32(nid))
		}
	}

	seed := time.Now().UnixNano()
	if opts.RandomSeed != nil {
		seed = *opts.RandomSeed
	}

	h.nodes = nodes
	h.freeList = freeList
	h.extToInt = extToInt
	h.intToExt = intToExt
	h.deleted = deleted
	h.entryPoint = entryPoint
	h.maxLevel = maxLevel
	h.maxConnectionsPerLayer = opts.M
	h.maxConnectionsLayer0 = mmax0Multiplier * opts.M
	h.sampler = newLevelSampler(opts.M, seed)
	h.seed = seed
	h.distFunc = distFunc
	h.opts = opts

	return nil
}
