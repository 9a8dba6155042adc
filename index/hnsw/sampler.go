package hnsw

import (
	"math"
	"math/rand"
)

// levelSampler draws the insertion level for new nodes. Levels follow
// the exponential distribution floor(-ln(u) * mL) with u uniform in
// (0,1] and mL = 1/ln(M), so each layer holds roughly a 1/M fraction
// of the layer below it.
//
// The sampler owns its random source: a fixed seed reproduces the same
// level sequence no matter what other code draws from math/rand. It is
// not safe for concurrent use; the index calls it under the write lock.
type levelSampler struct {
	rng *rand.Rand
	mL  float64
}

func newLevelSampler(m int, seed int64) *levelSampler {
	return &levelSampler{
		rng: rand.New(rand.NewSource(seed)),
		mL:  layerNormalizationBase / math.Log(float64(m)),
	}
}

// next draws the level for a single insertion.
func (s *levelSampler) next() int {
	// 1-Float64() lies in (0,1], keeping the log finite.
	u := 1 - s.rng.Float64()
	return int(math.Floor(-math.Log(u) * s.mL))
}
