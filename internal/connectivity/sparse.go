package connectivity

import (
	"math"
	"math/rand/v2"
)

// InDegree returns the number of incoming synapses per postsynaptic neuron
// for a given presynaptic population size: floor(sparseness * preSize).
func InDegree(preSize int, sparseness float64) int {
	return int(math.Floor(sparseness * float64(preSize)))
}

// GenerateSparse draws a fixed in-degree random topology.
//
// For each postsynaptic neuron k in [0, postSize), InDegree(preSize,
// sparseness) presynaptic indices are drawn uniformly from [0, preSize)
// with replacement. Duplicate pre->post pairs are kept as independent
// synapses. Output order is post-major: all synapses of post 0, then
// post 1, and so on, with draws taken from rng in exactly that order.
//
// Parameters are validated before rng is touched.
//
// Complexity: O(postSize * InDegree) time and memory.
func GenerateSparse(rng *rand.Rand, preSize, postSize int, sparseness float64) (pre, post []int, err error) {
	const method = "GenerateSparse"

	if preSize <= 0 || postSize <= 0 {
		return nil, nil, invalidf(method, "population sizes must be positive, got pre=%d post=%d", preSize, postSize)
	}
	if !(sparseness > 0 && sparseness <= 1) {
		return nil, nil, invalidf(method, "sparseness must be in (0, 1], got %g", sparseness)
	}
	if rng == nil {
		return nil, nil, invalidf(method, "random source is required")
	}

	perPost := InDegree(preSize, sparseness)
	total := postSize * perPost
	pre = make([]int, 0, total)
	post = make([]int, 0, total)

	for k := 0; k < postSize; k++ {
		for slot := 0; slot < perPost; slot++ {
			post = append(post, k)
			pre = append(pre, rng.IntN(preSize))
		}
	}

	return pre, post, nil
}

// NewRand returns a generator seeded deterministically from seed.
// One generator is created per build and threaded through every sparse
// connector; partition it per pair before parallelizing construction.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
