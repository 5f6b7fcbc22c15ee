package testutil

import (
	"math/rand/v2"
	"sync"
)

// RNG is a seeded, goroutine-safe source for reproducible test workloads.
type RNG struct {
	mu   sync.Mutex
	src  *rand.Rand
	seed int64
}

// NewRNG returns an RNG seeded with seed.
func NewRNG(seed int64) *RNG {
	r := &RNG{seed: seed}
	r.src = newSource(seed)
	return r
}

func newSource(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15)) //nolint:gosec // deterministic test data
}

// Reset rewinds the sequence to the start.
func (r *RNG) Reset() {
	r.mu.Lock()
	r.src = newSource(r.seed)
	r.mu.Unlock()
}

// Seed returns the seed r was created with.
func (r *RNG) Seed() int64 { return r.seed }

// Intn returns a value in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.IntN(n)
}

// FillUniform fills dst with values in [0,1).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.src.Float32()
	}
}

// Ops returns n operation codes in [0,kinds), used to drive randomized
// lifecycle sequences.
func (r *RNG) Ops(n, kinds int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make([]int, n)
	for i := range ops {
		ops[i] = r.src.IntN(kinds)
	}
	return ops
}
