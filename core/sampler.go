package core

import (
	"math/rand/v2"
	"sync"
)

// UniformSampler draws indices uniformly with replacement from the
// process-global source. Safe for concurrent use; not reproducible.
type UniformSampler struct{}

func (UniformSampler) Sample(n, size int) []int {
	idx := make([]int, size)
	for i := range idx {
		idx[i] = rand.IntN(n)
	}
	return idx
}

// SeededSampler draws indices uniformly with replacement from a seeded
// source, so a sequence of calls is reproducible.
type SeededSampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSeededSampler(seed uint64) *SeededSampler {
	return &SeededSampler{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *SeededSampler) Sample(n, size int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := make([]int, size)
	for i := range idx {
		idx[i] = s.rng.IntN(n)
	}
	return idx
}

// BatchSample draws opts.BatchSize indices for ds.
func BatchSample[L Float](ds *Dataset[L], opts *Options[L]) []int {
	return opts.sampler().Sample(ds.N, opts.BatchSize)
}
