package service

import (
	"math/rand/v2"
	"sync/atomic"
)

// RandFactory hands out a fresh generator per call. *rand.Rand is not safe
// for concurrent use, so each request draws its own.
type RandFactory func() *rand.Rand

// NewRandFactory seeds every generator from the runtime's global source.
func NewRandFactory() RandFactory {
	return func() *rand.Rand {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
}

// SeededRandFactory returns a replayable sequence of generators: the n-th
// call always yields the same stream for the same seed.
func SeededRandFactory(seed uint64) RandFactory {
	var n atomic.Uint64
	return func() *rand.Rand {
		return rand.New(rand.NewPCG(seed, n.Add(1)))
	}
}

// shuffle permutes items in place (Fisher-Yates).
func shuffle[T any](rng *rand.Rand, items []T) {
	rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

// takeRandom draws up to n items uniformly without replacement. The input
// slice is left untouched.
func takeRandom[T any](rng *rand.Rand, items []T, n int) []T {
	pool := make([]T, len(items))
	copy(pool, items)
	shuffle(rng, pool)
	if n < len(pool) {
		pool = pool[:n]
	}
	return pool
}
