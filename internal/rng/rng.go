// Package rng derives independent, reproducible random sub-streams from a
// single run seed. There is no process-wide generator: every consumer asks
// for the stream addressed by its own coordinates (generation, slot, ...).
package rng

import (
	"math/rand"
)

const golden = 0x9e3779b97f4a7c15

// mix is the SplitMix64 finaliser.
func mix(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb

	return z ^ (z >> 31)
}

// Derive folds parts into seed and returns the sub-stream seed. The same
// inputs always give the same output; different coordinates give
// uncorrelated seeds.
func Derive(seed int64, parts ...int64) int64 {
	state := mix(uint64(seed) + golden)
	for _, p := range parts {
		state = mix(state ^ (uint64(p) + golden))
	}

	return int64(state)
}

// New returns a generator seeded with Derive(seed, parts...).
func New(seed int64, parts ...int64) *rand.Rand {
	return rand.New(rand.NewSource(Derive(seed, parts...)))
}
