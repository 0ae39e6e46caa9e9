// Package entropy provides the random sources consumed by the simulation.
// Every stochastic step (volatility swings, event rolls, phase offsets, sampling)
// draws from a Source so tests and replays can substitute a seeded one.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	mrand "math/rand"
)

// Source is the randomness the simulation consumes.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// Intn returns a value in [0, n). n must be > 0.
	Intn(n int) int
}

// NewSeeded returns a deterministic Source for the given seed.
func NewSeeded(seed int64) Source {
	return mrand.New(mrand.NewSource(seed))
}

// DaySeed derives the seed for one simulated day of a session so that a
// retried turn draws the same numbers as the failed attempt.
func DaySeed(sessionSeed int64, day int) int64 {
	// SplitMix64 finalizer over the combined value.
	z := uint64(sessionSeed) + uint64(int64(day))*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z ^= z >> 31
	return int64(z & math.MaxInt64)
}

// Uniform returns a value in [lo, hi).
func Uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// IntBetween returns a value in [lo, hi]. If hi < lo, lo is returned.
func IntBetween(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

// CryptoSeed returns a positive seed from crypto/rand.
func CryptoSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// This should never happen; fall back to a fixed but valid seed.
		return 1
	}
	seed := int64(binary.LittleEndian.Uint64(buf[:]) & math.MaxInt64)
	if seed == 0 {
		seed = 1
	}
	return seed
}
