package flicker

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// Rand is the random source a light draws from. *rand.Rand satisfies it.
type Rand interface {
	// IntN returns a uniform integer in [0,n).
	IntN(n int) int
}

// NewRand returns an independently seeded PCG source. Every light gets its own
// so neighbouring LEDs never share generator state.
func NewRand() Rand {
	var seed [16]byte
	if _, err := crand.Read(seed[:]); err != nil {
		// crypto/rand only fails when the OS entropy source is gone;
		// fall back to the runtime-seeded global generator for the seed.
		binary.LittleEndian.PutUint64(seed[:8], rand.Uint64())
		binary.LittleEndian.PutUint64(seed[8:], rand.Uint64())
	}
	return rand.New(rand.NewPCG(
		binary.LittleEndian.Uint64(seed[:8]),
		binary.LittleEndian.Uint64(seed[8:]),
	))
}

// NewSeeded returns a deterministic source, for simulations and tests.
func NewSeeded(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// uniform draws an integer in the inclusive range [lo,hi].
func uniform(r Rand, lo, hi int) int {
	return lo + r.IntN(hi-lo+1)
}
