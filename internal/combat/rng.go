package combat

import "math/rand/v2"

// Rand is the random source a trial draws from. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// NewRand returns a PCG generator for one trial. Distinct streams under the
// same seed are independent, so trial i always sees stream i no matter which
// worker runs it.
func NewRand(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}

// RandomSeed draws a seed from the runtime's global generator
func RandomSeed() uint64 {
	for {
		if s := rand.Uint64(); s != 0 {
			return s
		}
	}
}
