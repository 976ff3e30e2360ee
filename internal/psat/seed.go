package psat

import "math/rand/v2"

// Seed is random generator state threaded through the model by value.
// Drawing from a Seed never changes it; the next state is returned instead.
type Seed struct {
	pcg rand.PCG
}

// NewSeed builds a Seed from two words of seed material.
func NewSeed(seed1, seed2 uint64) Seed {
	return Seed{pcg: *rand.NewPCG(seed1, seed2)}
}

// IntN returns a uniform value in [0, n) and the advanced state. n must be positive.
func (s Seed) IntN(n int) (int, Seed) {
	v := rand.New(&s.pcg).IntN(n)
	return v, s
}
