// Package rng implements ports.RNGPort with djb2-hashed seed derivation,
// grounded on the teacher's internal/testkit RNGAdapter stub.
package rng

import (
	"context"
	"math/rand"

	"github.com/bioc/CaDrA/ports"
)

// Adapter is the production RNGPort implementation. It has no state: every
// stream is a pure function of its name/seed inputs, which is what lets
// the permutation driver reproduce the same K shuffles no matter how many
// worker goroutines (ncores) actually drew from the pool.
type Adapter struct{}

// New returns a stateless RNGPort adapter.
func New() ports.RNGPort { return &Adapter{} }

// SeededStream returns a *rand.Rand seeded deterministically from name and seed.
func (a *Adapter) SeededStream(_ context.Context, name string, seed int64) (*rand.Rand, error) {
	derived := seed + int64(hashString(name))
	return rand.New(rand.NewSource(derived)), nil
}

// PermutationStream derives shuffle k's RNG from runID, k, and baseSeed so
// the sequence of shuffles is independent of scheduling order or ncores.
func (a *Adapter) PermutationStream(_ context.Context, runID string, k int, baseSeed int64) (*rand.Rand, error) {
	derived := baseSeed + int64(hashString(runID))*31 + int64(k)
	return rand.New(rand.NewSource(derived)), nil
}

// hashString is the djb2 hash used to fold a name into a numeric seed offset.
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c)
	}
	return hash
}
