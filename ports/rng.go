package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic
// operations. CaDrA's permutation driver (component F) needs every
// shuffle to be reproducible from a single top-level seed regardless of
// how many workers (ncores) actually ran it, so streams are derived by
// name/index rather than drawn from a single shared generator.
type RNGPort interface {
	// SeededStream returns a *rand.Rand deterministically derived from
	// name and seed. Two calls with the same arguments always produce
	// generators that yield the same sequence.
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)

	// PermutationStream returns the RNG stream for shuffle index k of a
	// run seeded with baseSeed, independent of which worker goroutine
	// consumes it and independent of ncores.
	PermutationStream(ctx context.Context, runID string, k int, baseSeed int64) (*rand.Rand, error)
}
