// Package permutation holds the domain types for the permutation-based
// null distribution driver (component F): one record per shuffle plus the
// aggregated result carrying the empirical p-value.
package permutation

import (
	"math"
	"sort"
)

// FailureMarker is the sentinel best-score recorded for a shuffle whose
// worker failed but did not push the run over the abort threshold. It
// sorts below any real score so it never contaminates the empirical
// p-value's "at least as extreme" count.
var FailureMarker = math.Inf(-1)

// ShuffleResult is the outcome of running the top-N driver once on a
// permuted score vector.
type ShuffleResult struct {
	Index     int
	BestScore float64
	Failed    bool
}

// NullDistribution is the sorted collection of per-shuffle best scores
// used to compute the empirical p-value deterministically regardless of
// the order workers finished in.
type NullDistribution struct {
	Scores []float64
}

// NewNullDistribution sorts scores ascending and returns the distribution.
func NewNullDistribution(scores []float64) NullDistribution {
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	return NullDistribution{Scores: sorted}
}

// CountAtLeast returns the number of null scores >= observed.
func (d NullDistribution) CountAtLeast(observed float64) int {
	// Scores sorted ascending: first index with score >= observed marks
	// the start of the "at least as extreme" tail.
	idx := sort.Search(len(d.Scores), func(i int) bool { return d.Scores[i] >= observed })
	return len(d.Scores) - idx
}

// EmpiricalPValue computes (1 + #{S_k >= observed}) / (1 + K), per spec.md §5.3.
func (d NullDistribution) EmpiricalPValue(observed float64) float64 {
	k := len(d.Scores)
	return float64(1+d.CountAtLeast(observed)) / float64(1+k)
}

// Record is the full output of a permutation run: the observed best
// score, its p-value against the null, and the null distribution itself
// for downstream reporting/plotting.
type Record struct {
	ObservedBestScore float64
	PValue            float64
	Null              NullDistribution
	NumShuffles       int
	NumFailures       int
}

// NewRecord aggregates per-shuffle results into a final permutation record.
func NewRecord(observed float64, results []ShuffleResult) Record {
	scores := make([]float64, 0, len(results))
	failures := 0
	for _, r := range results {
		if r.Failed {
			failures++
			scores = append(scores, FailureMarker)
			continue
		}
		scores = append(scores, r.BestScore)
	}
	null := NewNullDistribution(scores)
	return Record{
		ObservedBestScore: observed,
		PValue:            null.EmpiricalPValue(observed),
		Null:              null,
		NumShuffles:       len(results),
		NumFailures:       failures,
	}
}
