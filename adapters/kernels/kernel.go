// Package kernels implements the six score kernels of component B, all
// built on the same rank/weight primitives so their statistical texture
// matches across methods. Ranking with tie-averaging is adapted from the
// teacher's Spearman sense; distribution CDFs come from gonum/distuv the
// same way the teacher's brief.StatisticalDistributions does.
package kernels

import (
	"sort"

	"github.com/bioc/CaDrA/domain/scoring"
)

// ranks returns the average rank (1-indexed, ties averaged) of each
// element of data, per spec.md §4.2: sorted by value descending, so the
// largest value gets rank 1.
func ranks(data []float64) []float64 {
	n := len(data)
	type pair struct {
		value float64
		index int
	}
	pairs := make([]pair, n)
	for i, v := range data {
		pairs[i] = pair{value: v, index: i}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].value > pairs[j].value })

	out := make([]float64, n)
	i := 0
	for i < n {
		j := i + 1
		for j < n && pairs[j].value == pairs[i].value {
			j++
		}
		avgRank := float64(i+1) + float64(j-i-1)/2.0
		for k := i; k < j; k++ {
			out[pairs[k].index] = avgRank
		}
		i = j
	}
	return out
}

// splitByRow partitions s (aligned to sample columns) into the hit group
// (row bit set) and miss group (row bit clear), preserving order.
func splitByRow(row []uint8, s []float64) (hits, misses []float64, hitIdx, missIdx []int) {
	for j, v := range s {
		if row[j] == 1 {
			hits = append(hits, v)
			hitIdx = append(hitIdx, j)
		} else {
			misses = append(misses, v)
			missIdx = append(missIdx, j)
		}
	}
	return
}

// buildScoredVector pairs each row's value with its label, row index and
// popcount, sanitizes the value, and returns the vector sorted by the
// shared tie-break chain. Kernels score the rows exactly as passed in; the
// search engine passes the OR-union row itself and does not set
// Options.MetaFeatureUnion.
func buildScoredVector(labels []string, rowIdx []int, popcounts []int, values []float64) scoring.ScoredVector {
	out := make(scoring.ScoredVector, len(values))
	for i, v := range values {
		out[i] = scoring.ScoredRow{
			Label:    labels[i],
			RowIndex: rowIdx[i],
			Score:    scoring.Sanitize(v),
			PopCount: popcounts[i],
		}
	}
	return out.Sort()
}
