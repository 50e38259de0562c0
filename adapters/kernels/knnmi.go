package kernels

import (
	"context"
	"math"
	"sort"

	"github.com/bioc/CaDrA/domain/scoring"
)

// KNNMIKernel implements a Kraskov-style k-nearest-neighbor mutual
// information estimator between the continuous score s and each binary
// feature row, conditioned on the meta-feature union the same way
// RevealerKernel is. k defaults to 3 per spec.md's default.
type KNNMIKernel struct{}

func NewKNNMIKernel() *KNNMIKernel { return &KNNMIKernel{} }

func (k *KNNMIKernel) Name() scoring.Method { return scoring.MethodKNNMI }

func (k *KNNMIKernel) Score(_ context.Context, a [][]uint8, rowLabels []string, colLabels []string, s []float64, opts Options) (scoring.ScoredVector, error) {
	opts = opts.WithDefaults()
	if err := validateInputs(a, rowLabels, s); err != nil {
		return nil, err
	}
	union := opts.MetaFeatureUnion
	if union == nil {
		union = make([]uint8, len(s))
	}

	values := make([]float64, len(a))
	rowIdx := make([]int, len(a))
	popcounts := make([]int, len(a))
	for i, row := range a {
		values[i] = knnConditionalMI(s, row, union, opts.KNNNeighbors)
		rowIdx[i] = i
		popcounts[i] = popCount(row)
	}
	return buildScoredVector(rowLabels, rowIdx, popcounts, values), nil
}

// knnConditionalMI estimates I(S;R|U) by computing the Kraskov k-NN MI
// estimator between s and the discrete row R, separately within each
// level of U, and combining with the level's sample-fraction weight.
func knnConditionalMI(s []float64, row, union []uint8, k int) float64 {
	var total float64
	for _, u := range []uint8{0, 1} {
		var sub []float64
		var subRow []uint8
		for j := range s {
			if union[j] != u {
				continue
			}
			sub = append(sub, s[j])
			subRow = append(subRow, row[j])
		}
		if len(sub) < 2*k+2 {
			continue
		}
		weight := float64(len(sub)) / float64(len(s))
		mi := kraskovMIDiscrete(sub, subRow, k)
		if mi < 0 {
			mi = 0
		}
		total += weight * mi
	}
	return total
}

// kraskovMIDiscrete computes the Kraskov-Grassberger-style MI estimate
// between continuous x and a discrete label y using the KSG mixed
// estimator: for each point, find the distance to its k-th neighbor
// within its own label group, then count how many points overall (across
// all labels) fall within that radius.
func kraskovMIDiscrete(x []float64, y []uint8, k int) float64 {
	n := len(x)
	if n <= k+1 {
		return 0
	}

	groups := map[uint8][]int{}
	for i, label := range y {
		groups[label] = append(groups[label], i)
	}

	digamma := digammaFn()
	// KSG estimator for a discrete/continuous pair: for each point, find
	// the k-th neighbor distance within its own label group, then count
	// how many points overall fall within that radius. The estimate
	// averages psi(k) - psi(n_x) + psi(n) - psi(n_y) over valid points.
	valid := 0
	var sum float64
	for i := 0; i < n; i++ {
		group := groups[y[i]]
		if len(group) <= k {
			continue
		}
		dist := kthNearestDistance(x, i, group, k)
		nxAll := countWithin(x, allIndices(n), i, dist)
		sum += digamma(k) - digamma(nxAll) + digamma(n) - digamma(len(group))
		valid++
	}
	if valid == 0 {
		return 0
	}
	return sum / float64(valid)
}

func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// kthNearestDistance returns the distance from x[i] to its k-th nearest
// neighbor within the (own-label) group, excluding i itself.
func kthNearestDistance(x []float64, i int, group []int, k int) float64 {
	dists := make([]float64, 0, len(group)-1)
	for _, j := range group {
		if j == i {
			continue
		}
		dists = append(dists, math.Abs(x[i]-x[j]))
	}
	sort.Float64s(dists)
	if k-1 >= len(dists) {
		return dists[len(dists)-1]
	}
	return dists[k-1]
}

// countWithin counts points in idxs (excluding i) with |x[j]-x[i]| <= radius.
func countWithin(x []float64, idxs []int, i int, radius float64) int {
	count := 0
	for _, j := range idxs {
		if j == i {
			continue
		}
		if math.Abs(x[i]-x[j]) <= radius {
			count++
		}
	}
	return count
}

// digammaFn returns a digamma function taking an int argument, backed by
// a standard asymptotic-series approximation (no gonum equivalent for the
// digamma/psi function is available in the pack's stack).
func digammaFn() func(int) float64 {
	return func(n int) float64 {
		if n <= 0 {
			return 0
		}
		x := float64(n)
		var result float64
		for x < 6 {
			result -= 1 / x
			x++
		}
		invX := 1 / x
		invX2 := invX * invX
		result += math.Log(x) - 0.5*invX -
			invX2*(1.0/12-invX2*(1.0/120-invX2*(1.0/252)))
		return result
	}
}
