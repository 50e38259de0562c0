package kernels

import (
	"context"
	"math"
	"sort"

	"github.com/bioc/CaDrA/domain/core"
	"github.com/bioc/CaDrA/domain/scoring"
)

// KSKernel implements the weighted one-sided two-sample Kolmogorov-Smirnov
// scorer: for each feature row it compares the distribution of s among
// "hit" samples (row bit set) against "miss" samples (row bit clear).
type KSKernel struct{}

func NewKSKernel() *KSKernel { return &KSKernel{} }

func (k *KSKernel) Name() scoring.Method { return scoring.MethodKS }

func (k *KSKernel) Score(_ context.Context, a [][]uint8, rowLabels []string, colLabels []string, s []float64, opts Options) (scoring.ScoredVector, error) {
	opts = opts.WithDefaults()
	if err := validateInputs(a, rowLabels, s); err != nil {
		return nil, err
	}
	weights, err := resolveWeights(opts.Weights, colLabels)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(a))
	rowIdx := make([]int, len(a))
	popcounts := make([]int, len(a))
	for i, row := range a {
		stat, pValue := weightedKS(row, s, weights, opts.Alternative)
		if opts.Return == scoring.ReturnNegLogP {
			values[i] = -math.Log10(scoring.Sanitize(pValue))
		} else {
			values[i] = stat
		}
		rowIdx[i] = i
		popcounts[i] = popCount(row)
	}
	return buildScoredVector(rowLabels, rowIdx, popcounts, values), nil
}

// weightedKS computes the weighted two-sample KS statistic between the
// s-values of samples where row=1 (hits) and row=0 (misses), plus its
// asymptotic p-value under the Kolmogorov distribution.
func weightedKS(row []uint8, s []float64, weights []float64, alt scoring.Alternative) (float64, float64) {
	type sample struct {
		score  float64
		hit    bool
		weight float64
	}
	samples := make([]sample, len(s))
	var hitWeight, missWeight float64
	n1, n0 := 0, 0
	for j, v := range s {
		hit := row[j] == 1
		samples[j] = sample{score: v, hit: hit, weight: weights[j]}
		if hit {
			hitWeight += weights[j]
			n1++
		} else {
			missWeight += weights[j]
			n0++
		}
	}
	if n1 == 0 || n0 == 0 || hitWeight == 0 || missWeight == 0 {
		return 0, 1
	}

	// spec.md §4.2: samples are ordered by s descending before the ECDF
	// walk, so a hit group skewed toward high s values accumulates cumHit
	// faster than cumMiss and drives maxDiff (the Greater statistic) up.
	sort.Slice(samples, func(i, j int) bool { return samples[i].score > samples[j].score })

	var cumHit, cumMiss, maxDiff, minDiff float64
	for _, sm := range samples {
		if sm.hit {
			cumHit += sm.weight / hitWeight
		} else {
			cumMiss += sm.weight / missWeight
		}
		diff := cumHit - cumMiss
		if diff > maxDiff {
			maxDiff = diff
		}
		if diff < minDiff {
			minDiff = diff
		}
	}

	var stat float64
	switch alt {
	case scoring.AlternativeGreater:
		stat = maxDiff
	case scoring.AlternativeLess:
		stat = -minDiff
	default:
		stat = math.Max(maxDiff, -minDiff)
	}

	nEff := float64(n1) * float64(n0) / float64(n1+n0)
	pValue := kolmogorovSurvival(stat, nEff)
	return stat, pValue
}

// kolmogorovSurvival evaluates the asymptotic Kolmogorov distribution's
// survival function P(D > d) at scale n, per the classical KS asymptotic
// formula Q(lambda) = 2 * sum_{k=1..inf} (-1)^(k-1) exp(-2 k^2 lambda^2).
func kolmogorovSurvival(d float64, nEff float64) float64 {
	if d <= 0 || nEff <= 0 {
		return 1
	}
	lambda := d * math.Sqrt(nEff)
	sum := 0.0
	for k := 1; k <= 100; k++ {
		term := 2 * math.Pow(-1, float64(k-1)) * math.Exp(-2*float64(k*k)*lambda*lambda)
		sum += term
		if math.Abs(term) < 1e-12 {
			break
		}
	}
	if sum < 0 {
		sum = 0
	}
	if sum > 1 {
		sum = 1
	}
	return sum
}

func popCount(row []uint8) int {
	c := 0
	for _, v := range row {
		if v == 1 {
			c++
		}
	}
	return c
}

// resolveWeights turns a label-keyed weight map into a slice aligned with
// colLabels, defaulting to uniform weights when none were supplied.
func resolveWeights(named map[string]float64, colLabels []string) ([]float64, error) {
	n := len(colLabels)
	if len(named) == 0 {
		w := make([]float64, n)
		for i := range w {
			w[i] = 1
		}
		return w, nil
	}
	if len(named) != n {
		return nil, core.ErrWeightsMismatch
	}
	w := make([]float64, n)
	for j, label := range colLabels {
		v, ok := named[label]
		if !ok {
			return nil, core.ErrWeightsMismatch
		}
		w[j] = v
	}
	return w, nil
}

func validateInputs(a [][]uint8, rowLabels []string, s []float64) error {
	if len(a) != len(rowLabels) {
		return core.NewValidationError("rowLabels", "must match row count")
	}
	for _, row := range a {
		if len(row) != len(s) {
			return core.ErrLabelMismatch
		}
	}
	return nil
}

// Options is an alias kept local to the kernels package to avoid an import
// cycle while still reusing scoring.Options's shape everywhere kernels are
// invoked.
type Options = scoring.Options
