package kernels

import (
	"context"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/bioc/CaDrA/domain/scoring"
)

// WilcoxonKernel implements the rank-sum (Mann-Whitney/Wilcoxon) scorer:
// it ranks all samples together, sums ranks in the hit group, and reports
// either the normal approximation (with continuity correction) or the
// exact distribution when both groups are small and rank-tie-free.
type WilcoxonKernel struct{}

func NewWilcoxonKernel() *WilcoxonKernel { return &WilcoxonKernel{} }

func (k *WilcoxonKernel) Name() scoring.Method { return scoring.MethodWilcoxon }

func (k *WilcoxonKernel) Score(_ context.Context, a [][]uint8, rowLabels []string, colLabels []string, s []float64, opts Options) (scoring.ScoredVector, error) {
	opts = opts.WithDefaults()
	if err := validateInputs(a, rowLabels, s); err != nil {
		return nil, err
	}
	rankOfSample := ranks(s)

	values := make([]float64, len(a))
	rowIdx := make([]int, len(a))
	popcounts := make([]int, len(a))
	for i, row := range a {
		values[i] = wilcoxonStat(row, s, rankOfSample, opts)
		rowIdx[i] = i
		popcounts[i] = popCount(row)
	}
	return buildScoredVector(rowLabels, rowIdx, popcounts, values), nil
}

func wilcoxonStat(row []uint8, s []float64, rankOfSample []float64, opts Options) float64 {
	n1, n0 := 0, 0
	var rankSum float64
	hasTies := hasTiedValues(s)
	for j := range s {
		if row[j] == 1 {
			n1++
			rankSum += rankOfSample[j]
		} else {
			n0++
		}
	}
	if n1 == 0 || n0 == 0 {
		return 0
	}

	// rankOfSample is assigned by descending s (rank 1 = highest), so the
	// raw rank-sum statistic runs backwards: a hit group enriched toward
	// high s values accumulates low ranks, not high ones. Complement it
	// (U and n1*n0-U are the two Mann-Whitney U statistics for a group and
	// always sum to n1*n0) to recover the ascending-rank convention, where
	// U above its null mean means the hit group skews toward high s.
	uDescending := rankSum - float64(n1*(n1+1))/2.0
	u := float64(n1*n0) - uDescending
	meanU := float64(n1*n0) / 2.0

	useExact := n1 < 50 && n0 < 50 && !hasTies
	var pValue float64
	if useExact {
		pValue = wilcoxonExactPValue(int(math.Round(u)), n1, n0, opts.Alternative)
	} else {
		stdU := math.Sqrt(float64(n1*n0) * float64(n1+n0+1) / 12.0)
		if stdU == 0 {
			return 0
		}
		z := continuityCorrectedZ(u, meanU, stdU, opts.Alternative)
		pValue = normalTailPValue(z, opts.Alternative)
	}

	if opts.Return == scoring.ReturnNegLogP {
		return -math.Log10(scoring.Sanitize(pValue))
	}
	// Report the z-like effect direction as the raw statistic: positive
	// when the hit group ranks higher than expected under the null.
	return u - meanU
}

func hasTiedValues(s []float64) bool {
	seen := make(map[float64]struct{}, len(s))
	for _, v := range s {
		if _, ok := seen[v]; ok {
			return true
		}
		seen[v] = struct{}{}
	}
	return false
}

func continuityCorrectedZ(u, meanU, stdU float64, alt scoring.Alternative) float64 {
	diff := u - meanU
	switch alt {
	case scoring.AlternativeGreater:
		diff -= 0.5
	case scoring.AlternativeLess:
		diff += 0.5
	default:
		if diff > 0 {
			diff -= 0.5
		} else if diff < 0 {
			diff += 0.5
		}
	}
	return diff / stdU
}

func normalTailPValue(z float64, alt scoring.Alternative) float64 {
	switch alt {
	case scoring.AlternativeGreater:
		return 1 - distuv.UnitNormal.CDF(z)
	case scoring.AlternativeLess:
		return distuv.UnitNormal.CDF(z)
	default:
		return 2 * (1 - distuv.UnitNormal.CDF(math.Abs(z)))
	}
}

// wilcoxonExactPValue computes the exact rank-sum distribution via the
// classical recurrence for the number of ways to draw n1 ranks out of
// n1+n0 summing to at most u.
func wilcoxonExactPValue(u, n1, n0 int, alt scoring.Alternative) float64 {
	maxU := n1 * n0
	if u < 0 {
		u = 0
	}
	if u > maxU {
		u = maxU
	}

	// dp[k][s] = number of multisets of k values from {0..n0} (equivalently
	// partitions of s into at most k parts no larger than n0) summing to s.
	// Uses the standard Mann-Whitney counting DP over U in [0, n1*n0].
	dp := make([][]uint64, n1+1)
	for i := range dp {
		dp[i] = make([]uint64, maxU+1)
	}
	dp[0][0] = 1
	for x := 0; x <= n0; x++ {
		for i := 1; i <= n1; i++ {
			for uu := x; uu <= maxU; uu++ {
				dp[i][uu] += dp[i-1][uu-x]
			}
		}
	}

	total := dp[n1]
	var totalCount uint64
	for _, c := range total {
		totalCount += c
	}
	if totalCount == 0 {
		return 1
	}

	var cumLE, cumGE uint64
	for uu := 0; uu <= maxU; uu++ {
		if uu <= u {
			cumLE += total[uu]
		}
		if uu >= u {
			cumGE += total[uu]
		}
	}

	switch alt {
	case scoring.AlternativeGreater:
		return float64(cumGE) / float64(totalCount)
	case scoring.AlternativeLess:
		return float64(cumLE) / float64(totalCount)
	default:
		pLE := float64(cumLE) / float64(totalCount)
		pGE := float64(cumGE) / float64(totalCount)
		p := 2 * math.Min(pLE, pGE)
		if p > 1 {
			p = 1
		}
		return p
	}
}
