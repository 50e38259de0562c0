package kernels

import (
	"context"
	"math"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/bioc/CaDrA/domain/scoring"
)

// CorrelationKernel scores each row by its Pearson or Spearman correlation
// with s, reporting |corr| by default or the signed value when the
// alternative is one-sided.
type CorrelationKernel struct{}

func NewCorrelationKernel() *CorrelationKernel { return &CorrelationKernel{} }

func (k *CorrelationKernel) Name() scoring.Method { return scoring.MethodCorrelation }

func (k *CorrelationKernel) Score(_ context.Context, a [][]uint8, rowLabels []string, colLabels []string, s []float64, opts Options) (scoring.ScoredVector, error) {
	if opts.Alternative == "" {
		opts.Alternative = scoring.AlternativeTwoSided
	}
	opts = opts.WithDefaults()
	if err := validateInputs(a, rowLabels, s); err != nil {
		return nil, err
	}

	sForCorr := s
	if opts.CMethod == scoring.CMethodSpearman {
		sForCorr = ranks(s)
	}

	values := make([]float64, len(a))
	rowIdx := make([]int, len(a))
	popcounts := make([]int, len(a))
	for i, row := range a {
		rowFloat := make([]float64, len(row))
		for j, v := range row {
			rowFloat[j] = float64(v)
		}
		x := rowFloat
		if opts.CMethod == scoring.CMethodSpearman {
			x = ranks(rowFloat)
		}

		r := stat.Correlation(x, sForCorr, nil)
		pValue := correlationPValue(r, len(s))

		var reported float64
		switch opts.Alternative {
		case scoring.AlternativeGreater:
			reported = r
		case scoring.AlternativeLess:
			reported = -r
		default:
			reported = math.Abs(r)
		}
		if opts.Return == scoring.ReturnNegLogP {
			magnitude := -math.Log10(scoring.Sanitize(pValue))
			switch opts.Alternative {
			case scoring.AlternativeGreater:
				if r < 0 {
					magnitude = -magnitude
				}
			case scoring.AlternativeLess:
				if r > 0 {
					magnitude = -magnitude
				}
			}
			reported = magnitude
		}

		values[i] = reported
		rowIdx[i] = i
		popcounts[i] = popCount(row)
	}
	return buildScoredVector(rowLabels, rowIdx, popcounts, values), nil
}

// correlationPValue transforms r into a t-statistic and reads the
// two-sided p-value off Student's t, following the same transform the
// teacher's brief.StatisticalDistributions.CorrelationPValue uses.
func correlationPValue(r float64, n int) float64 {
	if n < 3 || math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * (1 - tDist.CDF(math.Abs(t)))
}

// descriptiveSummary is a thin wrapper exercising montanaflynn/stats for
// reporting purposes (mean/stddev of a score vector). Neither the kernel
// nor the CLI calls it.
func descriptiveSummary(values []float64) (mean, stdDev float64, err error) {
	data := mstats.Float64Data(values)
	mean, err = data.Mean()
	if err != nil {
		return 0, 0, err
	}
	stdDev, err = data.StandardDeviation()
	return mean, stdDev, err
}
