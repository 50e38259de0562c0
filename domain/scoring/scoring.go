// Package scoring defines the uniform contract every score kernel
// (component B) must satisfy, plus the shared option/result types the
// search engine, top-N driver, and permutation driver pass through it.
package scoring

import (
	"context"
	"math"
	"sort"

	"github.com/bioc/CaDrA/domain/core"
)

// Method selects which score kernel to run.
type Method string

const (
	MethodKS         Method = "ks"
	MethodWilcoxon   Method = "wilcoxon"
	MethodRevealer   Method = "revealer"
	MethodKNNMI      Method = "knnmi"
	MethodCorrelation Method = "correlation"
	MethodCustom     Method = "custom"
)

// Alternative selects the sidedness/sign convention of a kernel's statistic.
type Alternative string

const (
	AlternativeLess      Alternative = "less"
	AlternativeGreater   Alternative = "greater"
	AlternativeTwoSided  Alternative = "two.sided"
)

// CMethod selects the correlation flavor for MethodCorrelation.
type CMethod string

const (
	CMethodPearson  CMethod = "pearson"
	CMethodSpearman CMethod = "spearman"
)

// ReturnMode controls whether the KS, Wilcoxon and correlation kernels
// report the raw statistic or -log10(p).
type ReturnMode string

const (
	ReturnStat   ReturnMode = "stat"
	ReturnNegLogP ReturnMode = "neglogp"
)

// CustomScorer is the contract a user-supplied kernel must satisfy: given
// the rows the kernel was called with and the score vector s, return one
// value per row in the same order.
type CustomScorer func(ctx context.Context, a [][]uint8, s []float64, opts Options) ([]float64, error)

// Options carries every per-kernel knob from spec.md §6's config surface.
type Options struct {
	Method            Method
	Alternative       Alternative
	CMethod           CMethod
	Return            ReturnMode
	Weights           map[string]float64 // sample label -> weight, KS only
	KNNNeighbors      int                // k for the k-NN MI kernel, default 3
	Custom            CustomScorer
	MetaFeatureLabels []string // rows already selected, for reporting/audit
	MetaFeatureUnion  []uint8  // dense OR of MetaFeatureLabels' rows; REVEALER/k-NN MI condition on this
}

// WithDefaults fills in zero-valued options with spec.md's defaults.
func (o Options) WithDefaults() Options {
	if o.Alternative == "" {
		o.Alternative = AlternativeLess
	}
	if o.CMethod == "" {
		o.CMethod = CMethodPearson
	}
	if o.Return == "" {
		o.Return = ReturnStat
	}
	if o.KNNNeighbors == 0 {
		o.KNNNeighbors = 3
	}
	return o
}

// ScoredRow is one row's score, kept alongside its label for tie-breaking
// and reporting.
type ScoredRow struct {
	Label     string
	RowIndex  int
	Score     float64
	PopCount  int // popcount of row OR meta-feature-union, used for tie-break
}

// ScoredVector is the descending-sorted output every Scorer must return.
// Sort order: score descending, then PopCount ascending, then Label
// lexicographic ascending — the tie-break chain from spec.md §4.2.
type ScoredVector []ScoredRow

func (v ScoredVector) Len() int      { return len(v) }
func (v ScoredVector) Swap(i, j int) { v[i], v[j] = v[j], v[i] }
func (v ScoredVector) Less(i, j int) bool {
	if v[i].Score != v[j].Score {
		return v[i].Score > v[j].Score
	}
	if v[i].PopCount != v[j].PopCount {
		return v[i].PopCount < v[j].PopCount
	}
	return v[i].Label < v[j].Label
}

// Sort orders v in place per the tie-break chain and returns it for chaining.
func (v ScoredVector) Sort() ScoredVector {
	sort.Stable(v)
	return v
}

// Best returns the top-ranked row, or false if v is empty.
func (v ScoredVector) Best() (ScoredRow, bool) {
	if len(v) == 0 {
		return ScoredRow{}, false
	}
	return v[0], true
}

// Scorer is the uniform contract every kernel implements: score(A, s,
// meta_feature_rows?, options) -> descending-sorted labeled vector.
type Scorer interface {
	// Name identifies the kernel, matching a Method constant.
	Name() Method
	// Score computes one score per row of a against s, optionally
	// conditioning on the OR-union of previously selected rows. colLabels
	// gives the sample label for each column of a/s, in order, so
	// label-keyed options (Weights) can be resolved positionally.
	Score(ctx context.Context, a [][]uint8, rowLabels []string, colLabels []string, s []float64, opts Options) (ScoredVector, error)
}

// ValidateCustomResult enforces the custom-kernel contract from spec.md
// §6.6: the returned slice must have exactly one finite value per row.
func ValidateCustomResult(values []float64, expectedLen int) error {
	if len(values) != expectedLen {
		return core.ErrCustomKernelContract
	}
	for _, v := range values {
		if IsUndefined(v) {
			return core.ErrCustomKernelContract
		}
	}
	return nil
}

// IsUndefined reports whether v is NaN or +/-Inf, i.e. not usable as a
// score without the smallest-positive-representable substitution.
func IsUndefined(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// SmallestPositive is the fallback value spec.md §6.7 mandates in place of
// NaN/undefined scores and zero p-values, chosen so -log10 stays finite.
const SmallestPositive = math.SmallestNonzeroFloat64

// Sanitize replaces undefined values and zero with SmallestPositive, per
// spec.md §6.7, so a zero p-value passed through it stays finite under -log10.
func Sanitize(v float64) float64 {
	if IsUndefined(v) || v == 0 {
		return SmallestPositive
	}
	return v
}
