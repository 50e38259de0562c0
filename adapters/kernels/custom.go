package kernels

import (
	"context"

	"github.com/bioc/CaDrA/domain/core"
	"github.com/bioc/CaDrA/domain/scoring"
)

// CustomKernel wraps a user-supplied scoring.CustomScorer, enforcing the
// scorer contract (one finite value per row, same order) before handing
// the result back through the shared ranking/tie-break pipeline.
type CustomKernel struct{}

func NewCustomKernel() *CustomKernel { return &CustomKernel{} }

func (k *CustomKernel) Name() scoring.Method { return scoring.MethodCustom }

func (k *CustomKernel) Score(ctx context.Context, a [][]uint8, rowLabels []string, colLabels []string, s []float64, opts Options) (scoring.ScoredVector, error) {
	if opts.Custom == nil {
		return nil, core.ErrCustomKernelMissing
	}
	if err := validateInputs(a, rowLabels, s); err != nil {
		return nil, err
	}

	values, err := opts.Custom(ctx, a, s, opts)
	if err != nil {
		return nil, err
	}
	if err := scoring.ValidateCustomResult(values, len(a)); err != nil {
		return nil, err
	}

	rowIdx := make([]int, len(a))
	popcounts := make([]int, len(a))
	for i, row := range a {
		rowIdx[i] = i
		popcounts[i] = popCount(row)
	}
	return buildScoredVector(rowLabels, rowIdx, popcounts, values), nil
}
