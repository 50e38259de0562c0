package permutation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioc/CaDrA/adapters/kernels"
	"github.com/bioc/CaDrA/adapters/rng"
	"github.com/bioc/CaDrA/domain/matrix"
	"github.com/bioc/CaDrA/domain/scoring"
	"github.com/bioc/CaDrA/internal/permutation"
	"github.com/bioc/CaDrA/internal/searchengine"
	"github.com/bioc/CaDrA/internal/topn"
)

func buildMatrix(t *testing.T) (*matrix.BinaryMatrix, []float64) {
	t.Helper()
	data := [][]uint8{
		{1, 1, 1, 0, 0, 0, 0, 0},
		{0, 0, 0, 1, 1, 0, 0, 0},
		{0, 0, 0, 0, 0, 1, 0, 0},
		{0, 1, 0, 1, 0, 0, 1, 0},
	}
	rowLabels := []string{"g1", "g2", "g3", "g4"}
	colLabels := []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8"}
	m, err := matrix.New(data, rowLabels, colLabels)
	require.NoError(t, err)
	s := []float64{9, 8, 7, 6, 5, 4, 3, 2}
	return m, s
}

func baseTopNConfig() topn.Config {
	return topn.Config{
		Engine: searchengine.Config{
			Method:       scoring.MethodKS,
			KernelOpts:   scoring.Options{Method: scoring.MethodKS, Alternative: scoring.AlternativeGreater}.WithDefaults(),
			SearchMethod: searchengine.SearchForward,
			MaxSize:      2,
		},
		TopN:   1,
		NCores: 2,
	}
}

func TestRun_ProducesPValueAndNullDistribution(t *testing.T) {
	m, s := buildMatrix(t)
	scorer := kernels.NewKSKernel()
	rngAdapter := rng.New()

	cfg := permutation.Config{
		TopN:        baseTopNConfig(),
		NumShuffles: 8,
		Seed:        42,
		NCores:      2,
		RunID:       "test-run",
	}

	record, err := permutation.Run(context.Background(), m, s, scorer, rngAdapter, cfg)
	require.NoError(t, err)
	assert.Len(t, record.Null.Scores, 8)
	assert.GreaterOrEqual(t, record.PValue, 0.0)
	assert.LessOrEqual(t, record.PValue, 1.0)
}

func TestRun_Deterministic(t *testing.T) {
	m, s := buildMatrix(t)
	scorer := kernels.NewKSKernel()
	rngAdapter := rng.New()

	cfg := permutation.Config{
		TopN:        baseTopNConfig(),
		NumShuffles: 5,
		Seed:        7,
		NCores:      1,
		RunID:       "deterministic-run",
	}

	first, err := permutation.Run(context.Background(), m, s, scorer, rngAdapter, cfg)
	require.NoError(t, err)
	second, err := permutation.Run(context.Background(), m, s, scorer, rngAdapter, cfg)
	require.NoError(t, err)

	assert.Equal(t, first.Null.Scores, second.Null.Scores)
}
