package topn_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioc/CaDrA/adapters/kernels"
	"github.com/bioc/CaDrA/domain/matrix"
	"github.com/bioc/CaDrA/domain/scoring"
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

func baseEngineConfig() searchengine.Config {
	return searchengine.Config{
		Method:       scoring.MethodKS,
		KernelOpts:   scoring.Options{Method: scoring.MethodKS, Alternative: scoring.AlternativeGreater}.WithDefaults(),
		SearchMethod: searchengine.SearchForward,
		MaxSize:      3,
	}
}

func TestRun_TopNSeeding(t *testing.T) {
	m, s := buildMatrix(t)
	scorer := kernels.NewKSKernel()
	cfg := topn.Config{Engine: baseEngineConfig(), TopN: 2, NCores: 2}

	result, err := topn.Run(context.Background(), m, s, scorer, cfg)
	require.NoError(t, err)
	require.True(t, result.HasBest)
	assert.Len(t, result.Records, 2)
}

func TestRun_ExplicitSearchStart(t *testing.T) {
	m, s := buildMatrix(t)
	scorer := kernels.NewKSKernel()
	cfg := topn.Config{Engine: baseEngineConfig(), SearchStart: []string{"g1", "g3"}, NCores: 2}

	result, err := topn.Run(context.Background(), m, s, scorer, cfg)
	require.NoError(t, err)
	assert.Len(t, result.Records, 2)
}

func TestRun_RejectsConflictingSeedOptions(t *testing.T) {
	m, s := buildMatrix(t)
	scorer := kernels.NewKSKernel()
	cfg := topn.Config{Engine: baseEngineConfig(), TopN: 1, SearchStart: []string{"g1"}}

	_, err := topn.Run(context.Background(), m, s, scorer, cfg)
	assert.Error(t, err)
}

func TestRun_BestScoreOnlyOmitsRecords(t *testing.T) {
	m, s := buildMatrix(t)
	scorer := kernels.NewKSKernel()
	cfg := topn.Config{Engine: baseEngineConfig(), TopN: 2, BestScoreOnly: true}

	result, err := topn.Run(context.Background(), m, s, scorer, cfg)
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.True(t, result.HasBest)
}

func TestRun_UnknownSearchStartLabel(t *testing.T) {
	m, s := buildMatrix(t)
	scorer := kernels.NewKSKernel()
	cfg := topn.Config{Engine: baseEngineConfig(), SearchStart: []string{"missing"}}

	_, err := topn.Run(context.Background(), m, s, scorer, cfg)
	assert.Error(t, err)
}
