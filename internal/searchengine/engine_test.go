package searchengine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bioc/CaDrA/adapters/kernels"
	"github.com/bioc/CaDrA/domain/matrix"
	"github.com/bioc/CaDrA/domain/scoring"
	"github.com/bioc/CaDrA/internal/searchengine"
)

func buildTestMatrix(t *testing.T) (*matrix.BinaryMatrix, []float64) {
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

func TestEngine_ForwardOnly_GrowsAndStops(t *testing.T) {
	m, s := buildTestMatrix(t)
	scorer := kernels.NewKSKernel()
	cfg := searchengine.Config{
		Method:       scoring.MethodKS,
		KernelOpts:   scoring.Options{Method: scoring.MethodKS, Alternative: scoring.AlternativeGreater}.WithDefaults(),
		SearchMethod: searchengine.SearchForward,
		MaxSize:      4,
	}
	eng := searchengine.New(m, s, scorer, cfg)

	state, err := eng.Run(context.Background(), 0)
	require.NoError(t, err)
	require.GreaterOrEqual(t, state.Size(), 1)
	score, ok := state.BestScore()
	require.True(t, ok)
	require.GreaterOrEqual(t, score, 0.0)
}

func TestEngine_Both_AllowsBackwardAfterThree(t *testing.T) {
	m, s := buildTestMatrix(t)
	scorer := kernels.NewKSKernel()
	cfg := searchengine.Config{
		Method:       scoring.MethodKS,
		KernelOpts:   scoring.Options{Method: scoring.MethodKS, Alternative: scoring.AlternativeGreater}.WithDefaults(),
		SearchMethod: searchengine.SearchBoth,
		MaxSize:      4,
	}
	eng := searchengine.New(m, s, scorer, cfg)

	state, err := eng.Run(context.Background(), 0)
	require.NoError(t, err)
	require.NotEmpty(t, state.Trajectory())
}

func TestEngine_RespectsMaxSize(t *testing.T) {
	m, s := buildTestMatrix(t)
	scorer := kernels.NewKSKernel()
	cfg := searchengine.Config{
		Method:       scoring.MethodKS,
		KernelOpts:   scoring.Options{Method: scoring.MethodKS, Alternative: scoring.AlternativeGreater}.WithDefaults(),
		SearchMethod: searchengine.SearchForward,
		MaxSize:      1,
	}
	eng := searchengine.New(m, s, scorer, cfg)

	state, err := eng.Run(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, 1, state.Size())
}

func TestEngine_CancellationSurfaces(t *testing.T) {
	m, s := buildTestMatrix(t)
	scorer := kernels.NewKSKernel()
	cfg := searchengine.Config{
		Method:       scoring.MethodKS,
		KernelOpts:   scoring.Options{Method: scoring.MethodKS, Alternative: scoring.AlternativeGreater}.WithDefaults(),
		SearchMethod: searchengine.SearchForward,
	}
	eng := searchengine.New(m, s, scorer, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := eng.Run(ctx, 0)
	require.Error(t, err)
}
