package kernels_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioc/CaDrA/adapters/kernels"
	"github.com/bioc/CaDrA/domain/scoring"
)

func sampleAssay() ([][]uint8, []string, []string, []float64) {
	a := [][]uint8{
		{1, 1, 1, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 1, 1, 1, 1},
		{1, 0, 1, 0, 1, 0, 1, 0},
	}
	rowLabels := []string{"featA", "featB", "featC"}
	colLabels := []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8"}
	s := []float64{9, 8, 7, 6, 3, 2, 1, 0.5}
	return a, rowLabels, colLabels, s
}

func TestKSKernel_RanksEnrichedFeatureFirst(t *testing.T) {
	a, rowLabels, colLabels, s := sampleAssay()
	k := kernels.NewKSKernel()
	opts := scoring.Options{Method: scoring.MethodKS, Alternative: scoring.AlternativeGreater}.WithDefaults()

	result, err := k.Score(context.Background(), a, rowLabels, colLabels, s, opts)
	require.NoError(t, err)
	require.Len(t, result, 3)
	assert.Equal(t, "featA", result[0].Label)
}

func TestWilcoxonKernel_ExactVsApprox(t *testing.T) {
	a, rowLabels, colLabels, s := sampleAssay()
	k := kernels.NewWilcoxonKernel()
	opts := scoring.Options{Method: scoring.MethodWilcoxon}.WithDefaults()

	result, err := k.Score(context.Background(), a, rowLabels, colLabels, s, opts)
	require.NoError(t, err)
	require.Len(t, result, 3)
}

func TestCorrelationKernel_Pearson(t *testing.T) {
	a, rowLabels, colLabels, s := sampleAssay()
	k := kernels.NewCorrelationKernel()
	opts := scoring.Options{Method: scoring.MethodCorrelation, CMethod: scoring.CMethodPearson}.WithDefaults()

	result, err := k.Score(context.Background(), a, rowLabels, colLabels, s, opts)
	require.NoError(t, err)
	assert.Equal(t, "featA", result[0].Label)
}

func TestCorrelationKernel_Spearman(t *testing.T) {
	a, rowLabels, colLabels, s := sampleAssay()
	k := kernels.NewCorrelationKernel()
	opts := scoring.Options{Method: scoring.MethodCorrelation, CMethod: scoring.CMethodSpearman}.WithDefaults()

	_, err := k.Score(context.Background(), a, rowLabels, colLabels, s, opts)
	require.NoError(t, err)
}

func TestRevealerKernel_NonNegative(t *testing.T) {
	a, rowLabels, colLabels, s := sampleAssay()
	k := kernels.NewRevealerKernel()
	opts := scoring.Options{Method: scoring.MethodRevealer}.WithDefaults()

	result, err := k.Score(context.Background(), a, rowLabels, colLabels, s, opts)
	require.NoError(t, err)
	for _, r := range result {
		assert.GreaterOrEqual(t, r.Score, 0.0)
	}
}

func TestKNNMIKernel_ReturnsScores(t *testing.T) {
	a, rowLabels, colLabels, s := sampleAssay()
	k := kernels.NewKNNMIKernel()
	opts := scoring.Options{Method: scoring.MethodKNNMI, KNNNeighbors: 2}.WithDefaults()

	result, err := k.Score(context.Background(), a, rowLabels, colLabels, s, opts)
	require.NoError(t, err)
	assert.Len(t, result, 3)
}

func TestCustomKernel_ValidatesContract(t *testing.T) {
	a, rowLabels, colLabels, s := sampleAssay()
	k := kernels.NewCustomKernel()

	badOpts := scoring.Options{Method: scoring.MethodCustom}.WithDefaults()
	_, err := k.Score(context.Background(), a, rowLabels, colLabels, s, badOpts)
	assert.Error(t, err)

	goodOpts := scoring.Options{
		Method: scoring.MethodCustom,
		Custom: func(_ context.Context, a [][]uint8, s []float64, _ scoring.Options) ([]float64, error) {
			out := make([]float64, len(a))
			for i := range a {
				out[i] = float64(i)
			}
			return out, nil
		},
	}.WithDefaults()
	result, err := k.Score(context.Background(), a, rowLabels, colLabels, s, goodOpts)
	require.NoError(t, err)
	assert.Len(t, result, 3)
}

func TestRegistry_ResolvesAllMethods(t *testing.T) {
	reg := kernels.NewRegistry()
	for _, m := range []scoring.Method{
		scoring.MethodKS, scoring.MethodWilcoxon, scoring.MethodRevealer,
		scoring.MethodKNNMI, scoring.MethodCorrelation, scoring.MethodCustom,
	} {
		s, err := reg.Resolve(m)
		require.NoError(t, err)
		assert.Equal(t, m, s.Name())
	}
}

func TestRegistry_UnknownMethod(t *testing.T) {
	reg := kernels.NewRegistry()
	_, err := reg.Resolve("bogus")
	assert.Error(t, err)
}
