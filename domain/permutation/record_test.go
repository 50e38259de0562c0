package permutation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bioc/CaDrA/domain/permutation"
)

func TestEmpiricalPValue_Basic(t *testing.T) {
	null := permutation.NewNullDistribution([]float64{1, 2, 3, 4, 5})
	// observed 3: scores >= 3 are {3,4,5} = 3, K=5 -> (1+3)/(1+5)
	assert.InDelta(t, 4.0/6.0, null.EmpiricalPValue(3), 1e-9)
}

func TestEmpiricalPValue_ObservedBeatsAll(t *testing.T) {
	null := permutation.NewNullDistribution([]float64{1, 2, 3})
	assert.InDelta(t, 1.0/4.0, null.EmpiricalPValue(10), 1e-9)
}

func TestNewRecord_TracksFailures(t *testing.T) {
	results := []permutation.ShuffleResult{
		{Index: 0, BestScore: 1.0},
		{Index: 1, Failed: true},
		{Index: 2, BestScore: 2.0},
	}
	rec := permutation.NewRecord(1.5, results)
	assert.Equal(t, 3, rec.NumShuffles)
	assert.Equal(t, 1, rec.NumFailures)
	assert.Len(t, rec.Null.Scores, 3)
}
