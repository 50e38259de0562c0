package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioc/CaDrA/domain/core"
	"github.com/bioc/CaDrA/domain/matrix"
)

func sampleData() ([][]uint8, []string, []string) {
	data := [][]uint8{
		{1, 0, 1, 0, 0},
		{0, 1, 0, 1, 0},
		{1, 1, 0, 0, 0},
	}
	rowLabels := []string{"geneA", "geneB", "geneC"}
	colLabels := []string{"s1", "s2", "s3", "s4", "s5"}
	return data, rowLabels, colLabels
}

func TestNew_ValidMatrix(t *testing.T) {
	data, rowLabels, colLabels := sampleData()
	m, err := matrix.New(data, rowLabels, colLabels)
	require.NoError(t, err)
	assert.Equal(t, 3, m.RowCount())
	assert.Equal(t, 5, m.ColCount())
	assert.Equal(t, 2, m.RowCountOnes(0))
}

func TestNew_RejectsNonBinary(t *testing.T) {
	data := [][]uint8{{1, 0, 2}}
	_, err := matrix.New(data, []string{"a"}, []string{"s1", "s2", "s3"})
	assert.ErrorIs(t, err, core.ErrNotBinary)
}

func TestNew_RejectsDegenerateRow(t *testing.T) {
	allZero := [][]uint8{{0, 0, 0}}
	_, err := matrix.New(allZero, []string{"a"}, []string{"s1", "s2", "s3"})
	assert.ErrorIs(t, err, core.ErrDegenerateRow)

	allOne := [][]uint8{{1, 1, 1}}
	_, err = matrix.New(allOne, []string{"a"}, []string{"s1", "s2", "s3"})
	assert.ErrorIs(t, err, core.ErrDegenerateRow)
}

func TestNew_RejectsDuplicateLabels(t *testing.T) {
	data := [][]uint8{{1, 0}, {0, 1}}
	_, err := matrix.New(data, []string{"a", "a"}, []string{"s1", "s2"})
	assert.ErrorIs(t, err, core.ErrDuplicateLabel)
}

func TestNew_RejectsEmptyMatrix(t *testing.T) {
	_, err := matrix.New(nil, nil, nil)
	assert.ErrorIs(t, err, core.ErrEmptyMatrix)
}

func TestOrUnion(t *testing.T) {
	data, rowLabels, colLabels := sampleData()
	m, err := matrix.New(data, rowLabels, colLabels)
	require.NoError(t, err)

	union := m.OrUnion([]int{0, 1})
	assert.Equal(t, []uint8{1, 1, 1, 1, 0}, union.ToUint8(5))
	assert.Equal(t, 4, union.PopCount())
}

func TestReorderCols_PreservesData(t *testing.T) {
	data, rowLabels, colLabels := sampleData()
	m, err := matrix.New(data, rowLabels, colLabels)
	require.NoError(t, err)

	perm := []int{4, 3, 2, 1, 0}
	reordered, err := m.ReorderCols(perm)
	require.NoError(t, err)

	assert.Equal(t, []string{"s5", "s4", "s3", "s2", "s1"}, reordered.ColLabels())
	assert.Equal(t, []uint8{0, 0, 1, 0, 1}, reordered.Row(0).ToUint8(5))
	assert.Equal(t, m.RowCountOnes(0), reordered.RowCountOnes(0))
}

func TestReorderCols_RejectsInvalidPermutation(t *testing.T) {
	data, rowLabels, colLabels := sampleData()
	m, err := matrix.New(data, rowLabels, colLabels)
	require.NoError(t, err)

	_, err = m.ReorderCols([]int{0, 1, 2, 3})
	assert.Error(t, err)

	_, err = m.ReorderCols([]int{0, 0, 1, 2, 3})
	assert.Error(t, err)
}

func TestRowIndex_ColIndex(t *testing.T) {
	data, rowLabels, colLabels := sampleData()
	m, err := matrix.New(data, rowLabels, colLabels)
	require.NoError(t, err)

	i, ok := m.RowIndex("geneB")
	require.True(t, ok)
	assert.Equal(t, 1, i)

	j, ok := m.ColIndex("s3")
	require.True(t, ok)
	assert.Equal(t, 2, j)

	_, ok = m.RowIndex("missing")
	assert.False(t, ok)
}

func TestSelect_Subsets(t *testing.T) {
	data, rowLabels, colLabels := sampleData()
	m, err := matrix.New(data, rowLabels, colLabels)
	require.NoError(t, err)

	sub, err := m.Select([]int{0, 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"geneA", "geneC"}, sub.RowLabels())
	assert.Equal(t, m.Row(2).ToUint8(5), sub.Row(1).ToUint8(5))
}
