package tabular_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioc/CaDrA/adapters/tabular"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMatrix_CSV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "matrix.csv", ""+
		"feature,s1,s2,s3,s4\n"+
		"TP53,1,0,1,0\n"+
		"KRAS,0,1,1,0\n")

	l := tabular.New()
	m, err := l.LoadMatrix(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, m.RowCount())
	assert.Equal(t, 4, m.ColCount())
	assert.Equal(t, []string{"s1", "s2", "s3", "s4"}, m.ColLabels())
	i, ok := m.RowIndex("TP53")
	require.True(t, ok)
	assert.Equal(t, 2, m.RowCountOnes(i))
}

func TestLoadMatrix_RejectsNonBinaryCell(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "matrix.csv", ""+
		"feature,s1,s2\n"+
		"TP53,1,7\n")

	l := tabular.New()
	_, err := l.LoadMatrix(context.Background(), path)
	assert.Error(t, err)
}

func TestLoadMatrix_MissingFile(t *testing.T) {
	l := tabular.New()
	_, err := l.LoadMatrix(context.Background(), "/nonexistent/matrix.csv")
	assert.Error(t, err)
}

func TestLoadScoreVector_CSV_WithHeader(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scores.csv", ""+
		"sample,score\n"+
		"s1,1.5\n"+
		"s2,-0.3\n"+
		"s3,2.1\n"+
		"s4,0.0\n")

	l := tabular.New()
	scores, labels, err := l.LoadScoreVector(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2", "s3", "s4"}, labels)
	assert.Equal(t, []float64{1.5, -0.3, 2.1, 0.0}, scores)
}

func TestLoadScoreVector_CSV_NoHeader(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "scores.csv", ""+
		"s1,1.5\n"+
		"s2,-0.3\n")

	l := tabular.New()
	scores, labels, err := l.LoadScoreVector(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, labels)
	assert.Equal(t, []float64{1.5, -0.3}, scores)
}
