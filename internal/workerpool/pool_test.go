package workerpool_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioc/CaDrA/internal/workerpool"
)

func TestRunAll_BoundsConcurrencyAndPreservesOrder(t *testing.T) {
	pool := workerpool.New(2)
	tasks := make([]workerpool.Task[int], 10)
	for i := range tasks {
		i := i
		tasks[i] = func(_ context.Context) (int, error) { return i * i, nil }
	}

	results := workerpool.RunAll(context.Background(), pool, tasks)
	require.Len(t, results, 10)
	for i, r := range results {
		assert.NoError(t, r.Err)
		assert.Equal(t, i*i, r.Value)
		assert.Equal(t, i, r.Index)
	}
}

func TestRunAll_ContextCancellation(t *testing.T) {
	pool := workerpool.New(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tasks := []workerpool.Task[int]{
		func(_ context.Context) (int, error) { return 1, nil },
	}
	results := workerpool.RunAll(ctx, pool, tasks)
	require.Len(t, results, 1)
	assert.Error(t, results[0].Err)
}
