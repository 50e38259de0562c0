// Package topn implements the Top-N driver (component E): it seeds the
// search engine from the top_N highest single-feature scores (or an
// explicit search_start label set) and runs component D once per seed,
// embarrassingly parallel across a bounded worker pool.
package topn

import (
	"context"
	"fmt"

	"github.com/bioc/CaDrA/domain/core"
	"github.com/bioc/CaDrA/domain/matrix"
	"github.com/bioc/CaDrA/domain/scoring"
	"github.com/bioc/CaDrA/domain/search"
	"github.com/bioc/CaDrA/internal/searchengine"
	"github.com/bioc/CaDrA/internal/workerpool"
)

// Config configures one Top-N run.
type Config struct {
	Engine        searchengine.Config
	TopN          int      // number of single-feature seeds to try; mutually exclusive with SearchStart
	SearchStart   []string // explicit seed labels; mutually exclusive with TopN
	BestScoreOnly bool     // when true, Result omits the per-seed Records and carries only Best
	NCores        int
}

// Result is the Top-N driver's output: every seed's finished search
// record, plus the best one found across all seeds.
type Result struct {
	Records   []search.Record
	Best      search.Record
	HasBest   bool
	BestOnly  bool
}

// Run seeds the search engine and executes it in parallel per seed.
func Run(ctx context.Context, m *matrix.BinaryMatrix, s []float64, scorer scoring.Scorer, cfg Config) (*Result, error) {
	if cfg.TopN > 0 && len(cfg.SearchStart) > 0 {
		return nil, core.ErrSeedAndTopNConflict
	}

	seeds, err := resolveSeeds(ctx, m, s, scorer, cfg)
	if err != nil {
		return nil, err
	}

	pool := workerpool.New(cfg.NCores)
	tasks := make([]workerpool.Task[search.Record], len(seeds))
	for i, seedIdx := range seeds {
		seedIdx := seedIdx
		tasks[i] = func(ctx context.Context) (search.Record, error) {
			eng := searchengine.New(m, s, scorer, cfg.Engine)
			state, err := eng.Run(ctx, seedIdx)
			if err != nil {
				return search.Record{}, err
			}
			return state.ToRecord(m.RowLabel(seedIdx)), nil
		}
	}

	results := workerpool.RunAll(ctx, pool, tasks)
	records := make([]search.Record, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			return nil, r.Err
		}
		records = append(records, r.Value)
	}

	out := &Result{BestOnly: cfg.BestScoreOnly}
	if !cfg.BestScoreOnly {
		out.Records = records
	}
	for _, rec := range records {
		if !out.HasBest || rec.BestScore > out.Best.BestScore {
			out.Best = rec
			out.HasBest = true
		}
	}
	return out, nil
}

// resolveSeeds computes the row indices to seed the search from: either
// the TopN highest single-feature scores, or the explicit SearchStart
// labels resolved against the matrix.
func resolveSeeds(ctx context.Context, m *matrix.BinaryMatrix, s []float64, scorer scoring.Scorer, cfg Config) ([]int, error) {
	if len(cfg.SearchStart) > 0 {
		idx := make([]int, 0, len(cfg.SearchStart))
		for _, label := range cfg.SearchStart {
			i, ok := m.RowIndex(label)
			if !ok {
				return nil, fmt.Errorf("%w: %q", core.ErrUnknownLabel, label)
			}
			idx = append(idx, i)
		}
		return idx, nil
	}

	topN := cfg.TopN
	if topN <= 0 {
		topN = 1
	}
	if topN > m.RowCount() {
		return nil, core.ErrTopNExceedsRows
	}

	dense := make([][]uint8, m.RowCount())
	for i := 0; i < m.RowCount(); i++ {
		dense[i] = m.Row(i).ToUint8(m.ColCount())
	}
	result, err := scorer.Score(ctx, dense, m.RowLabels(), m.ColLabels(), s, cfg.Engine.KernelOpts)
	if err != nil {
		return nil, err
	}

	idx := make([]int, 0, topN)
	for i := 0; i < topN && i < len(result); i++ {
		idx = append(idx, result[i].RowIndex)
	}
	return idx, nil
}
