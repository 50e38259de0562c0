// Package searchengine implements the bounded forward/backward greedy
// search (component D): one seed feature grows into a meta-feature by
// repeatedly adding the row that most improves the kernel score, with an
// optional backward pass that drops rows once three or more are selected.
package searchengine

import (
	"context"
	"fmt"

	"github.com/bioc/CaDrA/domain/core"
	"github.com/bioc/CaDrA/domain/matrix"
	"github.com/bioc/CaDrA/domain/scoring"
	"github.com/bioc/CaDrA/domain/search"
)

// SearchMethod controls whether the engine only grows the meta-feature
// (forward) or also prunes it (both).
type SearchMethod string

const (
	SearchForward SearchMethod = "forward"
	SearchBoth    SearchMethod = "both"
)

// Config bounds and configures one run of the engine.
type Config struct {
	Method       scoring.Method
	KernelOpts   scoring.Options
	SearchMethod SearchMethod
	MaxSize      int // 0 means unbounded
}

// Engine runs the bounded forward/backward search for a single seed.
type Engine struct {
	m        *matrix.BinaryMatrix
	s        []float64
	scorer   scoring.Scorer
	cfg      Config
}

// New builds an Engine scoped to matrix m, score vector s, and the
// resolved scorer for cfg.Method.
func New(m *matrix.BinaryMatrix, s []float64, scorer scoring.Scorer, cfg Config) *Engine {
	return &Engine{m: m, s: s, scorer: scorer, cfg: cfg}
}

// Run grows a meta-feature from seedRowIdx until neither a forward nor a
// (when enabled) backward step improves the best score, or MaxSize rows
// are selected.
func (e *Engine) Run(ctx context.Context, seedRowIdx int) (*search.MetaFeatureState, error) {
	state := search.NewMetaFeatureState()
	seedLabel := e.m.RowLabel(seedRowIdx)
	seedRow := e.m.Row(seedRowIdx)

	seedScore, err := e.scoreCandidateSet([]int{seedRowIdx})
	if err != nil {
		return nil, err
	}
	state.Add(seedRowIdx, seedLabel, seedRow, seedScore, seedScore)

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", core.ErrCancelled, ctx.Err())
		default:
		}

		if e.cfg.MaxSize > 0 && state.Size() >= e.cfg.MaxSize {
			break
		}

		improved, err := e.forwardStep(ctx, state)
		if err != nil {
			return nil, err
		}

		if e.cfg.SearchMethod == SearchBoth && state.Size() >= 3 {
			backImproved, err := e.backwardStep(ctx, state)
			if err != nil {
				return nil, err
			}
			improved = improved || backImproved
		}

		if !improved {
			break
		}
	}

	return state, nil
}

// forwardStep tries every row not yet selected, picks the one whose
// addition yields the best resulting score (tie-broken by smaller
// resulting popcount then lexicographic label), and commits it only if it
// strictly beats the current best score.
func (e *Engine) forwardStep(ctx context.Context, state *search.MetaFeatureState) (bool, error) {
	selected := makeSet(state.SelectedIndices())
	currentBest, hasCurrent := state.BestScore()

	rows := make(scoring.ScoredVector, 0, e.m.RowCount()-len(selected))
	for i := 0; i < e.m.RowCount(); i++ {
		if selected[i] {
			continue
		}
		select {
		case <-ctx.Done():
			return false, fmt.Errorf("%w: %v", core.ErrCancelled, ctx.Err())
		default:
		}
		union := state.UnionVector().Or(e.m.Row(i))
		score, err := e.scoreUnion(union)
		if err != nil {
			return false, err
		}
		rows = append(rows, scoring.ScoredRow{
			Label:    e.m.RowLabel(i),
			RowIndex: i,
			Score:    score,
			PopCount: union.PopCount(),
		})
	}
	if len(rows) == 0 {
		return false, nil
	}
	rows.Sort()
	top := rows[0]

	if hasCurrent && top.Score <= currentBest {
		return false, nil
	}

	marginal := top.Score
	if hasCurrent {
		marginal = top.Score - currentBest
	}
	state.Add(top.RowIndex, top.Label, e.m.Row(top.RowIndex), marginal, top.Score)
	return true, nil
}

// backwardStep tries removing each currently selected row, recomputes the
// union from the remaining rows, and commits the removal only if it
// improves the score, tie-broken the same way as forwardStep (smaller
// resulting popcount, then lexicographic label) per spec.md §4.3.
func (e *Engine) backwardStep(ctx context.Context, state *search.MetaFeatureState) (bool, error) {
	currentBest, hasCurrent := state.BestScore()
	if !hasCurrent {
		return false, nil
	}
	indices := state.SelectedIndices()

	unions := make(map[int]matrix.BitRow, len(indices))
	trials := make(scoring.ScoredVector, 0, len(indices))
	for pos := range indices {
		select {
		case <-ctx.Done():
			return false, fmt.Errorf("%w: %v", core.ErrCancelled, ctx.Err())
		default:
		}
		remaining := append(append([]int(nil), indices[:pos]...), indices[pos+1:]...)
		union := e.m.OrUnion(remaining)
		score, err := e.scoreUnion(union)
		if err != nil {
			return false, err
		}
		if score <= currentBest {
			continue
		}
		unions[pos] = union
		trials = append(trials, scoring.ScoredRow{
			Label:    removalLabel(e.m, indices, pos),
			RowIndex: pos,
			Score:    score,
			PopCount: union.PopCount(),
		})
	}
	if len(trials) == 0 {
		return false, nil
	}
	trials.Sort()
	top := trials[0]

	marginal := top.Score - currentBest
	state.Remove(top.RowIndex, unions[top.RowIndex], marginal, top.Score)
	return true, nil
}

// removalLabel identifies a backward-removal trial by the label of the row
// being dropped, so ties resolve lexicographically exactly like forwardStep.
func removalLabel(m *matrix.BinaryMatrix, indices []int, pos int) string {
	return m.RowLabel(indices[pos])
}

// scoreCandidateSet scores the OR-union of the given rows against s using
// the configured kernel and returns the winning (only) row's score.
func (e *Engine) scoreCandidateSet(rowIdx []int) (float64, error) {
	union := e.m.OrUnion(rowIdx)
	return e.scoreUnion(union)
}

// scoreUnion evaluates the kernel against the dense OR-union row directly,
// treating it as a single-row matrix so every kernel's uniform contract
// applies unchanged whether scoring one candidate or fanning across many.
func (e *Engine) scoreUnion(union matrix.BitRow) (float64, error) {
	dense := union.ToUint8(e.m.ColCount())
	opts := e.cfg.KernelOpts
	result, err := e.scorer.Score(context.Background(), [][]uint8{dense}, []string{"__union__"}, e.m.ColLabels(), e.s, opts)
	if err != nil {
		return 0, err
	}
	best, ok := result.Best()
	if !ok {
		return 0, fmt.Errorf("kernel returned no score")
	}
	return best.Score, nil
}

func makeSet(idx []int) map[int]bool {
	set := make(map[int]bool, len(idx))
	for _, i := range idx {
		set[i] = true
	}
	return set
}
