// Package permutation implements the permutation-based null distribution
// driver (component F), grounded on the teacher's
// adapters/battery/permutation_referee_adapter.go worker/channel fan-out
// pattern but reworked around deterministic per-shuffle RNG streams
// (ports.RNGPort.PermutationStream) instead of a single shared generator,
// so results are reproducible regardless of ncores.
package permutation

import (
	"context"
	"fmt"

	"github.com/bioc/CaDrA/domain/core"
	"github.com/bioc/CaDrA/domain/matrix"
	permdomain "github.com/bioc/CaDrA/domain/permutation"
	"github.com/bioc/CaDrA/domain/scoring"
	"github.com/bioc/CaDrA/internal/topn"
	"github.com/bioc/CaDrA/internal/workerpool"
	"github.com/bioc/CaDrA/ports"
)

// MaxFailureFraction is the abort threshold from spec.md §5.4: if at
// least this fraction of shuffle workers fail, the whole run aborts
// instead of silently recording failures.
const MaxFailureFraction = 0.25

// Config configures one permutation run.
type Config struct {
	TopN        topn.Config
	NumShuffles int
	Seed        int64
	NCores      int
	RunID       string
}

// Run generates NumShuffles distinct permutations of s, runs the Top-N
// driver on each, and aggregates the resulting best scores into a null
// distribution with an empirical p-value against the observed best score.
func Run(ctx context.Context, m *matrix.BinaryMatrix, s []float64, scorer scoring.Scorer, rng ports.RNGPort, cfg Config) (*permdomain.Record, error) {
	observed, err := topn.Run(ctx, m, s, scorer, cfg.TopN)
	if err != nil {
		return nil, err
	}
	if !observed.HasBest {
		return nil, fmt.Errorf("observed run produced no best score")
	}

	shuffles, err := distinctShuffles(ctx, rng, cfg, s)
	if err != nil {
		return nil, err
	}

	pool := workerpool.New(cfg.NCores)
	tasks := make([]workerpool.Task[permdomain.ShuffleResult], len(shuffles))
	for i, shuffled := range shuffles {
		i, shuffled := i, shuffled
		tasks[i] = func(ctx context.Context) (permdomain.ShuffleResult, error) {
			permCfg := cfg.TopN
			permCfg.BestScoreOnly = true
			result, err := topn.Run(ctx, m, shuffled, scorer, permCfg)
			if err != nil || !result.HasBest {
				return permdomain.ShuffleResult{Index: i, Failed: true}, nil
			}
			return permdomain.ShuffleResult{Index: i, BestScore: result.Best.BestScore}, nil
		}
	}

	results := workerpool.RunAll(ctx, pool, tasks)
	outcomes := make([]permdomain.ShuffleResult, len(results))
	failures := 0
	for i, r := range results {
		if r.Err != nil {
			outcomes[i] = permdomain.ShuffleResult{Index: i, Failed: true}
			failures++
			continue
		}
		outcomes[i] = r.Value
		if r.Value.Failed {
			failures++
		}
	}

	if len(outcomes) > 0 && float64(failures)/float64(len(outcomes)) >= MaxFailureFraction {
		return nil, fmt.Errorf("%w: %d/%d shuffles failed", core.ErrTooManyFailures, failures, len(outcomes))
	}

	record := permdomain.NewRecord(observed.Best.BestScore, outcomes)
	return &record, nil
}

// distinctShuffles produces cfg.NumShuffles permutations of s, each drawn
// from its own deterministic RNG stream (index-keyed, so independent of
// scheduling order), rejecting duplicate permutations up to a retry budget.
func distinctShuffles(ctx context.Context, rng ports.RNGPort, cfg Config, s []float64) ([][]float64, error) {
	n := cfg.NumShuffles
	if n <= 0 {
		return nil, nil
	}
	maxDistinct := factorialCap(len(s))
	if int64(n) > maxDistinct {
		return nil, core.ErrPermutationSpaceExhausted
	}

	seen := make(map[string]bool, n)
	out := make([][]float64, 0, n)
	const retryBudgetPerShuffle = 50

	for k := 0; k < n; k++ {
		var accepted []float64
		for attempt := 0; attempt < retryBudgetPerShuffle; attempt++ {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", core.ErrCancelled, ctx.Err())
			default:
			}
			stream, err := rng.PermutationStream(ctx, cfg.RunID, k*retryBudgetPerShuffle+attempt, cfg.Seed)
			if err != nil {
				return nil, err
			}
			candidate := fisherYatesShuffle(stream, s)
			key := shuffleKey(candidate)
			if !seen[key] {
				seen[key] = true
				accepted = candidate
				break
			}
		}
		if accepted == nil {
			return nil, core.ErrPermutationSpaceExhausted
		}
		out = append(out, accepted)
	}
	return out, nil
}

func fisherYatesShuffle(rng interface{ Intn(int) int }, s []float64) []float64 {
	out := append([]float64(nil), s...)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func shuffleKey(s []float64) string {
	b := make([]byte, 0, len(s)*8)
	for _, v := range s {
		bits := float64ToBits(v)
		b = append(b, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
	}
	return string(b)
}

func float64ToBits(v float64) uint32 {
	// Collapsing to 32 bits is sufficient for a dedup fingerprint; exact
	// float64 equality is not required, only low collision probability.
	return uint32(int64(v * 1e6))
}

// factorialCap bounds how many distinct permutations of n elements could
// possibly exist, capping the result well below int64 overflow so large n
// doesn't need exact factorials.
func factorialCap(n int) int64 {
	const overflowGuard = 1 << 32
	result := int64(1)
	for i := 2; i <= n; i++ {
		result *= int64(i)
		if result > overflowGuard {
			return overflowGuard
		}
	}
	return result
}
