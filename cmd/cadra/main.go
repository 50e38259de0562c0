// Command cadra is CaDrA's command-line driver: it loads a binary feature
// matrix and score vector from a tabular file, runs the forward/backward
// search engine (component D) via the Top-N (E) and permutation (F)
// drivers, and prints the resulting records as JSON. Its command-tree
// shape follows the teacher's cmd/cli/main.go: one root *cobra.Command
// with flag-configured subcommands, each delegating to a runXxx function.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/bioc/CaDrA/adapters/kernels"
	"github.com/bioc/CaDrA/adapters/prefilter"
	"github.com/bioc/CaDrA/adapters/rng"
	store "github.com/bioc/CaDrA/adapters/store/postgres"
	"github.com/bioc/CaDrA/adapters/tabular"
	"github.com/bioc/CaDrA/domain/core"
	"github.com/bioc/CaDrA/domain/matrix"
	permdomain "github.com/bioc/CaDrA/domain/permutation"
	"github.com/bioc/CaDrA/domain/scoring"
	"github.com/bioc/CaDrA/domain/search"
	"github.com/bioc/CaDrA/internal/config"
	"github.com/bioc/CaDrA/internal/permutation"
	"github.com/bioc/CaDrA/internal/searchengine"
	"github.com/bioc/CaDrA/internal/topn"
	"github.com/bioc/CaDrA/ports"
)

func main() {
	_ = godotenv.Load() // optional .env for local runs; missing file is not an error

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "cadra",
		Short: "CaDrA: Candidate Driver Analysis search over binary feature matrices",
	}

	rootCmd.AddCommand(
		newSearchCmd(cfg),
		newTopNCmd(cfg),
		newPermuteCmd(cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commonFlags are the matrix/score/kernel inputs shared by every subcommand.
type commonFlags struct {
	matrixPath    string
	scorePath     string
	method        string
	alternative   string
	cmethod       string
	searchMethod  string
	returnMode    string
	maxSize       int
	ncores        int
	minPrevalence float64
	maxPrevalence float64
	assayName     string
	persist       bool
}

func addCommonFlags(cmd *cobra.Command, f *commonFlags, cfg *config.Config) {
	cmd.Flags().StringVar(&f.matrixPath, "matrix", "", "path to the binary feature matrix (CSV or xlsx)")
	cmd.Flags().StringVar(&f.scorePath, "scores", "", "path to the continuous score vector (CSV or xlsx)")
	cmd.Flags().StringVar(&f.method, "method", cfg.Search.DefaultMethod, "score kernel: ks|wilcoxon|revealer|knnmi|correlation|custom")
	cmd.Flags().StringVar(&f.alternative, "alternative", cfg.Search.DefaultAlternative, "less|greater|two.sided")
	cmd.Flags().StringVar(&f.cmethod, "cmethod", "pearson", "pearson|spearman (correlation kernel only)")
	cmd.Flags().StringVar(&f.searchMethod, "search-method", "forward", "forward|both")
	cmd.Flags().StringVar(&f.returnMode, "return", "stat", "stat|pval: report the raw kernel statistic or -log10(p)")
	cmd.Flags().IntVar(&f.maxSize, "max-size", cfg.Search.DefaultMaxSize, "maximum meta-feature size")
	cmd.Flags().IntVar(&f.ncores, "ncores", cfg.Search.DefaultNCores, "worker pool size (default: hardware concurrency)")
	cmd.Flags().Float64Var(&f.minPrevalence, "min-prevalence", 0, "drop rows with fraction-of-ones below this")
	cmd.Flags().Float64Var(&f.maxPrevalence, "max-prevalence", 1, "drop rows with fraction-of-ones above this")
	cmd.Flags().StringVar(&f.assayName, "assay-name", "default", "name under which to persist this run (with --persist)")
	cmd.Flags().BoolVar(&f.persist, "persist", false, "save the result to Postgres (requires DATABASE_URL; topn and permute only, search does not persist)")
	_ = cmd.MarkFlagRequired("matrix")
	_ = cmd.MarkFlagRequired("scores")
}

func (f commonFlags) engineConfig() searchengine.Config {
	sm := searchengine.SearchForward
	if f.searchMethod == "both" {
		sm = searchengine.SearchBoth
	}
	opts := scoring.Options{
		Method:      scoring.Method(f.method),
		Alternative: scoring.Alternative(f.alternative),
		CMethod:     scoring.CMethod(f.cmethod),
		Return:      f.returnModeOrDefault(),
	}.WithDefaults()
	return searchengine.Config{
		Method:       scoring.Method(f.method),
		KernelOpts:   opts,
		SearchMethod: sm,
		MaxSize:      f.maxSize,
	}
}

// returnModeOrDefault maps the --return flag (stat|pval) to the domain's
// ReturnMode, matching spec.md §6's ks_pval/wilcox_pval-style method names.
func (f commonFlags) returnModeOrDefault() scoring.ReturnMode {
	if f.returnMode == "pval" {
		return scoring.ReturnNegLogP
	}
	return scoring.ReturnStat
}

func (f commonFlags) ncoresOrDefault() int {
	if f.ncores > 0 {
		return f.ncores
	}
	return runtime.NumCPU()
}

// fullAssay bundles a loaded matrix with its aligned score vector, after
// prevalence filtering has been applied.
type fullAssay struct {
	m      *matrix.BinaryMatrix
	scores []float64
}

// loadFullAssay reads the matrix and score files, reorders the score
// vector to the matrix's column order (tabular files need not list samples
// in the same order), and applies the prevalence prefilter when requested.
func loadFullAssay(ctx context.Context, f commonFlags) (*fullAssay, error) {
	loader := tabular.New()
	m, err := loader.LoadMatrix(ctx, f.matrixPath)
	if err != nil {
		return nil, fmt.Errorf("loading matrix: %w", err)
	}
	rawScores, labels, err := loader.LoadScoreVector(ctx, f.scorePath)
	if err != nil {
		return nil, fmt.Errorf("loading scores: %w", err)
	}
	scores, err := alignScores(m, rawScores, labels)
	if err != nil {
		return nil, err
	}

	if f.minPrevalence > 0 || f.maxPrevalence < 1 {
		m, err = prefilter.New().Filter(ctx, m, f.minPrevalence, f.maxPrevalence)
		if err != nil {
			return nil, fmt.Errorf("prevalence filter: %w", err)
		}
	}

	return &fullAssay{m: m, scores: scores}, nil
}

// alignScores reorders a (scores, labels) pair read from the score file
// into the matrix's column order, failing if any sample is missing.
func alignScores(m *matrix.BinaryMatrix, scores []float64, labels []string) ([]float64, error) {
	byLabel := make(map[string]float64, len(labels))
	for i, label := range labels {
		byLabel[label] = scores[i]
	}
	out := make([]float64, m.ColCount())
	for j, label := range m.ColLabels() {
		v, ok := byLabel[label]
		if !ok {
			return nil, fmt.Errorf("score file is missing sample %q", label)
		}
		out[j] = v
	}
	return out, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func resolveScorer(method string) (scoring.Scorer, error) {
	return kernels.NewRegistry().Resolve(scoring.Method(method))
}

// persistRun saves a finished run to Postgres when the caller passed
// --persist and a DATABASE_URL is configured, and prints the generated run
// ID to stderr so the CLI stays JSON-clean on stdout. Without --persist it
// is a no-op; with --persist but no DATABASE_URL it returns an error. The
// run store is entirely optional — the search/topn/permute commands work
// with no database at all.
func persistRun(ctx context.Context, cfg *config.Config, f commonFlags, method string, best search.Record, perm *permdomain.Record) error {
	if !f.persist {
		return nil
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("--persist requires DATABASE_URL to be set")
	}
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	repo := store.NewRunRepository(db)
	if err := store.EnsureSchema(ctx, db); err != nil {
		return err
	}

	run := ports.RunRecord{
		ID:        core.NewRunID(),
		AssayName: f.assayName,
		Method:    method,
		CreatedAt: core.Now(),
		Best:      best,
	}
	if perm != nil {
		run.Permutation = perm
	}
	if err := repo.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	fmt.Fprintf(os.Stderr, "saved run %s\n", run.ID)
	return nil
}

func newSearchCmd(cfg *config.Config) *cobra.Command {
	var f commonFlags

	cmd := &cobra.Command{
		Use:   "search [seed-feature-label]",
		Short: "Run a single forward/backward search from one seed feature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), f, args[0])
		},
	}
	addCommonFlags(cmd, &f, cfg)
	return cmd
}

func newTopNCmd(cfg *config.Config) *cobra.Command {
	var f commonFlags
	var topN int
	var searchStart []string
	var bestOnly bool

	cmd := &cobra.Command{
		Use:   "topn",
		Short: "Run the Top-N driver: seed searches from the top-N single-feature scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTopN(cmd.Context(), f, cfg, topN, searchStart, bestOnly)
		},
	}
	addCommonFlags(cmd, &f, cfg)
	cmd.Flags().IntVar(&topN, "top-n", cfg.Search.DefaultTopN, "number of single-feature seeds to try")
	cmd.Flags().StringSliceVar(&searchStart, "search-start", nil, "explicit seed feature labels (mutually exclusive with --top-n)")
	cmd.Flags().BoolVar(&bestOnly, "best-only", false, "only report the single best seed's record")
	return cmd
}

func newPermuteCmd(cfg *config.Config) *cobra.Command {
	var f commonFlags
	var topN int
	var searchStart []string
	var numShuffles int
	var seed int64
	var runID string

	cmd := &cobra.Command{
		Use:   "permute",
		Short: "Run the permutation driver: compute an empirical p-value via K label-permuted null searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPermute(cmd.Context(), f, cfg, topN, searchStart, numShuffles, seed, runID)
		},
	}
	addCommonFlags(cmd, &f, cfg)
	cmd.Flags().IntVar(&topN, "top-n", cfg.Search.DefaultTopN, "number of single-feature seeds to try")
	cmd.Flags().StringSliceVar(&searchStart, "search-start", nil, "explicit seed feature labels (mutually exclusive with --top-n)")
	cmd.Flags().IntVar(&numShuffles, "n-perm", cfg.Permutation.DefaultNumShuffles, "number of distinct label permutations")
	cmd.Flags().Int64Var(&seed, "seed", cfg.Permutation.DefaultSeed, "base RNG seed")
	cmd.Flags().StringVar(&runID, "run-id", "cadra-run", "identifier mixed into every permutation's RNG stream")
	return cmd
}

func runSearch(ctx context.Context, f commonFlags, seedLabel string) error {
	a, err := loadFullAssay(ctx, f)
	if err != nil {
		return err
	}
	scorer, err := resolveScorer(f.method)
	if err != nil {
		return err
	}
	seedIdx, ok := a.m.RowIndex(seedLabel)
	if !ok {
		return fmt.Errorf("unknown seed feature label: %q", seedLabel)
	}
	eng := searchengine.New(a.m, a.scores, scorer, f.engineConfig())
	state, err := eng.Run(ctx, seedIdx)
	if err != nil {
		return err
	}
	return printJSON(state.ToRecord(seedLabel))
}

func runTopN(ctx context.Context, f commonFlags, cfg *config.Config, topNN int, searchStart []string, bestOnly bool) error {
	a, err := loadFullAssay(ctx, f)
	if err != nil {
		return err
	}
	scorer, err := resolveScorer(f.method)
	if err != nil {
		return err
	}
	runCfg := topn.Config{
		Engine:        f.engineConfig(),
		TopN:          topNN,
		SearchStart:   searchStart,
		BestScoreOnly: bestOnly,
		NCores:        f.ncoresOrDefault(),
	}
	if len(searchStart) > 0 {
		runCfg.TopN = 0
	}
	result, err := topn.Run(ctx, a.m, a.scores, scorer, runCfg)
	if err != nil {
		return err
	}
	if result.HasBest {
		if err := persistRun(ctx, cfg, f, f.method, result.Best, nil); err != nil {
			return err
		}
	}
	return printJSON(result)
}

func runPermute(ctx context.Context, f commonFlags, cfg *config.Config, topNN int, searchStart []string, numShuffles int, seed int64, runID string) error {
	a, err := loadFullAssay(ctx, f)
	if err != nil {
		return err
	}
	scorer, err := resolveScorer(f.method)
	if err != nil {
		return err
	}
	inner := topn.Config{
		Engine:      f.engineConfig(),
		TopN:        topNN,
		SearchStart: searchStart,
		NCores:      f.ncoresOrDefault(),
	}
	if len(searchStart) > 0 {
		inner.TopN = 0
	}
	permCfg := permutation.Config{
		TopN:        inner,
		NumShuffles: numShuffles,
		Seed:        seed,
		NCores:      f.ncoresOrDefault(),
		RunID:       runID,
	}
	record, err := permutation.Run(ctx, a.m, a.scores, scorer, rng.New(), permCfg)
	if err != nil {
		return err
	}
	if f.persist {
		observed, err := topn.Run(ctx, a.m, a.scores, scorer, inner)
		if err != nil {
			return err
		}
		if observed.HasBest {
			if err := persistRun(ctx, cfg, f, f.method, observed.Best, record); err != nil {
				return err
			}
		}
	}
	return printJSON(record)
}
