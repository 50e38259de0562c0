package ports

import (
	"context"

	"github.com/bioc/CaDrA/domain/matrix"
)

// AssayPort is the labeled-assay container collaborator from spec.md §6:
// a named bundle pairing a BinaryMatrix with a continuous score vector s
// over the same sample labels. CaDrA's core never loads one itself; the
// in-memory registry in adapters/container is the implementation.
type AssayPort interface {
	// LoadAssay resolves name to a binary matrix and its aligned score
	// vector. The returned score slice is ordered identically to the
	// matrix's column labels.
	LoadAssay(ctx context.Context, name string) (*matrix.BinaryMatrix, []float64, error)
}

// TabularLoaderPort reads a binary matrix plus score vector from a
// tabular source (CSV, xlsx) — the tabular I/O collaborator from spec.md §6.
type TabularLoaderPort interface {
	LoadMatrix(ctx context.Context, path string) (*matrix.BinaryMatrix, error)
	LoadScoreVector(ctx context.Context, path string) ([]float64, []string, error)
}

// PrevalenceFilterPort restricts a matrix to rows whose fraction of ones
// falls within [min, max] — the prevalence prefilter collaborator from
// spec.md §6, applied before a search ever sees the matrix.
type PrevalenceFilterPort interface {
	Filter(ctx context.Context, m *matrix.BinaryMatrix, minFraction, maxFraction float64) (*matrix.BinaryMatrix, error)
}
