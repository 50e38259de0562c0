package ports

import (
	"context"

	"github.com/bioc/CaDrA/domain/core"
	"github.com/bioc/CaDrA/domain/permutation"
	"github.com/bioc/CaDrA/domain/search"
)

// RunRecord is a full CaDrA run (search plus permutation) as persisted by
// a RunRepository — the shape a CLI invocation with --persist writes out
// and GetRun/ListRuns read back. No `cadra` subcommand reads runs back.
type RunRecord struct {
	ID          core.RunID
	AssayName   string
	Method      string
	CreatedAt   core.Timestamp
	Best        search.Record
	Permutation *permutation.Record // nil when the run skipped component F
}

// RunRepository persists and retrieves CaDrA run results — the optional
// Postgres persistence collaborator from spec.md §6. CaDrA's core never
// depends on this directly; only the CLI's persistence path does.
type RunRepository interface {
	SaveRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, id core.RunID) (*RunRecord, error)
	ListRuns(ctx context.Context, assayName string, limit int) ([]RunRecord, error)
}
