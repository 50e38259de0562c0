// Package postgres persists CaDrA run records via sqlx/lib/pq, grounded on
// the teacher's adapters/postgres.datasetRepository: JSON-marshaled
// sub-structures in a jsonb column, $N placeholders, sql.ErrNoRows mapped
// to a domain-shaped not-found error.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bioc/CaDrA/domain/core"
	"github.com/bioc/CaDrA/domain/permutation"
	"github.com/bioc/CaDrA/domain/search"
	"github.com/bioc/CaDrA/ports"
)

// RunRepository implements ports.RunRepository over a Postgres runs table.
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository wraps an open sqlx connection pool.
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

var _ ports.RunRepository = (*RunRepository)(nil)

// EnsureSchema creates the runs table if it does not already exist,
// following the teacher's internal/migration inline CREATE TABLE IF NOT
// EXISTS pattern rather than a file-based migrator.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			assay_name  TEXT NOT NULL,
			method      TEXT NOT NULL,
			best        JSONB NOT NULL,
			permutation JSONB,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}
	return nil
}

// SaveRun implements ports.RunRepository.
func (r *RunRepository) SaveRun(ctx context.Context, run ports.RunRecord) error {
	bestJSON, err := json.Marshal(run.Best)
	if err != nil {
		return fmt.Errorf("failed to marshal best record: %w", err)
	}
	var permJSON []byte
	if run.Permutation != nil {
		permJSON, err = json.Marshal(run.Permutation)
		if err != nil {
			return fmt.Errorf("failed to marshal permutation record: %w", err)
		}
	}

	query := `INSERT INTO runs (id, assay_name, method, best, permutation)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET best = $4, permutation = $5`

	if _, err := r.db.ExecContext(ctx, query, string(run.ID), run.AssayName, run.Method, bestJSON, permJSON); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// GetRun implements ports.RunRepository.
func (r *RunRepository) GetRun(ctx context.Context, id core.RunID) (*ports.RunRecord, error) {
	query := `SELECT id, assay_name, method, best, permutation, created_at FROM runs WHERE id = $1`

	var run ports.RunRecord
	var rawID string
	var bestJSON []byte
	var permJSON []byte
	var createdAt time.Time
	err := r.db.QueryRowContext(ctx, query, string(id)).Scan(&rawID, &run.AssayName, &run.Method, &bestJSON, &permJSON, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	run.ID = core.RunID(rawID)
	run.CreatedAt = core.NewTimestamp(createdAt)

	var best search.Record
	if err := json.Unmarshal(bestJSON, &best); err != nil {
		return nil, fmt.Errorf("failed to unmarshal best record: %w", err)
	}
	run.Best = best

	if len(permJSON) > 0 {
		var p permutation.Record
		if err := json.Unmarshal(permJSON, &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal permutation record: %w", err)
		}
		run.Permutation = &p
	}

	return &run, nil
}

// ListRuns implements ports.RunRepository.
func (r *RunRepository) ListRuns(ctx context.Context, assayName string, limit int) ([]ports.RunRecord, error) {
	query := `SELECT id, assay_name, method, best, permutation, created_at FROM runs
		WHERE assay_name = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, assayName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []ports.RunRecord
	for rows.Next() {
		var run ports.RunRecord
		var rawID string
		var bestJSON []byte
		var permJSON []byte
		var createdAt time.Time
		if err := rows.Scan(&rawID, &run.AssayName, &run.Method, &bestJSON, &permJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.ID = core.RunID(rawID)
		run.CreatedAt = core.NewTimestamp(createdAt)
		var best search.Record
		if err := json.Unmarshal(bestJSON, &best); err != nil {
			return nil, fmt.Errorf("failed to unmarshal best record: %w", err)
		}
		run.Best = best
		if len(permJSON) > 0 {
			var p permutation.Record
			if err := json.Unmarshal(permJSON, &p); err != nil {
				return nil, fmt.Errorf("failed to unmarshal permutation record: %w", err)
			}
			run.Permutation = &p
		}
		out = append(out, run)
	}
	return out, nil
}
