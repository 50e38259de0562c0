// Package container implements the labeled-assay collaborator from
// spec.md §6: an in-memory registry pairing a name with a BinaryMatrix and
// its aligned score vector, grounded on the teacher's domain/dataset
// bundle pattern but trimmed to CaDrA's single-assay shape.
package container

import (
	"context"
	"sync"

	"github.com/bioc/CaDrA/domain/core"
	"github.com/bioc/CaDrA/domain/matrix"
	"github.com/bioc/CaDrA/ports"
)

type assay struct {
	matrix *matrix.BinaryMatrix
	scores []float64
}

// InMemory implements ports.AssayPort by holding assays registered via Put.
type InMemory struct {
	mu     sync.RWMutex
	assays map[string]assay
}

// NewInMemory returns an empty in-memory assay registry.
func NewInMemory() *InMemory {
	return &InMemory{assays: make(map[string]assay)}
}

var _ ports.AssayPort = (*InMemory)(nil)

// Put registers an assay under name, validating that scores is aligned
// with the matrix's column count.
func (r *InMemory) Put(name string, m *matrix.BinaryMatrix, scores []float64) error {
	if len(scores) != m.ColCount() {
		return core.ErrLabelMismatch
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assays[name] = assay{matrix: m, scores: append([]float64(nil), scores...)}
	return nil
}

// LoadAssay implements ports.AssayPort.
func (r *InMemory) LoadAssay(_ context.Context, name string) (*matrix.BinaryMatrix, []float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assays[name]
	if !ok {
		return nil, nil, core.ErrNotFound
	}
	return a.matrix, append([]float64(nil), a.scores...), nil
}
