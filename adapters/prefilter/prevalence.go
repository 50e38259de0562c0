// Package prefilter implements the prevalence prefilter collaborator from
// spec.md §6: it restricts a binary matrix to rows whose fraction of ones
// falls within a caller-supplied band before a search ever sees the rows.
package prefilter

import (
	"context"

	"github.com/bioc/CaDrA/domain/core"
	"github.com/bioc/CaDrA/domain/matrix"
	"github.com/bioc/CaDrA/ports"
)

// Prevalence implements ports.PrevalenceFilterPort.
type Prevalence struct{}

// New returns a stateless prevalence prefilter.
func New() *Prevalence { return &Prevalence{} }

var _ ports.PrevalenceFilterPort = (*Prevalence)(nil)

// Filter keeps rows whose popcount/N lies in [minFraction, maxFraction].
func (p *Prevalence) Filter(_ context.Context, m *matrix.BinaryMatrix, minFraction, maxFraction float64) (*matrix.BinaryMatrix, error) {
	if minFraction < 0 || maxFraction > 1 || minFraction > maxFraction {
		return nil, core.NewValidationError("prevalence_bounds", "must satisfy 0 <= min <= max <= 1")
	}

	n := m.ColCount()
	kept := make([]int, 0, m.RowCount())
	for i := 0; i < m.RowCount(); i++ {
		frac := float64(m.RowCountOnes(i)) / float64(n)
		if frac >= minFraction && frac <= maxFraction {
			kept = append(kept, i)
		}
	}
	if len(kept) == 0 {
		return nil, core.ErrEmptyMatrix
	}
	return m.Select(kept)
}
