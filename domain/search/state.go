// Package search holds the meta-feature accumulator (component C) that
// the forward/backward search engine mutates one step at a time.
package search

import (
	"github.com/bioc/CaDrA/domain/matrix"
)

// StepKind distinguishes a forward addition from a backward removal in the
// trajectory, so a search record can be replayed and audited.
type StepKind string

const (
	StepForward  StepKind = "forward"
	StepBackward StepKind = "backward"
)

// Step is one entry in the trajectory: the row touched, its marginal
// contribution, and the cumulative best score after the step.
type Step struct {
	Kind           StepKind
	Label          string
	RowIndex       int
	MarginalScore  float64
	CumulativeScore float64
}

// MetaFeatureState is the mutable state of one greedy search: the ordered
// set of selected feature rows, their OR-union, and the best score reached
// so far, together with the trajectory of steps that produced it.
type MetaFeatureState struct {
	selectedIndices []int
	selectedLabels  []string
	unionVector     matrix.BitRow
	bestScore       float64
	hasScore        bool
	trajectory      []Step
}

// NewMetaFeatureState starts an empty accumulator.
func NewMetaFeatureState() *MetaFeatureState {
	return &MetaFeatureState{}
}

// SelectedIndices returns the row indices selected so far, in selection order.
func (s *MetaFeatureState) SelectedIndices() []int {
	return append([]int(nil), s.selectedIndices...)
}

// SelectedLabels returns the row labels selected so far, in selection order.
func (s *MetaFeatureState) SelectedLabels() []string {
	return append([]string(nil), s.selectedLabels...)
}

// Size returns the number of currently selected rows.
func (s *MetaFeatureState) Size() int { return len(s.selectedIndices) }

// UnionVector returns the OR of all currently selected rows.
func (s *MetaFeatureState) UnionVector() matrix.BitRow { return s.unionVector }

// BestScore returns the current best score and whether any step has run.
func (s *MetaFeatureState) BestScore() (float64, bool) { return s.bestScore, s.hasScore }

// Trajectory returns the ordered list of steps taken so far.
func (s *MetaFeatureState) Trajectory() []Step { return append([]Step(nil), s.trajectory...) }

// Add records a forward step: row rowIdx/label joins the selection, its
// union with the prior union becomes the new union vector, and score
// becomes the new best score.
func (s *MetaFeatureState) Add(rowIdx int, label string, row matrix.BitRow, marginal, score float64) {
	s.selectedIndices = append(s.selectedIndices, rowIdx)
	s.selectedLabels = append(s.selectedLabels, label)
	s.unionVector = s.unionVector.Or(row)
	s.bestScore = score
	s.hasScore = true
	s.trajectory = append(s.trajectory, Step{
		Kind:            StepForward,
		Label:           label,
		RowIndex:        rowIdx,
		MarginalScore:   marginal,
		CumulativeScore: score,
	})
}

// Remove records a backward step: the row at position pos (within
// SelectedIndices) is dropped, the union is recomputed from the remaining
// rows (recompute supplies the fresh OR since MetaFeatureState does not
// itself own row lookups), and score becomes the new best score.
func (s *MetaFeatureState) Remove(pos int, recomputedUnion matrix.BitRow, marginal, score float64) {
	label := s.selectedLabels[pos]
	rowIdx := s.selectedIndices[pos]
	s.selectedIndices = append(s.selectedIndices[:pos], s.selectedIndices[pos+1:]...)
	s.selectedLabels = append(s.selectedLabels[:pos], s.selectedLabels[pos+1:]...)
	s.unionVector = recomputedUnion
	s.bestScore = score
	s.hasScore = true
	s.trajectory = append(s.trajectory, Step{
		Kind:            StepBackward,
		Label:           label,
		RowIndex:        rowIdx,
		MarginalScore:   marginal,
		CumulativeScore: score,
	})
}

// Record is the immutable, exportable summary of a finished search: what
// the top-N driver collects per seed and the permutation driver reduces
// over per shuffle.
type Record struct {
	SeedLabel       string
	SelectedLabels  []string
	SelectedIndices []int
	BestScore       float64
	Trajectory      []Step
}

// ToRecord snapshots the current state into an immutable Record.
func (s *MetaFeatureState) ToRecord(seedLabel string) Record {
	score, _ := s.BestScore()
	return Record{
		SeedLabel:       seedLabel,
		SelectedLabels:  s.SelectedLabels(),
		SelectedIndices: s.SelectedIndices(),
		BestScore:       score,
		Trajectory:      s.Trajectory(),
	}
}
