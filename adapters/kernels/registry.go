package kernels

import (
	"github.com/bioc/CaDrA/domain/core"
	"github.com/bioc/CaDrA/domain/scoring"
)

// Registry resolves a scoring.Method to its Scorer implementation, mirroring
// the teacher's SenseEngine's fixed roster of senses but keyed by method
// name instead of run unconditionally in parallel.
type Registry struct {
	scorers map[scoring.Method]scoring.Scorer
}

// NewRegistry builds the standard registry with all six kernels wired in.
func NewRegistry() *Registry {
	r := &Registry{scorers: make(map[scoring.Method]scoring.Scorer)}
	for _, s := range []scoring.Scorer{
		NewKSKernel(),
		NewWilcoxonKernel(),
		NewRevealerKernel(),
		NewKNNMIKernel(),
		NewCorrelationKernel(),
		NewCustomKernel(),
	} {
		r.scorers[s.Name()] = s
	}
	return r
}

// Resolve returns the Scorer for method, or a validation error naming the
// method if it is not registered.
func (r *Registry) Resolve(method scoring.Method) (scoring.Scorer, error) {
	s, ok := r.scorers[method]
	if !ok {
		return nil, core.NewValidationError("method", "unknown scoring method: "+string(method))
	}
	return s, nil
}
