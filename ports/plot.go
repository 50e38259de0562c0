package ports

import (
	"context"

	"github.com/bioc/CaDrA/domain/permutation"
	"github.com/bioc/CaDrA/domain/search"
)

// PlotPort is the boundary-only plotting collaborator from spec.md §6.
// spec.md §1 explicitly excludes "plot rendering and heatmaps" from the
// core, so this package documents the attachment point without shipping
// a default implementation — CaDrA never imports an instance of this
// interface itself.
type PlotPort interface {
	// RenderTrajectory renders a search's forward/backward step trajectory.
	RenderTrajectory(ctx context.Context, record search.Record, out string) error
	// RenderNullHistogram renders a permutation run's null distribution
	// against its observed best score.
	RenderNullHistogram(ctx context.Context, record permutation.Record, out string) error
}
