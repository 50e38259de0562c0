// Package plot documents the rendering boundary from spec.md §6 without
// implementing it. spec.md §1 explicitly excludes "plot rendering and
// heatmaps" from CaDrA's core, so ports.PlotPort has no implementation
// here — this file exists only to mark where one would attach (e.g. a
// gonum/plot-backed adapter rendering a search.Record's trajectory or a
// permutation.Record's null distribution to SVG/PNG).
package plot
