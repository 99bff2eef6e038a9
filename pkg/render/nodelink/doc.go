// Package nodelink renders organization hierarchies as Graphviz node-link
// diagrams.
//
// # Overview
//
// This is the alternative to the tiered card layout: nodes appear as
// rounded boxes connected by arrows from manager to report, and Graphviz
// decides the placement. Collapsed subtrees are omitted exactly as in the
// card layout and the collapsed node is drawn with a dashed outline.
//
// # Usage
//
//	dot := nodelink.ToDOT(root, collapse, detailLevel, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Availability
//
// [Probe] checks once whether the embedded Graphviz runtime can be
// initialized. Callers use it at startup to decide between this backend and
// a placeholder; it is never called while drawing.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
