// Package render draws organization charts.
//
// # Overview
//
// Rendering is split into a declarative and an imperative half:
//
//   - [Describe] turns one laid-out node into an ordered list of
//     [Primitive] values (card, avatar or placeholder, name, role badge,
//     expand/collapse marker). It does no I/O and is deterministic.
//   - A [Canvas] executes primitives. [SVGCanvas], [RasterCanvas] and
//     [TermCanvas] are the built-in backends.
//
// [DrawScene] walks a [Scene] (layout, node states and load status) and
// draws it through a viewport. When the scene is loading, empty or failed it
// draws a status placeholder in place of the chart.
//
// # Renderers
//
// A [Renderer] produces a complete artifact from a scene. [Select] probes the
// optional backends once and returns either a [FullRenderer] or an
// [UnavailablePlaceholderRenderer] that emits an instructional SVG:
//
//	r := render.Select(render.FormatPDF, render.VizTree)
//	if err := r.Err(); err != nil {
//	    logger.Warn("falling back to placeholder", "error", err)
//	}
//	data, err := r.Render(ctx, scene)
//
// PDF output and node-link PNG/PDF output require the external
// rsvg-convert tool (from librsvg). The node-link view uses Graphviz through
// the [nodelink] subpackage.
//
// # List Mode
//
// [ListText] renders the visible hierarchy as an indented text tree, the
// "list" display mode of the interactive viewer.
//
// [nodelink]: github.com/matzehuels/orgchart/pkg/render/nodelink
package render
