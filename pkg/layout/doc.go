// Package layout computes the geometric tree for an organization hierarchy.
//
// # Algorithm
//
// [Compute] produces a top-down tiered layout. Every node has the same fixed
// size regardless of its text; labels are truncated by the renderer, never
// resized. Each level occupies a horizontal band, bands are separated by a
// fixed row gutter and siblings by a fixed horizontal gutter.
//
// Widths are computed bottom-up: a leaf is one node wide, a subtree is as
// wide as its children's extents plus gutters. Parents are then centred over
// the combined span of their children.
//
// # Collapse
//
// A node whose effective [CollapseState] is collapsed is laid out as a leaf;
// its descendants are left out of the geometric tree entirely. Without an
// explicit entry, nodes deeper than the detail level start collapsed.
//
// # Overrides
//
// [Overrides] pin individual nodes to a world position (set by dragging in
// an editable session). They take precedence over the computed position of
// that node only.
package layout
