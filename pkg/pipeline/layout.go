package pipeline

import (
	"github.com/matzehuels/orgchart/pkg/hierarchy"
	"github.com/matzehuels/orgchart/pkg/layout"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout lays out root with the collapse rules and geometry in opts.
// A nil root yields an empty layout.
func GenerateLayout(root *hierarchy.OrgNode, opts Options) (*layout.Layout, error) {
	return layout.Compute(root, opts.CollapseState(), opts.detailFor(root),
		layout.WithConfig(opts.LayoutConfig()))
}
