package layout

import (
	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/geom"
	"github.com/matzehuels/orgchart/pkg/hierarchy"
)

// Config holds the fixed geometry of the tiered layout.
type Config struct {
	NodeWidth  float64
	NodeHeight float64
	HGap       float64 // between siblings and adjacent subtrees
	VGap       float64 // between tiers
	Overrides  Overrides
}

// DefaultConfig returns the default node size and gutters.
func DefaultConfig() Config {
	return Config{
		NodeWidth:  DefaultNodeWidth,
		NodeHeight: DefaultNodeHeight,
		HGap:       DefaultHGap,
		VGap:       DefaultVGap,
	}
}

// Option configures Compute.
type Option func(*Config)

// WithNodeSize sets the fixed node box size. Non-positive values are ignored.
func WithNodeSize(w, h float64) Option {
	return func(c *Config) {
		if w > 0 {
			c.NodeWidth = w
		}
		if h > 0 {
			c.NodeHeight = h
		}
	}
}

// WithGutters sets the horizontal and tier gutters. Negative values are ignored.
func WithGutters(h, v float64) Option {
	return func(c *Config) {
		if h >= 0 {
			c.HGap = h
		}
		if v >= 0 {
			c.VGap = v
		}
	}
}

// WithOverrides pins nodes to explicit positions.
func WithOverrides(o Overrides) Option {
	return func(c *Config) { c.Overrides = o }
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(c *Config) { *c = cfg }
}

// Compute lays out the visible part of root.
//
// A nil root yields an empty layout. Cycles, shared subtrees and duplicate
// ids in the visible part fail with STRUCTURAL_INTEGRITY instead of looping.
func Compute(root *hierarchy.OrgNode, collapse CollapseState, detailLevel int, opts ...Option) (*Layout, error) {
	if root == nil {
		return Empty(), nil
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &engine{
		cfg:      cfg,
		collapse: collapse,
		detail:   max(detailLevel, 1),
		extents:  make(map[*hierarchy.OrgNode]float64),
		state:    make(map[*hierarchy.OrgNode]int),
		ids:      make(map[string]bool),
	}
	if _, err := e.measure(root, 1); err != nil {
		return nil, err
	}

	l := &Layout{}
	e.place(l, root, 0, 1)
	e.applyOverrides(l)
	e.route(l, root)
	l.reindex()
	for _, n := range l.Nodes {
		l.Bounds = l.Bounds.Union(n.Rect())
	}
	return l, nil
}

const (
	unvisited = iota
	inProgress
	done
)

type engine struct {
	cfg      Config
	collapse CollapseState
	detail   int
	extents  map[*hierarchy.OrgNode]float64
	state    map[*hierarchy.OrgNode]int
	ids      map[string]bool
}

// expanded reports whether n's children take part in the layout.
func (e *engine) expanded(n *hierarchy.OrgNode, level int) bool {
	return !n.IsLeaf() && !e.collapse.Collapsed(n.ID, level, e.detail)
}

// measure computes subtree extents post-order and checks structure.
func (e *engine) measure(n *hierarchy.OrgNode, level int) (float64, error) {
	if n == nil {
		return 0, errors.Structural("nil child at level %d", level)
	}
	switch e.state[n] {
	case inProgress:
		return 0, errors.Structural("cycle detected at node %q", n.ID)
	case done:
		return 0, errors.Structural("node %q is reachable from more than one parent", n.ID)
	}
	if e.ids[n.ID] {
		return 0, errors.Structural("duplicate node id %q", n.ID)
	}
	e.state[n] = inProgress
	e.ids[n.ID] = true

	extent := e.cfg.NodeWidth
	if e.expanded(n, level) {
		var sum float64
		for i, c := range n.Children {
			w, err := e.measure(c, level+1)
			if err != nil {
				return 0, err
			}
			if i > 0 {
				sum += e.cfg.HGap
			}
			sum += w
		}
		extent = max(extent, sum)
	}

	e.state[n] = done
	e.extents[n] = extent
	return extent, nil
}

// place positions n inside [left, left+extent) and recurses.
func (e *engine) place(l *Layout, n *hierarchy.OrgNode, left float64, level int) {
	extent := e.extents[n]
	y := float64(level-1) * (e.cfg.NodeHeight + e.cfg.VGap)
	expanded := e.expanded(n, level)

	idx := len(l.Nodes)
	l.Nodes = append(l.Nodes, GeometricNode{
		NodeID:      n.ID,
		Y:           y,
		Width:       e.cfg.NodeWidth,
		Height:      e.cfg.NodeHeight,
		Level:       level,
		HasChildren: !n.IsLeaf(),
		Collapsed:   !n.IsLeaf() && !expanded,
	})

	center := left + extent/2
	if expanded {
		span := e.childrenSpan(n)
		cursor := left + (extent-span)/2
		center = cursor + span/2
		for _, c := range n.Children {
			e.place(l, c, cursor, level+1)
			cursor += e.extents[c] + e.cfg.HGap
		}
	}
	l.Nodes[idx].X = center - e.cfg.NodeWidth/2
}

func (e *engine) childrenSpan(n *hierarchy.OrgNode) float64 {
	var span float64
	for i, c := range n.Children {
		if i > 0 {
			span += e.cfg.HGap
		}
		span += e.extents[c]
	}
	return span
}

func (e *engine) applyOverrides(l *Layout) {
	if len(e.cfg.Overrides) == 0 {
		return
	}
	for i := range l.Nodes {
		if p, ok := e.cfg.Overrides[l.Nodes[i].NodeID]; ok {
			l.Nodes[i].X, l.Nodes[i].Y = p.X, p.Y
		}
	}
}

// route adds an orthogonal connector from each visible parent's bottom
// centre to each child's top centre.
func (e *engine) route(l *Layout, root *hierarchy.OrgNode) {
	l.reindex()
	var visit func(n *hierarchy.OrgNode, level int)
	visit = func(n *hierarchy.OrgNode, level int) {
		if !e.expanded(n, level) {
			return
		}
		parent := l.Nodes[l.index[n.ID]]
		from := geom.Pt(parent.X+parent.Width/2, parent.Y+parent.Height)
		for _, c := range n.Children {
			child := l.Nodes[l.index[c.ID]]
			to := geom.Pt(child.X+child.Width/2, child.Y)
			midY := (from.Y + to.Y) / 2
			l.Edges = append(l.Edges, Edge{
				From: n.ID,
				To:   c.ID,
				Path: []geom.Point{from, geom.Pt(from.X, midY), geom.Pt(to.X, midY), to},
			})
			visit(c, level+1)
		}
	}
	visit(root, 1)
	if l.Edges == nil {
		l.Edges = []Edge{}
	}
}
