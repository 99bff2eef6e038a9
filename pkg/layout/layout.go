package layout

import (
	"github.com/matzehuels/orgchart/pkg/geom"
)

// Default geometry, in world units.
const (
	DefaultNodeWidth  = 180.0
	DefaultNodeHeight = 72.0
	DefaultHGap       = 24.0
	DefaultVGap       = 48.0

	// MarkerSize is the side of the expand/collapse marker square.
	MarkerSize = 14.0

	// MarkerInset separates the marker from the bottom edge of its box.
	MarkerInset = 2.0
)

// GeometricNode is a node's box in world coordinates. X and Y are the
// top-left corner.
type GeometricNode struct {
	NodeID      string  `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Level       int     `json:"level"`
	HasChildren bool    `json:"has_children,omitempty"`
	Collapsed   bool    `json:"collapsed,omitempty"`
}

// Rect returns the node's box.
func (g GeometricNode) Rect() geom.Rect {
	return geom.Rect{X: g.X, Y: g.Y, W: g.Width, H: g.Height}
}

// Center returns the centre of the node's box.
func (g GeometricNode) Center() geom.Point { return g.Rect().Center() }

// MarkerRect returns the expand/collapse marker box, centred just above the
// bottom edge and entirely inside the node's box. It is only drawn and
// hit-tested when HasChildren.
func (g GeometricNode) MarkerRect() geom.Rect {
	return geom.Rect{
		X: g.X + g.Width/2 - MarkerSize/2,
		Y: g.Y + g.Height - MarkerSize - MarkerInset,
		W: MarkerSize,
		H: MarkerSize,
	}
}

// Edge is a routed reporting line from a parent to a child.
type Edge struct {
	From string       `json:"from"`
	To   string       `json:"to"`
	Path []geom.Point `json:"path"`
}

// Layout is the geometric tree. Nodes are in pre-order.
type Layout struct {
	Nodes  []GeometricNode `json:"nodes"`
	Edges  []Edge          `json:"edges"`
	Bounds geom.Rect       `json:"bounds"`

	index map[string]int
}

// Empty returns the layout used when there is no data yet.
func Empty() *Layout {
	return &Layout{Nodes: []GeometricNode{}, Edges: []Edge{}}
}

// Len returns the number of geometric nodes.
func (l *Layout) Len() int { return len(l.Nodes) }

// Node returns the geometric node for id.
func (l *Layout) Node(id string) (GeometricNode, bool) {
	if l.index == nil {
		l.reindex()
	}
	i, ok := l.index[id]
	if !ok {
		return GeometricNode{}, false
	}
	return l.Nodes[i], true
}

// Levels returns the number of distinct tiers present in the layout.
func (l *Layout) Levels() int {
	levels := 0
	for _, n := range l.Nodes {
		levels = max(levels, n.Level)
	}
	return levels
}

// NodeAt returns the node whose box contains the world point p. When boxes
// overlap the deepest level wins; among equal levels the one drawn last wins.
func (l *Layout) NodeAt(p geom.Point) (GeometricNode, bool) {
	return l.pick(func(g GeometricNode) bool { return g.Rect().Contains(p) })
}

// MarkerAt returns the node whose expand/collapse marker contains the world
// point p, with the same precedence as NodeAt.
func (l *Layout) MarkerAt(p geom.Point) (GeometricNode, bool) {
	return l.pick(func(g GeometricNode) bool { return g.HasChildren && g.MarkerRect().Contains(p) })
}

func (l *Layout) pick(hit func(GeometricNode) bool) (GeometricNode, bool) {
	var best GeometricNode
	found := false
	for _, g := range l.Nodes {
		if hit(g) && (!found || g.Level >= best.Level) {
			best, found = g, true
		}
	}
	return best, found
}

func (l *Layout) reindex() {
	l.index = make(map[string]int, len(l.Nodes))
	for i, n := range l.Nodes {
		l.index[n.NodeID] = i
	}
}

// Overrides pins nodes to explicit top-left world positions.
type Overrides map[string]geom.Point

// Clone returns an independent copy of o.
func (o Overrides) Clone() Overrides {
	out := make(Overrides, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}
