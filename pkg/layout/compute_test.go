package layout

import (
	"testing"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/geom"
	"github.com/matzehuels/orgchart/pkg/hierarchy"
)

// abcd builds A{B, C{D}}.
func abcd() *hierarchy.OrgNode {
	return &hierarchy.OrgNode{ID: "A", Children: []*hierarchy.OrgNode{
		{ID: "B"},
		{ID: "C", Children: []*hierarchy.OrgNode{{ID: "D"}}},
	}}
}

func nodeIDs(l *Layout) []string {
	ids := make([]string, len(l.Nodes))
	for i, n := range l.Nodes {
		ids[i] = n.NodeID
	}
	return ids
}

func TestComputeNilRoot(t *testing.T) {
	l, err := Compute(nil, nil, 1)
	if err != nil {
		t.Fatalf("Compute(nil) error: %v", err)
	}
	if l.Len() != 0 || len(l.Edges) != 0 {
		t.Errorf("Compute(nil) = %d nodes, %d edges, want empty", l.Len(), len(l.Edges))
	}
	if !l.Bounds.IsZero() {
		t.Errorf("Bounds = %+v, want zero box", l.Bounds)
	}
}

func TestComputeDetailLevelScenario(t *testing.T) {
	root := abcd()
	state := CollapseState{}

	l, err := Compute(root, state, 1)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	got := nodeIDs(l)
	want := []string{"A", "B", "C"}
	if len(got) != len(want) {
		t.Fatalf("nodes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("nodes = %v, want %v", got, want)
		}
	}
	c, _ := l.Node("C")
	if !c.Collapsed || !c.HasChildren {
		t.Errorf("C = %+v, want collapsed with children", c)
	}
	before := l.Bounds.H

	state.Toggle("C", 2, 1)
	l, err = Compute(root, state, 1)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if _, ok := l.Node("D"); !ok {
		t.Fatal("D missing after expanding C")
	}
	tier := DefaultNodeHeight + DefaultVGap
	if l.Bounds.H-before != tier {
		t.Errorf("bounds grew by %v, want one tier (%v)", l.Bounds.H-before, tier)
	}
}

func TestComputeCentersParentOverChildren(t *testing.T) {
	l, err := Compute(abcd(), nil, 10)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	a, _ := l.Node("A")
	b, _ := l.Node("B")
	c, _ := l.Node("C")
	d, _ := l.Node("D")

	span := (b.Center().X + c.Center().X) / 2
	if a.Center().X != span {
		t.Errorf("A center = %v, want %v", a.Center().X, span)
	}
	if d.Center().X != c.Center().X {
		t.Errorf("D center = %v, want under C at %v", d.Center().X, c.Center().X)
	}
	if gap := c.X - (b.X + b.Width); gap != DefaultHGap {
		t.Errorf("sibling gap = %v, want %v", gap, DefaultHGap)
	}
	if d.Y != 2*(DefaultNodeHeight+DefaultVGap) {
		t.Errorf("D.Y = %v, want tier 3", d.Y)
	}
}

func TestComputeEdges(t *testing.T) {
	l, err := Compute(abcd(), nil, 10)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if len(l.Edges) != 3 {
		t.Fatalf("len(Edges) = %d, want 3", len(l.Edges))
	}
	for _, e := range l.Edges {
		from, _ := l.Node(e.From)
		to, _ := l.Node(e.To)
		start, end := e.Path[0], e.Path[len(e.Path)-1]
		if start != geom.Pt(from.X+from.Width/2, from.Y+from.Height) {
			t.Errorf("edge %s->%s starts at %v, want bottom centre of parent", e.From, e.To, start)
		}
		if end != geom.Pt(to.X+to.Width/2, to.Y) {
			t.Errorf("edge %s->%s ends at %v, want top centre of child", e.From, e.To, end)
		}
	}
}

func TestComputeOverrides(t *testing.T) {
	pinned := geom.Pt(1000, 500)
	l, err := Compute(abcd(), nil, 10, WithOverrides(Overrides{"B": pinned}))
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	b, _ := l.Node("B")
	if b.X != pinned.X || b.Y != pinned.Y {
		t.Errorf("B = (%v, %v), want %v", b.X, b.Y, pinned)
	}
	if l.Bounds.Right() != pinned.X+DefaultNodeWidth {
		t.Errorf("Bounds.Right() = %v, want %v", l.Bounds.Right(), pinned.X+DefaultNodeWidth)
	}
	for _, e := range l.Edges {
		if e.To == "B" && e.Path[len(e.Path)-1] != geom.Pt(pinned.X+DefaultNodeWidth/2, pinned.Y) {
			t.Errorf("edge to B ends at %v, want pinned position", e.Path[len(e.Path)-1])
		}
	}
}

func TestComputeOptions(t *testing.T) {
	l, err := Compute(abcd(), nil, 10, WithNodeSize(100, 40), WithGutters(10, 20))
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	d, _ := l.Node("D")
	if d.Width != 100 || d.Height != 40 {
		t.Errorf("D size = %vx%v, want 100x40", d.Width, d.Height)
	}
	if d.Y != 120 {
		t.Errorf("D.Y = %v, want 120", d.Y)
	}
}

func TestComputeStructuralErrors(t *testing.T) {
	cyclic := &hierarchy.OrgNode{ID: "A"}
	cyclic.Children = []*hierarchy.OrgNode{{ID: "B", Children: []*hierarchy.OrgNode{cyclic}}}

	shared := &hierarchy.OrgNode{ID: "S"}
	diamond := &hierarchy.OrgNode{ID: "A", Children: []*hierarchy.OrgNode{
		{ID: "B", Children: []*hierarchy.OrgNode{shared}},
		{ID: "C", Children: []*hierarchy.OrgNode{shared}},
	}}

	dup := &hierarchy.OrgNode{ID: "A", Children: []*hierarchy.OrgNode{{ID: "X"}, {ID: "X"}}}

	for name, root := range map[string]*hierarchy.OrgNode{
		"cycle":     cyclic,
		"shared":    diamond,
		"duplicate": dup,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Compute(root, nil, 100)
			if !errors.Is(err, errors.ErrCodeStructural) {
				t.Errorf("Compute() error = %v, want STRUCTURAL_INTEGRITY", err)
			}
		})
	}
}

func TestCollapsedCycleIsNotTraversed(t *testing.T) {
	// The cycle sits below a collapsed node, so it is not part of the
	// geometric tree.
	cyclic := &hierarchy.OrgNode{ID: "X"}
	cyclic.Children = []*hierarchy.OrgNode{cyclic}
	root := &hierarchy.OrgNode{ID: "A", Children: []*hierarchy.OrgNode{{ID: "B", Children: []*hierarchy.OrgNode{cyclic}}}}

	l, err := Compute(root, CollapseState{"B": true}, 100)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if l.Len() != 2 {
		t.Errorf("Len() = %d, want 2", l.Len())
	}
}

func TestCollapseState(t *testing.T) {
	s := CollapseState{}

	if s.Collapsed("x", 1, 1) {
		t.Error("root level should default to expanded")
	}
	if !s.Collapsed("x", 2, 1) {
		t.Error("level 2 with detail 1 should default to collapsed")
	}
	if got := s.Toggle("x", 2, 1); got {
		t.Errorf("Toggle() = %v, want false (expanded)", got)
	}
	if s.Collapsed("x", 2, 1) {
		t.Error("explicit toggle should override the detail-level default")
	}

	clone := s.Clone()
	s.Reset()
	if len(s) != 0 || len(clone) != 1 {
		t.Errorf("Reset()/Clone() = %v / %v", s, clone)
	}
}

func TestExpandToLevel(t *testing.T) {
	s := CollapseState{}
	s.ExpandToLevel(abcd(), 1)

	l, err := Compute(abcd(), s, 10)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	if l.Len() != 3 {
		t.Errorf("Len() = %d, want 3 (A, B, C)", l.Len())
	}
}

func TestMarkerRect(t *testing.T) {
	g := GeometricNode{X: 10, Y: 20, Width: 100, Height: 50}
	m := g.MarkerRect()
	if got, want := m.Center(), geom.Pt(60, 20+50-MarkerInset-MarkerSize/2); got != want {
		t.Errorf("MarkerRect().Center() = %v, want %v", got, want)
	}
	box := g.Rect()
	if m.X < box.X || m.Y < box.Y || m.Right() > box.Right() || m.Bottom() > box.Bottom() {
		t.Errorf("MarkerRect() = %+v escapes the node box %+v", m, box)
	}
}

func TestNodeAtAndMarkerAt(t *testing.T) {
	l, err := Compute(abcd(), nil, 3)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	c, _ := l.Node("C")

	if g, ok := l.NodeAt(c.Center()); !ok || g.NodeID != "C" {
		t.Errorf("NodeAt(C centre) = %q, %v, want C", g.NodeID, ok)
	}
	if _, ok := l.NodeAt(geom.Pt(l.Bounds.X-100, l.Bounds.Y-100)); ok {
		t.Error("NodeAt(outside) hit a node")
	}
	if g, ok := l.MarkerAt(c.MarkerRect().Center()); !ok || g.NodeID != "C" {
		t.Errorf("MarkerAt(C marker) = %q, %v, want C", g.NodeID, ok)
	}
	b, _ := l.Node("B")
	if _, ok := l.MarkerAt(b.MarkerRect().Center()); ok {
		t.Error("MarkerAt(leaf B) hit a marker")
	}
}

func TestNodeAtPrefersDeeperOverlap(t *testing.T) {
	l := &Layout{Nodes: []GeometricNode{
		{NodeID: "child", X: 10, Y: 10, Width: 50, Height: 50, Level: 2},
		{NodeID: "parent", X: 0, Y: 0, Width: 100, Height: 100, Level: 1},
		{NodeID: "sibling", X: 20, Y: 20, Width: 50, Height: 50, Level: 2},
	}}
	g, ok := l.NodeAt(geom.Pt(30, 30))
	if !ok || g.NodeID != "sibling" {
		t.Errorf("NodeAt() = %q, want sibling (deepest, drawn last)", g.NodeID)
	}
	g, _ = l.NodeAt(geom.Pt(15, 15))
	if g.NodeID != "child" {
		t.Errorf("NodeAt() = %q, want child", g.NodeID)
	}
	g, _ = l.NodeAt(geom.Pt(90, 90))
	if g.NodeID != "parent" {
		t.Errorf("NodeAt() = %q, want parent", g.NodeID)
	}
}
