package interaction

import (
	"math"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/geom"
	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/viewport"
)

type dragKind int

const (
	dragPan dragKind = iota
	dragNode
)

type dragState struct {
	kind   dragKind
	id     string     // node being dragged or pressed
	marker bool       // press started on an expand/collapse marker
	start  geom.Point // screen position of the press
	last   geom.Point
	origin geom.Point // node top-left in world space at press time
	pos    geom.Point // live node position
	moved  bool
}

// HitTest returns the node whose box contains the screen point p. When boxes
// overlap the deepest level wins; among equal levels the one drawn last
// wins.
func (c *Controller) HitTest(p geom.Point) (string, bool) {
	c.ensureLayout()
	g, ok := c.current.NodeAt(c.vp.ToWorld(p))
	return g.NodeID, ok
}

// HitMarker returns the node whose expand/collapse marker contains the
// screen point p.
func (c *Controller) HitMarker(p geom.Point) (string, bool) {
	c.ensureLayout()
	g, ok := c.current.MarkerAt(c.vp.ToWorld(p))
	return g.NodeID, ok
}

// PointerDown starts a press at the screen point p.
func (c *Controller) PointerDown(p geom.Point) {
	d := &dragState{kind: dragPan, start: p, last: p}
	if id, ok := c.HitMarker(p); ok {
		d.id, d.marker = id, true
	} else if id, ok := c.HitTest(p); ok {
		d.id = id
		if !c.cfg.ReadOnly {
			g, _ := c.current.Node(id)
			d.kind, d.origin, d.pos = dragNode, geom.Pt(g.X, g.Y), geom.Pt(g.X, g.Y)
		}
	}
	c.drag = d
}

// PointerMove updates hover state, or continues a drag when a press is
// active. A node drag only moves the node; a drag anywhere else pans.
func (c *Controller) PointerMove(p geom.Point) {
	d := c.drag
	if d == nil {
		id, _ := c.HitTest(p)
		if id != c.hover {
			c.hover = id
			c.markDirty()
		}
		return
	}

	if !d.moved {
		if math.Hypot(p.X-d.start.X, p.Y-d.start.Y) < c.dragThreshold {
			return
		}
		d.moved = true
	}

	switch d.kind {
	case dragNode:
		s := c.vp.Scale
		if s <= 0 {
			s = 1
		}
		d.pos = geom.Pt(d.origin.X+(p.X-d.start.X)/s, d.origin.Y+(p.Y-d.start.Y)/s)
		c.markDirty()
	default:
		c.Pan(p.X-d.last.X, p.Y-d.last.Y)
	}
	d.last = p
}

// PointerUp ends a press. A press that did not move is a click: on a marker
// it toggles the subtree, on a node it toggles selection and on empty canvas
// it clears the selection. A node drag commits its final position as an
// override.
func (c *Controller) PointerUp(p geom.Point) {
	d := c.drag
	c.drag = nil
	if d == nil {
		return
	}

	if d.moved {
		if d.kind == dragNode {
			c.overrides[d.id] = d.pos
			c.logger.Debug("moved node", "id", d.id, "x", d.pos.X, "y", d.pos.Y)
			c.markDirty()
		}
		return
	}

	switch {
	case d.marker:
		c.Toggle(d.id)
	case d.id != "":
		if c.selected == d.id {
			c.selected = ""
		} else {
			c.selected = d.id
		}
		c.markDirty()
	case c.selected != "":
		c.selected = ""
		c.markDirty()
	}
}

// PointerLeave clears hover state and cancels a press.
func (c *Controller) PointerLeave() {
	if c.hover != "" || c.drag != nil {
		c.hover = ""
		c.drag = nil
		c.markDirty()
	}
}

// Wheel zooms about the screen point p. Positive steps zoom in.
func (c *Controller) Wheel(p geom.Point, steps float64) {
	if steps == 0 {
		return
	}
	c.ZoomAt(p, math.Pow(viewport.ZoomStep, steps))
}

// Select marks id as selected. An empty id clears the selection.
func (c *Controller) Select(id string) error {
	c.ensureLayout()
	if id != "" {
		if _, ok := c.current.Node(id); !ok {
			return errors.New(errors.ErrCodeNotFound, "node %q is not visible", id)
		}
	}
	c.selected = id
	c.markDirty()
	return nil
}

// ResetPosition drops the override for id. It reports whether one existed.
func (c *Controller) ResetPosition(id string) bool {
	if _, ok := c.overrides[id]; !ok {
		return false
	}
	delete(c.overrides, id)
	c.markDirty()
	return true
}

// ResetPositions drops every override.
func (c *Controller) ResetPositions() {
	if len(c.overrides) == 0 {
		return
	}
	c.overrides = layout.Overrides{}
	c.markDirty()
}
