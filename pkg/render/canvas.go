package render

import (
	"github.com/matzehuels/orgchart/pkg/geom"
	"github.com/matzehuels/orgchart/pkg/hierarchy"
	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/viewport"
)

// Canvas is a drawing surface. Text is always anchored at its centre.
// An empty colour string means "none".
type Canvas interface {
	Rect(r geom.Rect, radius float64, fill, stroke string, strokeWidth float64)
	Circle(c geom.Point, radius float64, fill, stroke string)
	Text(c geom.Point, s string, size float64, color string, bold bool)
	// Image draws the image referenced by ref clipped to the circle
	// inscribed in r. It fails when the reference cannot be loaded.
	Image(r geom.Rect, ref string) error
	Polyline(pts []geom.Point, stroke string, width float64)
}

// Grouper is implemented by canvases that can tag the primitives of one
// node or edge, such as SVG groups. Every Begin call is paired with End.
type Grouper interface {
	BeginNode(id string, st State)
	BeginEdge(from, to string)
	End()
}

// DrawNode draws a node's descriptor onto c. A failing avatar image falls
// back to the placeholder; DrawNode itself never fails.
func DrawNode(c Canvas, g layout.GeometricNode, n *hierarchy.OrgNode, st State, theme Theme) {
	if gr, ok := c.(Grouper); ok {
		gr.BeginNode(g.NodeID, st)
		defer gr.End()
	}
	for _, p := range Describe(g, n, st, theme) {
		drawPrimitive(c, p)
	}
}

func drawPrimitive(c Canvas, p Primitive) {
	switch p.Kind {
	case KindCard:
		c.Rect(p.Rect, p.Radius, p.Fill, p.Stroke, p.StrokeWidth)
	case KindImage:
		if err := c.Image(p.Rect, p.Ref); err != nil && p.Fallback != nil {
			drawPrimitive(c, *p.Fallback)
		}
	case KindPlaceholder:
		c.Circle(p.Center, p.Radius, p.Fill, "")
		c.Text(p.Center, p.Text, p.FontSize, p.Color, p.Bold)
	case KindText:
		c.Text(p.Center, p.Text, p.FontSize, p.Color, p.Bold)
	case KindBadge:
		c.Rect(p.Rect, p.Rect.H/2, p.Fill, "", 0)
		c.Text(p.Rect.Center(), p.Text, p.FontSize, p.Color, false)
	case KindMarker:
		c.Rect(p.Rect, 3, p.Fill, p.Stroke, p.StrokeWidth)
		c.Text(p.Center, p.Text, p.FontSize, p.Color, p.Bold)
	}
}

// DrawEdge draws a routed reporting line.
func DrawEdge(c Canvas, e layout.Edge, theme Theme) {
	if gr, ok := c.(Grouper); ok {
		gr.BeginEdge(e.From, e.To)
		defer gr.End()
	}
	c.Polyline(e.Path, theme.Edge, 1.5)
}

// DrawPlaceholder draws a centred message box inside area. It is used for
// loading, empty and error states and for unavailable backends.
func DrawPlaceholder(c Canvas, area geom.Rect, title string, lines []string, accent string, theme Theme) {
	size := theme.FontSize
	if size <= 0 {
		size = DefaultTheme().FontSize
	}
	lineH := size * 1.6
	w := TextWidth(title, size*1.2)
	for _, l := range lines {
		w = max(w, TextWidth(l, size))
	}
	w = min(w+4*size, area.W)
	h := min(lineH*float64(len(lines)+1)+2*size, area.H)

	c.Rect(area, 0, theme.Background, "", 0)
	box := geom.Rect{X: area.X + (area.W-w)/2, Y: area.Y + (area.H-h)/2, W: w, H: h}
	c.Rect(box, cardRadius, theme.CardFill, accent, 1.5)

	y := box.Y + size + lineH/2
	c.Text(geom.Pt(box.X+w/2, y), Truncate(title, w-size, size*1.2), size*1.2, accent, true)
	for _, l := range lines {
		y += lineH
		c.Text(geom.Pt(box.X+w/2, y), Truncate(l, w-size, size), size, theme.MutedText, false)
	}
}

// Project wraps c so that callers draw in world coordinates and c receives
// screen coordinates.
func Project(c Canvas, vp viewport.Viewport) Canvas {
	p := &projected{Canvas: c, vp: vp}
	if gr, ok := c.(Grouper); ok {
		return &projectedGrouper{projected: p, g: gr}
	}
	return p
}

type projected struct {
	Canvas
	vp viewport.Viewport
}

func (p *projected) scale() float64 {
	if p.vp.Scale <= 0 {
		return 1
	}
	return p.vp.Scale
}

func (p *projected) Rect(r geom.Rect, radius float64, fill, stroke string, w float64) {
	p.Canvas.Rect(p.vp.RectToScreen(r), radius*p.scale(), fill, stroke, w)
}

func (p *projected) Circle(c geom.Point, radius float64, fill, stroke string) {
	p.Canvas.Circle(p.vp.ToScreen(c), radius*p.scale(), fill, stroke)
}

func (p *projected) Text(c geom.Point, s string, size float64, color string, bold bool) {
	p.Canvas.Text(p.vp.ToScreen(c), s, size*p.scale(), color, bold)
}

func (p *projected) Image(r geom.Rect, ref string) error {
	return p.Canvas.Image(p.vp.RectToScreen(r), ref)
}

func (p *projected) Polyline(pts []geom.Point, stroke string, w float64) {
	out := make([]geom.Point, len(pts))
	for i, pt := range pts {
		out[i] = p.vp.ToScreen(pt)
	}
	p.Canvas.Polyline(out, stroke, w)
}

type projectedGrouper struct {
	*projected
	g Grouper
}

func (p *projectedGrouper) BeginNode(id string, st State) { p.g.BeginNode(id, st) }
func (p *projectedGrouper) BeginEdge(from, to string)     { p.g.BeginEdge(from, to) }
func (p *projectedGrouper) End()                          { p.g.End() }
