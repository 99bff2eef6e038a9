package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/geom"
)

const nodeInteractionCSS = `
    .node > rect:first-child { transition: stroke-width 0.15s ease; }
    .node:hover > rect:first-child { stroke-width: 2.5; }
    .edge polyline { transition: stroke-width 0.15s ease; }
    .edge.highlight polyline { stroke-width: 3; }`

const nodeInteractionJS = `
    function highlight(id) {
      document.querySelectorAll('.edge').forEach(e => e.classList.toggle('highlight', e.dataset.from === id || e.dataset.to === id));
    }
    document.querySelectorAll('.node').forEach(el => {
      el.addEventListener('mouseenter', () => highlight(el.dataset.id));
      el.addEventListener('mouseleave', () => highlight(''));
    });`

// SVGOption configures an SVGCanvas.
type SVGOption func(*SVGCanvas)

// WithSVGTheme sets the theme used for the document font.
func WithSVGTheme(t Theme) SVGOption { return func(c *SVGCanvas) { c.theme = t } }

// WithInteraction embeds hover highlighting CSS and script.
func WithInteraction() SVGOption { return func(c *SVGCanvas) { c.interactive = true } }

// SVGCanvas writes SVG markup to an in-memory buffer.
type SVGCanvas struct {
	buf         bytes.Buffer
	w, h        float64
	theme       Theme
	interactive bool
	clips       int
	done        []byte
}

// NewSVGCanvas starts an SVG document of the given size.
func NewSVGCanvas(w, h float64, opts ...SVGOption) *SVGCanvas {
	c := &SVGCanvas{w: w, h: h, theme: DefaultTheme()}
	for _, opt := range opts {
		opt(c)
	}
	fmt.Fprintf(&c.buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="%s">`+"\n",
		w, h, w, h, escapeXML(c.theme.fontStack()))
	return c
}

func (c *SVGCanvas) Rect(r geom.Rect, radius float64, fill, stroke string, strokeWidth float64) {
	fmt.Fprintf(&c.buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f"`, r.X, r.Y, r.W, r.H)
	if radius > 0 {
		fmt.Fprintf(&c.buf, ` rx="%.2f"`, radius)
	}
	writePaint(&c.buf, fill, stroke, strokeWidth)
	c.buf.WriteString("/>\n")
}

func (c *SVGCanvas) Circle(p geom.Point, radius float64, fill, stroke string) {
	fmt.Fprintf(&c.buf, `  <circle cx="%.2f" cy="%.2f" r="%.2f"`, p.X, p.Y, radius)
	writePaint(&c.buf, fill, stroke, 1)
	c.buf.WriteString("/>\n")
}

func (c *SVGCanvas) Text(p geom.Point, s string, size float64, color string, bold bool) {
	if s == "" {
		return
	}
	weight := "normal"
	if bold {
		weight = "600"
	}
	fmt.Fprintf(&c.buf, `  <text x="%.2f" y="%.2f" font-size="%.2f" font-weight="%s" fill="%s" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
		p.X, p.Y, size, weight, paint(color), escapeXML(s))
}

// Image embeds ref as an external or data URI reference. Only http(s) and
// data URIs are accepted.
func (c *SVGCanvas) Image(r geom.Rect, ref string) error {
	if !strings.HasPrefix(ref, "https://") && !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "data:image/") {
		return errors.New(errors.ErrCodeUnsupported, "unsupported avatar reference %q", ref)
	}
	c.clips++
	id := fmt.Sprintf("avatar-clip-%d", c.clips)
	center := r.Center()
	fmt.Fprintf(&c.buf, `  <clipPath id="%s"><circle cx="%.2f" cy="%.2f" r="%.2f"/></clipPath>`+"\n",
		id, center.X, center.Y, min(r.W, r.H)/2)
	fmt.Fprintf(&c.buf, `  <image href="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" preserveAspectRatio="xMidYMid slice" clip-path="url(#%s)"/>`+"\n",
		escapeXML(ref), r.X, r.Y, r.W, r.H, id)
	return nil
}

func (c *SVGCanvas) Polyline(pts []geom.Point, stroke string, width float64) {
	if len(pts) < 2 {
		return
	}
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = fmt.Sprintf("%.2f,%.2f", p.X, p.Y)
	}
	fmt.Fprintf(&c.buf, `  <polyline points="%s" fill="none" stroke="%s" stroke-width="%.2f"/>`+"\n",
		strings.Join(parts, " "), paint(stroke), width)
}

func (c *SVGCanvas) BeginNode(id string, st State) {
	fmt.Fprintf(&c.buf, `  <g class="node %s" id="node-%s" data-id="%s">`+"\n", st, escapeXML(id), escapeXML(id))
}

func (c *SVGCanvas) BeginEdge(from, to string) {
	fmt.Fprintf(&c.buf, `  <g class="edge" data-from="%s" data-to="%s">`+"\n", escapeXML(from), escapeXML(to))
}

func (c *SVGCanvas) End() { c.buf.WriteString("  </g>\n") }

// Bytes finishes the document and returns it. Further drawing calls are
// ignored by the returned slice.
func (c *SVGCanvas) Bytes() []byte {
	if c.done != nil {
		return c.done
	}
	if c.interactive {
		fmt.Fprintf(&c.buf, "  <style>%s\n  </style>\n", nodeInteractionCSS)
		fmt.Fprintf(&c.buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", nodeInteractionJS)
	}
	c.buf.WriteString("</svg>\n")
	c.done = bytes.Clone(c.buf.Bytes())
	return c.done
}

func paint(color string) string {
	if color == "" {
		return "none"
	}
	return escapeXML(color)
}

func writePaint(buf *bytes.Buffer, fill, stroke string, strokeWidth float64) {
	fmt.Fprintf(buf, ` fill="%s"`, paint(fill))
	if stroke != "" && strokeWidth > 0 {
		fmt.Fprintf(buf, ` stroke="%s" stroke-width="%.2f"`, paint(stroke), strokeWidth)
	}
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
