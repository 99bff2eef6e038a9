package render

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"strings"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/geom"
	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/render/nodelink"
	"github.com/matzehuels/orgchart/pkg/viewport"
)

// Format is an output format produced by a Renderer.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatPDF Format = "pdf"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatSVG, FormatPNG, FormatPDF:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be 'svg', 'png' or 'pdf')", s)
}

// VizType selects the diagram style.
type VizType string

const (
	VizTree     VizType = "tree"
	VizNodeLink VizType = "nodelink"
)

// ParseVizType validates a visualization type name.
func ParseVizType(s string) (VizType, error) {
	switch v := VizType(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return VizTree, nil
	case VizTree, VizNodeLink:
		return v, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "invalid type: %s (must be 'tree' or 'nodelink')", s)
}

// Renderer turns a scene into a finished artifact.
type Renderer interface {
	Render(ctx context.Context, s Scene) ([]byte, error)
	// Format is the format of the bytes Render returns.
	Format() Format
	// Err is non-nil when the renderer stands in for an unavailable backend.
	Err() error
}

// Option configures Select and the renderers it returns.
type Option func(*options)

type options struct {
	padding     float64
	scale       float64
	interactive bool
	detailed    bool
	lookPath    LookPathFunc
	graphviz    func(context.Context) error
	raster      []RasterOption
}

func defaultOptions() options {
	return options{
		padding:  24,
		scale:    2,
		lookPath: exec.LookPath,
		graphviz: nodelink.Probe,
	}
}

// WithPadding sets the margin around the chart in world units.
func WithPadding(p float64) Option { return func(o *options) { o.padding = max(p, 0) } }

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) Option {
	return func(o *options) {
		if s > 0 {
			o.scale = s
		}
	}
}

// WithSVGInteraction embeds hover highlighting in SVG output.
func WithSVGInteraction() Option { return func(o *options) { o.interactive = true } }

// WithDetailedLabels adds role and email to node-link labels.
func WithDetailedLabels() Option { return func(o *options) { o.detailed = true } }

// WithLookPath replaces the executable lookup used to probe rsvg-convert.
func WithLookPath(fn LookPathFunc) Option { return func(o *options) { o.lookPath = fn } }

// WithGraphvizProbe replaces the Graphviz availability check.
func WithGraphvizProbe(fn func(context.Context) error) Option {
	return func(o *options) { o.graphviz = fn }
}

// WithRasterOptions passes options through to the PNG canvas.
func WithRasterOptions(opts ...RasterOption) Option {
	return func(o *options) { o.raster = opts }
}

// Select probes the optional backends needed for format and viz once and
// returns the renderer to use for the rest of the session. When a backend
// is missing it returns an UnavailablePlaceholderRenderer whose Err explains
// how to install it.
func Select(ctx context.Context, format Format, viz VizType, opts ...Option) Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if viz == VizNodeLink {
		if err := o.graphviz(ctx); err != nil {
			return &UnavailablePlaceholderRenderer{
				requested: format,
				err:       errors.RenderUnavailable("nodelink", "the embedded Graphviz runtime could not start", err),
			}
		}
	}
	if format == FormatPDF || (format == FormatPNG && viz == VizNodeLink) {
		if err := probeRSVG(o.lookPath, string(format)); err != nil {
			return &UnavailablePlaceholderRenderer{requested: format, err: err}
		}
	}
	return &FullRenderer{format: format, viz: viz, opts: o}
}

// FullRenderer draws complete charts with every backend available.
type FullRenderer struct {
	format Format
	viz    VizType
	opts   options
}

// NewFullRenderer returns a renderer without probing backends.
func NewFullRenderer(format Format, viz VizType, opts ...Option) *FullRenderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &FullRenderer{format: format, viz: viz, opts: o}
}

func (r *FullRenderer) Format() Format { return r.format }
func (r *FullRenderer) Err() error     { return nil }

func (r *FullRenderer) Render(ctx context.Context, s Scene) ([]byte, error) {
	if r.viz == VizNodeLink && s.Drawable() {
		return r.renderNodeLink(ctx, s)
	}
	switch r.format {
	case FormatPNG:
		return r.renderPNG(s)
	case FormatPDF:
		return rsvgConvert(ctx, r.opts.lookPath, r.renderSVG(s), "pdf")
	default:
		return r.renderSVG(s), nil
	}
}

// frame returns the output size and the viewport that places the layout
// bounds inside the padding.
func (r *FullRenderer) frame(s Scene) (geom.Rect, viewport.Viewport) {
	if !s.Drawable() {
		return geom.Rect{W: statusWidth, H: statusHeight}, viewport.Identity()
	}
	b := s.Layout.Bounds
	pad := r.opts.padding
	return geom.Rect{W: b.W + 2*pad, H: b.H + 2*pad},
		viewport.Viewport{TranslateX: pad - b.X, TranslateY: pad - b.Y, Scale: 1}
}

const (
	statusWidth  = 640.0
	statusHeight = 240.0
)

func (r *FullRenderer) renderSVG(s Scene) []byte {
	screen, vp := r.frame(s)
	opts := []SVGOption{WithSVGTheme(s.theme())}
	if r.opts.interactive {
		opts = append(opts, WithInteraction())
	}
	c := NewSVGCanvas(screen.W, screen.H, opts...)
	DrawScene(c, s, vp, screen)
	return c.Bytes()
}

func (r *FullRenderer) renderPNG(s Scene) ([]byte, error) {
	screen, vp := r.frame(s)
	k := r.opts.scale
	vp = viewport.Viewport{TranslateX: vp.TranslateX * k, TranslateY: vp.TranslateY * k, Scale: vp.Scale * k}
	screen = geom.Rect{W: screen.W * k, H: screen.H * k}

	c, err := NewRasterCanvas(int(math.Ceil(screen.W)), int(math.Ceil(screen.H)), r.opts.raster...)
	if err != nil {
		return nil, err
	}
	DrawScene(c, s, vp, screen)
	return c.PNG()
}

func (r *FullRenderer) renderNodeLink(ctx context.Context, s Scene) ([]byte, error) {
	theme := s.theme()
	root := s.Node(s.Layout.Nodes[0].NodeID)
	collapse := layout.CollapseState{}
	for _, g := range s.Layout.Nodes {
		collapse[g.NodeID] = g.Collapsed
	}
	dot := nodelink.ToDOT(root, collapse, 1, nodelink.Options{
		Detailed:  r.opts.detailed,
		Fill:      theme.CardFill,
		Stroke:    theme.CardStroke,
		FontColor: theme.Text,
		EdgeColor: theme.Edge,
	})
	svg, err := nodelink.RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch r.format {
	case FormatPNG:
		return rsvgConvert(ctx, r.opts.lookPath, svg, "png", "-z", fmt.Sprintf("%.2f", r.opts.scale))
	case FormatPDF:
		return rsvgConvert(ctx, r.opts.lookPath, svg, "pdf")
	default:
		return svg, nil
	}
}

// UnavailablePlaceholderRenderer stands in for a backend that could not be
// initialized. It always produces an SVG explaining what is missing.
type UnavailablePlaceholderRenderer struct {
	requested Format
	err       error
}

// NewUnavailablePlaceholderRenderer wraps err for the requested format.
func NewUnavailablePlaceholderRenderer(requested Format, err error) *UnavailablePlaceholderRenderer {
	return &UnavailablePlaceholderRenderer{requested: requested, err: err}
}

func (r *UnavailablePlaceholderRenderer) Format() Format { return FormatSVG }
func (r *UnavailablePlaceholderRenderer) Err() error     { return r.err }

// Requested returns the format the caller originally asked for.
func (r *UnavailablePlaceholderRenderer) Requested() Format { return r.requested }

func (r *UnavailablePlaceholderRenderer) Render(_ context.Context, s Scene) ([]byte, error) {
	theme := s.theme()
	title := fmt.Sprintf("%s output is unavailable", strings.ToUpper(string(r.requested)))
	msg := "backend unavailable"
	if r.err != nil {
		msg = errors.UserMessage(r.err)
	}
	var lines []string
	for _, l := range strings.Split(msg, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	screen := geom.Rect{W: statusWidth, H: statusHeight}
	c := NewSVGCanvas(screen.W, screen.H, WithSVGTheme(theme))
	DrawPlaceholder(c, screen, title, lines, theme.Error, theme)
	return c.Bytes(), nil
}
