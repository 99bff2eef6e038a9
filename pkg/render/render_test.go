package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/geom"
	"github.com/matzehuels/orgchart/pkg/hierarchy"
	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/viewport"
)

func sampleTree() *hierarchy.OrgNode {
	return &hierarchy.OrgNode{
		ID:         "A",
		Attributes: hierarchy.Attributes{"name": "Ada Lovelace", "role": "CEO"},
		Children: []*hierarchy.OrgNode{
			{ID: "B", Attributes: hierarchy.Attributes{"name": "bob", "avatarRef": "missing.png"}},
			{ID: "C", Attributes: hierarchy.Attributes{"name": "Cy"}, Children: []*hierarchy.OrgNode{{ID: "D"}}},
		},
	}
}

func sampleScene(t *testing.T) Scene {
	t.Helper()
	root := sampleTree()
	l, err := layout.Compute(root, nil, 1)
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	s, err := NewScene(root, l, DefaultTheme())
	if err != nil {
		t.Fatalf("NewScene() error: %v", err)
	}
	return s
}

// recorder is a Canvas that records calls.
type recorder struct {
	calls    []string
	imageErr error
}

func (r *recorder) Rect(geom.Rect, float64, string, string, float64) { r.calls = append(r.calls, "rect") }
func (r *recorder) Circle(geom.Point, float64, string, string)       { r.calls = append(r.calls, "circle") }
func (r *recorder) Text(_ geom.Point, s string, _ float64, _ string, _ bool) {
	r.calls = append(r.calls, "text:"+s)
}
func (r *recorder) Image(geom.Rect, string) error {
	r.calls = append(r.calls, "image")
	return r.imageErr
}
func (r *recorder) Polyline([]geom.Point, string, float64) { r.calls = append(r.calls, "polyline") }

func kinds(prims []Primitive) []Kind {
	out := make([]Kind, len(prims))
	for i, p := range prims {
		out[i] = p.Kind
	}
	return out
}

func TestDescribe(t *testing.T) {
	g := layout.GeometricNode{NodeID: "A", Width: 180, Height: 72, Level: 1, HasChildren: true, Collapsed: true}
	n := &hierarchy.OrgNode{ID: "A", Attributes: hierarchy.Attributes{"name": "ada", "role": "CEO"}}

	prims := Describe(g, n, StateDefault, DefaultTheme())
	want := []Kind{KindCard, KindPlaceholder, KindText, KindBadge, KindMarker}
	got := kinds(prims)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", got, want)
		}
	}
	if prims[1].Text != "A" {
		t.Errorf("placeholder initial = %q, want %q", prims[1].Text, "A")
	}
	if prims[4].Text != "+" {
		t.Errorf("marker glyph = %q, want + for a collapsed node", prims[4].Text)
	}
	for _, p := range prims[1:] {
		if p.Kind == KindMarker {
			continue
		}
		if !g.Rect().Contains(p.Center) && !g.Rect().Contains(p.Rect.Center()) {
			t.Errorf("%v primitive lies outside the node box", p.Kind)
		}
	}
}

func TestDescribeIsDeterministic(t *testing.T) {
	g := layout.GeometricNode{NodeID: "x", Width: 180, Height: 72}
	n := &hierarchy.OrgNode{ID: "x", Attributes: hierarchy.Attributes{"name": "Xavier"}}
	a := Describe(g, n, StateHover, DefaultTheme())
	b := Describe(g, n, StateHover, DefaultTheme())
	if len(a) != len(b) {
		t.Fatal("Describe() is not deterministic")
	}
	for i := range a {
		if a[i].Kind != b[i].Kind || a[i].Text != b[i].Text || a[i].Fill != b[i].Fill || a[i].Stroke != b[i].Stroke {
			t.Errorf("primitive %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestDescribeStates(t *testing.T) {
	theme := DefaultTheme()
	g := layout.GeometricNode{NodeID: "x", Width: 180, Height: 72}
	tests := []struct {
		state  State
		fill   string
		stroke string
	}{
		{StateDefault, theme.CardFill, theme.CardStroke},
		{StateHover, theme.CardFill, theme.HoverStroke},
		{StateSelected, theme.SelectFill, theme.SelectStroke},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			c := Describe(g, nil, tt.state, theme)[0]
			if c.Fill != tt.fill || c.Stroke != tt.stroke {
				t.Errorf("card = %s/%s, want %s/%s", c.Fill, c.Stroke, tt.fill, tt.stroke)
			}
		})
	}
}

func TestDrawNodeImageFallback(t *testing.T) {
	g := layout.GeometricNode{NodeID: "B", Width: 180, Height: 72}
	n := &hierarchy.OrgNode{ID: "B", Attributes: hierarchy.Attributes{"name": "bob", "avatarRef": "x.png"}}

	ok := &recorder{}
	DrawNode(ok, g, n, StateDefault, DefaultTheme())
	if strings.Contains(strings.Join(ok.calls, ","), "circle") {
		t.Errorf("calls = %v, want no placeholder when the image loads", ok.calls)
	}

	failing := &recorder{imageErr: errors.New(errors.ErrCodeNotFound, "gone")}
	DrawNode(failing, g, n, StateDefault, DefaultTheme())
	joined := strings.Join(failing.calls, ",")
	if !strings.Contains(joined, "image,circle,text:B") {
		t.Errorf("calls = %v, want image followed by placeholder", failing.calls)
	}
}

func TestInitial(t *testing.T) {
	tests := []struct{ in, want string }{
		{"ada", "A"},
		{"  émile", "É"},
		{"", "?"},
		{"   ", "?"},
		{"(42)", "("},
		{"9lives", "9"},
	}
	for _, tt := range tests {
		if got := Initial(tt.in); got != tt.want {
			t.Errorf("Initial(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlaceholderColor(t *testing.T) {
	p := DefaultTheme().Palette
	if PlaceholderColor("node-1", p) != PlaceholderColor("node-1", p) {
		t.Error("PlaceholderColor() should be stable for an id")
	}
	if got := PlaceholderColor("x", nil); got == "" {
		t.Error("PlaceholderColor() with empty palette should fall back")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 200, 14); got != "short" {
		t.Errorf("Truncate() = %q, want unchanged", got)
	}
	long := "Bartholomew Montgomery-Fitzgerald"
	got := Truncate(long, 100, 14)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("Truncate() = %q, want ellipsis", got)
	}
	if TextWidth(got, 14) > 100 {
		t.Errorf("Truncate() = %q is wider than 100", got)
	}
	if got := Truncate(long, 1, 14); got != "…" {
		t.Errorf("Truncate() in a tiny box = %q, want ellipsis only", got)
	}
}

func TestSVGCanvas(t *testing.T) {
	s := sampleScene(t)
	svg := string(NewFullRenderer(FormatSVG, VizTree, WithSVGInteraction()).renderSVG(s))

	for _, want := range []string{`<svg xmlns="http://www.w3.org/2000/svg"`, `id="node-A"`, `id="node-C"`, "Ada Lovelace", "CEO", `data-from="A" data-to="B"`, "<script", "</svg>"} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	if strings.Contains(svg, `id="node-D"`) {
		t.Error("SVG should not draw nodes below a collapsed node")
	}
}

func TestSVGEscapesText(t *testing.T) {
	c := NewSVGCanvas(10, 10)
	c.Text(geom.Pt(1, 1), "R&D <team>", 12, "#000", false)
	out := string(c.Bytes())
	if !strings.Contains(out, "R&amp;D &lt;team&gt;") {
		t.Errorf("text not escaped: %s", out)
	}
	if string(c.Bytes()) != out {
		t.Error("Bytes() should be stable once finished")
	}
}

func TestSVGImageRejectsUnsupportedRefs(t *testing.T) {
	c := NewSVGCanvas(10, 10)
	if err := c.Image(geom.Rect{W: 4, H: 4}, "javascript:alert(1)"); err == nil {
		t.Error("Image() accepted a script reference")
	}
	if err := c.Image(geom.Rect{W: 4, H: 4}, "https://example.com/a.png"); err != nil {
		t.Errorf("Image() error = %v", err)
	}
}

func TestStatusPlaceholders(t *testing.T) {
	tests := []struct {
		name   string
		scene  Scene
		expect string
	}{
		{"loading", Scene{Status: StatusLoading}, "Loading organization chart"},
		{"empty", Scene{Status: StatusEmpty, Message: "organization 7 has no data"}, "No data"},
		{"error", Scene{Status: StatusError, Message: "timeout"}, "timeout"},
		{"ready without nodes", Scene{Layout: layout.Empty()}, "No data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := NewFullRenderer(FormatSVG, VizTree).Render(context.Background(), tt.scene)
			if err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			if !strings.Contains(string(data), tt.expect) {
				t.Errorf("placeholder missing %q", tt.expect)
			}
			if strings.Contains(string(data), `class="node`) {
				t.Error("placeholder should replace the chart")
			}
		})
	}
}

func TestSelect(t *testing.T) {
	missing := WithLookPath(func(string) (string, error) { return "", errors.New(errors.ErrCodeNotFound, "not found") })
	present := WithLookPath(func(string) (string, error) { return "/usr/bin/rsvg-convert", nil })
	noGraphviz := WithGraphvizProbe(func(context.Context) error { return errors.New(errors.ErrCodeInternal, "wasm failed") })
	ctx := context.Background()

	tests := []struct {
		name        string
		format      Format
		viz         VizType
		opts        []Option
		unavailable bool
	}{
		{"svg tree", FormatSVG, VizTree, []Option{missing}, false},
		{"png tree is native", FormatPNG, VizTree, []Option{missing}, false},
		{"pdf without rsvg", FormatPDF, VizTree, []Option{missing}, true},
		{"pdf with rsvg", FormatPDF, VizTree, []Option{present}, false},
		{"nodelink without graphviz", FormatSVG, VizNodeLink, []Option{noGraphviz}, true},
		{"nodelink png without rsvg", FormatPNG, VizNodeLink, []Option{missing, WithGraphvizProbe(func(context.Context) error { return nil })}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Select(ctx, tt.format, tt.viz, tt.opts...)
			if got := r.Err() != nil; got != tt.unavailable {
				t.Fatalf("Err() = %v, want unavailable=%v", r.Err(), tt.unavailable)
			}
			if !tt.unavailable {
				return
			}
			if !errors.Is(r.Err(), errors.ErrCodeRenderUnavailable) {
				t.Errorf("Err() code = %v, want RENDER_UNAVAILABLE", errors.GetCode(r.Err()))
			}
			if r.Format() != FormatSVG {
				t.Errorf("Format() = %v, want svg placeholder", r.Format())
			}
			data, err := r.Render(ctx, sampleScene(t))
			if err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			if !strings.Contains(string(data), "output is unavailable") {
				t.Errorf("placeholder missing instructions: %s", data)
			}
		})
	}
}

func TestRenderPNG(t *testing.T) {
	data, err := NewFullRenderer(FormatPNG, VizTree, WithScale(1)).Render(context.Background(), sampleScene(t))
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatalf("Render() did not produce a PNG")
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	l, _ := layout.Compute(sampleTree(), nil, 1)
	if want := int(l.Bounds.W + 48); img.Bounds().Dx() != want {
		t.Errorf("width = %d, want %d", img.Bounds().Dx(), want)
	}
}

func TestLoadAvatarDataURI(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	ref := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	got, err := LoadAvatar(ref)
	if err != nil {
		t.Fatalf("LoadAvatar() error: %v", err)
	}
	if got.Bounds().Dx() != 4 {
		t.Errorf("width = %d, want 4", got.Bounds().Dx())
	}
	if _, err := LoadAvatar("https://example.com/a.png"); err == nil {
		t.Error("LoadAvatar() should not fetch remote images")
	}
}

func TestTermCanvas(t *testing.T) {
	s := sampleScene(t)
	c := NewTermCanvas(120, 40)
	vp := viewport.Fit(s.Layout.Bounds, 120, 80, 2, viewport.DefaultLimits())
	DrawScene(c, s, vp, c.Screen())

	plain := c.Plain()
	if !strings.Contains(plain, "╭") && !strings.Contains(plain, "┏") {
		t.Errorf("no card borders drawn:\n%s", plain)
	}
	if !strings.Contains(plain, "+") {
		t.Errorf("no collapse marker drawn:\n%s", plain)
	}
	if lines := strings.Split(plain, "\n"); len(lines) != 40 || len([]rune(lines[0])) != 120 {
		t.Errorf("grid is %d lines, want 40x120", len(lines))
	}
	if c.String() == "" {
		t.Error("String() is empty")
	}
}

func TestTermCanvasImageUnsupported(t *testing.T) {
	if err := NewTermCanvas(1, 1).Image(geom.Rect{}, "x"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Image() error = %v, want UNSUPPORTED", err)
	}
}

func TestListText(t *testing.T) {
	out := ListText(sampleTree(), nil, 1, ListStyles{})
	for _, want := range []string{"Ada Lovelace", "· CEO", "bob", "Cy (+1)"} {
		if !strings.Contains(out, want) {
			t.Errorf("ListText() missing %q:\n%s", want, out)
		}
	}

	out = ListText(sampleTree(), layout.CollapseState{"C": false}, 1, ListStyles{})
	if !strings.Contains(out, "D") || strings.Contains(out, "(+1)") {
		t.Errorf("ListText() with C expanded:\n%s", out)
	}
	if ListText(nil, nil, 1, ListStyles{}) != "" {
		t.Error("ListText(nil) should be empty")
	}
}

func TestThemeByName(t *testing.T) {
	if _, err := ThemeByName("DARK"); err != nil {
		t.Errorf("ThemeByName(DARK) error = %v", err)
	}
	if _, err := ThemeByName("neon"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ThemeByName(neon) error = %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(" PNG "); err != nil || f != FormatPNG {
		t.Errorf("ParseFormat(PNG) = %v, %v", f, err)
	}
	if _, err := ParseFormat("gif"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ParseFormat(gif) error = %v", err)
	}
	if v, err := ParseVizType(""); err != nil || v != VizTree {
		t.Errorf("ParseVizType(\"\") = %v, %v", v, err)
	}
}
