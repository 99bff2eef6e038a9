package render

import (
	"hash/fnv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matzehuels/orgchart/pkg/geom"
	"github.com/matzehuels/orgchart/pkg/hierarchy"
	"github.com/matzehuels/orgchart/pkg/layout"
)

// State is the interaction state a node is drawn in.
type State int

const (
	StateDefault State = iota
	StateHover
	StateSelected
)

func (s State) String() string {
	switch s {
	case StateHover:
		return "hover"
	case StateSelected:
		return "selected"
	default:
		return "default"
	}
}

// Kind identifies a drawing primitive.
type Kind int

const (
	KindCard Kind = iota
	KindImage
	KindPlaceholder
	KindText
	KindBadge
	KindMarker
)

// Primitive is one element of a node's drawing descriptor, in world
// coordinates. Which fields are meaningful depends on Kind.
type Primitive struct {
	Kind        Kind
	Rect        geom.Rect  // card, image, badge and marker box
	Center      geom.Point // placeholder circle and text anchor
	Radius      float64    // card corner radius or placeholder radius
	Text        string
	FontSize    float64
	Bold        bool
	Fill        string
	Stroke      string
	StrokeWidth float64
	Color       string // text colour
	Ref         string // image reference

	// Fallback is drawn when an image cannot be loaded.
	Fallback *Primitive
}

// Card geometry relative to the node box.
const (
	cardRadius     = 8.0
	avatarInset    = 12.0
	textPadding    = 10.0
	badgeHeight    = 18.0
	badgeFontRatio = 0.78
	charWidthRatio = 0.55
	ellipsis       = "…"
)

// Describe returns the drawing descriptor for a laid-out node, back to front.
// n may be nil when only geometry is known; the node id is then used as the
// label. The result depends only on its inputs.
func Describe(g layout.GeometricNode, n *hierarchy.OrgNode, st State, theme Theme) []Primitive {
	box := g.Rect()
	prims := make([]Primitive, 0, 5)
	prims = append(prims, card(box, st, theme))

	var name, role, avatar string
	if n != nil {
		name, role, avatar = n.Label(), n.Attributes.Role(), n.Attributes.AvatarRef()
	} else {
		name = g.NodeID
	}

	radius := max(box.H/2-avatarInset, 4)
	center := geom.Pt(box.X+avatarInset+radius, box.Y+box.H/2)
	ph := Primitive{
		Kind:     KindPlaceholder,
		Center:   center,
		Radius:   radius,
		Text:     Initial(name),
		FontSize: radius,
		Bold:     true,
		Fill:     PlaceholderColor(g.NodeID, theme.Palette),
		Color:    "#ffffff",
	}
	if avatar != "" {
		fb := ph
		prims = append(prims, Primitive{
			Kind:     KindImage,
			Rect:     geom.Rect{X: center.X - radius, Y: center.Y - radius, W: 2 * radius, H: 2 * radius},
			Center:   center,
			Radius:   radius,
			Ref:      avatar,
			Fallback: &fb,
		})
	} else {
		prims = append(prims, ph)
	}

	textLeft := center.X + radius + textPadding
	textW := max(box.Right()-textPadding-textLeft, 0)
	textCX := textLeft + textW/2
	size := theme.FontSize
	if size <= 0 {
		size = DefaultTheme().FontSize
	}

	nameY := box.Y + box.H/2
	if role != "" {
		nameY = box.Y + box.H*0.36
	}
	prims = append(prims, Primitive{
		Kind:     KindText,
		Center:   geom.Pt(textCX, nameY),
		Text:     Truncate(name, textW, size),
		FontSize: size,
		Bold:     true,
		Color:    theme.Text,
	})

	if role != "" {
		bsize := size * badgeFontRatio
		label := Truncate(role, textW-badgeHeight/2, bsize)
		bw := min(textW, TextWidth(label, bsize)+badgeHeight)
		prims = append(prims, Primitive{
			Kind:     KindBadge,
			Rect:     geom.Rect{X: textCX - bw/2, Y: box.Y + box.H*0.62 - badgeHeight/2, W: bw, H: badgeHeight},
			Text:     label,
			FontSize: bsize,
			Fill:     theme.BadgeFill,
			Color:    theme.BadgeText,
		})
	}

	if g.HasChildren {
		glyph := "−"
		if g.Collapsed {
			glyph = "+"
		}
		prims = append(prims, Primitive{
			Kind:        KindMarker,
			Rect:        g.MarkerRect(),
			Center:      g.MarkerRect().Center(),
			Text:        glyph,
			FontSize:    layout.MarkerSize * 0.85,
			Bold:        true,
			Fill:        theme.Background,
			Stroke:      theme.Marker,
			StrokeWidth: 1,
			Color:       theme.Marker,
		})
	}
	return prims
}

func card(box geom.Rect, st State, theme Theme) Primitive {
	p := Primitive{
		Kind:        KindCard,
		Rect:        box,
		Radius:      cardRadius,
		Fill:        theme.CardFill,
		Stroke:      theme.CardStroke,
		StrokeWidth: 1,
	}
	switch st {
	case StateHover:
		p.Stroke, p.StrokeWidth = theme.HoverStroke, 2
	case StateSelected:
		p.Fill, p.Stroke, p.StrokeWidth = theme.SelectFill, theme.SelectStroke, 2
	}
	return p
}

// Initial returns the uppercased first character of name, ignoring leading
// whitespace, or "?" for a blank name.
func Initial(name string) string {
	r, size := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if size == 0 {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

// PlaceholderColor picks a palette colour for id. The same id always maps to
// the same colour.
func PlaceholderColor(id string, palette []string) string {
	if len(palette) == 0 {
		palette = DefaultTheme().Palette
	}
	h := fnv.New32a()
	h.Write([]byte(id))
	return palette[h.Sum32()%uint32(len(palette))]
}

// TextWidth estimates the rendered width of s at the given font size.
func TextWidth(s string, fontSize float64) float64 {
	return float64(utf8.RuneCountInString(s)) * fontSize * charWidthRatio
}

// Truncate shortens s with a trailing ellipsis so that it fits maxWidth at
// the given font size.
func Truncate(s string, maxWidth, fontSize float64) string {
	if TextWidth(s, fontSize) <= maxWidth {
		return s
	}
	maxChars := int(maxWidth / (fontSize * charWidthRatio))
	if maxChars <= 1 {
		return ellipsis
	}
	runes := []rune(s)
	return strings.TrimRightFunc(string(runes[:maxChars-1]), unicode.IsSpace) + ellipsis
}
