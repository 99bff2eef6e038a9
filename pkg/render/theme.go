package render

import (
	"slices"
	"strings"

	"github.com/matzehuels/orgchart/pkg/errors"
)

// Theme holds the colours and typography used by every canvas.
type Theme struct {
	Name       string
	Background string
	FontFamily string
	FontSize   float64

	CardFill     string
	CardStroke   string
	HoverStroke  string
	SelectFill   string
	SelectStroke string
	Text         string
	MutedText    string

	BadgeFill string
	BadgeText string
	Edge      string
	Marker    string
	Error     string

	// Placeholder avatars pick a colour from this palette by node id.
	Palette []string
}

var themes = map[string]Theme{
	"light": {
		Name:         "light",
		Background:   "#ffffff",
		FontFamily:   "Inter, 'Helvetica Neue', Arial, sans-serif",
		FontSize:     14,
		CardFill:     "#ffffff",
		CardStroke:   "#d0d7de",
		HoverStroke:  "#0969da",
		SelectFill:   "#ddf4ff",
		SelectStroke: "#0550ae",
		Text:         "#1f2328",
		MutedText:    "#656d76",
		BadgeFill:    "#eaeef2",
		BadgeText:    "#424a53",
		Edge:         "#8c959f",
		Marker:       "#57606a",
		Error:        "#cf222e",
		Palette:      []string{"#0969da", "#1a7f37", "#9a6700", "#bc4c00", "#8250df", "#bf3989", "#1b7c83"},
	},
	"dark": {
		Name:         "dark",
		Background:   "#0d1117",
		FontFamily:   "Inter, 'Helvetica Neue', Arial, sans-serif",
		FontSize:     14,
		CardFill:     "#161b22",
		CardStroke:   "#30363d",
		HoverStroke:  "#58a6ff",
		SelectFill:   "#1f2d3d",
		SelectStroke: "#79c0ff",
		Text:         "#e6edf3",
		MutedText:    "#8d96a0",
		BadgeFill:    "#21262d",
		BadgeText:    "#c9d1d9",
		Edge:         "#484f58",
		Marker:       "#8b949e",
		Error:        "#f85149",
		Palette:      []string{"#388bfd", "#3fb950", "#d29922", "#db6d28", "#a371f7", "#db61a2", "#39c5cf"},
	},
}

// DefaultTheme returns the light theme.
func DefaultTheme() Theme { return themes["light"] }

// ThemeByName looks up a built-in theme. Names are case-insensitive.
func ThemeByName(name string) (Theme, error) {
	if name == "" {
		return DefaultTheme(), nil
	}
	t, ok := themes[strings.ToLower(name)]
	if !ok {
		return Theme{}, errors.New(errors.ErrCodeInvalidInput, "unknown theme %q (available: %s)", name, strings.Join(ThemeNames(), ", "))
	}
	return t, nil
}

// ThemeNames lists the built-in theme names in sorted order.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// fontStack returns the CSS font-family value.
func (t Theme) fontStack() string {
	if t.FontFamily == "" {
		return "sans-serif"
	}
	return t.FontFamily
}
