package render

import (
	"github.com/matzehuels/orgchart/pkg/geom"
	"github.com/matzehuels/orgchart/pkg/hierarchy"
	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/viewport"
)

// Status is the load state a scene is drawn in.
type Status int

const (
	StatusReady Status = iota
	StatusLoading
	StatusEmpty
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusEmpty:
		return "empty"
	case StatusError:
		return "error"
	default:
		return "ready"
	}
}

// Scene is everything needed to draw one frame.
type Scene struct {
	Layout *layout.Layout
	Index  *hierarchy.Index // display attributes; may be nil
	States map[string]State
	Status Status

	// Message is shown by the empty and error placeholders.
	Message string
	Theme   Theme
}

// NewScene returns a ready scene for a computed layout.
func NewScene(root *hierarchy.OrgNode, l *layout.Layout, theme Theme) (Scene, error) {
	idx, err := hierarchy.NewIndex(root)
	if err != nil {
		return Scene{}, err
	}
	s := Scene{Layout: l, Index: idx, Theme: theme}
	if root == nil {
		s.Status = StatusEmpty
	}
	return s, nil
}

// Node returns the hierarchy node for id, or nil.
func (s Scene) Node(id string) *hierarchy.OrgNode {
	if s.Index == nil {
		return nil
	}
	return s.Index.Node(id)
}

// State returns the interaction state of id.
func (s Scene) State(id string) State { return s.States[id] }

func (s Scene) theme() Theme {
	if s.Theme.Name == "" {
		return DefaultTheme()
	}
	return s.Theme
}

// Drawable reports whether the scene draws a chart rather than a status
// placeholder.
func (s Scene) Drawable() bool {
	return s.Status == StatusReady && s.Layout != nil && s.Layout.Len() > 0
}

// DrawScene draws s onto c through vp. screen is the visible area in screen
// coordinates; status placeholders are centred in it.
func DrawScene(c Canvas, s Scene, vp viewport.Viewport, screen geom.Rect) {
	theme := s.theme()
	if !s.Drawable() {
		drawStatus(c, s, screen, theme)
		return
	}

	c.Rect(screen, 0, theme.Background, "", 0)
	pc := Project(c, vp)
	for _, e := range s.Layout.Edges {
		DrawEdge(pc, e, theme)
	}
	for _, g := range s.Layout.Nodes {
		DrawNode(pc, g, s.Node(g.NodeID), s.State(g.NodeID), theme)
	}
}

func drawStatus(c Canvas, s Scene, screen geom.Rect, theme Theme) {
	switch s.Status {
	case StatusLoading:
		DrawPlaceholder(c, screen, "Loading organization chart…", nil, theme.Marker, theme)
	case StatusError:
		lines := []string{"Reload to try again."}
		if s.Message != "" {
			lines = append([]string{s.Message}, lines...)
		}
		DrawPlaceholder(c, screen, "Could not load organization chart", lines, theme.Error, theme)
	default:
		var lines []string
		if s.Message != "" {
			lines = []string{s.Message}
		}
		DrawPlaceholder(c, screen, "No data", lines, theme.Marker, theme)
	}
}
