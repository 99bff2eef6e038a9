package interaction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/geom"
	"github.com/matzehuels/orgchart/pkg/hierarchy"
	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/render"
	"github.com/matzehuels/orgchart/pkg/viewport"
)

// abcd builds A{B, C{D}}.
func abcd() *hierarchy.OrgNode {
	return &hierarchy.OrgNode{ID: "A", Attributes: hierarchy.Attributes{"name": "Ada"}, Children: []*hierarchy.OrgNode{
		{ID: "B"},
		{ID: "C", Children: []*hierarchy.OrgNode{{ID: "D"}}},
	}}
}

func newController(t *testing.T, mutate ...func(*ViewConfig)) *Controller {
	t.Helper()
	cfg := DefaultViewConfig()
	cfg.OrganizationID = "42"
	cfg.DetailLevel = 1
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := New(cfg)
	require.NoError(t, err)
	c.Resize(800, 600)
	return c
}

// loaded returns a controller with root loaded and one frame drawn.
func loaded(t *testing.T, root *hierarchy.OrgNode, mutate ...func(*ViewConfig)) *Controller {
	t.Helper()
	c := newController(t, mutate...)
	req := c.BeginLoad()
	require.True(t, c.CompleteLoad(req.Token, root, nil))
	c.Frame()
	return c
}

func ids(l *layout.Layout) []string {
	out := make([]string, 0, l.Len())
	for _, n := range l.Nodes {
		out = append(out, n.NodeID)
	}
	return out
}

func screenCenter(c *Controller, id string) geom.Point {
	g, _ := c.Layout().Node(id)
	return c.Viewport().ToScreen(g.Center())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ViewConfig)
		code   errors.Code
	}{
		{"unknown view mode", func(c *ViewConfig) { c.ViewMode = "matrix" }, errors.ErrCodeInvalidViewMode},
		{"detail level zero", func(c *ViewConfig) { c.DetailLevel = 0 }, errors.ErrCodeInvalidConfig},
		{"zoom zero", func(c *ViewConfig) { c.ZoomPercent = 0 }, errors.ErrCodeInvalidConfig},
		{"bad org id", func(c *ViewConfig) { c.OrganizationID = "../etc" }, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultViewConfig()
			tt.mutate(&cfg)
			_, err := New(cfg)
			require.Error(t, err)
			require.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestDetailLevelScenario(t *testing.T) {
	c := loaded(t, abcd())

	l := c.Layout()
	require.Equal(t, []string{"A", "B", "C"}, ids(l))
	require.True(t, c.Collapsed("C"))
	before := l.Bounds.H

	collapsed, err := c.Toggle("C")
	require.NoError(t, err)
	require.False(t, collapsed)

	l = c.Frame().Layout
	require.Equal(t, []string{"A", "B", "C", "D"}, ids(l))
	require.Equal(t, layout.DefaultNodeHeight+layout.DefaultVGap, l.Bounds.H-before)
}

func TestToggleIsIdempotent(t *testing.T) {
	c := loaded(t, abcd(), func(cfg *ViewConfig) { cfg.DetailLevel = 5 })
	want := *c.Layout()

	_, err := c.Toggle("C")
	require.NoError(t, err)
	require.Len(t, c.Layout().Nodes, 3)

	_, err = c.Toggle("C")
	require.NoError(t, err)
	got := c.Layout()
	require.Equal(t, want.Nodes, got.Nodes)
	require.Equal(t, want.Bounds, got.Bounds)
}

func TestToggleErrors(t *testing.T) {
	c := newController(t)
	_, err := c.Toggle("A")
	require.True(t, errors.Is(err, errors.ErrCodeNotFound))

	c = loaded(t, abcd())
	_, err = c.Toggle("Z")
	require.True(t, errors.Is(err, errors.ErrCodeNotFound))

	collapsed, err := c.Toggle("B")
	require.NoError(t, err)
	require.False(t, collapsed, "leaves cannot collapse")
}

func TestFetchErrorShowsPlaceholder(t *testing.T) {
	c := loaded(t, abcd())
	require.Equal(t, StatusReady, c.Status())

	req := c.Reload()
	require.Equal(t, "42", req.OrganizationID)
	require.True(t, c.CompleteLoad(req.Token, nil, errors.FetchError("42", errors.New(errors.ErrCodeTimeout, "timeout"))))

	scene := c.Frame()
	require.Equal(t, StatusFailed, c.Status())
	require.Equal(t, render.StatusError, scene.Status)
	require.Contains(t, scene.Message, "timed out")
	require.Nil(t, c.Root())
	require.Zero(t, scene.Layout.Len(), "stale tree must not be shown")
	require.True(t, errors.Is(c.Err(), errors.ErrCodeFetchFailed))
}

func TestFetchDeadlineMessage(t *testing.T) {
	c := newController(t)
	req := c.BeginLoad()
	c.CompleteLoad(req.Token, nil, errors.FetchError("42", context.DeadlineExceeded))
	require.Equal(t, "The request timed out.", c.Scene().Message)
}

func TestEmptyData(t *testing.T) {
	for name, err := range map[string]error{
		"nil root":   nil,
		"empty data": errors.EmptyData("42"),
	} {
		t.Run(name, func(t *testing.T) {
			c := newController(t)
			req := c.BeginLoad()
			require.True(t, c.CompleteLoad(req.Token, nil, err))
			require.Equal(t, StatusEmpty, c.Status())
			require.Equal(t, render.StatusEmpty, c.Frame().Status)
		})
	}
}

func TestMalformedHierarchyFails(t *testing.T) {
	cyclic := &hierarchy.OrgNode{ID: "A"}
	cyclic.Children = []*hierarchy.OrgNode{{ID: "B", Children: []*hierarchy.OrgNode{cyclic}}}

	c := newController(t)
	req := c.BeginLoad()
	require.True(t, c.CompleteLoad(req.Token, cyclic, nil))
	require.Equal(t, StatusFailed, c.Status())
	require.True(t, errors.Is(c.Err(), errors.ErrCodeStructural))
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	c := newController(t)
	first := c.BeginLoad()
	second, err := c.SetOrganization("43")
	require.NoError(t, err)
	require.Greater(t, second.Token, first.Token)

	require.False(t, c.CompleteLoad(first.Token, abcd(), nil))
	require.Equal(t, StatusLoading, c.Status())
	require.Nil(t, c.Root())

	other := &hierarchy.OrgNode{ID: "X"}
	require.True(t, c.CompleteLoad(second.Token, other, nil))
	require.Equal(t, []string{"X"}, ids(c.Frame().Layout))

	require.False(t, c.CompleteLoad(second.Token, abcd(), nil), "a token applies once")
}

func TestSwitchViewModeResets(t *testing.T) {
	c := loaded(t, abcd())
	_, err := c.Toggle("C")
	require.NoError(t, err)
	c.Pan(120, -40)
	c.Frame()
	require.NotEmpty(t, c.CollapseState())

	req, err := c.SetViewMode(hierarchy.ViewLegal)
	require.NoError(t, err)
	require.Equal(t, hierarchy.ViewLegal, req.ViewMode)
	require.Empty(t, c.CollapseState())
	require.Empty(t, c.Overrides())

	legal := &hierarchy.OrgNode{ID: "L", Children: []*hierarchy.OrgNode{{ID: "L1"}, {ID: "L2"}, {ID: "L3"}}}
	require.True(t, c.CompleteLoad(req.Token, legal, nil))
	l := c.Frame().Layout

	want := viewport.Fit(l.Bounds, 800, 600, 24, viewport.DefaultLimits())
	require.Equal(t, want, c.Viewport())
}

func TestSetViewModeRejectsUnknown(t *testing.T) {
	c := newController(t)
	_, err := c.SetViewMode("matrix")
	require.True(t, errors.Is(err, errors.ErrCodeInvalidViewMode))
	require.Equal(t, hierarchy.ViewBusiness, c.Config().ViewMode)
}

func TestCycleViewMode(t *testing.T) {
	c := newController(t)
	require.Equal(t, hierarchy.ViewLegal, c.CycleViewMode().ViewMode)
	require.Equal(t, hierarchy.ViewTerritorial, c.CycleViewMode().ViewMode)
	require.Equal(t, hierarchy.ViewBusiness, c.CycleViewMode().ViewMode)
}

func TestHitTestAtNodeCenter(t *testing.T) {
	c := loaded(t, abcd(), func(cfg *ViewConfig) { cfg.DetailLevel = 3 })
	c.Pan(-37, 12)
	c.ZoomAt(geom.Pt(300, 200), 1.7)

	for _, g := range c.Layout().Nodes {
		id, ok := c.HitTest(c.Viewport().ToScreen(g.Center()))
		require.True(t, ok)
		require.Equal(t, g.NodeID, id)
	}

	_, ok := c.HitTest(geom.Pt(-5000, -5000))
	require.False(t, ok)
}

func TestZoomIsClamped(t *testing.T) {
	c := loaded(t, abcd())
	for range 100 {
		c.ZoomIn()
	}
	require.Equal(t, viewport.DefaultMaxScale, c.Viewport().Scale)
	for range 200 {
		c.Wheel(geom.Pt(10, 10), -1)
	}
	require.Equal(t, viewport.DefaultMinScale, c.Viewport().Scale)

	require.NoError(t, c.SetZoomPercent(150))
	require.InDelta(t, 1.5, c.Viewport().Scale, 1e-9)
	require.Error(t, c.SetZoomPercent(0))
}

func TestFrameCoalescesMutations(t *testing.T) {
	c := loaded(t, abcd())
	passes := c.LayoutPasses()

	c.Pan(10, 10)
	c.ZoomIn()
	_, err := c.Toggle("C")
	require.NoError(t, err)
	c.Resize(1024, 768)
	require.True(t, c.Dirty())

	c.Frame()
	require.Equal(t, passes+1, c.LayoutPasses())
	c.Frame()
	require.Equal(t, passes+1, c.LayoutPasses(), "a clean frame does not lay out again")
}

func TestHitTestSharesThePendingPass(t *testing.T) {
	c := loaded(t, abcd())
	passes := c.LayoutPasses()

	_, err := c.Toggle("C")
	require.NoError(t, err)
	c.HitTest(geom.Pt(1, 1))
	c.Frame()
	require.Equal(t, passes+1, c.LayoutPasses())
}

func TestDetailLevelChangeResetsExplicitEntries(t *testing.T) {
	c := loaded(t, abcd())
	_, err := c.Toggle("C")
	require.NoError(t, err)

	require.NoError(t, c.SetDetailLevel(1))
	require.Empty(t, c.CollapseState())
	require.Len(t, c.Layout().Nodes, 3)

	require.Error(t, c.SetDetailLevel(0))
}

func TestExpandAll(t *testing.T) {
	c := loaded(t, abcd())
	c.ExpandAll()
	require.Len(t, c.Layout().Nodes, 4)

	c.ExpandToLevel(1)
	require.Len(t, c.Layout().Nodes, 3)
}

func TestStructuralChangesRefit(t *testing.T) {
	fitted := func(c *Controller) viewport.Viewport {
		return viewport.Fit(c.Layout().Bounds, 800, 600, 24, viewport.DefaultLimits())
	}
	tests := []struct {
		name   string
		mutate func(t *testing.T, c *Controller)
	}{
		{"toggle", func(t *testing.T, c *Controller) {
			_, err := c.Toggle("C")
			require.NoError(t, err)
		}},
		{"expand all", func(_ *testing.T, c *Controller) { c.ExpandAll() }},
		{"detail level", func(t *testing.T, c *Controller) { require.NoError(t, c.SetDetailLevel(2)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := loaded(t, abcd())
			before := c.Viewport()
			c.Pan(35, -20)

			tt.mutate(t, c)
			c.Frame()
			require.Len(t, c.Layout().Nodes, 4)
			require.Equal(t, fitted(c), c.Viewport())
			require.NotEqual(t, before, c.Viewport())
		})
	}
}

func TestInitialZoomPercent(t *testing.T) {
	c := loaded(t, abcd(), func(cfg *ViewConfig) { cfg.ZoomPercent = 250 })
	fit := viewport.Fit(c.Layout().Bounds, 800, 600, 24, viewport.DefaultLimits())
	want := fit.WithZoomPercent(250, geom.Pt(400, 300), viewport.DefaultLimits())
	require.Equal(t, want, c.Viewport())
	require.InDelta(t, 250, c.Viewport().ZoomPercent(), 1e-9)

	// Later refits keep to the content.
	_, err := c.Toggle("C")
	require.NoError(t, err)
	c.Frame()
	require.Equal(t, viewport.Fit(c.Layout().Bounds, 800, 600, 24, viewport.DefaultLimits()), c.Viewport())

	// A reload zooms again.
	req := c.Reload()
	require.True(t, c.CompleteLoad(req.Token, abcd(), nil))
	c.Frame()
	require.InDelta(t, 250, c.Viewport().ZoomPercent(), 1e-9)
}

func TestDefaultZoomPercentKeepsFit(t *testing.T) {
	c := loaded(t, abcd())
	require.Equal(t, viewport.Fit(c.Layout().Bounds, 800, 600, 24, viewport.DefaultLimits()), c.Viewport())
}

func TestDisplayModeCallback(t *testing.T) {
	var got []DisplayMode
	cfg := DefaultViewConfig()
	c, err := New(cfg, OnDisplayModeChange(func(m DisplayMode) { got = append(got, m) }))
	require.NoError(t, err)

	require.Equal(t, DisplayList, c.ToggleDisplayMode())
	c.SetDisplayMode(DisplayList)
	require.Equal(t, DisplayTree, c.ToggleDisplayMode())
	require.Equal(t, []DisplayMode{DisplayList, DisplayTree}, got)
}

func TestIdleScene(t *testing.T) {
	c, err := New(DefaultViewConfig())
	require.NoError(t, err)
	s := c.Frame()
	require.Equal(t, render.StatusEmpty, s.Status)
	require.NotEmpty(t, s.Message)
}
