package interaction

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/orgchart/pkg/geom"
	"github.com/matzehuels/orgchart/pkg/render"
)

func editable(cfg *ViewConfig) {
	cfg.ReadOnly = false
	cfg.DetailLevel = 3
}

func TestDragNodeCommitsOverride(t *testing.T) {
	c := loaded(t, abcd(), editable)
	from, to := screenCenter(c, "D"), screenCenter(c, "A")

	c.PointerDown(from)
	c.PointerMove(geom.Pt((from.X+to.X)/2, (from.Y+to.Y)/2))
	c.PointerMove(to)
	require.Empty(t, c.Overrides(), "overrides are committed on release")
	c.PointerUp(to)

	require.Contains(t, c.Overrides(), "D")
	c.Frame()

	// D now sits on top of A and the deeper node wins the hit-test.
	id, ok := c.HitTest(to)
	require.True(t, ok)
	require.Equal(t, "D", id)

	require.True(t, c.ResetPosition("D"))
	require.False(t, c.ResetPosition("D"))
	id, _ = c.HitTest(to)
	require.Equal(t, "A", id)
}

func TestDragShowsLivePosition(t *testing.T) {
	c := loaded(t, abcd(), editable)
	g, _ := c.Layout().Node("B")
	from := screenCenter(c, "B")

	c.PointerDown(from)
	c.PointerMove(geom.Pt(from.X+40, from.Y))
	moved, _ := c.Layout().Node("B")
	require.Greater(t, moved.X, g.X)
	require.Equal(t, g.Y, moved.Y)
}

func TestReadOnlyDragPans(t *testing.T) {
	c := loaded(t, abcd(), func(cfg *ViewConfig) { cfg.DetailLevel = 3 })
	before := c.Viewport()
	from := screenCenter(c, "B")

	c.PointerDown(from)
	c.PointerMove(geom.Pt(from.X+50, from.Y))
	c.PointerUp(geom.Pt(from.X+50, from.Y))

	require.Empty(t, c.Overrides())
	require.InDelta(t, before.TranslateX+50, c.Viewport().TranslateX, 1e-9)
	require.Equal(t, before.Scale, c.Viewport().Scale)
}

func TestReadOnlyStillToggles(t *testing.T) {
	c := loaded(t, abcd())
	g, _ := c.Layout().Node("C")
	p := c.Viewport().ToScreen(g.MarkerRect().Center())

	c.PointerDown(p)
	c.PointerUp(p)
	require.False(t, c.Collapsed("C"))
	require.Len(t, c.Frame().Layout.Nodes, 4)
}

func TestSetReadOnlyCancelsDrag(t *testing.T) {
	c := loaded(t, abcd(), editable)
	from := screenCenter(c, "B")

	c.PointerDown(from)
	c.PointerMove(geom.Pt(from.X+80, from.Y))
	c.SetReadOnly(true)
	c.PointerUp(geom.Pt(from.X+80, from.Y))
	require.Empty(t, c.Overrides())
}

func TestSmallMovesAreClicks(t *testing.T) {
	c := loaded(t, abcd(), editable)
	p := screenCenter(c, "B")

	c.PointerDown(p)
	c.PointerMove(geom.Pt(p.X+1, p.Y+1))
	c.PointerUp(geom.Pt(p.X+1, p.Y+1))

	require.Empty(t, c.Overrides())
	require.Equal(t, "B", c.Selected())
	require.Equal(t, render.StateSelected, c.Frame().State("B"))

	c.PointerDown(geom.Pt(-999, -999))
	c.PointerUp(geom.Pt(-999, -999))
	require.Empty(t, c.Selected())
}

func TestHover(t *testing.T) {
	c := loaded(t, abcd())
	c.PointerMove(screenCenter(c, "B"))
	require.Equal(t, "B", c.Hovered())
	require.Equal(t, render.StateHover, c.Frame().State("B"))

	c.PointerLeave()
	require.Empty(t, c.Hovered())
}

func TestCollapseClearsHiddenSelection(t *testing.T) {
	c := loaded(t, abcd(), editable)
	require.NoError(t, c.Select("D"))
	_, err := c.Toggle("C")
	require.NoError(t, err)
	require.Empty(t, c.Selected())
}

func TestResetPositions(t *testing.T) {
	c := loaded(t, abcd(), editable)
	from := screenCenter(c, "B")
	c.PointerDown(from)
	c.PointerMove(geom.Pt(from.X+30, from.Y+30))
	c.PointerUp(geom.Pt(from.X+30, from.Y+30))
	require.Len(t, c.Overrides(), 1)

	c.ResetPositions()
	require.Empty(t, c.Overrides())
}

func TestReloadDropsOverrides(t *testing.T) {
	c := loaded(t, abcd(), editable)
	from := screenCenter(c, "B")
	c.PointerDown(from)
	c.PointerMove(geom.Pt(from.X+30, from.Y))
	c.PointerUp(geom.Pt(from.X+30, from.Y))

	req := c.Reload()
	c.CompleteLoad(req.Token, abcd(), nil)
	require.Empty(t, c.Overrides())
}
