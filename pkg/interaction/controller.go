package interaction

import (
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/geom"
	"github.com/matzehuels/orgchart/pkg/hierarchy"
	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/render"
	"github.com/matzehuels/orgchart/pkg/viewport"
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for state transition debug logs.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLimits sets the zoom range.
func WithLimits(l viewport.Limits) Option { return func(c *Controller) { c.limits = l } }

// WithLayoutOptions passes options to every layout pass.
func WithLayoutOptions(opts ...layout.Option) Option {
	return func(c *Controller) { c.layoutOpts = opts }
}

// WithTheme sets the theme carried by scenes.
func WithTheme(t render.Theme) Option { return func(c *Controller) { c.theme = t } }

// WithFitPadding sets the screen-space padding used by fit-to-content.
func WithFitPadding(p float64) Option { return func(c *Controller) { c.padding = max(p, 0) } }

// WithDragThreshold sets how far, in screen units, the pointer must move
// before a press becomes a drag.
func WithDragThreshold(d float64) Option { return func(c *Controller) { c.dragThreshold = max(d, 0) } }

// OnDisplayModeChange registers a callback for display mode switches.
func OnDisplayModeChange(fn func(DisplayMode)) Option {
	return func(c *Controller) { c.onDisplay = fn }
}

// Controller is the interaction state machine of one chart view. It is not
// safe for concurrent use; drive it from one event loop.
type Controller struct {
	cfg           ViewConfig
	logger        *log.Logger
	limits        viewport.Limits
	layoutOpts    []layout.Option
	theme         render.Theme
	padding       float64
	dragThreshold float64
	onDisplay     func(DisplayMode)

	root    *hierarchy.OrgNode
	index   *hierarchy.Index
	status  Status
	loadErr error
	token   uint64

	collapse  layout.CollapseState
	overrides layout.Overrides

	vp          viewport.Viewport
	screen      geom.Rect
	fitPending  bool
	zoomPending bool

	current *layout.Layout
	dirty   bool
	passes  int

	hover    string
	selected string
	drag     *dragState
	display  DisplayMode
}

// New validates cfg and returns an idle controller. Call BeginLoad (or
// SetOrganization) to fetch the first hierarchy.
func New(cfg ViewConfig, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		cfg:           cfg,
		logger:        log.New(io.Discard),
		limits:        viewport.DefaultLimits(),
		theme:         render.DefaultTheme(),
		padding:       24,
		dragThreshold: 3,
		collapse:      layout.CollapseState{},
		overrides:     layout.Overrides{},
		vp:            viewport.Identity(),
		current:       layout.Empty(),
		display:       DisplayTree,
		fitPending:    true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// =============================================================================
// Accessors
// =============================================================================

// Config returns the current view configuration.
func (c *Controller) Config() ViewConfig { return c.cfg }

// Status returns the load state.
func (c *Controller) Status() Status { return c.status }

// Err returns the error of the last failed load, if any.
func (c *Controller) Err() error { return c.loadErr }

// Root returns the loaded hierarchy, or nil.
func (c *Controller) Root() *hierarchy.OrgNode { return c.root }

// Viewport returns the current world-to-screen transform.
func (c *Controller) Viewport() viewport.Viewport { return c.vp }

// Selected returns the selected node id, or "".
func (c *Controller) Selected() string { return c.selected }

// Hovered returns the hovered node id, or "".
func (c *Controller) Hovered() string { return c.hover }

// DisplayMode returns the current display mode.
func (c *Controller) DisplayMode() DisplayMode { return c.display }

// LayoutPasses returns the number of layout passes run so far.
func (c *Controller) LayoutPasses() int { return c.passes }

// CollapseState returns a copy of the explicit collapse entries.
func (c *Controller) CollapseState() layout.CollapseState { return c.collapse.Clone() }

// Overrides returns a copy of the committed position overrides.
func (c *Controller) Overrides() layout.Overrides { return c.overrides.Clone() }

// Collapsed reports the effective collapsed state of id.
func (c *Controller) Collapsed(id string) bool {
	if c.index == nil {
		return false
	}
	e, ok := c.index.Lookup(id)
	if !ok || e.Node.IsLeaf() {
		return false
	}
	return c.collapse.Collapsed(id, e.Level, c.cfg.DetailLevel)
}

// =============================================================================
// Loading
// =============================================================================

// BeginLoad issues a fetch for the current organization and view mode.
// Any fetch still in flight becomes stale.
func (c *Controller) BeginLoad() Request {
	c.token++
	c.status = StatusLoading
	c.loadErr = nil
	c.markDirty()
	c.logger.Debug("load started", "org", c.cfg.OrganizationID, "mode", c.cfg.ViewMode, "token", c.token)
	return Request{Token: c.token, OrganizationID: c.cfg.OrganizationID, ViewMode: c.cfg.ViewMode}
}

// Pending reports whether a fetch is outstanding.
func (c *Controller) Pending() bool { return c.status == StatusLoading }

// CompleteLoad applies the result of the fetch identified by token. Results
// of superseded fetches are discarded and CompleteLoad returns false.
//
// A failed fetch clears the tree so the error placeholder never sits next to
// stale data. A nil root is the empty state, not a failure. A hierarchy that
// is not a proper tree fails with STRUCTURAL_INTEGRITY.
func (c *Controller) CompleteLoad(token uint64, root *hierarchy.OrgNode, err error) bool {
	if token != c.token {
		c.logger.Debug("discarding stale load", "token", token, "latest", c.token)
		return false
	}
	if c.status != StatusLoading {
		return false
	}

	c.clearTree()
	c.overrides = layout.Overrides{}
	c.fitPending, c.zoomPending = true, true
	c.markDirty()

	switch {
	case errors.Is(err, errors.ErrCodeEmptyData):
		c.status, c.loadErr = StatusEmpty, err
	case err != nil:
		c.status, c.loadErr = StatusFailed, err
		c.logger.Debug("load failed", "org", c.cfg.OrganizationID, "error", err)
	case root == nil:
		c.status = StatusEmpty
	default:
		idx, ierr := hierarchy.NewIndex(root)
		if ierr != nil {
			c.status, c.loadErr = StatusFailed, ierr
			c.logger.Debug("rejecting malformed hierarchy", "error", ierr)
			return true
		}
		c.root, c.index, c.status = root, idx, StatusReady
		c.logger.Debug("load completed", "org", c.cfg.OrganizationID, "mode", c.cfg.ViewMode, "nodes", idx.Len())
	}
	return true
}

// Reload refetches the current hierarchy. Collapse state is kept; position
// overrides are dropped when the new data arrives.
func (c *Controller) Reload() Request { return c.BeginLoad() }

// SetOrganization switches to another organization and returns the fetch to
// run for it.
func (c *Controller) SetOrganization(id string) (Request, error) {
	if err := errors.ValidateOrganizationID(id); err != nil {
		return Request{}, err
	}
	c.cfg.OrganizationID = id
	c.resetView()
	return c.BeginLoad(), nil
}

// SetViewMode switches the hierarchy variant. Collapse state, overrides and
// the viewport are reset and the view refits once the new tree arrives.
func (c *Controller) SetViewMode(mode hierarchy.ViewMode) (Request, error) {
	m, err := hierarchy.ParseViewMode(string(mode))
	if err != nil {
		return Request{}, err
	}
	c.logger.Debug("switching view mode", "from", c.cfg.ViewMode, "to", m)
	c.cfg.ViewMode = m
	c.resetView()
	return c.BeginLoad(), nil
}

// CycleViewMode switches to the next view mode.
func (c *Controller) CycleViewMode() Request {
	req, _ := c.SetViewMode(c.cfg.ViewMode.Next())
	return req
}

func (c *Controller) resetView() {
	c.collapse.Reset()
	c.overrides = layout.Overrides{}
	c.clearTree()
	c.vp = viewport.Identity()
	c.fitPending = true
	c.markDirty()
}

func (c *Controller) clearTree() {
	c.root, c.index = nil, nil
	c.current = layout.Empty()
	c.hover, c.selected = "", ""
	c.drag = nil
}

// =============================================================================
// Configuration
// =============================================================================

// SetDetailLevel changes how many levels are expanded by default. Explicit
// collapse entries are dropped so the new level takes effect everywhere.
func (c *Controller) SetDetailLevel(level int) error {
	if level < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "detail level must be at least 1, got %d", level)
	}
	c.cfg.DetailLevel = level
	c.collapse.Reset()
	c.restructure()
	return nil
}

// SetReadOnly toggles editing. Entering read-only mode cancels a node drag
// in progress.
func (c *Controller) SetReadOnly(ro bool) {
	c.cfg.ReadOnly = ro
	if ro && c.drag != nil && c.drag.kind == dragNode {
		c.drag = nil
		c.markDirty()
	}
}

// Resize sets the screen size in screen units.
func (c *Controller) Resize(w, h float64) {
	c.screen = geom.Rect{W: max(w, 0), H: max(h, 0)}
	c.markDirty()
}

// SetDisplayMode switches between chart and list and notifies the
// registered callback on change.
func (c *Controller) SetDisplayMode(m DisplayMode) {
	if m != DisplayList {
		m = DisplayTree
	}
	if m == c.display {
		return
	}
	c.display = m
	c.markDirty()
	if c.onDisplay != nil {
		c.onDisplay(m)
	}
}

// ToggleDisplayMode flips between chart and list.
func (c *Controller) ToggleDisplayMode() DisplayMode {
	if c.display == DisplayTree {
		c.SetDisplayMode(DisplayList)
	} else {
		c.SetDisplayMode(DisplayTree)
	}
	return c.display
}

// =============================================================================
// Collapse
// =============================================================================

// Toggle flips the collapsed state of id and returns the new state. Leaves
// cannot be collapsed.
func (c *Controller) Toggle(id string) (bool, error) {
	if c.index == nil {
		return false, errors.New(errors.ErrCodeNotFound, "no hierarchy loaded")
	}
	e, ok := c.index.Lookup(id)
	if !ok {
		return false, errors.New(errors.ErrCodeNotFound, "unknown node %q", id)
	}
	if e.Node.IsLeaf() {
		return false, nil
	}
	collapsed := c.collapse.Toggle(id, e.Level, c.cfg.DetailLevel)
	if collapsed {
		c.dropHidden(id)
	}
	c.logger.Debug("toggled node", "id", id, "collapsed", collapsed)
	c.restructure()
	return collapsed, nil
}

// ExpandToLevel expands every node above level and collapses the rest.
func (c *Controller) ExpandToLevel(level int) {
	if c.root == nil {
		return
	}
	c.collapse.ExpandToLevel(c.root, max(level, 1))
	c.restructure()
}

// ExpandAll expands the whole tree.
func (c *Controller) ExpandAll() { c.ExpandToLevel(hierarchy.Depth(c.root)) }

// dropHidden clears hover and selection inside the subtree of id.
func (c *Controller) dropHidden(id string) {
	inside := func(target string) bool {
		if target == "" || target == id {
			return false
		}
		for _, a := range c.index.Ancestors(target) {
			if a == id {
				return true
			}
		}
		return false
	}
	if inside(c.hover) {
		c.hover = ""
	}
	if inside(c.selected) {
		c.selected = ""
	}
}

// =============================================================================
// Viewport
// =============================================================================

// Pan moves the view by a screen-space delta.
func (c *Controller) Pan(dx, dy float64) {
	c.vp = c.vp.Pan(dx, dy)
	c.fitPending = false
	c.markDirty()
}

// ZoomAt zooms by factor about the screen point p.
func (c *Controller) ZoomAt(p geom.Point, factor float64) {
	c.vp = c.vp.ZoomAt(p, factor, c.limits)
	c.fitPending = false
	c.markDirty()
}

// ZoomIn zooms one step about the screen centre.
func (c *Controller) ZoomIn() { c.ZoomAt(c.screen.Center(), viewport.ZoomStep) }

// ZoomOut zooms out one step about the screen centre.
func (c *Controller) ZoomOut() { c.ZoomAt(c.screen.Center(), 1/viewport.ZoomStep) }

// SetZoomPercent applies an external zoom percentage about the screen centre.
func (c *Controller) SetZoomPercent(pct float64) error {
	if pct <= 0 || math.IsNaN(pct) {
		return errors.New(errors.ErrCodeInvalidConfig, "zoom percent must be positive, got %v", pct)
	}
	c.cfg.ZoomPercent = pct
	c.vp = c.vp.WithZoomPercent(pct, c.screen.Center(), c.limits)
	c.fitPending, c.zoomPending = false, false
	c.markDirty()
	return nil
}

// FitToContent fits the current layout into the screen.
func (c *Controller) FitToContent() {
	c.ensureLayout()
	c.fit()
	c.markDirty()
}

func (c *Controller) fit() {
	c.vp = viewport.Fit(c.current.Bounds, c.screen.W, c.screen.H, c.padding, c.limits)
	c.fitPending = false
}

// applyInitialZoom scales the first fit of a loaded tree to the configured
// zoom percentage. 100 keeps the fit.
func (c *Controller) applyInitialZoom() {
	if c.zoomPending && c.cfg.ZoomPercent != 100 {
		c.vp = c.vp.WithZoomPercent(c.cfg.ZoomPercent, c.screen.Center(), c.limits)
	}
	c.zoomPending = false
}

// =============================================================================
// Frames
// =============================================================================

func (c *Controller) markDirty() { c.dirty = true }

// restructure marks a change to the visible node set. The view refits to
// the new bounds on the next pass.
func (c *Controller) restructure() {
	c.fitPending = true
	c.markDirty()
}

// Dirty reports whether a mutation is waiting for the next frame.
func (c *Controller) Dirty() bool { return c.dirty }

// Frame runs the pending layout pass, if any, and returns the scene to draw.
// Any number of mutations between two frames cost a single pass.
func (c *Controller) Frame() render.Scene {
	c.ensureLayout()
	return c.Scene()
}

// Layout returns the current geometric tree, running a pending pass first.
func (c *Controller) Layout() *layout.Layout {
	c.ensureLayout()
	return c.current
}

func (c *Controller) ensureLayout() {
	if !c.dirty {
		return
	}
	c.dirty = false
	if c.root == nil {
		c.current = layout.Empty()
		return
	}

	opts := append([]layout.Option{}, c.layoutOpts...)
	opts = append(opts, layout.WithOverrides(c.liveOverrides()))
	l, err := layout.Compute(c.root, c.collapse, c.cfg.DetailLevel, opts...)
	c.passes++
	if err != nil {
		c.logger.Warn("layout failed", "error", err)
		c.clearTree()
		c.status, c.loadErr = StatusFailed, err
		return
	}
	c.current = l
	if c.fitPending && c.screen.W > 0 && c.screen.H > 0 {
		c.fit()
		c.applyInitialZoom()
	}
}

// liveOverrides merges committed overrides with a drag in progress.
func (c *Controller) liveOverrides() layout.Overrides {
	if c.drag == nil || c.drag.kind != dragNode || !c.drag.moved {
		return c.overrides
	}
	o := c.overrides.Clone()
	o[c.drag.id] = c.drag.pos
	return o
}

// Scene returns the scene for the current state without running a pass.
func (c *Controller) Scene() render.Scene {
	s := render.Scene{
		Layout: c.current,
		Index:  c.index,
		States: make(map[string]render.State, 2),
		Theme:  c.theme,
	}
	if c.hover != "" {
		s.States[c.hover] = render.StateHover
	}
	if c.selected != "" {
		s.States[c.selected] = render.StateSelected
	}

	switch c.status {
	case StatusIdle:
		s.Status, s.Message = render.StatusEmpty, "No organization selected."
	case StatusLoading:
		s.Status = render.StatusLoading
	case StatusEmpty:
		s.Status = render.StatusEmpty
		if c.loadErr != nil {
			s.Message = errors.UserMessage(c.loadErr)
		}
	case StatusFailed:
		s.Status, s.Message = render.StatusError, describeLoadError(c.loadErr)
	default:
		s.Status = render.StatusReady
	}
	return s
}

func describeLoadError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, errors.ErrCodeTimeout):
		return "The request timed out."
	case errors.Is(err, errors.ErrCodeStructural):
		return "The hierarchy is malformed: " + errors.UserMessage(err)
	default:
		return err.Error()
	}
}
