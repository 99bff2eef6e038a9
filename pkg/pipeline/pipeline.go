// Package pipeline runs the load → layout → render pipeline shared by the
// CLI and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: fetch the hierarchy of one organization and view mode
//  2. Layout: place the visible nodes of the tree
//  3. Render: produce SVG, PNG, PDF, layout JSON or a text outline
//
// Layouts and artifacts are cached by content hash, so an unchanged
// hierarchy never pays for layout or rendering twice.
//
// # Usage
//
//	runner := pipeline.NewRunner(l, cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    OrganizationID: "42",
//	    ViewMode:       "business",
//	    Formats:        []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
//
// Formats whose backend is missing on this machine still produce an
// artifact: an SVG placeholder explaining what to install. Those formats are
// listed in Result.Unavailable.
package pipeline

import (
	"slices"
	"time"

	"github.com/matzehuels/orgchart/pkg/cache"
	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/hierarchy"
	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/render"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultDetailLevel is the number of levels expanded on first display.
	DefaultDetailLevel = 2

	// DefaultScale is the raster scale factor for PNG output.
	DefaultScale = 2.0

	// DefaultTheme is the default color theme.
	DefaultTheme = "light"
)

// Format constants for output formats. svg, png and pdf are drawn charts;
// json is the layout itself and txt an indented outline.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatText = "txt"
)

// ValidFormats lists the supported output formats in display order.
var ValidFormats = []string{FormatSVG, FormatPNG, FormatPDF, FormatJSON, FormatText}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	OrganizationID string `json:"organization_id"`
	ViewMode       string `json:"view_mode,omitempty"`
	Refresh        bool   `json:"refresh,omitempty"`

	// Layout options
	DetailLevel int      `json:"detail_level,omitempty"`
	ExpandAll   bool     `json:"expand_all,omitempty"`
	Collapse    []string `json:"collapse,omitempty"` // ids forced collapsed
	Expand      []string `json:"expand,omitempty"`   // ids forced expanded
	NodeWidth   float64  `json:"node_width,omitempty"`
	NodeHeight  float64  `json:"node_height,omitempty"`
	HGap        float64  `json:"hgap,omitempty"`
	VGap        float64  `json:"vgap,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	VizType     string   `json:"viz_type,omitempty"`
	Theme       string   `json:"theme,omitempty"`
	Scale       float64  `json:"scale,omitempty"`
	Detailed    bool     `json:"detailed,omitempty"`
	Interactive bool     `json:"interactive,omitempty"`

	// RenderOptions are appended to the render options derived above.
	RenderOptions []render.Option `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Root is the loaded hierarchy; nil when the organization has no data.
	Root *hierarchy.OrgNode

	// HierarchyHash is the content hash of Root.
	HierarchyHash string

	// Layout is the computed layout of the visible nodes.
	Layout *layout.Layout

	// Empty is set when the source returned no hierarchy. Artifacts then
	// hold the "no data" placeholder.
	Empty bool

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Unavailable maps formats whose backend is missing to the reason. The
	// artifact for such a format is an SVG placeholder.
	Unavailable map[string]error

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	VisibleCount int
	LoadTime     time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether layout result came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json, txt)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. Calling it again is a no-op.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks the organization id and view mode.
func (o *Options) ValidateForLoad() error {
	if err := errors.ValidateOrganizationID(o.OrganizationID); err != nil {
		return err
	}
	if o.ViewMode == "" {
		o.ViewMode = string(hierarchy.ViewBusiness)
	}
	mode, err := hierarchy.ParseViewMode(o.ViewMode)
	if err != nil {
		return err
	}
	o.ViewMode = string(mode)
	return nil
}

// ValidateForLayout applies layout defaults and validates node ids.
func (o *Options) ValidateForLayout() error {
	if o.DetailLevel <= 0 {
		o.DetailLevel = DefaultDetailLevel
	}
	for _, id := range slices.Concat(o.Collapse, o.Expand) {
		if err := errors.ValidateNodeID(id); err != nil {
			return err
		}
	}
	d := layout.DefaultConfig()
	if o.NodeWidth <= 0 {
		o.NodeWidth = d.NodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = d.NodeHeight
	}
	if o.HGap <= 0 {
		o.HGap = d.HGap
	}
	if o.VGap <= 0 {
		o.VGap = d.VGap
	}
	return nil
}

// ValidateForRender applies render defaults and validates formats, viz type
// and theme.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	viz, err := render.ParseVizType(o.VizType)
	if err != nil {
		return err
	}
	o.VizType = string(viz)
	if o.Theme == "" {
		o.Theme = DefaultTheme
	}
	if _, err := render.ThemeByName(o.Theme); err != nil {
		return err
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	return nil
}

// CollapseState builds the explicit collapse entries. Expand wins over
// Collapse for an id named in both.
func (o *Options) CollapseState() layout.CollapseState {
	s := make(layout.CollapseState, len(o.Collapse)+len(o.Expand))
	for _, id := range o.Collapse {
		s[id] = true
	}
	for _, id := range o.Expand {
		s[id] = false
	}
	return s
}

// LayoutConfig returns the node geometry.
func (o *Options) LayoutConfig() layout.Config {
	return layout.Config{
		NodeWidth:  o.NodeWidth,
		NodeHeight: o.NodeHeight,
		HGap:       o.HGap,
		VGap:       o.VGap,
	}
}

// detailFor returns the effective detail level for root.
func (o *Options) detailFor(root *hierarchy.OrgNode) int {
	if o.ExpandAll {
		return max(hierarchy.Depth(root), 1)
	}
	return o.DetailLevel
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts(detail int) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		DetailLevel: detail,
		Collapse:    o.CollapseState(),
		NodeWidth:   o.NodeWidth,
		NodeHeight:  o.NodeHeight,
		HGap:        o.HGap,
		VGap:        o.VGap,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      format,
		VizType:     o.VizType,
		Theme:       o.Theme,
		Scale:       o.Scale,
		Detailed:    o.Detailed,
		Interactive: o.Interactive,
	}
}

// renderOptions converts the render options for render.Select.
func (o *Options) renderOptions() []render.Option {
	opts := []render.Option{render.WithScale(o.Scale)}
	if o.Detailed {
		opts = append(opts, render.WithDetailedLabels())
	}
	if o.Interactive {
		opts = append(opts, render.WithSVGInteraction())
	}
	return append(opts, o.RenderOptions...)
}
