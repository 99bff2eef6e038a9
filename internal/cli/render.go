package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/pipeline"
)

// renderCommand creates the render command: load, lay out and render one
// organization's hierarchy to files.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr  string
		output      string
		collapseStr string
		expandStr   string
		src         sourceFlags
		opts        pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "render [organization]",
		Short: "Render an organization chart to SVG, PNG, PDF, JSON or text",
		Long: `Render an organization chart to SVG, PNG, PDF, JSON or text.

The hierarchy is loaded from the configured source (or --file), laid out
with the requested detail level and written to one file per format.

Formats whose backend is not installed (PDF needs rsvg-convert, the
nodelink type needs Graphviz) are written as an SVG placeholder explaining
what is missing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := c.baseOptions()
			mergeFlags(cmd, &base, opts)
			if len(args) == 1 {
				base.OrganizationID = args[0]
			}
			if base.OrganizationID == "" && src.file == "" {
				return errors.New(errors.ErrCodeInvalidInput, "no organization given (argument or view.organization in config)")
			}
			if base.OrganizationID == "" {
				base.OrganizationID = orgFromPath(src.file)
			}
			base.Formats = parseFormats(formatsStr)
			base.Collapse = parseIDs(collapseStr)
			base.Expand = parseIDs(expandStr)
			return c.runRender(cmd.Context(), base, src, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json, txt (comma-separated)")
	cmd.Flags().StringVar(&collapseStr, "collapse", "", "node ids to force collapsed (comma-separated)")
	cmd.Flags().StringVar(&expandStr, "expand", "", "node ids to force expanded (comma-separated)")
	registerViewFlags(cmd, &opts)
	src.register(cmd)

	return cmd
}

// registerViewFlags binds the layout and render flags shared by render and
// layout.
func registerViewFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVarP(&opts.ViewMode, "mode", "m", "", "view mode: business, legal, territorial")
	cmd.Flags().IntVarP(&opts.DetailLevel, "detail", "d", 0, "number of levels expanded by default")
	cmd.Flags().BoolVar(&opts.ExpandAll, "expand-all", false, "expand every level")
	cmd.Flags().StringVarP(&opts.VizType, "type", "t", "", "visualization type: tree (default), nodelink")
	cmd.Flags().StringVar(&opts.Theme, "theme", "", "color theme: light, dark")
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show roles and e-mail addresses (nodelink)")
	cmd.Flags().BoolVar(&opts.Interactive, "interactive", false, "embed hover/selection styles in SVG output")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the hierarchy cache")
}

// mergeFlags copies explicitly set flags over the config-derived options.
func mergeFlags(cmd *cobra.Command, dst *pipeline.Options, flags pipeline.Options) {
	set := cmd.Flags().Changed
	if set("mode") {
		dst.ViewMode = flags.ViewMode
	}
	if set("detail") {
		dst.DetailLevel = flags.DetailLevel
	}
	if set("theme") {
		dst.Theme = flags.Theme
	}
	dst.ExpandAll = flags.ExpandAll
	dst.VizType = flags.VizType
	dst.Scale = flags.Scale
	dst.Detailed = flags.Detailed
	dst.Interactive = flags.Interactive
	dst.Refresh = flags.Refresh
}

// orgFromPath derives an organization id from a document file name.
func orgFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, src sourceFlags, output string) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	runner, cleanup, err := c.newRunner(ctx, src)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer cleanup()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s (%s)...", opts.OrganizationID, opts.ViewMode))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.stage("pipeline finished",
		"load", result.Stats.LoadTime, "layout", result.Stats.LayoutTime, "render", result.Stats.RenderTime,
		"layout_cached", result.CacheInfo.LayoutHit, "render_cached", result.CacheInfo.RenderHit)

	written, err := writeArtifacts(result, opts.Formats, outputBase(output, opts), output)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d artifact(s)", len(written)))

	if result.Empty {
		printWarning("Organization %s has no %s hierarchy; wrote the empty-state placeholder", opts.OrganizationID, opts.ViewMode)
	}
	printSuccess("Render complete")
	printArtifacts(written)
	printStats(result.Stats.NodeCount, result.Stats.VisibleCount, result.CacheInfo.RenderHit)
	for _, f := range opts.Formats {
		if reason, ok := result.Unavailable[f]; ok {
			printWarning("%s", errors.UserMessage(reason))
		}
	}
	printNewline()
	printNextStep("Browse interactively", fmt.Sprintf("%s view %s --mode %s", appName, opts.OrganizationID, opts.ViewMode))
	return nil
}

// outputBase derives the base output path: the --output value without a
// known format extension, or "<org>-<mode>".
func outputBase(output string, opts pipeline.Options) string {
	if output == "" {
		return opts.OrganizationID + "-" + opts.ViewMode
	}
	ext := filepath.Ext(output)
	if slices.Contains(pipeline.ValidFormats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// artifactPath returns the file name for one format. A placeholder standing
// in for a missing backend is SVG regardless of the requested format.
func artifactPath(base, format string, unavailable bool) string {
	if unavailable {
		return base + "." + format + ".svg"
	}
	return base + "." + format
}

// writtenArtifact records one file produced by writeArtifacts.
type writtenArtifact struct {
	Format      string
	Path        string
	Size        int
	Placeholder bool
}

// writeArtifacts writes every requested format. With a single format and an
// explicit --output, that exact path is used.
func writeArtifacts(result *pipeline.Result, formats []string, base, output string) ([]writtenArtifact, error) {
	var written []writtenArtifact
	for _, f := range formats {
		data, ok := result.Artifacts[f]
		if !ok {
			continue
		}
		_, unavailable := result.Unavailable[f]
		path := artifactPath(base, f, unavailable)
		if len(formats) == 1 && output != "" && !unavailable {
			path = output
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return written, fmt.Errorf("create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, writtenArtifact{Format: f, Path: path, Size: len(data), Placeholder: unavailable})
	}
	return written, nil
}
