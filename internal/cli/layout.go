package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/hierarchy"
	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/pipeline"
)

// layoutCommand creates the layout command for exporting node geometry.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output      string
		collapseStr string
		expandStr   string
		src         sourceFlags
		opts        pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "layout [organization]",
		Short: "Compute the chart layout and write it as JSON",
		Long: `Compute the chart layout and write it as JSON.

The output lists every visible node's box in world coordinates, the routed
reporting lines and the overall bounds. It is the same document 'render -f json'
produces and what the HTTP server returns from /layout.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base := c.baseOptions()
			mergeFlags(cmd, &base, opts)
			if len(args) == 1 {
				base.OrganizationID = args[0]
			}
			if base.OrganizationID == "" && src.file != "" {
				base.OrganizationID = orgFromPath(src.file)
			}
			base.Collapse = parseIDs(collapseStr)
			base.Expand = parseIDs(expandStr)
			return c.runLayout(cmd.Context(), base, src, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <org>-<mode>.layout.json)")
	cmd.Flags().StringVar(&collapseStr, "collapse", "", "node ids to force collapsed (comma-separated)")
	cmd.Flags().StringVar(&expandStr, "expand", "", "node ids to force expanded (comma-separated)")
	registerViewFlags(cmd, &opts)
	src.register(cmd)

	return cmd
}

// runLayout loads the hierarchy, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, src sourceFlags, output string) error {
	if err := opts.ValidateForLoad(); err != nil {
		return err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return err
	}

	runner, cleanup, err := c.newRunner(ctx, src)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer cleanup()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Loading %s hierarchy of %s...", opts.ViewMode, opts.OrganizationID))
	spinner.Start()
	defer spinner.Stop()

	root, err := runner.Load(ctx, opts)
	if err != nil && !errors.Is(err, errors.ErrCodeEmptyData) {
		spinner.StopWithError("Load failed")
		return err
	}
	prog.stage("loaded hierarchy", "nodes", hierarchy.Count(root))
	spinner.SetMessage(fmt.Sprintf("Computing layout for %d nodes...", hierarchy.Count(root)))
	l, cacheHit, err := runner.GenerateLayoutWithCacheInfo(ctx, root, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = opts.OrganizationID + "-" + opts.ViewMode + ".layout.json"
	}
	if err := layout.WriteFile(l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	prog.done("Layout complete")
	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(hierarchy.Count(root), l.Len(), cacheHit)
	printNewline()
	printNextStep("Render", fmt.Sprintf("%s render %s --mode %s", appName, opts.OrganizationID, opts.ViewMode))
	return nil
}
