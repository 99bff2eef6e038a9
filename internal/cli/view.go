package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orgchart/pkg/hierarchy"
	"github.com/matzehuels/orgchart/pkg/interaction"
	"github.com/matzehuels/orgchart/pkg/render"
)

// termCellWidth converts configured pixel distances to
// terminal columns.
const termCellWidth = 8.0

// viewCommand creates the interactive terminal viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		mode   string
		detail int
		edit   bool
		list   bool
		src    sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "view [organization]",
		Short: "Browse an organization chart interactively in the terminal",
		Long: `Browse an organization chart interactively in the terminal.

Click a node's marker to expand or collapse it, click a node to select it,
drag to pan (or, with --edit, to move nodes) and scroll to zoom. Press ? for
all key bindings.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config()
			vc := interaction.ViewConfig{
				OrganizationID: cfg.View.Organization,
				ViewMode:       hierarchy.ViewMode(cfg.View.Mode),
				DetailLevel:    cfg.View.DetailLevel,
				ZoomPercent:    cfg.View.ZoomPercent,
				ReadOnly:       cfg.View.ReadOnly,
			}
			if len(args) == 1 {
				vc.OrganizationID = args[0]
			}
			if vc.OrganizationID == "" && src.file != "" {
				vc.OrganizationID = orgFromPath(src.file)
			}
			if cmd.Flags().Changed("mode") {
				vc.ViewMode = hierarchy.ViewMode(mode)
			}
			if cmd.Flags().Changed("detail") {
				vc.DetailLevel = detail
			}
			if cmd.Flags().Changed("edit") {
				vc.ReadOnly = !edit
			}
			return c.runView(cmd.Context(), vc, list, src)
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "view mode: business, legal, territorial")
	cmd.Flags().IntVarP(&detail, "detail", "d", 0, "number of levels expanded by default")
	cmd.Flags().BoolVar(&edit, "edit", false, "allow dragging nodes to new positions")
	cmd.Flags().BoolVar(&list, "list", false, "start in list display mode")
	src.register(cmd)

	return cmd
}

func (c *CLI) runView(ctx context.Context, vc interaction.ViewConfig, list bool, src sourceFlags) error {
	cfg := c.config()
	theme, err := render.ThemeByName(cfg.View.Theme)
	if err != nil {
		return err
	}

	runner, cleanup, err := c.newRunner(ctx, src)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer cleanup()

	// The controller logs nothing while the alternate screen is active.
	ctrl, err := interaction.New(vc,
		interaction.WithLimits(cfg.Limits()),
		interaction.WithLayoutOptions(cfg.LayoutOptions()...),
		interaction.WithTheme(theme),
		interaction.WithFitPadding(cfg.Viewport.FitPadding/termCellWidth),
		interaction.WithDragThreshold(cfg.Viewport.DragThreshold/termCellWidth),
	)
	if err != nil {
		return err
	}
	if list {
		ctrl.SetDisplayMode(interaction.DisplayList)
	}

	base := c.baseOptions()
	load := func(ctx context.Context, req interaction.Request) (*hierarchy.OrgNode, error) {
		opts := base
		opts.OrganizationID = req.OrganizationID
		opts.ViewMode = string(req.ViewMode)
		return runner.Load(ctx, opts)
	}

	p := tea.NewProgram(newViewModel(ctx, ctrl, load),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}
