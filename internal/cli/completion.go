package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/orgchart/pkg/config"
	"github.com/matzehuels/orgchart/pkg/hierarchy"
	"github.com/matzehuels/orgchart/pkg/pipeline"
	"github.com/matzehuels/orgchart/pkg/render"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for orgchart.

  $ source <(orgchart completion bash)
  $ orgchart completion zsh > "${fpath[1]}/_orgchart"
  $ orgchart completion fish > ~/.config/fish/completions/orgchart.fish
  PS> orgchart completion powershell | Out-String | Invoke-Expression

Flag values such as --mode, --format, --theme and --source complete too.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// flagValues lists the fixed choices of enumerated flags.
func flagValues() map[string][]string {
	modes := make([]string, 0, 3)
	for _, m := range hierarchy.ViewModes() {
		modes = append(modes, string(m))
	}
	return map[string][]string{
		"mode":       modes,
		"format":     pipeline.ValidFormats,
		"type":       {string(render.VizTree), string(render.VizNodeLink)},
		"theme":      render.ThemeNames(),
		"source":     {config.SourceDemo, config.SourceHTTP, config.SourceFile, config.SourceMongo},
		"log-format": {LogFormatText, LogFormatJSON, LogFormatLogfmt},
	}
}

// registerCompletions attaches value completion to every enumerated flag
// defined on cmd or its subcommands.
func registerCompletions(cmd *cobra.Command) {
	values := flagValues()
	var walk func(*cobra.Command)
	walk = func(c *cobra.Command) {
		for name, choices := range values {
			if c.Flags().Lookup(name) == nil && c.PersistentFlags().Lookup(name) == nil {
				continue
			}
			_ = c.RegisterFlagCompletionFunc(name, cobra.FixedCompletions(choices, cobra.ShellCompDirectiveNoFileComp))
		}
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(cmd)
}
