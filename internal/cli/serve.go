package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orgchart/internal/server"
	"github.com/matzehuels/orgchart/pkg/observability/prom"
)

// serveCommand creates the serve command that hosts charts over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		noMetrics bool
		src       sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve charts, layouts and hit-tests over HTTP",
		Long: `Serve charts, layouts and hit-tests over HTTP.

Routes:
  GET /healthz
  GET /metrics
  GET /api/orgs/{org}/{mode}/chart.{svg|png|pdf|json|txt}
  GET /api/orgs/{org}/{mode}/layout
  GET /api/orgs/{org}/{mode}/hit?x=&y=

Chart and layout routes accept detail, expand_all, collapse, expand, theme,
type, scale, detailed, interactive and refresh query parameters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, !noMetrics, src)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose Prometheus metrics")
	src.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, metrics bool, src sourceFlags) error {
	cfg := c.config()
	if addr == "" {
		addr = cfg.Server.Addr
	}

	runner, cleanup, err := c.newRunner(ctx, src)
	if err != nil {
		return err
	}
	defer cleanup()

	var reg *prom.Registry
	if metrics {
		reg = prom.NewRegistry()
		reg.Install()
	}

	srv := server.New(runner, reg, c.Logger, c.baseOptions())
	printInfo("Serving %s on %s", StyleHighlight.Render(cfg.Source.Kind), StyleValue.Render(addr))
	return srv.Run(ctx, server.Config{
		Addr:         addr,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	})
}
