package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kinship/pkg/observability"
	"github.com/matzehuels/kinship/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr  string
		input string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lineage over HTTP",
		Example: `  kinship serve --addr :9000
  kinship serve --file lineage.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.Config.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), input)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&input, "file", "", "lineage file (overrides the configured source)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, input string) error {
	runner, err := c.newRunner(ctx, input, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	sc := c.Config.Server
	cfg := server.Config{
		Addr:         sc.Addr,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
	}
	if sc.MetricsEnabled() {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		hooks := observability.NewPrometheusHooks(reg)
		observability.SetBuildHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
		defer observability.Reset()
		cfg.Gatherer = reg
	}

	c.Logger.Info("serving lineage",
		"source", c.Config.Source.Kind,
		"cache", c.Config.Cache.Backend,
		"metrics", sc.MetricsEnabled())
	return server.New(runner, c.Logger, cfg).Serve(ctx)
}
