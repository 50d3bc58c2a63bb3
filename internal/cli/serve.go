package cli

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pathtrace/pkg/api"
	"github.com/matzehuels/pathtrace/pkg/observability"
	"github.com/matzehuels/pathtrace/pkg/observability/prom"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search API over HTTP",
		Long: `Start the HTTP API. Graphs are posted inline with each request; results are
cached in the configured backend, which should be redis when several
instances share load.

Endpoints: GET /healthz, POST /v1/search, POST /v1/nodes, GET /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	cfg := c.Config.Server
	if addr != "" {
		cfg.Addr = addr
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prom.New(prometheus.DefaultRegisterer).Register()
	defer observability.Reset()

	handlers := api.New(runner, c.Logger, api.Options{
		MaxBodyBytes: cfg.MaxBodyBytes,
		Metrics:      promhttp.Handler(),
	})
	srv := api.NewServer(handlers.Router(), c.Logger, api.ServerOptions{
		Addr:         cfg.Addr,
		ReadTimeout:  cfg.ReadTimeout.Duration,
		WriteTimeout: cfg.WriteTimeout.Duration,
	})

	printInfo("Serving on %s", StyleLink.Render(displayAddr(cfg.Addr)))
	printDetail("cache: %s", c.Config.Cache.Backend)
	return srv.Run(ctx)
}

// displayAddr turns ":8080" into a clickable local URL.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
