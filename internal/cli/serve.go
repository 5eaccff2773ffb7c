package cli

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/wordpath/internal/server"
	"github.com/matzehuels/wordpath/pkg/cache"
	"github.com/matzehuels/wordpath/pkg/config"
	"github.com/matzehuels/wordpath/pkg/observability/prom"
	"github.com/matzehuels/wordpath/pkg/pipeline"
)

// redisKeyPrefix scopes keys when several tools share one redis instance.
const redisKeyPrefix = appName

type serveFlags struct {
	addr     string
	redisURL string
	noCache  bool
	noWatch  bool
}

// serveCommand creates the HTTP server command.
func (c *CLI) serveCommand() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layouts, renders and live diagram sessions over HTTP",
		Long: `Serve layouts, renders and live diagram sessions over HTTP.

Endpoints:
  GET  /healthz            liveness and build info
  POST /v1/layout          route JSON in, layout JSON out
  POST /v1/render          route JSON in, artifact out (?format=svg|png|pdf|dot|json)
  GET  /v1/diagrams/ws     live diagram session over WebSocket
  GET  /metrics            Prometheus metrics

With --config the file is watched and new force constants apply to
sessions opened after the change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = flags.addr
			}
			if cmd.Flags().Changed("redis-url") {
				cfg.Server.RedisURL = flags.redisURL
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg, &flags)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", config.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&flags.redisURL, "redis-url", "", "share the cache through redis (redis://host:6379/0)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.noWatch, "no-watch", false, "do not reload --config on change")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.Config, flags *serveFlags) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom.Install(prom.New(reg))

	runner, err := c.serveRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	srv := server.New(server.Options{
		Config:   cfg,
		Runner:   runner,
		Logger:   c.Logger,
		Gatherer: reg,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx) })
	if c.configPath != "" && !flags.noWatch {
		g.Go(func() error {
			return config.Watch(gctx, c.configPath, c.Logger, srv.SetConfig)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return ctx.Err()
}

// serveRunner picks redis when configured, else the local file cache.
func (c *CLI) serveRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	if noCache || cfg.Server.RedisURL == "" {
		return c.newRunner(noCache)
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	rc, err := cache.NewRedisCache(dialCtx, cfg.Server.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	c.Logger.Info("using redis cache", "url", redactURL(cfg.Server.RedisURL))
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), redisKeyPrefix)
	return pipeline.NewRunner(cache.Observed(rc), keyer, c.Logger), nil
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "invalid url"
	}
	return u.Redacted()
}
