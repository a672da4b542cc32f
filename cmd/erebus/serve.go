package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/erebus-go/erebus/internal/app"
	"github.com/erebus-go/erebus/internal/config"
)

type serveOptions struct {
	dir       string
	port      int
	host      string
	hotReload bool
	serialize bool
	metrics   bool
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site",
		Long: `Serve the site described by erebus.json or erebus.yaml.

The site root is the nearest directory, starting at --dir, that holds a
configuration file. With hot reload, fragment edits re-serve open pages,
style edits reload stylesheets and configuration edits reload the pages.

Examples:
  erebus serve
  erebus serve --port=8080 --host=0.0.0.0
  erebus serve --hot-reload=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServeConfig(cmd, opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", ".", "Site directory")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "Port to run on (default from config)")
	cmd.Flags().StringVarP(&opts.host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().BoolVar(&opts.hotReload, "hot-reload", true, "Reload pages when files change")
	cmd.Flags().BoolVar(&opts.serialize, "serialize", false, "Cancel the previous navigation when a new one starts")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Expose Prometheus metrics")
	return cmd
}

// loadServeConfig loads the site config and applies the flags that were
// set on the command line.
func loadServeConfig(cmd *cobra.Command, opts serveOptions) (*config.Config, error) {
	root, err := config.FindSiteRoot(opts.dir)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Dev.Port = opts.port
	}
	if flags.Changed("host") {
		cfg.Dev.Host = opts.host
	}
	if flags.Changed("hot-reload") {
		cfg.Dev.HotReload = opts.hotReload
	}
	if flags.Changed("serialize") {
		cfg.Router.Serialize = opts.serialize
	}
	if flags.Changed("metrics") {
		cfg.Metrics.Enabled = opts.metrics
	}
	return cfg, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := slog.Default()
	a, err := app.New(cfg, app.Options{Logger: logger})
	if err != nil {
		return err
	}

	logger.Info("serving site",
		"name", cfg.Name,
		"config", cfg.Path(),
		"routes", len(cfg.Routes),
		"url", cfg.DevURL(),
		"hot_reload", cfg.Dev.HotReload,
	)
	return a.Run(ctx)
}
