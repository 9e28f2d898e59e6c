package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"sourcetalk/internal/config"
	"sourcetalk/internal/logging"
	"sourcetalk/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the listings and the chat relay as a JSON API",
	Long: `Starts the JSON backend:

  GET  /api/catalogs, /api/materials, /api/suppliers
  POST /api/chat
  GET  /healthz, /metrics

The config file is watched; content, relay and logging settings are
reloaded when it changes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateContent(); err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		srv := server.New(cfg)

		ctx, cancel := signalContext()
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return srv.Run(gctx)
		})
		g.Go(func() error {
			return config.Watch(gctx, configPath, func(next *config.Config) {
				if err := logging.Initialize(next.LoggingOptions()); err != nil {
					logging.ConfigWarn("logging not reloaded: %v", err)
				}
				srv.Reload(next)
			})
		})
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: from config)")
}
