package main

import (
	"github.com/spf13/cobra"

	"github.com/yungbote/idea2sns-backend/internal/app"
	"github.com/yungbote/idea2sns-backend/internal/platform/shutdown"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			log, err := newLogger(cfg)
			if err != nil {
				return err
			}

			ctx, stop := shutdown.NotifyContext(cmd.Context())
			defer stop()

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				log.Error("app init failed", "error", err)
				log.Sync()
				return err
			}
			defer a.Close()

			a.Start(ctx)
			return a.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}
