package commands

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/retrodex-labs/retrodex/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog API server",
		Long: `Run the HTTP API server, exposing the catalog as JSON under /api/v1.

The server applies pending schema migrations on startup and shuts down
gracefully on SIGINT or SIGTERM.`,
		Example: `  # Serve on the configured address
  retrodex serve

  # Serve on a specific port
  retrodex serve --addr :9090`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := cc.DB.MigrateUp(); err != nil {
				return err
			}

			listenAddr := addr
			if listenAddr == "" {
				listenAddr = cc.Cfg.ServerAddr
			}

			srv := server.NewServer(server.Config{
				Store:  cc.Store,
				Addr:   listenAddr,
				Logger: cc.Logger,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Serve(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server_addr from config)")

	return cmd
}
