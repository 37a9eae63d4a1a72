package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	var poll time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only monitoring API and metrics",
		Long: `Serve a read-only HTTP API over the persisted governance state:

  GET /api/v1/proposals[?state=active,queued]
  GET /api/v1/proposals/:id
  GET /api/v1/operations[?pending=true]
  GET /api/v1/operations/:id
  GET /api/v1/roles
  GET /api/v1/events[?name=&proposal=&after=&limit=]
  GET /metrics
  GET /healthz

The event log is polled so metrics follow commands run from other shells.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if poll > 0 {
				app.Server.SetPollInterval(poll)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Serving governance API on http://%s\n", app.Config.ListenAddr)
			return app.Server.Run(ctx)
		},
	}

	cmd.Flags().String("listen", "127.0.0.1:8645", "Address to listen on")
	cmd.Flags().DurationVar(&poll, "poll", 0, "Event log polling interval (default 2s)")

	return cmd
}
