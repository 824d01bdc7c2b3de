package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"mom-assistant/internal/server"
)

const telemetryFlushTimeout = 5 * time.Second

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), func(a *app) error {
				srv, err := server.New(*c.cfg, a.pipeline, a.recipes)
				if err != nil {
					return err
				}
				return srv.Run(cmd.Context())
			})
		},
	}
	cmd.Flags().Int("port", 0, "override server port from configuration")
	return cmd
}
