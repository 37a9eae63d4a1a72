package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-gov/internal/cli/render"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show contracts, settings, clock and proposal counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.GovernanceStatus.Run(cmd.Context())
			if err != nil {
				return err
			}
			return renderResult(cmd, app, result, render.NewStatusRenderer(cmd.OutOrStdout()).RenderStatus)
		},
	}
}
