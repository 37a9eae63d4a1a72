package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-gov/internal/cli/render"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// NewBoxCmd creates the box command group
func NewBoxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "box",
		Short: "Read or write the timelock-owned box",
		Long: `The box holds a single value owned by the timelock. Reading is open to
anyone. A direct write fails with an authorization error unless it comes
from the timelock, which is how a governance-executed store reaches it.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the stored value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.GetBox.Run(cmd.Context())
			if err != nil {
				return err
			}
			return renderResult(cmd, app, result, render.NewStatusRenderer(cmd.OutOrStdout()).RenderBox)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <value>",
		Short: "Store a value directly as the acting account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			value, err := parseValue(args[0])
			if err != nil {
				return err
			}

			result, err := app.SetBox.Run(cmd.Context(), usecase.SetBoxParams{Value: value})
			if err != nil {
				return err
			}
			return renderResult(cmd, app, result, render.NewStatusRenderer(cmd.OutOrStdout()).RenderBox)
		},
	})

	return cmd
}
