package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-gov/internal/cli/render"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	var (
		force       bool
		allocations []string
		noDelegate  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Deploy a fresh token, timelock, governor and box",
		Long: `Deploy a fresh governance system using governance.toml (or defaults) and
persist it under the data directory.

Initial token grants are given with --alloc account=amount. Each allocated
account self-delegates unless --no-delegate is set.`,
		Example: `  trebgov init --alloc deployer=1000000 --alloc 0xA000000000000000000000000000000000000001=500`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.InitGovernanceParams{Force: force}
			for _, s := range allocations {
				a, err := parseAllocation(app, s, !noDelegate)
				if err != nil {
					return err
				}
				params.Allocations = append(params.Allocations, a)
			}

			result, err := app.InitGovernance.Run(cmd.Context(), params)
			if err != nil {
				return err
			}
			return renderResult(cmd, app, result, render.NewStatusRenderer(cmd.OutOrStdout()).RenderInit)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing deployment")
	cmd.Flags().StringArrayVar(&allocations, "alloc", nil, "Initial grant as account=amount (repeatable)")
	cmd.Flags().BoolVar(&noDelegate, "no-delegate", false, "Do not self-delegate allocated tokens")

	return cmd
}
