package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-gov/internal/cli/render"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// NewRolesCmd creates the roles command group
func NewRolesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Inspect and change the timelock role table",
		Long: `Inspect and change the timelock role table.

Roles are admin, proposer, executor and canceller. Direct grants and revokes
need the admin role. After the deployer renounces admin only the timelock
itself administers roles, so changes must go through a proposal.`,
	}

	cmd.AddCommand(
		newRolesListCmd(),
		newRoleChangeCmd(usecase.RoleGrant, "grant <role> <account>", "Grant a role (admin only)"),
		newRoleChangeCmd(usecase.RoleRevoke, "revoke <role> <account>", "Revoke a role (admin only)"),
		newRoleChangeCmd(usecase.RoleRenounce, "renounce <role>", "Renounce a role held by the acting account"),
	)

	return cmd
}

func newRolesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List role members",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ListRoles.Run(cmd.Context())
			if err != nil {
				return err
			}
			return renderResult(cmd, app, result, render.NewTimelockRenderer(cmd.OutOrStdout()).RenderRoles)
		},
	}
}

func newRoleChangeCmd(action usecase.RoleAction, use, short string) *cobra.Command {
	var yes bool

	nargs := 2
	if action == usecase.RoleRenounce {
		nargs = 1
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			role, err := models.ParseRole(args[0])
			if err != nil {
				return err
			}
			params := usecase.ManageRoleParams{Action: action, Role: role, Yes: yes}
			if nargs == 2 {
				if params.Account, err = parseAccount(app, args[1]); err != nil {
					return err
				}
			}

			result, err := app.ManageRole.Run(cmd.Context(), params)
			if err != nil {
				return err
			}
			return renderResult(cmd, app, result, render.NewTimelockRenderer(cmd.OutOrStdout()).RenderRoleChange)
		},
	}

	if action == usecase.RoleRenounce {
		cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	}

	return cmd
}
