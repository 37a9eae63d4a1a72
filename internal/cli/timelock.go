package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-gov/internal/cli/render"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// NewTimelockCmd creates the timelock command group
func NewTimelockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timelock",
		Short: "Inspect and operate the timelock",
	}

	cmd.AddCommand(
		newTimelockShowCmd(),
		newTimelockCancelCmd(),
		newTimelockDepositCmd(),
	)

	return cmd
}

func newTimelockShowCmd() *cobra.Command {
	var pending bool

	cmd := &cobra.Command{
		Use:   "show [operation]",
		Short: "Show timelock settings and scheduled operations",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ShowTimelock.Run(cmd.Context(), usecase.ShowTimelockParams{
				Operation:   proposalRef(args),
				PendingOnly: pending,
			})
			if err != nil {
				return err
			}
			return renderResult(cmd, app, result, render.NewTimelockRenderer(cmd.OutOrStdout()).RenderTimelock)
		},
	}

	cmd.Flags().BoolVar(&pending, "pending", false, "Only show waiting and ready operations")

	return cmd
}

func newTimelockCancelCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "cancel <operation>",
		Short: "Cancel a pending timelock operation (canceller role)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.CancelOperation.Run(cmd.Context(), usecase.CancelOperationParams{
				Operation: args[0],
				Yes:       yes,
			})
			if err != nil {
				return err
			}
			return renderResult(cmd, app, result, render.NewTimelockRenderer(cmd.OutOrStdout()).RenderCancelOperation)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	return cmd
}

func newTimelockDepositCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Fund the timelock treasury with native value",
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

			result, err := app.Deposit.Run(cmd.Context(), usecase.DepositParams{Amount: value})
			if err != nil {
				return err
			}
			return renderResult(cmd, app, result, render.NewTimelockRenderer(cmd.OutOrStdout()).RenderDeposit)
		},
	}
}
