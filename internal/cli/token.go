package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-gov/internal/cli/render"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// NewTokenCmd creates the token command group
func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the voting token",
		Long: `Mint, burn, transfer and delegate the voting token.

Voting power only follows delegated balances: holders must delegate, to
themselves or another account, before their tokens count in a vote.`,
	}

	cmd.AddCommand(
		newTokenActionCmd(usecase.TokenMint, "mint <to> <amount>", "Mint tokens (deployer only)", 2),
		newTokenActionCmd(usecase.TokenBurn, "burn <amount>", "Burn tokens held by the acting account", 1),
		newTokenActionCmd(usecase.TokenTransfer, "transfer <to> <amount>", "Transfer tokens from the acting account", 2),
		newTokenActionCmd(usecase.TokenDelegate, "delegate <delegatee>", "Delegate the acting account's voting power", 1),
		newBalanceCmd(),
	)

	return cmd
}

func newTokenActionCmd(action usecase.TokenAction, use, short string, nargs int) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.ManageTokenParams{Action: action}
			var to, amount string
			switch action {
			case usecase.TokenBurn:
				amount = args[0]
			case usecase.TokenDelegate:
				to = args[0]
			default:
				to, amount = args[0], args[1]
			}
			if to != "" {
				if params.To, err = parseAccount(app, to); err != nil {
					return err
				}
			}
			if amount != "" {
				if params.Amount, err = parseAmount(amount); err != nil {
					return err
				}
			}

			result, err := app.ManageToken.Run(cmd.Context(), params)
			if err != nil {
				return err
			}
			return renderResult(cmd, app, result, render.NewTokenRenderer(cmd.OutOrStdout()).RenderAction)
		},
	}
}

func newBalanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balance [account...]",
		Short: "Show balances, delegates and voting power",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.GetBalancesParams{}
			for _, arg := range args {
				addr, err := parseAccount(app, arg)
				if err != nil {
					return err
				}
				params.Accounts = append(params.Accounts, addr)
			}

			result, err := app.GetBalances.Run(cmd.Context(), params)
			if err != nil {
				return err
			}
			return renderResult(cmd, app, result, render.NewTokenRenderer(cmd.OutOrStdout()).RenderBalances)
		},
	}
}
