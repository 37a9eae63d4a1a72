package cli

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-gov/internal/cli/render"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

func proposalRef(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

// NewProposeCmd creates the propose command
func NewProposeCmd() *cobra.Command {
	var (
		description string
		target      string
		signature   string
		callArgs    []string
		value       string
		data        string
		file        string
	)

	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Submit a proposal to the governor",
		Long: `Submit a proposal. A single call is given with --target and either
--sig/--args or raw --data. Multi-call proposals are read from a YAML file.

Targets may be addresses or one of: box, timelock, governor, token.`,
		Example: `  # Store 42 in the box through governance
  trebgov propose --target box --sig "store(uint256)" --args 42 -m "Store 42"

  # Propose the calls listed in a file
  trebgov propose --file proposals/lower-quorum.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.CreateProposalParams{
				Description: description,
				File:        file,
			}
			if file == "" {
				if target == "" {
					return fmt.Errorf("either --file or --target is required")
				}
				spec := usecase.CallSpec{Target: target, Signature: signature, Args: callArgs}
				if data != "" {
					if signature != "" {
						return fmt.Errorf("--data and --sig are mutually exclusive")
					}
					if spec.Data, err = hexutil.Decode(data); err != nil {
						return fmt.Errorf("invalid --data: %w", err)
					}
				}
				if value != "" {
					if spec.Value, err = parseValue(value); err != nil {
						return err
					}
				}
				params.Calls = []usecase.CallSpec{spec}
			}

			result, err := app.CreateProposal.Run(cmd.Context(), params)
			if err != nil {
				return err
			}
			return renderResult(cmd, app, result, render.NewProposalRenderer(cmd.OutOrStdout()).RenderCreated)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "m", "", "Proposal description")
	cmd.Flags().StringVar(&target, "target", "", "Call target (address or box, timelock, governor, token)")
	cmd.Flags().StringVar(&signature, "sig", "", "Function signature, e.g. \"store(uint256)\"")
	cmd.Flags().StringArrayVar(&callArgs, "args", nil, "Function argument (repeatable)")
	cmd.Flags().StringVar(&value, "value", "", "Native value sent with the call")
	cmd.Flags().StringVar(&data, "data", "", "Raw hex calldata instead of --sig/--args")
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML file describing a multi-call proposal")

	return cmd
}

// NewVoteCmd creates the vote command
func NewVoteCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "vote [proposal] <for|against|abstain>",
		Short: "Cast a vote on an active proposal",
		Long: `Cast a vote weighted by the voter's delegated power at the proposal snapshot.
The proposal may be given as a full id or a unique id prefix. When omitted,
active proposals are offered for selection.`,
		Example: `  trebgov vote 0x1a2b for --from 0xA000000000000000000000000000000000000001
  trebgov vote against --reason "too risky"`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			support, err := models.ParseVoteType(args[len(args)-1])
			if err != nil {
				return err
			}

			result, err := app.CastVote.Run(cmd.Context(), usecase.CastVoteParams{
				Proposal: proposalRef(args[:len(args)-1]),
				Support:  support,
				Reason:   reason,
			})
			if err != nil {
				return err
			}
			return renderResult(cmd, app, result, render.NewProposalRenderer(cmd.OutOrStdout()).RenderVote)
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "Reason recorded with the vote")

	return cmd
}

// NewQueueCmd creates the queue command
func NewQueueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue [proposal]",
		Short: "Queue a succeeded proposal in the timelock",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.QueueProposal.Run(cmd.Context(), usecase.QueueProposalParams{
				Proposal: proposalRef(args),
			})
			if err != nil {
				return err
			}
			return renderResult(cmd, app, result, render.NewProposalRenderer(cmd.OutOrStdout()).RenderQueued)
		},
	}
}

// NewExecuteCmd creates the execute command
func NewExecuteCmd() *cobra.Command {
	var (
		wait     bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "execute [proposal]",
		Short: "Execute a queued proposal once its timelock delay has passed",
		Long: `Execute a queued proposal through the timelock.

With --wait the command blocks until the operation is ready. On the manual
clock the clock is warped to the ready time instead of sleeping.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ExecuteProposal.Run(cmd.Context(), usecase.ExecuteProposalParams{
				Proposal:     proposalRef(args),
				Wait:         wait,
				PollInterval: interval,
			})
			if err != nil {
				return err
			}
			return renderResult(cmd, app, result, render.NewProposalRenderer(cmd.OutOrStdout()).RenderExecuted)
		},
	}

	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Wait for the timelock delay before executing")
	cmd.Flags().DurationVar(&interval, "poll-interval", time.Second, "Polling interval while waiting on the wall clock")

	return cmd
}

// NewCancelCmd creates the cancel command
func NewCancelCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "cancel [proposal]",
		Short: "Cancel a pending proposal",
		Long: `Cancel a proposal. The proposer may cancel while the proposal is still
pending. Queued proposals are cancelled through the timelock canceller role
with 'trebgov timelock cancel'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.CancelProposal.Run(cmd.Context(), usecase.CancelProposalParams{
				Proposal: proposalRef(args),
				Yes:      yes,
			})
			if err != nil {
				return err
			}
			return renderResult(cmd, app, result, render.NewProposalRenderer(cmd.OutOrStdout()).RenderCanceled)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	return cmd
}

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	var withEvents bool

	cmd := &cobra.Command{
		Use:   "show [proposal]",
		Short: "Show proposal details, tally and timelock operation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ShowProposal.Run(cmd.Context(), usecase.ShowProposalParams{
				Proposal:   proposalRef(args),
				WithEvents: withEvents,
			})
			if err != nil {
				return err
			}
			return renderResult(cmd, app, result, render.NewProposalRenderer(cmd.OutOrStdout()).RenderProposal)
		},
	}

	cmd.Flags().BoolVarP(&withEvents, "events", "e", false, "Include the proposal's event history")

	return cmd
}

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var states []string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List proposals",
		Example: `  # List every proposal
  trebgov list

  # Only proposals that can be voted on or queued
  trebgov list --state active,succeeded`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			params := usecase.ListProposalsParams{}
			for _, s := range states {
				state, err := models.ParseProposalState(s)
				if err != nil {
					return err
				}
				params.States = append(params.States, state)
			}

			result, err := app.ListProposals.Run(cmd.Context(), params)
			if err != nil {
				return err
			}
			return renderResult(cmd, app, result, render.NewProposalRenderer(cmd.OutOrStdout()).RenderList)
		},
	}

	cmd.Flags().StringSliceVar(&states, "state", nil, "Filter by state (pending, active, canceled, defeated, succeeded, queued, expired, executed)")

	return cmd
}

// NewStateCmd creates the state command
func NewStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state [proposal]",
		Short: "Print the current state of a proposal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			result, err := app.ShowProposal.Run(cmd.Context(), usecase.ShowProposalParams{
				Proposal: proposalRef(args),
			})
			if err != nil {
				return err
			}

			if app.Config.JSON {
				return render.NewJSONRenderer[map[string]string](cmd.OutOrStdout()).Render(map[string]string{
					"proposalId": result.Proposal.ID.Hex(),
					"state":      string(result.Proposal.State),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Proposal.State)
			return nil
		},
	}
}
