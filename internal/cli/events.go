package cli

import (
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-gov/internal/cli/render"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// NewEventsCmd creates the events command
func NewEventsCmd() *cobra.Command {
	var (
		name     string
		proposal string
		after    uint64
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List governance events from the event log",
		Example: `  # Every vote cast so far
  trebgov events --name VoteCast

  # The full history of one proposal
  trebgov events --proposal 0x1a2b...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			events, err := app.ListEvents.Run(cmd.Context(), usecase.ListEventsParams{
				Filter: domain.EventFilter{
					Name:       name,
					ProposalID: proposal,
					AfterSeq:   after,
					Limit:      limit,
				},
			})
			if err != nil {
				return err
			}
			return renderResult(cmd, app, events, render.NewStatusRenderer(cmd.OutOrStdout()).RenderEvents)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Filter by event name (e.g. VoteCast)")
	cmd.Flags().StringVar(&proposal, "proposal", "", "Filter by full proposal id")
	cmd.Flags().Uint64Var(&after, "after", 0, "Only events with a sequence number above this")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of events")

	return cmd
}
