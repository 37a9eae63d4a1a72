package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-gov/internal/cli/render"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// NewMineCmd creates the mine command
func NewMineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine [blocks]",
		Short: "Advance the manual clock by a number of blocks",
		Long: `Advance the manual clock. Each block moves the timestamp forward by the
configured block time. Defaults to one block.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			blocks := uint64(1)
			if len(args) == 1 {
				if blocks, err = strconv.ParseUint(args[0], 10, 64); err != nil || blocks == 0 {
					return fmt.Errorf("invalid block count %q", args[0])
				}
			}

			result, err := app.AdvanceClock.Run(cmd.Context(), usecase.AdvanceClockParams{Blocks: blocks})
			if err != nil {
				return err
			}
			return renderResult(cmd, app, result, render.NewStatusRenderer(cmd.OutOrStdout()).RenderClock)
		},
	}
}

// NewWarpCmd creates the warp command
func NewWarpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "warp <duration>",
		Short: "Advance the manual clock by a duration",
		Long: `Advance the manual clock timestamp by a duration such as 90s or 48h.
The block number moves forward by one.`,
		Example: `  # Skip past a two day timelock delay
  trebgov warp 48h`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}

			d, err := time.ParseDuration(args[0])
			if err != nil {
				return fmt.Errorf("invalid duration %q: %w", args[0], err)
			}

			result, err := app.AdvanceClock.Run(cmd.Context(), usecase.AdvanceClockParams{Duration: d})
			if err != nil {
				return err
			}
			return renderResult(cmd, app, result, render.NewStatusRenderer(cmd.OutOrStdout()).RenderClock)
		},
	}
}
