package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-gov/internal/adapters/progress"
	"github.com/trebuchet-org/treb-gov/internal/app"
	"github.com/trebuchet-org/treb-gov/internal/cli/render"
	"github.com/trebuchet-org/treb-gov/internal/config"
	domainconfig "github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "trebgov",
		Short: "On-chain governance decision engine",
		Long: `trebgov runs a token-weighted Governor, its voting-power ledger and a
role-gated Timelock as a local, persisted system. Proposals move through
voting, queueing and timelocked execution exactly as they would on chain.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			v := config.SetupViper(projectRoot, cmd)

			var sink usecase.ProgressSink = progress.NewNopSink()
			if !v.GetBool("json") && !v.GetBool("non_interactive") {
				sink = progress.NewSpinnerSink()
			}

			appInstance, err := app.InitApp(v, sink)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			if shouldWarnDefaults(cmd.Name(), appInstance.Config) {
				fmt.Fprintln(os.Stderr, render.FormatWarning(
					"no governance.toml found, using default governance settings"))
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)

			cancel := func() {}
			if appInstance.Config.Timeout > 0 && cmd.Name() != "serve" {
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
			}
			cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
				cancel()
				return appInstance.Close()
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable interactive prompts")
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory holding the persisted state (default .trebgov)")
	rootCmd.PersistentFlags().String("from", "", "Acting account (address or 'deployer')")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Command timeout (default 5m)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "governance",
		Title: "Governance Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "dev",
		Title: "Development Commands",
	})

	for _, cmd := range []*cobra.Command{
		NewProposeCmd(),
		NewVoteCmd(),
		NewQueueCmd(),
		NewExecuteCmd(),
		NewCancelCmd(),
		NewShowCmd(),
		NewListCmd(),
		NewStateCmd(),
	} {
		cmd.GroupID = "governance"
		rootCmd.AddCommand(cmd)
	}

	for _, cmd := range []*cobra.Command{
		NewInitCmd(),
		NewStatusCmd(),
		NewTokenCmd(),
		NewTimelockCmd(),
		NewRolesCmd(),
		NewEventsCmd(),
		NewServeCmd(),
	} {
		cmd.GroupID = "management"
		rootCmd.AddCommand(cmd)
	}

	for _, cmd := range []*cobra.Command{
		NewBoxCmd(),
		NewMineCmd(),
		NewWarpCmd(),
	} {
		cmd.GroupID = "dev"
		rootCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// shouldWarnDefaults reports whether to warn that no governance.toml was found
func shouldWarnDefaults(cmdName string, cfg *domainconfig.RuntimeConfig) bool {
	if cfg == nil || cfg.JSON {
		return false
	}
	switch cmdName {
	case "version", "help", "completion", "serve":
		return false
	}
	return cfg.ConfigSource == "defaults"
}

// getApp retrieves the app instance from the command context
func getApp(cmd *cobra.Command) (*app.App, error) {
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	app, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return app, nil
}
