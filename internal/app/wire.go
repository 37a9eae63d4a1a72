//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/treb-gov/internal/adapters"
	"github.com/trebuchet-org/treb-gov/internal/api"
	"github.com/trebuchet-org/treb-gov/internal/config"
	"github.com/trebuchet-org/treb-gov/internal/logging"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		config.ProvideDeploymentConfig,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Shared use case infrastructure
		usecase.NewWorkspace,
		usecase.NewProposalResolver,

		// Use cases
		usecase.NewInitGovernance,
		usecase.NewGovernanceStatus,
		usecase.NewManageToken,
		usecase.NewGetBalances,
		usecase.NewCreateProposal,
		usecase.NewCastVote,
		usecase.NewQueueProposal,
		usecase.NewExecuteProposal,
		usecase.NewCancelProposal,
		usecase.NewShowProposal,
		usecase.NewListProposals,
		usecase.NewShowTimelock,
		usecase.NewCancelOperation,
		usecase.NewDeposit,
		usecase.NewListRoles,
		usecase.NewManageRole,
		usecase.NewGetBox,
		usecase.NewSetBox,
		usecase.NewAdvanceClock,
		usecase.NewListEvents,

		// Monitoring
		api.NewServer,

		// App
		NewApp,
	)
	return nil, nil
}
