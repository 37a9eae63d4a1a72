package app

import (
	"io"
	"log/slog"

	"github.com/trebuchet-org/treb-gov/internal/api"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/governance"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config     *config.RuntimeConfig
	Deployment governance.Config
	Logger     *slog.Logger

	// Shared dependencies
	Workspace *usecase.Workspace
	EventLog  usecase.EventLog

	// Use cases
	InitGovernance   *usecase.InitGovernance
	GovernanceStatus *usecase.GovernanceStatus
	ManageToken      *usecase.ManageToken
	GetBalances      *usecase.GetBalances
	CreateProposal   *usecase.CreateProposal
	CastVote         *usecase.CastVote
	QueueProposal    *usecase.QueueProposal
	ExecuteProposal  *usecase.ExecuteProposal
	CancelProposal   *usecase.CancelProposal
	ShowProposal     *usecase.ShowProposal
	ListProposals    *usecase.ListProposals
	ShowTimelock     *usecase.ShowTimelock
	CancelOperation  *usecase.CancelOperation
	Deposit          *usecase.Deposit
	ListRoles        *usecase.ListRoles
	ManageRole       *usecase.ManageRole
	GetBox           *usecase.GetBox
	SetBox           *usecase.SetBox
	AdvanceClock     *usecase.AdvanceClock
	ListEvents       *usecase.ListEvents

	// Monitoring
	Server *api.Server
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	deployment governance.Config,
	logger *slog.Logger,
	workspace *usecase.Workspace,
	eventLog usecase.EventLog,
	initGovernance *usecase.InitGovernance,
	governanceStatus *usecase.GovernanceStatus,
	manageToken *usecase.ManageToken,
	getBalances *usecase.GetBalances,
	createProposal *usecase.CreateProposal,
	castVote *usecase.CastVote,
	queueProposal *usecase.QueueProposal,
	executeProposal *usecase.ExecuteProposal,
	cancelProposal *usecase.CancelProposal,
	showProposal *usecase.ShowProposal,
	listProposals *usecase.ListProposals,
	showTimelock *usecase.ShowTimelock,
	cancelOperation *usecase.CancelOperation,
	deposit *usecase.Deposit,
	listRoles *usecase.ListRoles,
	manageRole *usecase.ManageRole,
	getBox *usecase.GetBox,
	setBox *usecase.SetBox,
	advanceClock *usecase.AdvanceClock,
	listEvents *usecase.ListEvents,
	server *api.Server,
) (*App, error) {
	return &App{
		Config:           cfg,
		Deployment:       deployment,
		Logger:           logger,
		Workspace:        workspace,
		EventLog:         eventLog,
		InitGovernance:   initGovernance,
		GovernanceStatus: governanceStatus,
		ManageToken:      manageToken,
		GetBalances:      getBalances,
		CreateProposal:   createProposal,
		CastVote:         castVote,
		QueueProposal:    queueProposal,
		ExecuteProposal:  executeProposal,
		CancelProposal:   cancelProposal,
		ShowProposal:     showProposal,
		ListProposals:    listProposals,
		ShowTimelock:     showTimelock,
		CancelOperation:  cancelOperation,
		Deposit:          deposit,
		ListRoles:        listRoles,
		ManageRole:       manageRole,
		GetBox:           getBox,
		SetBox:           setBox,
		AdvanceClock:     advanceClock,
		ListEvents:       listEvents,
		Server:           server,
	}, nil
}

// Close releases the event log database handle
func (a *App) Close() error {
	if closer, ok := a.EventLog.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
