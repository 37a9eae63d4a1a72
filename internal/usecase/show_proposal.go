package usecase

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/governance"
)

// ShowProposalParams contains parameters for showing a proposal
type ShowProposalParams struct {
	Proposal string
	// WithEvents includes the proposal's event history from the event log
	WithEvents bool
}

// ShowProposalResult contains the proposal and its surroundings
type ShowProposalResult struct {
	Proposal  *models.ProposalView
	Operation *models.OperationView
	Clock     governance.ClockInfo
	// TotalSupplyAtSnapshot is omitted while the snapshot is in the future
	TotalSupplyAtSnapshot *uint256.Int
	Events                []domain.EventEnvelope
}

// ShowProposal is the use case for showing proposal details
type ShowProposal struct {
	workspace *Workspace
	resolver  *ProposalResolver
	events    EventLog
}

// NewShowProposal creates a new ShowProposal use case
func NewShowProposal(workspace *Workspace, resolver *ProposalResolver, events EventLog) *ShowProposal {
	return &ShowProposal{workspace: workspace, resolver: resolver, events: events}
}

// Run executes the show proposal use case
func (uc *ShowProposal) Run(ctx context.Context, params ShowProposalParams) (*ShowProposalResult, error) {
	sys, err := uc.workspace.Open(ctx)
	if err != nil {
		return nil, err
	}
	id, err := uc.resolver.Resolve(ctx, sys, params.Proposal)
	if err != nil {
		return nil, err
	}
	view, err := sys.Proposal(id)
	if err != nil {
		return nil, err
	}

	result := &ShowProposalResult{Proposal: view, Clock: sys.Clock()}
	if op, ok := sys.Operation(view.OperationID); ok {
		result.Operation = op
	}
	if view.Snapshot() < result.Clock.Ordinal {
		if supply, err := sys.PastTotalSupply(view.Snapshot()); err == nil {
			result.TotalSupplyAtSnapshot = supply
		}
	}

	if params.WithEvents {
		events, err := uc.events.List(ctx, domain.EventFilter{ProposalID: id.Hex()})
		if err != nil {
			return nil, err
		}
		result.Events = events
	}
	return result, nil
}

// ListProposalsParams contains parameters for listing proposals
type ListProposalsParams struct {
	States []models.ProposalState
}

// ProposalSummary counts proposals by state
type ProposalSummary struct {
	Total   int
	ByState map[models.ProposalState]int
}

// ListProposalsResult contains the listed proposals
type ListProposalsResult struct {
	Proposals []*models.ProposalView
	Summary   ProposalSummary
	Clock     governance.ClockInfo
}

// ListProposals lists proposals with their computed state
type ListProposals struct {
	workspace *Workspace
}

// NewListProposals creates a new ListProposals use case
func NewListProposals(workspace *Workspace) *ListProposals {
	return &ListProposals{workspace: workspace}
}

// Run executes the list use case
func (uc *ListProposals) Run(ctx context.Context, params ListProposalsParams) (*ListProposalsResult, error) {
	sys, err := uc.workspace.Open(ctx)
	if err != nil {
		return nil, err
	}
	proposals := sys.Proposals(params.States...)

	summary := ProposalSummary{Total: len(proposals), ByState: make(map[models.ProposalState]int)}
	for _, p := range proposals {
		summary.ByState[p.State]++
	}
	return &ListProposalsResult{Proposals: proposals, Summary: summary, Clock: sys.Clock()}, nil
}
