package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/governance"
)

// QueueProposalParams contains parameters for queueing
type QueueProposalParams struct {
	Proposal string
}

// QueueProposalResult describes the admitted timelock operation
type QueueProposalResult struct {
	Proposal  *models.ProposalView
	Operation *models.OperationView
}

// QueueProposal admits a succeeded proposal to the timelock
type QueueProposal struct {
	workspace *Workspace
	resolver  *ProposalResolver
}

// NewQueueProposal creates a new QueueProposal use case
func NewQueueProposal(workspace *Workspace, resolver *ProposalResolver) *QueueProposal {
	return &QueueProposal{workspace: workspace, resolver: resolver}
}

// Run executes the queue use case
func (uc *QueueProposal) Run(ctx context.Context, params QueueProposalParams) (*QueueProposalResult, error) {
	var id, opID common.Hash
	sys, err := uc.workspace.Mutate(ctx, func(sys *governance.System) (err error) {
		id, err = uc.resolver.Resolve(ctx, sys, params.Proposal, models.ProposalStateSucceeded)
		if err != nil {
			return err
		}
		opID, err = sys.Queue(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	view, err := sys.Proposal(id)
	if err != nil {
		return nil, err
	}
	op, _ := sys.Operation(opID)
	return &QueueProposalResult{Proposal: view, Operation: op}, nil
}
