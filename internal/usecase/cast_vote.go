package usecase

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/governance"
)

// CastVoteParams contains parameters for voting
type CastVoteParams struct {
	From     string
	Proposal string
	Support  models.VoteType
	Reason   string
}

// CastVoteResult reports the counted vote
type CastVoteResult struct {
	Voter    common.Address
	Weight   *uint256.Int
	Support  models.VoteType
	Proposal *models.ProposalView
}

// CastVote votes on an active proposal
type CastVote struct {
	workspace *Workspace
	accounts  Accounts
	resolver  *ProposalResolver
}

// NewCastVote creates a new CastVote use case
func NewCastVote(workspace *Workspace, accounts Accounts, resolver *ProposalResolver) *CastVote {
	return &CastVote{workspace: workspace, accounts: accounts, resolver: resolver}
}

// Run executes the vote use case
func (uc *CastVote) Run(ctx context.Context, params CastVoteParams) (*CastVoteResult, error) {
	voter, err := uc.accounts.Resolve(params.From)
	if err != nil {
		return nil, err
	}

	var id common.Hash
	var weight *uint256.Int
	sys, err := uc.workspace.Mutate(ctx, func(sys *governance.System) error {
		id, err = uc.resolver.Resolve(ctx, sys, params.Proposal, models.ProposalStateActive)
		if err != nil {
			return err
		}
		weight, err = sys.CastVote(ctx, voter, id, params.Support, params.Reason)
		return err
	})
	if err != nil {
		return nil, err
	}

	view, err := sys.Proposal(id)
	if err != nil {
		return nil, err
	}
	return &CastVoteResult{Voter: voter, Weight: weight, Support: params.Support, Proposal: view}, nil
}
