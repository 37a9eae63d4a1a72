package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/governance"
)

// CancelProposalParams contains parameters for canceling a proposal
type CancelProposalParams struct {
	From     string
	Proposal string
	Yes      bool // skip confirmation
}

// CancelProposalResult describes the canceled proposal
type CancelProposalResult struct {
	Proposal  *models.ProposalView
	Canceller common.Address
	Aborted   bool
}

// CancelProposal cancels a pending or active proposal
type CancelProposal struct {
	workspace *Workspace
	accounts  Accounts
	resolver  *ProposalResolver
	confirmer Confirmer
	cfg       *config.RuntimeConfig
}

// NewCancelProposal creates a new CancelProposal use case
func NewCancelProposal(
	workspace *Workspace,
	accounts Accounts,
	resolver *ProposalResolver,
	confirmer Confirmer,
	cfg *config.RuntimeConfig,
) *CancelProposal {
	return &CancelProposal{
		workspace: workspace,
		accounts:  accounts,
		resolver:  resolver,
		confirmer: confirmer,
		cfg:       cfg,
	}
}

// Run executes the cancel use case
func (uc *CancelProposal) Run(ctx context.Context, params CancelProposalParams) (*CancelProposalResult, error) {
	caller, err := uc.accounts.Resolve(params.From)
	if err != nil {
		return nil, err
	}

	var id common.Hash
	aborted := false
	sys, err := uc.workspace.Mutate(ctx, func(sys *governance.System) error {
		id, err = uc.resolver.Resolve(ctx, sys, params.Proposal, models.ProposalStatePending, models.ProposalStateActive)
		if err != nil {
			return err
		}
		if !params.Yes && !uc.cfg.NonInteractive && uc.confirmer != nil {
			ok, err := uc.confirmer.Confirm(ctx, fmt.Sprintf("Cancel proposal %s", id.Hex()))
			if err != nil {
				return err
			}
			if !ok {
				aborted = true
				return errAborted
			}
		}
		return sys.Cancel(ctx, caller, id)
	})
	if aborted {
		return &CancelProposalResult{Canceller: caller, Aborted: true}, nil
	}
	if err != nil {
		return nil, err
	}

	view, err := sys.Proposal(id)
	if err != nil {
		return nil, err
	}
	return &CancelProposalResult{Proposal: view, Canceller: caller}, nil
}
