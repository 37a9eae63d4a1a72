package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/governance"
)

// Allocation is an initial token grant made during init
type Allocation struct {
	Account common.Address
	Amount  *uint256.Int
	// SelfDelegate activates the account's voting power right away
	SelfDelegate bool
}

// InitGovernanceParams contains parameters for initializing governance
type InitGovernanceParams struct {
	Force       bool
	Allocations []Allocation
}

// InitGovernanceResult describes the fresh deployment
type InitGovernanceResult struct {
	Addresses governance.Addresses
	Deployer  common.Address
	StatePath string
	Clock     governance.ClockInfo
	Roles     governance.RoleMembers
	Minted    []Allocation
}

// InitGovernance deploys the governance system into the data directory
type InitGovernance struct {
	workspace *Workspace
	repo      StateRepository
	sink      ProgressSink
}

// NewInitGovernance creates a new InitGovernance use case
func NewInitGovernance(workspace *Workspace, repo StateRepository, sink ProgressSink) *InitGovernance {
	return &InitGovernance{workspace: workspace, repo: repo, sink: sink}
}

// Run executes the init use case
func (uc *InitGovernance) Run(ctx context.Context, params InitGovernanceParams) (*InitGovernanceResult, error) {
	exists, err := uc.repo.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if exists && !params.Force {
		return nil, fmt.Errorf("governance already initialized at %s (use --force to redeploy)", uc.repo.Path())
	}

	uc.sink.OnProgress(ctx, ProgressEvent{
		Stage:   "deploying",
		Message: "Deploying token, timelock, governor and box",
		Spinner: true,
	})

	deployer := uc.workspace.Deployment().Deployer
	sys, err := uc.workspace.Create(ctx, func(sys *governance.System) error {
		for _, a := range params.Allocations {
			if err := sys.Mint(ctx, deployer, a.Account, a.Amount); err != nil {
				return fmt.Errorf("failed to mint to %s: %w", a.Account.Hex(), err)
			}
			if a.SelfDelegate {
				if err := sys.Delegate(ctx, a.Account, a.Account); err != nil {
					return fmt.Errorf("failed to self-delegate %s: %w", a.Account.Hex(), err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.sink.OnProgress(ctx, ProgressEvent{Stage: "completed", Message: "Governance deployed"})

	return &InitGovernanceResult{
		Addresses: sys.Addresses(),
		Deployer:  deployer,
		StatePath: uc.repo.Path(),
		Clock:     sys.Clock(),
		Roles:     sys.Roles(),
		Minted:    params.Allocations,
	}, nil
}
