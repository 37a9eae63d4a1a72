package usecase

import (
	"context"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/governance"
	"github.com/trebuchet-org/treb-gov/internal/governor"
)

// GovernanceStatusResult is the overview of a deployment
type GovernanceStatusResult struct {
	Addresses   governance.Addresses
	Clock       governance.ClockInfo
	Settings    governor.Settings
	TotalSupply *uint256.Int
	Timelock    governance.TimelockInfo
	BoxValue    *big.Int
	ByState     map[models.ProposalState]int
	PendingOps  int
	StatePath   string
}

// GovernanceStatus summarises the whole deployment
type GovernanceStatus struct {
	workspace *Workspace
	repo      StateRepository
}

// NewGovernanceStatus creates a new GovernanceStatus use case
func NewGovernanceStatus(workspace *Workspace, repo StateRepository) *GovernanceStatus {
	return &GovernanceStatus{workspace: workspace, repo: repo}
}

// Run executes the status use case
func (uc *GovernanceStatus) Run(ctx context.Context) (*GovernanceStatusResult, error) {
	sys, err := uc.workspace.Open(ctx)
	if err != nil {
		return nil, err
	}
	result := &GovernanceStatusResult{
		Addresses:   sys.Addresses(),
		Clock:       sys.Clock(),
		Settings:    sys.Settings(),
		TotalSupply: sys.TotalSupply(),
		Timelock:    sys.Timelock(),
		BoxValue:    sys.BoxValue(),
		ByState:     make(map[models.ProposalState]int),
		StatePath:   uc.repo.Path(),
	}
	for _, p := range sys.Proposals() {
		result.ByState[p.State]++
	}
	for _, op := range sys.Operations() {
		if op.State.IsPending() {
			result.PendingOps++
		}
	}
	return result, nil
}
