package usecase

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/governance"
)

// ShowTimelockParams contains parameters for showing the timelock
type ShowTimelockParams struct {
	// Operation selects a single operation by id or id prefix
	Operation string
	// PendingOnly hides settled operations
	PendingOnly bool
}

// ShowTimelockResult contains the timelock summary and its operations
type ShowTimelockResult struct {
	Timelock   governance.TimelockInfo
	Clock      governance.ClockInfo
	Operations []*models.OperationView
}

// ShowTimelock reports the execution queue
type ShowTimelock struct {
	workspace *Workspace
}

// NewShowTimelock creates a new ShowTimelock use case
func NewShowTimelock(workspace *Workspace) *ShowTimelock {
	return &ShowTimelock{workspace: workspace}
}

// Run executes the show timelock use case
func (uc *ShowTimelock) Run(ctx context.Context, params ShowTimelockParams) (*ShowTimelockResult, error) {
	sys, err := uc.workspace.Open(ctx)
	if err != nil {
		return nil, err
	}
	result := &ShowTimelockResult{Timelock: sys.Timelock(), Clock: sys.Clock()}

	if params.Operation != "" {
		op, err := findOperation(sys, params.Operation)
		if err != nil {
			return nil, err
		}
		result.Operations = []*models.OperationView{op}
		return result, nil
	}

	for _, op := range sys.Operations() {
		if params.PendingOnly && !op.State.IsPending() {
			continue
		}
		result.Operations = append(result.Operations, op)
	}
	return result, nil
}

func findOperation(sys *governance.System, ref string) (*models.OperationView, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if !strings.HasPrefix(ref, "0x") {
		ref = "0x" + ref
	}
	var found []*models.OperationView
	for _, op := range sys.Operations() {
		if strings.HasPrefix(strings.ToLower(op.ID.Hex()), ref) {
			found = append(found, op)
		}
	}
	switch len(found) {
	case 0:
		return nil, domain.NewError("timelock", domain.ErrOperationNotPending, "no operation matches %q", ref)
	case 1:
		return found[0], nil
	}
	return nil, fmt.Errorf("operation reference %q is ambiguous (%d matches)", ref, len(found))
}

// CancelOperationParams contains parameters for canceling a timelock operation
type CancelOperationParams struct {
	From      string
	Operation string
	Yes       bool
}

// CancelOperationResult describes the canceled operation
type CancelOperationResult struct {
	Operation *models.OperationView
	Aborted   bool
}

// CancelOperation cancels a pending timelock operation. The caller needs the canceller role.
type CancelOperation struct {
	workspace *Workspace
	accounts  Accounts
	confirmer Confirmer
	cfg       *config.RuntimeConfig
}

// NewCancelOperation creates a new CancelOperation use case
func NewCancelOperation(workspace *Workspace, accounts Accounts, confirmer Confirmer, cfg *config.RuntimeConfig) *CancelOperation {
	return &CancelOperation{workspace: workspace, accounts: accounts, confirmer: confirmer, cfg: cfg}
}

// Run executes the cancel operation use case
func (uc *CancelOperation) Run(ctx context.Context, params CancelOperationParams) (*CancelOperationResult, error) {
	caller, err := uc.accounts.Resolve(params.From)
	if err != nil {
		return nil, err
	}

	var id common.Hash
	aborted := false
	sys, err := uc.workspace.Mutate(ctx, func(sys *governance.System) error {
		op, err := findOperation(sys, params.Operation)
		if err != nil {
			return err
		}
		id = op.ID
		if !params.Yes && !uc.cfg.NonInteractive && uc.confirmer != nil {
			ok, err := uc.confirmer.Confirm(ctx, fmt.Sprintf("Cancel timelock operation %s", id.Hex()))
			if err != nil {
				return err
			}
			if !ok {
				aborted = true
				return errAborted
			}
		}
		return sys.CancelOperation(ctx, caller, id)
	})
	if aborted {
		return &CancelOperationResult{Aborted: true}, nil
	}
	if err != nil {
		return nil, err
	}
	op, _ := sys.Operation(id)
	return &CancelOperationResult{Operation: op}, nil
}

// DepositParams contains parameters for funding the treasury
type DepositParams struct {
	From   string
	Amount *big.Int
}

// DepositResult reports the new treasury balance
type DepositResult struct {
	From     common.Address
	Amount   *big.Int
	Timelock governance.TimelockInfo
}

// Deposit sends native value to the timelock treasury
type Deposit struct {
	workspace *Workspace
	accounts  Accounts
}

// NewDeposit creates a new Deposit use case
func NewDeposit(workspace *Workspace, accounts Accounts) *Deposit {
	return &Deposit{workspace: workspace, accounts: accounts}
}

// Run executes the deposit use case
func (uc *Deposit) Run(ctx context.Context, params DepositParams) (*DepositResult, error) {
	from, err := uc.accounts.Resolve(params.From)
	if err != nil {
		return nil, err
	}
	sys, err := uc.workspace.Mutate(ctx, func(sys *governance.System) error {
		return sys.Deposit(ctx, from, params.Amount)
	})
	if err != nil {
		return nil, err
	}
	return &DepositResult{From: from, Amount: params.Amount, Timelock: sys.Timelock()}, nil
}
