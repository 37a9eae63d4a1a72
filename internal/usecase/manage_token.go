package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/governance"
)

// TokenAction names a token command
type TokenAction string

const (
	TokenMint     TokenAction = "mint"
	TokenBurn     TokenAction = "burn"
	TokenTransfer TokenAction = "transfer"
	TokenDelegate TokenAction = "delegate"
)

// ManageTokenParams contains parameters for a token command
type ManageTokenParams struct {
	Action TokenAction
	From   string // acting account; empty uses the default sender
	To     common.Address
	Amount *uint256.Int
}

// ManageTokenResult reports the accounts touched by the command
type ManageTokenResult struct {
	Action      TokenAction
	Sender      governance.AccountInfo
	Recipient   *governance.AccountInfo
	TotalSupply *uint256.Int
}

// ManageToken mints, burns, transfers and delegates the voting token
type ManageToken struct {
	workspace *Workspace
	accounts  Accounts
}

// NewManageToken creates a new ManageToken use case
func NewManageToken(workspace *Workspace, accounts Accounts) *ManageToken {
	return &ManageToken{workspace: workspace, accounts: accounts}
}

// Run executes the token command
func (uc *ManageToken) Run(ctx context.Context, params ManageTokenParams) (*ManageTokenResult, error) {
	from, err := uc.accounts.Resolve(params.From)
	if err != nil {
		return nil, err
	}
	if params.Action != TokenDelegate && (params.Amount == nil || params.Amount.IsZero()) {
		return nil, fmt.Errorf("amount must be positive")
	}

	sys, err := uc.workspace.Mutate(ctx, func(sys *governance.System) error {
		switch params.Action {
		case TokenMint:
			return sys.Mint(ctx, from, params.To, params.Amount)
		case TokenBurn:
			return sys.Burn(ctx, from, params.Amount)
		case TokenTransfer:
			return sys.Transfer(ctx, from, params.To, params.Amount)
		case TokenDelegate:
			return sys.Delegate(ctx, from, params.To)
		default:
			return fmt.Errorf("unknown token action: %s", params.Action)
		}
	})
	if err != nil {
		return nil, err
	}

	result := &ManageTokenResult{
		Action:      params.Action,
		Sender:      sys.Account(from),
		TotalSupply: sys.TotalSupply(),
	}
	if params.Action != TokenBurn {
		to := sys.Account(params.To)
		result.Recipient = &to
	}
	return result, nil
}

// GetBalancesParams selects the accounts to report
type GetBalancesParams struct {
	// Accounts to report; empty reports every known account
	Accounts []common.Address
}

// GetBalancesResult holds token balances and voting power
type GetBalancesResult struct {
	Accounts    []governance.AccountInfo
	TotalSupply *uint256.Int
	Clock       governance.ClockInfo
}

// GetBalances reports balances, delegates and voting power
type GetBalances struct {
	workspace *Workspace
}

// NewGetBalances creates a new GetBalances use case
func NewGetBalances(workspace *Workspace) *GetBalances {
	return &GetBalances{workspace: workspace}
}

// Run executes the balance query
func (uc *GetBalances) Run(ctx context.Context, params GetBalancesParams) (*GetBalancesResult, error) {
	sys, err := uc.workspace.Open(ctx)
	if err != nil {
		return nil, err
	}
	result := &GetBalancesResult{TotalSupply: sys.TotalSupply(), Clock: sys.Clock()}
	if len(params.Accounts) == 0 {
		result.Accounts = sys.Accounts()
		return result, nil
	}
	for _, a := range params.Accounts {
		result.Accounts = append(result.Accounts, sys.Account(a))
	}
	return result, nil
}
