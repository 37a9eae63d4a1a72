package usecase

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-gov/internal/box"
	"github.com/trebuchet-org/treb-gov/internal/dispatch"
	"github.com/trebuchet-org/treb-gov/internal/governance"
)

// BoxResult reports the protected resource
type BoxResult struct {
	Address common.Address
	Owner   common.Address
	Value   *big.Int
}

// GetBox reads the value held by the box
type GetBox struct {
	workspace *Workspace
}

// NewGetBox creates a new GetBox use case
func NewGetBox(workspace *Workspace) *GetBox {
	return &GetBox{workspace: workspace}
}

// Run executes the box query
func (uc *GetBox) Run(ctx context.Context) (*BoxResult, error) {
	sys, err := uc.workspace.Open(ctx)
	if err != nil {
		return nil, err
	}
	return &BoxResult{
		Address: sys.Addresses().Box,
		Owner:   sys.Addresses().Timelock,
		Value:   sys.BoxValue(),
	}, nil
}

// SetBoxParams contains parameters for a direct store call
type SetBoxParams struct {
	From  string
	Value *big.Int
}

// SetBox calls store on the box directly, bypassing governance. Only the
// timelock owns the box, so this is rejected for every other caller.
type SetBox struct {
	workspace *Workspace
	accounts  Accounts
}

// NewSetBox creates a new SetBox use case
func NewSetBox(workspace *Workspace, accounts Accounts) *SetBox {
	return &SetBox{workspace: workspace, accounts: accounts}
}

// Run executes the direct store call
func (uc *SetBox) Run(ctx context.Context, params SetBoxParams) (*BoxResult, error) {
	from, err := uc.accounts.Resolve(params.From)
	if err != nil {
		return nil, err
	}
	data, err := box.StoreCalldata(params.Value)
	if err != nil {
		return nil, err
	}
	sys, err := uc.workspace.Mutate(ctx, func(sys *governance.System) error {
		_, err := sys.Call(ctx, dispatch.CallMsg{From: from, To: sys.Addresses().Box, Data: data})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &BoxResult{Address: sys.Addresses().Box, Owner: sys.Addresses().Timelock, Value: sys.BoxValue()}, nil
}
