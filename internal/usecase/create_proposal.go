package usecase

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/governance"
)

// CallSpec is one call given on the command line
type CallSpec struct {
	Target    string // address, or one of "box", "timelock", "governor", "token"
	Signature string // e.g. "store(uint256)"
	Args      []string
	Data      []byte // raw calldata, used when Signature is empty
	Value     *big.Int
}

// CreateProposalParams contains parameters for submitting a proposal
type CreateProposalParams struct {
	From        string
	Description string
	Calls       []CallSpec
	File        string // proposal file; replaces Calls and, if set there, Description
}

// CreateProposalResult describes the submitted proposal
type CreateProposalResult struct {
	Proposal *models.ProposalView
}

// CreateProposal submits a proposal to the governor
type CreateProposal struct {
	workspace *Workspace
	accounts  Accounts
	encoder   CalldataEncoder
	files     ProposalFileParser
	sink      ProgressSink
}

// NewCreateProposal creates a new CreateProposal use case
func NewCreateProposal(
	workspace *Workspace,
	accounts Accounts,
	encoder CalldataEncoder,
	files ProposalFileParser,
	sink ProgressSink,
) *CreateProposal {
	return &CreateProposal{
		workspace: workspace,
		accounts:  accounts,
		encoder:   encoder,
		files:     files,
		sink:      sink,
	}
}

// Run executes the propose use case
func (uc *CreateProposal) Run(ctx context.Context, params CreateProposalParams) (*CreateProposalResult, error) {
	proposer, err := uc.accounts.Resolve(params.From)
	if err != nil {
		return nil, err
	}

	description := params.Description
	specs := params.Calls
	if params.File != "" {
		uc.sink.OnProgress(ctx, ProgressEvent{Stage: "parsing", Message: "Reading " + params.File})
		file, err := uc.files.ParseFile(ctx, params.File)
		if err != nil {
			return nil, err
		}
		specs = file.Calls
		if description == "" {
			description = file.Description
		}
	}

	var id common.Hash
	sys, err := uc.workspace.Mutate(ctx, func(sys *governance.System) error {
		calls, err := uc.encodeCalls(sys.Addresses(), specs)
		if err != nil {
			return err
		}
		if strings.TrimSpace(description) == "" {
			return fmt.Errorf("proposal description is required")
		}
		id, err = sys.Propose(ctx, proposer, calls, description)
		return err
	})
	if err != nil {
		return nil, err
	}

	view, err := sys.Proposal(id)
	if err != nil {
		return nil, err
	}
	return &CreateProposalResult{Proposal: view}, nil
}

func (uc *CreateProposal) encodeCalls(addrs governance.Addresses, specs []CallSpec) ([]models.Call, error) {
	calls := make([]models.Call, 0, len(specs))
	for i, spec := range specs {
		target, err := ResolveTarget(addrs, spec.Target)
		if err != nil {
			return nil, fmt.Errorf("call %d: %w", i, err)
		}
		data := spec.Data
		if spec.Signature != "" {
			data, err = uc.encoder.Encode(spec.Signature, spec.Args)
			if err != nil {
				return nil, fmt.Errorf("call %d: %w", i, err)
			}
		}
		value := spec.Value
		if value == nil {
			value = new(big.Int)
		}
		calls = append(calls, models.Call{Target: target, Value: value, Data: data})
	}
	return calls, nil
}

// ResolveTarget maps a component name or hex address to an address
func ResolveTarget(addrs governance.Addresses, ref string) (common.Address, error) {
	switch strings.ToLower(strings.TrimSpace(ref)) {
	case "box":
		return addrs.Box, nil
	case "timelock":
		return addrs.Timelock, nil
	case "governor":
		return addrs.Governor, nil
	case "token":
		return addrs.Token, nil
	}
	if !common.IsHexAddress(ref) {
		return common.Address{}, fmt.Errorf("invalid target %q: expected an address or box|timelock|governor|token", ref)
	}
	return common.HexToAddress(ref), nil
}
