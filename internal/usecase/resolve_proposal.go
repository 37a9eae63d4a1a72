package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/governance"
)

// ProposalResolver turns a proposal reference (full id or id prefix) into an id.
// Ambiguous or empty references fall back to interactive selection.
type ProposalResolver struct {
	selector ProposalSelector
	cfg      *config.RuntimeConfig
}

// NewProposalResolver creates a resolver
func NewProposalResolver(selector ProposalSelector, cfg *config.RuntimeConfig) *ProposalResolver {
	return &ProposalResolver{selector: selector, cfg: cfg}
}

// Resolve finds the proposal referenced by ref. candidates narrows the
// interactive choice when ref is empty.
func (r *ProposalResolver) Resolve(ctx context.Context, sys *governance.System, ref string, candidates ...models.ProposalState) (common.Hash, error) {
	ref = strings.TrimSpace(ref)

	var choices []*models.ProposalView
	if ref == "" {
		choices = sys.Proposals(candidates...)
	} else {
		ids := sys.ResolveProposal(ref)
		switch len(ids) {
		case 0:
			return common.Hash{}, domain.NewError("resolve", domain.ErrUnknownProposal, "no proposal matches %q", ref)
		case 1:
			return ids[0], nil
		}
		choices = lo.FilterMap(ids, func(id common.Hash, _ int) (*models.ProposalView, bool) {
			p, err := sys.Proposal(id)
			return p, err == nil
		})
	}

	if len(choices) == 0 {
		return common.Hash{}, fmt.Errorf("no proposals to choose from")
	}
	if r.cfg.NonInteractive || r.selector == nil {
		if ref == "" {
			return common.Hash{}, fmt.Errorf("a proposal id is required in non-interactive mode")
		}
		return common.Hash{}, fmt.Errorf("proposal reference %q is ambiguous (%d matches)", ref, len(choices))
	}

	picked, err := r.selector.SelectProposal(ctx, choices, "Select a proposal")
	if err != nil {
		return common.Hash{}, err
	}
	return picked.ID, nil
}
