package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-gov/internal/clock"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/governance"
)

// ExecuteProposalParams contains parameters for executing a queued proposal
type ExecuteProposalParams struct {
	From     string
	Proposal string
	// Wait blocks until the timelock delay has elapsed. On a manual clock the
	// clock is warped to the operation's ready time instead.
	Wait         bool
	PollInterval time.Duration
}

// ExecuteProposalResult describes the executed proposal
type ExecuteProposalResult struct {
	Proposal *models.ProposalView
	Waited   time.Duration
	Warped   uint64 // seconds the manual clock was advanced
}

// ExecuteProposal runs the calls of a queued proposal through the timelock
type ExecuteProposal struct {
	workspace *Workspace
	accounts  Accounts
	resolver  *ProposalResolver
	sink      ProgressSink
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewExecuteProposal creates a new ExecuteProposal use case
func NewExecuteProposal(workspace *Workspace, accounts Accounts, resolver *ProposalResolver, sink ProgressSink) *ExecuteProposal {
	return &ExecuteProposal{
		workspace: workspace,
		accounts:  accounts,
		resolver:  resolver,
		sink:      sink,
		sleep:     sleepContext,
	}
}

// Run executes the execute use case
func (uc *ExecuteProposal) Run(ctx context.Context, params ExecuteProposalParams) (*ExecuteProposalResult, error) {
	caller, err := uc.accounts.Resolve(params.From)
	if err != nil {
		return nil, err
	}
	interval := params.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	result := &ExecuteProposalResult{}
	started := time.Now()

	for {
		var id common.Hash
		var waitFor uint64
		sys, err := uc.workspace.Mutate(ctx, func(sys *governance.System) (err error) {
			id, err = uc.resolver.Resolve(ctx, sys, params.Proposal, models.ProposalStateQueued)
			if err != nil {
				return err
			}
			if params.Wait {
				remaining, err := uc.remaining(sys, id)
				if err != nil {
					return err
				}
				if remaining > 0 {
					if sys.Clock().Mode != clock.ModeBlockNumber {
						waitFor = remaining
						return errNotReady
					}
					uc.sink.OnProgress(ctx, ProgressEvent{
						Stage:   "warping",
						Message: fmt.Sprintf("Warping clock %s to the operation's ready time", time.Duration(remaining)*time.Second),
					})
					if err := sys.Warp(time.Duration(remaining) * time.Second); err != nil {
						return err
					}
					result.Warped = remaining
				}
			}
			return sys.Execute(ctx, caller, id)
		})
		if errors.Is(err, errNotReady) {
			params.Proposal = id.Hex()
			uc.sink.OnProgress(ctx, ProgressEvent{
				Stage:   "waiting",
				Message: fmt.Sprintf("Waiting for timelock delay (%ds remaining)", waitFor),
				Spinner: true,
			})
			if err := uc.sleep(ctx, min(interval, time.Duration(waitFor)*time.Second)); err != nil {
				return nil, err
			}
			continue
		}
		if err != nil {
			return nil, err
		}

		view, err := sys.Proposal(id)
		if err != nil {
			return nil, err
		}
		result.Proposal = view
		result.Waited = time.Since(started)
		uc.sink.OnProgress(ctx, ProgressEvent{Stage: "completed", Message: "Proposal executed"})
		return result, nil
	}
}

var errNotReady = errors.New("operation not ready")

// remaining returns the seconds until the proposal's operation is ready
func (uc *ExecuteProposal) remaining(sys *governance.System, id common.Hash) (uint64, error) {
	view, err := sys.Proposal(id)
	if err != nil {
		return 0, err
	}
	if view.State != models.ProposalStateQueued || view.ETA == 0 {
		return 0, nil
	}
	now := sys.Clock().Timestamp
	if now >= view.ETA {
		return 0, nil
	}
	return view.ETA - now, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
