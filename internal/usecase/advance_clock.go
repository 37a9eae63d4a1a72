package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/trebuchet-org/treb-gov/internal/governance"
)

// AdvanceClockParams moves the manual clock. Exactly one of Blocks or Duration is used.
type AdvanceClockParams struct {
	Blocks   uint64
	Duration time.Duration
}

// AdvanceClockResult reports the clock before and after
type AdvanceClockResult struct {
	Before governance.ClockInfo
	After  governance.ClockInfo
}

// AdvanceClock mines blocks or warps time on the manual clock
type AdvanceClock struct {
	workspace *Workspace
}

// NewAdvanceClock creates a new AdvanceClock use case
func NewAdvanceClock(workspace *Workspace) *AdvanceClock {
	return &AdvanceClock{workspace: workspace}
}

// Run executes the clock change
func (uc *AdvanceClock) Run(ctx context.Context, params AdvanceClockParams) (*AdvanceClockResult, error) {
	if params.Blocks == 0 && params.Duration <= 0 {
		return nil, fmt.Errorf("nothing to advance: give a block count or a positive duration")
	}
	var before governance.ClockInfo
	sys, err := uc.workspace.Mutate(ctx, func(sys *governance.System) error {
		before = sys.Clock()
		if params.Duration > 0 {
			return sys.Warp(params.Duration)
		}
		return sys.Mine(params.Blocks)
	})
	if err != nil {
		return nil, err
	}
	return &AdvanceClockResult{Before: before, After: sys.Clock()}, nil
}
