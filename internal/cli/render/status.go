package render

import (
	"fmt"
	"io"
	"time"

	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/governance"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// StatusRenderer renders deployment level information
type StatusRenderer struct {
	out io.Writer
}

// NewStatusRenderer creates a new status renderer
func NewStatusRenderer(out io.Writer) *StatusRenderer {
	return &StatusRenderer{out: out}
}

func (r *StatusRenderer) addresses(addrs governance.Addresses) {
	field(r.out, "Token", addrs.Token.Hex())
	field(r.out, "Timelock", addrs.Timelock.Hex())
	field(r.out, "Governor", addrs.Governor.Hex())
	field(r.out, "Box", addrs.Box.Hex())
}

func (r *StatusRenderer) clock(clk governance.ClockInfo) string {
	ts := time.Unix(int64(clk.Timestamp), 0).UTC().Format(time.RFC3339)
	return fmt.Sprintf("%s %d (%s)", clk.Mode, clk.Ordinal, ts)
}

// RenderInit renders the fresh deployment
func (r *StatusRenderer) RenderInit(result *usecase.InitGovernanceResult) error {
	fmt.Fprintln(r.out, FormatSuccess("Governance deployed"))
	fmt.Fprintln(r.out)
	section(r.out, "Contracts")
	r.addresses(result.Addresses)
	fmt.Fprintln(r.out)
	field(r.out, "Deployer", result.Deployer.Hex())
	field(r.out, "Clock", r.clock(result.Clock))
	field(r.out, "State", result.StatePath)
	if len(result.Minted) > 0 {
		fmt.Fprintln(r.out)
		section(r.out, "Allocations")
		for _, a := range result.Minted {
			note := ""
			if a.SelfDelegate {
				note = labelStyle.Sprint(" (self-delegated)")
			}
			field(r.out, shortAddress(a.Account), amount(a.Amount)+note)
		}
	}
	return nil
}

// RenderStatus renders the deployment overview
func (r *StatusRenderer) RenderStatus(result *usecase.GovernanceStatusResult) error {
	section(r.out, "Contracts")
	r.addresses(result.Addresses)
	fmt.Fprintln(r.out)

	section(r.out, "Governor "+result.Settings.Name)
	field(r.out, "Voting delay", result.Settings.VotingDelay)
	field(r.out, "Voting period", result.Settings.VotingPeriod)
	field(r.out, "Proposal threshold", amount(result.Settings.ProposalThreshold))
	field(r.out, "Quorum", fmt.Sprintf("%d/%d of supply", result.Settings.QuorumNumerator, result.Settings.QuorumDenominator))
	field(r.out, "Total supply", amount(result.TotalSupply))
	fmt.Fprintln(r.out)

	section(r.out, "Timelock")
	field(r.out, "Min delay", fmt.Sprintf("%ds", result.Timelock.MinDelay))
	field(r.out, "Grace period", fmt.Sprintf("%ds", result.Timelock.GracePeriod))
	field(r.out, "Pending operations", result.PendingOps)
	fmt.Fprintln(r.out)

	section(r.out, "Proposals")
	found := false
	for _, state := range models.AllProposalStates {
		if n := result.ByState[state]; n > 0 {
			field(r.out, StateTitle(state), n)
			found = true
		}
	}
	if !found {
		fmt.Fprintf(r.out, "  %s\n", labelStyle.Sprint("(none)"))
	}
	fmt.Fprintln(r.out)

	field(r.out, "Box value", result.BoxValue)
	field(r.out, "Clock", r.clock(result.Clock))
	field(r.out, "State", result.StatePath)
	return nil
}

// RenderClock renders the result of mine or warp
func (r *StatusRenderer) RenderClock(result *usecase.AdvanceClockResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Clock advanced %d blocks, %ds",
		result.After.Ordinal-result.Before.Ordinal, result.After.Timestamp-result.Before.Timestamp)))
	field(r.out, "Now", r.clock(result.After))
	return nil
}

// RenderBox renders the protected value
func (r *StatusRenderer) RenderBox(result *usecase.BoxResult) error {
	field(r.out, "Box", result.Address.Hex())
	field(r.out, "Owner", result.Owner.Hex())
	field(r.out, "Value", result.Value)
	return nil
}

// RenderEvents renders the event log
func (r *StatusRenderer) RenderEvents(events []domain.EventEnvelope) error {
	if len(events) == 0 {
		fmt.Fprintln(r.out, "No events found")
		return nil
	}
	for _, e := range events {
		fmt.Fprintf(r.out, "%s %s\n", labelStyle.Sprintf("#%-5d @%-8d", e.Seq, e.Ordinal), e.Event.String())
	}
	return nil
}
