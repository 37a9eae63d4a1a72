package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// ProposalRenderer renders proposals and the results of proposal commands
type ProposalRenderer struct {
	out io.Writer
}

// NewProposalRenderer creates a new proposal renderer
func NewProposalRenderer(out io.Writer) *ProposalRenderer {
	return &ProposalRenderer{out: out}
}

// RenderList renders the proposal table
func (r *ProposalRenderer) RenderList(result *usecase.ListProposalsResult) error {
	if len(result.Proposals) == 0 {
		fmt.Fprintln(r.out, "No proposals found")
		return nil
	}

	t := newTable(r.out, table.Row{"ID", "State", "Proposer", "For", "Against", "Abstain", "Quorum", "Description"})
	for _, p := range result.Proposals {
		votes := p.Votes
		if votes == nil {
			votes = models.NewTally()
		}
		t.AppendRow(table.Row{
			idStyle.Sprint(shortHash(p.ID)),
			StateTitle(p.State),
			shortAddress(p.Proposer),
			amount(votes.For),
			amount(votes.Against),
			amount(votes.Abstain),
			amount(p.Quorum),
			firstLine(p.Description),
		})
	}
	t.Render()

	var parts []string
	for _, state := range models.AllProposalStates {
		if n := result.Summary.ByState[state]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, state))
		}
	}
	fmt.Fprintf(r.out, "\n%d proposals (%s) at %s %d\n", result.Summary.Total, strings.Join(parts, ", "), result.Clock.Mode, result.Clock.Ordinal)
	return nil
}

// RenderProposal renders the full details of one proposal
func (r *ProposalRenderer) RenderProposal(result *usecase.ShowProposalResult) error {
	p := result.Proposal
	section(r.out, "Proposal "+p.ID.Hex())
	field(r.out, "State", StateTitle(p.State))
	field(r.out, "Proposer", p.Proposer.Hex())
	field(r.out, "Created at", p.CreatedAt)
	field(r.out, "Snapshot", p.Snapshot())
	field(r.out, "Deadline", p.Deadline())
	field(r.out, "Now", fmt.Sprintf("%d (%s)", result.Clock.Ordinal, result.Clock.Mode))
	field(r.out, "Description hash", p.DescriptionHash.Hex())

	fmt.Fprintln(r.out)
	section(r.out, "Description")
	for _, line := range strings.Split(strings.TrimSpace(p.Description), "\n") {
		fmt.Fprintf(r.out, "  %s\n", line)
	}

	fmt.Fprintln(r.out)
	section(r.out, fmt.Sprintf("Calls (%d)", len(p.Calls)))
	renderCalls(r.out, p.Calls)

	fmt.Fprintln(r.out)
	section(r.out, "Votes")
	if p.Votes != nil {
		field(r.out, "For", amount(p.Votes.For))
		field(r.out, "Against", amount(p.Votes.Against))
		field(r.out, "Abstain", amount(p.Votes.Abstain))
		field(r.out, "Voters", len(p.Votes.Voters))
	}
	field(r.out, "Quorum", amount(p.Quorum))
	if result.TotalSupplyAtSnapshot != nil {
		field(r.out, "Supply at snapshot", amount(result.TotalSupplyAtSnapshot))
	}

	if result.Operation != nil {
		fmt.Fprintln(r.out)
		section(r.out, "Timelock")
		field(r.out, "Operation", result.Operation.ID.Hex())
		field(r.out, "State", operationTitle(result.Operation.State))
		field(r.out, "Ready at", result.Operation.ReadyAt)
	}

	if len(result.Events) > 0 {
		fmt.Fprintln(r.out)
		section(r.out, "History")
		for _, e := range result.Events {
			fmt.Fprintf(r.out, "  %s %s\n", labelStyle.Sprintf("#%-5d @%-8d", e.Seq, e.Ordinal), e.Event.String())
		}
	}
	return nil
}

func renderCalls(out io.Writer, calls []models.Call) {
	for i, c := range calls {
		data := hexutil.Encode(c.Data)
		if len(data) > 74 {
			data = data[:74] + "…"
		}
		fmt.Fprintf(out, "  %d. %s value=%s data=%s\n", i+1, addressStyle.Sprint(c.Target.Hex()), c.Value, data)
	}
}

// RenderCreated renders the result of propose
func (r *ProposalRenderer) RenderCreated(result *usecase.CreateProposalResult) error {
	p := result.Proposal
	fmt.Fprintln(r.out, FormatSuccess("Proposal created"))
	field(r.out, "ID", idStyle.Sprint(p.ID.Hex()))
	field(r.out, "State", StateTitle(p.State))
	field(r.out, "Voting starts", p.Snapshot()+1)
	field(r.out, "Voting ends", p.Deadline())
	return nil
}

// RenderVote renders the result of a vote
func (r *ProposalRenderer) RenderVote(result *usecase.CastVoteResult) error {
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("Voted %s on %s", result.Support, shortHash(result.Proposal.ID))))
	field(r.out, "Voter", result.Voter.Hex())
	field(r.out, "Weight", amount(result.Weight))
	if v := result.Proposal.Votes; v != nil {
		field(r.out, "Tally", fmt.Sprintf("for %s / against %s / abstain %s", amount(v.For), amount(v.Against), amount(v.Abstain)))
	}
	field(r.out, "Quorum", amount(result.Proposal.Quorum))
	return nil
}

// RenderQueued renders the result of queue
func (r *ProposalRenderer) RenderQueued(result *usecase.QueueProposalResult) error {
	fmt.Fprintln(r.out, FormatSuccess("Proposal queued in the timelock"))
	field(r.out, "Proposal", result.Proposal.ID.Hex())
	if op := result.Operation; op != nil {
		field(r.out, "Operation", op.ID.Hex())
		field(r.out, "Ready at", op.ReadyAt)
	}
	return nil
}

// RenderExecuted renders the result of execute
func (r *ProposalRenderer) RenderExecuted(result *usecase.ExecuteProposalResult) error {
	if result.Warped > 0 {
		color.New(color.Faint).Fprintf(r.out, "Clock advanced %ds to the operation's ready time\n", result.Warped)
	}
	fmt.Fprintln(r.out, FormatSuccess("Proposal executed"))
	field(r.out, "Proposal", result.Proposal.ID.Hex())
	field(r.out, "State", StateTitle(result.Proposal.State))
	if result.Waited > 0 {
		field(r.out, "Waited", result.Waited.Round(time.Second))
	}
	return nil
}

// RenderCanceled renders the result of cancel
func (r *ProposalRenderer) RenderCanceled(result *usecase.CancelProposalResult) error {
	if result.Aborted {
		fmt.Fprintln(r.out, FormatWarning("Cancellation aborted"))
		return nil
	}
	fmt.Fprintln(r.out, FormatSuccess("Proposal canceled"))
	field(r.out, "Proposal", result.Proposal.ID.Hex())
	field(r.out, "Canceller", result.Canceller.Hex())
	return nil
}
