package models

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ProposalState represents the computed lifecycle state of a Governor proposal
type ProposalState string

const (
	ProposalStatePending   ProposalState = "pending"
	ProposalStateActive    ProposalState = "active"
	ProposalStateCanceled  ProposalState = "canceled"
	ProposalStateDefeated  ProposalState = "defeated"
	ProposalStateSucceeded ProposalState = "succeeded"
	ProposalStateQueued    ProposalState = "queued"
	ProposalStateExpired   ProposalState = "expired"
	ProposalStateExecuted  ProposalState = "executed"
)

// AllProposalStates lists states in lifecycle order
var AllProposalStates = []ProposalState{
	ProposalStatePending,
	ProposalStateActive,
	ProposalStateCanceled,
	ProposalStateDefeated,
	ProposalStateSucceeded,
	ProposalStateQueued,
	ProposalStateExpired,
	ProposalStateExecuted,
}

// ParseProposalState accepts a state name in any case
func ParseProposalState(s string) (ProposalState, error) {
	want := ProposalState(strings.ToLower(strings.TrimSpace(s)))
	for _, state := range AllProposalStates {
		if state == want {
			return state, nil
		}
	}
	return "", fmt.Errorf("invalid proposal state: %s", s)
}

// IsTerminal reports whether no further transition is possible
func (s ProposalState) IsTerminal() bool {
	switch s {
	case ProposalStateCanceled, ProposalStateDefeated, ProposalStateExpired, ProposalStateExecuted:
		return true
	}
	return false
}

// VoteType is the support value of a vote
type VoteType uint8

const (
	VoteAgainst VoteType = 0
	VoteFor     VoteType = 1
	VoteAbstain VoteType = 2
)

func (v VoteType) String() string {
	switch v {
	case VoteAgainst:
		return "against"
	case VoteFor:
		return "for"
	case VoteAbstain:
		return "abstain"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(v))
	}
}

// ParseVoteType accepts "for", "against", "abstain" or their numeric forms
func ParseVoteType(s string) (VoteType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "against", "no":
		return VoteAgainst, nil
	case "1", "for", "yes":
		return VoteFor, nil
	case "2", "abstain":
		return VoteAbstain, nil
	}
	return 0, fmt.Errorf("invalid vote type: %s", s)
}

// Proposal is the immutable core of a Governor proposal plus its cancellation flag
type Proposal struct {
	ID              common.Hash    `json:"proposalId"`
	Proposer        common.Address `json:"proposer"`
	Calls           []Call         `json:"calls"`
	Description     string         `json:"description"`
	DescriptionHash common.Hash    `json:"descriptionHash"`
	CreatedAt       uint64         `json:"createdAt"`
	VoteStart       uint64         `json:"voteStart"`
	VoteDuration    uint64         `json:"voteDuration"`
	Canceled        bool           `json:"canceled"`
}

// Snapshot is the ordinal at which voting power is evaluated. Voting opens on
// the ordinal after it.
func (p *Proposal) Snapshot() uint64 {
	return p.VoteStart
}

// Deadline is the last ordinal at which votes are accepted
func (p *Proposal) Deadline() uint64 {
	return p.VoteStart + p.VoteDuration
}

// Tally holds the accumulated vote weights of a proposal and who has voted
type Tally struct {
	Against *uint256.Int            `json:"againstVotes"`
	For     *uint256.Int            `json:"forVotes"`
	Abstain *uint256.Int            `json:"abstainVotes"`
	Voters  map[common.Address]bool `json:"voters"`
}

// NewTally returns an empty tally
func NewTally() *Tally {
	return &Tally{
		Against: new(uint256.Int),
		For:     new(uint256.Int),
		Abstain: new(uint256.Int),
		Voters:  make(map[common.Address]bool),
	}
}

// Clone deep-copies the tally
func (t *Tally) Clone() *Tally {
	c := &Tally{
		Against: new(uint256.Int).Set(t.Against),
		For:     new(uint256.Int).Set(t.For),
		Abstain: new(uint256.Int).Set(t.Abstain),
		Voters:  make(map[common.Address]bool, len(t.Voters)),
	}
	for k, v := range t.Voters {
		c.Voters[k] = v
	}
	return c
}

// ProposalView is the externally observable summary of a proposal
type ProposalView struct {
	Proposal
	State       ProposalState `json:"state"`
	Votes       *Tally        `json:"votes"`
	Quorum      *uint256.Int  `json:"quorum"`
	OperationID common.Hash   `json:"operationId"`
	ETA         uint64        `json:"eta,omitempty"`
}
