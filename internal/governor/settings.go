package governor

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Settings configures a Governor. Delay and period are in clock ordinals.
type Settings struct {
	Name              string       `json:"name"`
	VotingDelay       uint64       `json:"votingDelay"`
	VotingPeriod      uint64       `json:"votingPeriod"`
	ProposalThreshold *uint256.Int `json:"proposalThreshold"`
	QuorumNumerator   uint64       `json:"quorumNumerator"`
	QuorumDenominator uint64       `json:"quorumDenominator"`
}

const (
	maxVotingDelay  = 1<<48 - 1
	maxVotingPeriod = 1<<32 - 1
)

// DefaultSettings returns the reference configuration: one ordinal of delay,
// a week of twelve-second blocks to vote, no threshold and a 4% quorum.
func DefaultSettings() Settings {
	return Settings{
		Name:              "TrebGovernor",
		VotingDelay:       1,
		VotingPeriod:      50400,
		ProposalThreshold: new(uint256.Int),
		QuorumNumerator:   4,
		QuorumDenominator: 100,
	}
}

// Validate checks the settings for internal consistency
func (s Settings) Validate() error {
	if s.VotingPeriod == 0 {
		return fmt.Errorf("voting period must be positive")
	}
	if s.VotingPeriod > maxVotingPeriod {
		return fmt.Errorf("voting period %d exceeds uint32", s.VotingPeriod)
	}
	if s.VotingDelay > maxVotingDelay {
		return fmt.Errorf("voting delay %d exceeds uint48", s.VotingDelay)
	}
	if s.QuorumDenominator == 0 {
		return fmt.Errorf("quorum denominator must be positive")
	}
	if s.QuorumNumerator > s.QuorumDenominator {
		return fmt.Errorf("quorum numerator %d exceeds denominator %d", s.QuorumNumerator, s.QuorumDenominator)
	}
	return nil
}
