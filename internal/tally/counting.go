// Package tally holds the quorum and vote-counting policy of the governor.
package tally

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// Counter is the vote-counting strategy plugged into the governor
type Counter interface {
	// Mode describes the strategy in the EIP-6372 style query-string form
	Mode() string
	CountVote(t *models.Tally, voter common.Address, support models.VoteType, weight *uint256.Int) error
	QuorumReached(t *models.Tally, quorum *uint256.Int) bool
	VoteSucceeded(t *models.Tally) bool
}

// SimpleCounting counts for, against and abstain. Abstain counts toward quorum
// but not toward the for/against comparison.
type SimpleCounting struct{}

var _ Counter = SimpleCounting{}

func (SimpleCounting) Mode() string {
	return "support=bravo&quorum=for,abstain"
}

// CountVote adds weight to the bucket selected by support and records voter.
// Nothing is mutated when the vote is rejected.
func (SimpleCounting) CountVote(t *models.Tally, voter common.Address, support models.VoteType, weight *uint256.Int) error {
	const op = "tally.countVote"
	if t.Voters[voter] {
		return domain.NewError(op, domain.ErrAlreadyVoted, "voter %s", voter.Hex())
	}

	var bucket *uint256.Int
	switch support {
	case models.VoteAgainst:
		bucket = t.Against
	case models.VoteFor:
		bucket = t.For
	case models.VoteAbstain:
		bucket = t.Abstain
	default:
		return domain.NewError(op, domain.ErrInvalidVoteType, "support %d", uint8(support))
	}

	bucket.Add(bucket, weight)
	t.Voters[voter] = true
	return nil
}

// QuorumReached reports for + abstain >= quorum
func (SimpleCounting) QuorumReached(t *models.Tally, quorum *uint256.Int) bool {
	sum := new(uint256.Int).Add(t.For, t.Abstain)
	return !sum.Lt(quorum)
}

// VoteSucceeded reports for > against
func (SimpleCounting) VoteSucceeded(t *models.Tally) bool {
	return t.For.Gt(t.Against)
}

// Succeeded combines the two criteria of a counter
func Succeeded(c Counter, t *models.Tally, quorum *uint256.Int) bool {
	return c.QuorumReached(t, quorum) && c.VoteSucceeded(t)
}

// IsSucceeded applies SimpleCounting: for > against and for + abstain >= quorum
func IsSucceeded(t *models.Tally, quorum *uint256.Int) bool {
	return Succeeded(SimpleCounting{}, t, quorum)
}
