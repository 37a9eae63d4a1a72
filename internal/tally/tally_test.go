package tally_test

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/tally"
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func tallyOf(forVotes, against, abstain uint64) *models.Tally {
	t := models.NewTally()
	t.For.SetUint64(forVotes)
	t.Against.SetUint64(against)
	t.Abstain.SetUint64(abstain)
	return t
}

func TestIsSucceeded(t *testing.T) {
	tests := []struct {
		name                  string
		forVotes, against, ab uint64
		quorum                uint64
		expected              bool
	}{
		{"for beats against with quorum", 10, 5, 0, 4, true},
		{"tie is not success", 5, 5, 10, 4, false},
		{"below quorum", 3, 0, 0, 4, false},
		{"abstain completes quorum", 3, 0, 1, 4, true},
		{"abstain does not break a tie", 2, 2, 100, 4, false},
		{"zero quorum needs only a majority", 1, 0, 0, 0, true},
		{"no votes at zero quorum", 0, 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tally.IsSucceeded(tallyOf(tt.forVotes, tt.against, tt.ab), u(tt.quorum)))
		})
	}
}

func TestMoreForVotesNeverDefeats(t *testing.T) {
	for against := uint64(0); against < 6; against++ {
		for abstain := uint64(0); abstain < 6; abstain++ {
			for quorum := uint64(0); quorum < 8; quorum++ {
				for forVotes := uint64(0); forVotes < 10; forVotes++ {
					if !tally.IsSucceeded(tallyOf(forVotes, against, abstain), u(quorum)) {
						continue
					}
					assert.True(t, tally.IsSucceeded(tallyOf(forVotes+1, against, abstain), u(quorum)),
						"for=%d against=%d abstain=%d quorum=%d", forVotes, against, abstain, quorum)
				}
			}
		}
	}
}

func TestSimpleCounting(t *testing.T) {
	voter := common.HexToAddress("0x1111111111111111111111111111111111111111")
	c := tally.SimpleCounting{}

	t.Run("counts into the selected bucket", func(t *testing.T) {
		tl := models.NewTally()
		require.NoError(t, c.CountVote(tl, voter, models.VoteAbstain, u(7)))
		assert.Equal(t, uint64(7), tl.Abstain.Uint64())
		assert.True(t, tl.For.IsZero())
		assert.True(t, tl.Voters[voter])
	})

	t.Run("second vote is rejected without mutation", func(t *testing.T) {
		tl := models.NewTally()
		require.NoError(t, c.CountVote(tl, voter, models.VoteFor, u(7)))
		err := c.CountVote(tl, voter, models.VoteFor, u(7))
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrAlreadyVoted))
		assert.Equal(t, domain.KindEligibility, domain.KindOf(err))
		assert.Equal(t, uint64(7), tl.For.Uint64())
	})

	t.Run("unknown support value", func(t *testing.T) {
		tl := models.NewTally()
		err := c.CountVote(tl, voter, models.VoteType(9), u(1))
		assert.True(t, errors.Is(err, domain.ErrInvalidVoteType))
		assert.False(t, tl.Voters[voter])
	})

	assert.Equal(t, "support=bravo&quorum=for,abstain", c.Mode())
}

type fixedSupply map[uint64]uint64

func (f fixedSupply) TotalPowerAt(ordinal uint64) (*uint256.Int, error) {
	return u(f[ordinal]), nil
}

func TestQuorumFraction(t *testing.T) {
	t.Run("floor division", func(t *testing.T) {
		assert.Equal(t, uint64(4), tally.Quorum(u(100), 4, 100).Uint64())
		assert.Equal(t, uint64(3), tally.Quorum(u(99), 4, 100).Uint64())
		assert.Equal(t, uint64(0), tally.Quorum(u(24), 4, 100).Uint64())
	})

	t.Run("invalid fractions", func(t *testing.T) {
		_, err := tally.NewQuorumFraction(5, 0)
		require.Error(t, err)
		_, err = tally.NewQuorumFraction(101, 100)
		require.Error(t, err)
	})

	t.Run("numerator history keeps past quorums", func(t *testing.T) {
		q, err := tally.NewQuorumFraction(4, 100)
		require.NoError(t, err)
		old, err := q.UpdateNumerator(10, 20)
		require.NoError(t, err)
		assert.Equal(t, uint64(4), old)

		supply := fixedSupply{10: 1000, 30: 1000}
		before, err := q.QuorumAt(supply, 10)
		require.NoError(t, err)
		after, err := q.QuorumAt(supply, 30)
		require.NoError(t, err)
		assert.Equal(t, uint64(40), before.Uint64())
		assert.Equal(t, uint64(100), after.Uint64())
		assert.Equal(t, uint64(10), q.Numerator())
	})

	t.Run("export and restore", func(t *testing.T) {
		q, err := tally.NewQuorumFraction(4, 100)
		require.NoError(t, err)
		_, err = q.UpdateNumerator(6, 3)
		require.NoError(t, err)

		r, err := tally.NewQuorumFraction(1, 1)
		require.NoError(t, err)
		require.NoError(t, r.Restore(q.Export()))
		assert.Equal(t, q.Export(), r.Export())
		assert.Equal(t, uint64(100), r.Denominator())
	})
}
