package tally

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/checkpoints"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// SupplySource answers total voting power at an ordinal
type SupplySource interface {
	TotalPowerAt(ordinal uint64) (*uint256.Int, error)
}

// QuorumFraction requires a fixed fraction of the total supply at the
// proposal snapshot. The numerator is checkpointed so that changing it never
// alters the quorum of proposals whose snapshot has already passed.
type QuorumFraction struct {
	numerators  *checkpoints.Trace
	denominator uint64
}

// QuorumState is the persisted form of a QuorumFraction
type QuorumState struct {
	Numerators  []models.Checkpoint `json:"numerators"`
	Denominator uint64              `json:"denominator"`
}

// NewQuorumFraction creates a policy with numerator/denominator in force from ordinal 0
func NewQuorumFraction(numerator, denominator uint64) (*QuorumFraction, error) {
	if err := validateFraction(numerator, denominator); err != nil {
		return nil, err
	}
	q := &QuorumFraction{numerators: &checkpoints.Trace{}, denominator: denominator}
	if _, err := q.numerators.Push(0, uint256.NewInt(numerator)); err != nil {
		return nil, err
	}
	return q, nil
}

// Quorum computes total * numerator / denominator, rounding down
func Quorum(total *uint256.Int, numerator, denominator uint64) *uint256.Int {
	if denominator == 0 {
		return new(uint256.Int)
	}
	z, overflow := new(uint256.Int).MulDivOverflow(total, uint256.NewInt(numerator), uint256.NewInt(denominator))
	if overflow {
		// the fraction is at most one, so the true result fits
		return new(uint256.Int).Set(total)
	}
	return z
}

// Numerator returns the latest numerator
func (q *QuorumFraction) Numerator() uint64 {
	return q.numerators.Latest().Uint64()
}

// NumeratorAt returns the numerator in force at ordinal
func (q *QuorumFraction) NumeratorAt(ordinal uint64) uint64 {
	return q.numerators.UpperLookup(ordinal).Uint64()
}

// Denominator returns the fixed denominator
func (q *QuorumFraction) Denominator() uint64 {
	return q.denominator
}

// UpdateNumerator changes the numerator from ordinal at onwards
func (q *QuorumFraction) UpdateNumerator(numerator, at uint64) (uint64, error) {
	if err := validateFraction(numerator, q.denominator); err != nil {
		return 0, err
	}
	old, err := q.numerators.Push(at, uint256.NewInt(numerator))
	if err != nil {
		return 0, err
	}
	return old.Uint64(), nil
}

// QuorumAt returns the quorum required for a proposal with the given snapshot
func (q *QuorumFraction) QuorumAt(supply SupplySource, ordinal uint64) (*uint256.Int, error) {
	total, err := supply.TotalPowerAt(ordinal)
	if err != nil {
		return nil, err
	}
	return Quorum(total, q.NumeratorAt(ordinal), q.denominator), nil
}

// Export returns the persisted form
func (q *QuorumFraction) Export() QuorumState {
	return QuorumState{Numerators: q.numerators.Checkpoints(), Denominator: q.denominator}
}

// Restore replaces the policy with a persisted state
func (q *QuorumFraction) Restore(s QuorumState) error {
	tr, err := checkpoints.FromCheckpoints(s.Numerators)
	if err != nil {
		return err
	}
	if s.Denominator == 0 {
		return fmt.Errorf("quorum denominator must be positive")
	}
	q.numerators, q.denominator = tr, s.Denominator
	return nil
}

func validateFraction(numerator, denominator uint64) error {
	if denominator == 0 {
		return fmt.Errorf("quorum denominator must be positive")
	}
	if numerator > denominator {
		return fmt.Errorf("invalid quorum fraction %d/%d", numerator, denominator)
	}
	return nil
}
