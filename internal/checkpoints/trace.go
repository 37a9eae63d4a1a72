// Package checkpoints implements an append-only history of values keyed by
// ordinal, answering "what was the value at ordinal k" by binary search.
package checkpoints

import (
	"sort"

	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// Trace is an ordered sequence of checkpoints with strictly increasing keys.
// The zero value is an empty trace.
type Trace struct {
	checkpoints []models.Checkpoint
}

// FromCheckpoints rebuilds a trace from persisted checkpoints
func FromCheckpoints(cps []models.Checkpoint) (*Trace, error) {
	t := &Trace{}
	for _, cp := range cps {
		if n := len(t.checkpoints); n > 0 && t.checkpoints[n-1].Key >= cp.Key {
			return nil, domain.NewError("checkpoints.restore", domain.ErrCheckpointOrder,
				"key %d after %d", cp.Key, t.checkpoints[n-1].Key)
		}
		t.checkpoints = append(t.checkpoints, models.Checkpoint{Key: cp.Key, Value: valueOrZero(cp.Value)})
	}
	return t, nil
}

// Push records value from key onwards and returns the previous latest value.
// A push at the latest key overwrites it; an older key is rejected.
func (t *Trace) Push(key uint64, value *uint256.Int) (*uint256.Int, error) {
	prev := t.Latest()
	n := len(t.checkpoints)
	if n > 0 {
		last := &t.checkpoints[n-1]
		if key < last.Key {
			return nil, domain.NewError("checkpoints.push", domain.ErrCheckpointOrder,
				"key %d before latest %d", key, last.Key)
		}
		if key == last.Key {
			last.Value = new(uint256.Int).Set(value)
			return prev, nil
		}
	}
	t.checkpoints = append(t.checkpoints, models.Checkpoint{Key: key, Value: new(uint256.Int).Set(value)})
	return prev, nil
}

// Latest returns the most recent value, or zero for an empty trace
func (t *Trace) Latest() *uint256.Int {
	if len(t.checkpoints) == 0 {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(t.checkpoints[len(t.checkpoints)-1].Value)
}

// LatestKey returns the key of the most recent checkpoint
func (t *Trace) LatestKey() (uint64, bool) {
	if len(t.checkpoints) == 0 {
		return 0, false
	}
	return t.checkpoints[len(t.checkpoints)-1].Key, true
}

// UpperLookup returns the value of the last checkpoint with key <= key, or zero if none
func (t *Trace) UpperLookup(key uint64) *uint256.Int {
	idx := sort.Search(len(t.checkpoints), func(i int) bool {
		return t.checkpoints[i].Key > key
	})
	if idx == 0 {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(t.checkpoints[idx-1].Value)
}

// Len returns the number of checkpoints
func (t *Trace) Len() int {
	return len(t.checkpoints)
}

// Checkpoints returns a copy of the recorded history
func (t *Trace) Checkpoints() []models.Checkpoint {
	out := make([]models.Checkpoint, len(t.checkpoints))
	for i, cp := range t.checkpoints {
		out[i] = models.Checkpoint{Key: cp.Key, Value: new(uint256.Int).Set(cp.Value)}
	}
	return out
}

func valueOrZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(v)
}
