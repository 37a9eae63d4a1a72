package checkpoints_test

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/checkpoints"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func TestTrace(t *testing.T) {
	t.Run("empty trace reads zero", func(t *testing.T) {
		var tr checkpoints.Trace
		assert.True(t, tr.Latest().IsZero())
		assert.True(t, tr.UpperLookup(100).IsZero())
		_, ok := tr.LatestKey()
		assert.False(t, ok)
	})

	t.Run("upper lookup finds last checkpoint at or before key", func(t *testing.T) {
		var tr checkpoints.Trace
		for _, cp := range []struct{ key, value uint64 }{{2, 10}, {5, 30}, {9, 5}} {
			_, err := tr.Push(cp.key, u(cp.value))
			require.NoError(t, err)
		}

		tests := []struct {
			key      uint64
			expected uint64
		}{
			{0, 0}, {1, 0}, {2, 10}, {4, 10}, {5, 30}, {8, 30}, {9, 5}, {1000, 5},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.expected, tr.UpperLookup(tt.key).Uint64(), "key %d", tt.key)
		}
	})

	t.Run("push at same key overwrites", func(t *testing.T) {
		var tr checkpoints.Trace
		_, err := tr.Push(3, u(1))
		require.NoError(t, err)
		prev, err := tr.Push(3, u(7))
		require.NoError(t, err)
		assert.Equal(t, uint64(1), prev.Uint64())
		assert.Equal(t, 1, tr.Len())
		assert.Equal(t, uint64(7), tr.UpperLookup(3).Uint64())
	})

	t.Run("push before latest key is rejected", func(t *testing.T) {
		var tr checkpoints.Trace
		_, err := tr.Push(5, u(1))
		require.NoError(t, err)
		_, err = tr.Push(4, u(2))
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrCheckpointOrder))
		assert.Equal(t, domain.KindSequence, domain.KindOf(err))
		assert.Equal(t, uint64(1), tr.Latest().Uint64())
	})

	t.Run("returned values are copies", func(t *testing.T) {
		var tr checkpoints.Trace
		_, err := tr.Push(1, u(4))
		require.NoError(t, err)
		v := tr.Latest()
		v.SetUint64(99)
		assert.Equal(t, uint64(4), tr.Latest().Uint64())
	})

	t.Run("restore validates ordering", func(t *testing.T) {
		_, err := checkpoints.FromCheckpoints([]models.Checkpoint{{Key: 2, Value: u(1)}, {Key: 2, Value: u(3)}})
		require.Error(t, err)

		tr, err := checkpoints.FromCheckpoints([]models.Checkpoint{{Key: 2, Value: u(1)}, {Key: 6, Value: u(3)}})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), tr.UpperLookup(5).Uint64())
		assert.Len(t, tr.Checkpoints(), 2)
	})
}
