package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/clock"
)

func TestManualClock(t *testing.T) {
	t.Run("mine advances blocks and time", func(t *testing.T) {
		c := clock.NewManual(10, 1000, 12)
		c.Mine(5)
		assert.Equal(t, uint64(15), c.Ordinal())
		assert.Equal(t, uint64(1060), c.Now())
		assert.Equal(t, clock.ModeBlockNumber, c.Mode())
	})

	t.Run("warp moves time and mines one block", func(t *testing.T) {
		c := clock.NewManual(1, 0, 12)
		require.NoError(t, c.Warp(2*time.Hour))
		assert.Equal(t, uint64(2), c.Ordinal())
		assert.Equal(t, uint64(7200), c.Now())
	})

	t.Run("warp rejects negative durations", func(t *testing.T) {
		c := clock.NewManual(1, 0, 12)
		require.Error(t, c.Warp(-time.Second))
	})

	t.Run("state round trip", func(t *testing.T) {
		c := clock.NewManual(7, 84, 12)
		restored := clock.NewManual(0, 0, 0)
		restored.Restore(c.State())
		assert.Equal(t, c.State(), restored.State())
	})
}

func TestWallClock(t *testing.T) {
	fixed := time.Unix(1_700_000_000, 0)
	c := clock.NewWall(func() time.Time { return fixed })
	assert.Equal(t, uint64(1_700_000_000), c.Ordinal())
	assert.Equal(t, c.Ordinal(), c.Now())
	assert.Equal(t, clock.ModeTimestamp, c.Mode())
}
