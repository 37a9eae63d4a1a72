// Package clock supplies the ordinals used to order governance events.
//
// The governor and the voting-power ledger work on Ordinal (a block number in
// blocknumber mode, a unix timestamp in timestamp mode). The timelock always
// works on Now, a unix timestamp in seconds.
package clock

import (
	"fmt"
	"time"
)

// Mode names the meaning of an ordinal
type Mode string

const (
	ModeBlockNumber Mode = "blocknumber"
	ModeTimestamp   Mode = "timestamp"
)

// Clock is a monotonic source of ordinals and timestamps
type Clock interface {
	Ordinal() uint64
	Now() uint64
	Mode() Mode
}

// ManualClock is advanced explicitly. It is used by tests and by the CLI's
// local chain, where its position is persisted between invocations.
type ManualClock struct {
	block     uint64
	timestamp uint64
	blockTime uint64
}

// ManualState is the persisted form of a ManualClock
type ManualState struct {
	Block     uint64 `json:"block"`
	Timestamp uint64 `json:"timestamp"`
	BlockTime uint64 `json:"blockTime"`
}

// NewManual creates a clock at the given block and timestamp. blockTime is the
// number of seconds added per mined block.
func NewManual(block, timestamp, blockTime uint64) *ManualClock {
	return &ManualClock{block: block, timestamp: timestamp, blockTime: blockTime}
}

func (c *ManualClock) Ordinal() uint64 { return c.block }
func (c *ManualClock) Now() uint64     { return c.timestamp }
func (c *ManualClock) Mode() Mode      { return ModeBlockNumber }

// Mine advances n blocks, moving time forward by n block times
func (c *ManualClock) Mine(n uint64) {
	c.block += n
	c.timestamp += n * c.blockTime
}

// Warp moves time forward by d and mines a single block
func (c *ManualClock) Warp(d time.Duration) error {
	if d < 0 {
		return fmt.Errorf("cannot warp backwards: %s", d)
	}
	c.timestamp += uint64(d / time.Second)
	c.block++
	return nil
}

// State exports the clock position
func (c *ManualClock) State() ManualState {
	return ManualState{Block: c.block, Timestamp: c.timestamp, BlockTime: c.blockTime}
}

// Restore resets the clock to a persisted position
func (c *ManualClock) Restore(s ManualState) {
	c.block = s.Block
	c.timestamp = s.Timestamp
	c.blockTime = s.BlockTime
}

// WallClock uses the system time; its ordinal is the unix timestamp
type WallClock struct {
	now func() time.Time
}

// NewWall creates a wall clock. A nil now uses time.Now.
func NewWall(now func() time.Time) *WallClock {
	if now == nil {
		now = time.Now
	}
	return &WallClock{now: now}
}

func (c *WallClock) Ordinal() uint64 { return uint64(c.now().Unix()) }
func (c *WallClock) Now() uint64     { return uint64(c.now().Unix()) }
func (c *WallClock) Mode() Mode      { return ModeTimestamp }
