package governance

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-gov/internal/box"
	"github.com/trebuchet-org/treb-gov/internal/clock"
	"github.com/trebuchet-org/treb-gov/internal/governor"
	"github.com/trebuchet-org/treb-gov/internal/timelock"
	"github.com/trebuchet-org/treb-gov/internal/token"
	"github.com/trebuchet-org/treb-gov/internal/votes"
)

// StateVersion is bumped whenever the persisted layout changes
const StateVersion = 1

// State is the complete persisted form of a System
type State struct {
	Version   int                         `json:"version"`
	Deployed  bool                        `json:"deployed"`
	Addresses Addresses                   `json:"addresses"`
	Clock     *clock.ManualState          `json:"clock,omitempty"`
	EventSeq  uint64                      `json:"eventSeq"`
	Ledger    votes.State                 `json:"ledger"`
	Token     token.State                 `json:"token"`
	Timelock  timelock.State              `json:"timelock"`
	Governor  governor.State              `json:"governor"`
	Box       box.State                   `json:"box"`
	Native    map[common.Address]*big.Int `json:"native"`
}

// Export captures the whole system
func (s *System) Export() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := &State{
		Version:   StateVersion,
		Deployed:  s.deployed,
		Addresses: s.addresses,
		EventSeq:  s.journal.seq,
		Ledger:    s.ledger.Export(),
		Token:     s.token.Export(),
		Timelock:  s.timelock.Export(),
		Governor:  s.governor.Export(),
		Box:       s.box.Export(),
		Native:    s.router.Bank().Export(),
	}
	if mc, ok := s.clock.(*clock.ManualClock); ok {
		cs := mc.State()
		st.Clock = &cs
	}
	return st
}

// Restore replaces the whole system with a persisted state. Events buffered
// while constructing the components are discarded.
func (s *System) Restore(st *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.Version != StateVersion {
		return fmt.Errorf("unsupported state version %d", st.Version)
	}
	if st.Addresses != s.addresses {
		return fmt.Errorf("state belongs to a deployment with governor %s, configured deployer yields %s",
			st.Addresses.Governor.Hex(), s.addresses.Governor.Hex())
	}
	if err := s.ledger.Restore(st.Ledger); err != nil {
		return fmt.Errorf("failed to restore ledger: %w", err)
	}
	if err := s.governor.Restore(st.Governor); err != nil {
		return fmt.Errorf("failed to restore governor: %w", err)
	}
	s.token.Restore(st.Token)
	s.timelock.Restore(st.Timelock)
	s.box.Restore(st.Box)
	s.router.Bank().Restore(st.Native)
	if mc, ok := s.clock.(*clock.ManualClock); ok && st.Clock != nil {
		mc.Restore(*st.Clock)
	}

	s.journal.pending = nil
	s.journal.seq = st.EventSeq
	s.deployed = st.Deployed
	return nil
}
