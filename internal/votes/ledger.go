// Package votes maintains per-account voting power as checkpointed history.
//
// The ledger never observes token movements on its own. Whatever owns balances
// must call RecordBalanceChange on every mint, burn and transfer leg, and
// Delegate when an account chooses who votes with its units. Both calls are
// preconditions of a consistent power history, not optional hooks.
package votes

import (
	"bytes"
	"log/slog"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/checkpoints"
	"github.com/trebuchet-org/treb-gov/internal/clock"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// Ledger is the voting-power view derived from balance changes.
// It is not safe for concurrent use; callers serialize access.
type Ledger struct {
	clock    clock.Clock
	events   domain.EventSink
	logger   *slog.Logger
	units    map[common.Address]*uint256.Int
	delegate map[common.Address]common.Address
	power    map[common.Address]*checkpoints.Trace
	total    *checkpoints.Trace
}

// State is the persisted form of a Ledger
type State struct {
	Units     map[common.Address]*uint256.Int        `json:"units"`
	Delegates map[common.Address]common.Address      `json:"delegates"`
	Power     map[common.Address][]models.Checkpoint `json:"power"`
	Total     []models.Checkpoint                    `json:"total"`
}

// NewLedger creates an empty ledger
func NewLedger(clk clock.Clock, events domain.EventSink, logger *slog.Logger) *Ledger {
	if events == nil {
		events = domain.NopSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		clock:    clk,
		events:   events,
		logger:   logger,
		units:    make(map[common.Address]*uint256.Int),
		delegate: make(map[common.Address]common.Address),
		power:    make(map[common.Address]*checkpoints.Trace),
		total:    &checkpoints.Trace{},
	}
}

// RecordBalanceChange records that account's balance moved from oldBalance to
// newBalance at ordinal at. The total-power history always moves by the delta;
// the account's delegate (if any) gains or loses the same delta.
func (l *Ledger) RecordBalanceChange(account common.Address, oldBalance, newBalance *uint256.Int, at uint64) error {
	const op = "ledger.recordBalanceChange"

	if err := l.checkOrdinal(op, at); err != nil {
		return err
	}
	if recorded := l.Units(account); !recorded.Eq(oldBalance) {
		return domain.NewError(op, domain.ErrBalanceMismatch,
			"account %s: recorded %s, reported %s", account.Hex(), recorded.Dec(), oldBalance.Dec())
	}

	delegatee, delegated := l.delegate[account]
	if err := l.checkTraceKey(op, l.total, at); err != nil {
		return err
	}
	if delegated {
		if err := l.checkTraceKey(op, l.power[delegatee], at); err != nil {
			return err
		}
	}

	increase := newBalance.Gt(oldBalance)
	var delta uint256.Int
	if increase {
		delta.Sub(newBalance, oldBalance)
	} else {
		delta.Sub(oldBalance, newBalance)
	}

	total := l.total.Latest()
	if increase {
		total.Add(total, &delta)
	} else {
		total.Sub(total, &delta)
	}
	if _, err := l.total.Push(at, total); err != nil {
		return err
	}
	l.units[account] = new(uint256.Int).Set(newBalance)

	if delegated && !delta.IsZero() {
		l.moveVotes(delegatee, &delta, increase, at)
	}

	l.logger.Debug("balance change recorded",
		"account", account.Hex(),
		"old", oldBalance.Dec(),
		"new", newBalance.Dec(),
		"ordinal", at)
	return nil
}

// Delegate attributes account's voting units to delegatee from ordinal at.
// The zero address removes the delegation.
func (l *Ledger) Delegate(account, delegatee common.Address, at uint64) error {
	const op = "ledger.delegate"

	if err := l.checkOrdinal(op, at); err != nil {
		return err
	}
	previous, hadDelegate := l.delegate[account]
	units := l.Units(account)

	if hadDelegate && !units.IsZero() {
		if err := l.checkTraceKey(op, l.power[previous], at); err != nil {
			return err
		}
	}
	if delegatee != (common.Address{}) && !units.IsZero() {
		if err := l.checkTraceKey(op, l.power[delegatee], at); err != nil {
			return err
		}
	}

	if delegatee == (common.Address{}) {
		delete(l.delegate, account)
	} else {
		l.delegate[account] = delegatee
	}
	l.events.Emit(&domain.DelegateChangedEvent{
		Delegator:    account,
		FromDelegate: previous,
		ToDelegate:   delegatee,
	})

	if !units.IsZero() {
		if hadDelegate {
			l.moveVotes(previous, units, false, at)
		}
		if delegatee != (common.Address{}) {
			l.moveVotes(delegatee, units, true, at)
		}
	}
	return nil
}

// PowerAt returns the voting power of account in force at ordinal.
// Only finished ordinals can be looked up: the current one may still receive
// checkpoints, so it is rejected like any future ordinal.
func (l *Ledger) PowerAt(account common.Address, ordinal uint64) (*uint256.Int, error) {
	if err := l.checkPast("ledger.powerAt", ordinal); err != nil {
		return nil, err
	}
	trace, ok := l.power[account]
	if !ok {
		return new(uint256.Int), nil
	}
	return trace.UpperLookup(ordinal), nil
}

// TotalPowerAt returns the total voting units in force at ordinal
func (l *Ledger) TotalPowerAt(ordinal uint64) (*uint256.Int, error) {
	if err := l.checkPast("ledger.totalPowerAt", ordinal); err != nil {
		return nil, err
	}
	return l.total.UpperLookup(ordinal), nil
}

// CurrentPower returns the latest voting power of account
func (l *Ledger) CurrentPower(account common.Address) *uint256.Int {
	trace, ok := l.power[account]
	if !ok {
		return new(uint256.Int)
	}
	return trace.Latest()
}

// TotalPower returns the latest total voting units
func (l *Ledger) TotalPower() *uint256.Int {
	return l.total.Latest()
}

// Units returns the voting units last recorded for account
func (l *Ledger) Units(account common.Address) *uint256.Int {
	if u, ok := l.units[account]; ok {
		return new(uint256.Int).Set(u)
	}
	return new(uint256.Int)
}

// Delegates returns the current delegate of account
func (l *Ledger) Delegates(account common.Address) (common.Address, bool) {
	d, ok := l.delegate[account]
	return d, ok
}

// Checkpoints returns the power history of account
func (l *Ledger) Checkpoints(account common.Address) []models.Checkpoint {
	trace, ok := l.power[account]
	if !ok {
		return nil
	}
	return trace.Checkpoints()
}

// Accounts returns every account with recorded units or power, sorted
func (l *Ledger) Accounts() []common.Address {
	seen := make(map[common.Address]struct{})
	for a := range l.units {
		seen[a] = struct{}{}
	}
	for a := range l.power {
		seen[a] = struct{}{}
	}
	out := make([]common.Address, 0, len(seen))
	for a := range seen {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	return out
}

// Export returns the persisted form of the ledger
func (l *Ledger) Export() State {
	s := State{
		Units:     make(map[common.Address]*uint256.Int, len(l.units)),
		Delegates: make(map[common.Address]common.Address, len(l.delegate)),
		Power:     make(map[common.Address][]models.Checkpoint, len(l.power)),
		Total:     l.total.Checkpoints(),
	}
	for a, u := range l.units {
		s.Units[a] = new(uint256.Int).Set(u)
	}
	for a, d := range l.delegate {
		s.Delegates[a] = d
	}
	for a, tr := range l.power {
		s.Power[a] = tr.Checkpoints()
	}
	return s
}

// Restore replaces the ledger contents with a persisted state
func (l *Ledger) Restore(s State) error {
	total, err := checkpoints.FromCheckpoints(s.Total)
	if err != nil {
		return err
	}
	power := make(map[common.Address]*checkpoints.Trace, len(s.Power))
	for a, cps := range s.Power {
		tr, err := checkpoints.FromCheckpoints(cps)
		if err != nil {
			return err
		}
		power[a] = tr
	}
	units := make(map[common.Address]*uint256.Int, len(s.Units))
	for a, u := range s.Units {
		units[a] = new(uint256.Int).Set(u)
	}
	delegates := make(map[common.Address]common.Address, len(s.Delegates))
	for a, d := range s.Delegates {
		delegates[a] = d
	}
	l.total, l.power, l.units, l.delegate = total, power, units, delegates
	return nil
}

func (l *Ledger) moveVotes(delegatee common.Address, amount *uint256.Int, increase bool, at uint64) {
	trace, ok := l.power[delegatee]
	if !ok {
		trace = &checkpoints.Trace{}
		l.power[delegatee] = trace
	}
	previous := trace.Latest()
	next := new(uint256.Int)
	if increase {
		next.Add(previous, amount)
	} else if previous.Gt(amount) {
		next.Sub(previous, amount)
	}
	// keys were validated by the caller
	_, _ = trace.Push(at, next)

	l.events.Emit(&domain.DelegateVotesChangedEvent{
		Delegate:      delegatee,
		PreviousVotes: previous,
		NewVotes:      next,
	})
}

func (l *Ledger) checkPast(op string, ordinal uint64) error {
	if now := l.clock.Ordinal(); ordinal >= now {
		return domain.NewError(op, domain.ErrFutureLookup, "ordinal %d, current %d", ordinal, now)
	}
	return nil
}

func (l *Ledger) checkOrdinal(op string, at uint64) error {
	if now := l.clock.Ordinal(); at > now {
		return domain.NewError(op, domain.ErrCheckpointOrder, "ordinal %d ahead of clock %d", at, now)
	}
	return nil
}

func (l *Ledger) checkTraceKey(op string, trace *checkpoints.Trace, at uint64) error {
	if trace == nil {
		return nil
	}
	if last, ok := trace.LatestKey(); ok && at < last {
		return domain.NewError(op, domain.ErrCheckpointOrder, "ordinal %d before latest %d", at, last)
	}
	return nil
}
