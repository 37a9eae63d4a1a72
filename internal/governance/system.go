// Package governance assembles the ledger, governor, timelock, token and box
// into one system. Every call is serialized by a single lock and either fully
// applies or leaves no trace, including the events it emitted.
package governance

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/treb-gov/internal/box"
	"github.com/trebuchet-org/treb-gov/internal/clock"
	"github.com/trebuchet-org/treb-gov/internal/dispatch"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/governor"
	"github.com/trebuchet-org/treb-gov/internal/timelock"
	"github.com/trebuchet-org/treb-gov/internal/token"
	"github.com/trebuchet-org/treb-gov/internal/votes"
)

// System is the serialized entry point to all governance state
type System struct {
	mu          sync.RWMutex
	cfg         Config
	addresses   Addresses
	clock       clock.Clock
	router      *dispatch.Router
	ledger      *votes.Ledger
	token       *token.Token
	timelock    *timelock.Controller
	governor    *governor.Governor
	box         *box.Box
	journal     *journal
	subscribers []Subscriber
	deployed    bool
	logger      *slog.Logger
}

// Option customises a System
type Option func(*System)

// WithLogger sets the logger passed to every component
func WithLogger(logger *slog.Logger) Option {
	return func(s *System) { s.logger = logger }
}

// WithSubscriber registers a subscriber for committed events
func WithSubscriber(sub Subscriber) Option {
	return func(s *System) { s.subscribers = append(s.subscribers, sub) }
}

// New builds the components at their deterministic addresses. Roles are not
// configured until Deploy, or until a persisted state is restored.
func New(cfg Config, clk clock.Clock, opts ...Option) (*System, error) {
	s := &System{
		cfg:       cfg,
		addresses: DeriveAddresses(cfg.Deployer),
		clock:     clk,
		journal:   &journal{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router = dispatch.NewRouter(s.logger)
	s.ledger = votes.NewLedger(clk, s.journal, s.logger.With("component", "Ledger"))
	s.token = token.New(s.addresses.Token, cfg.TokenName, cfg.TokenSymbol, cfg.Deployer, s.ledger, clk, s.logger)
	s.timelock = timelock.New(s.addresses.Timelock, timelock.Config{
		MinDelay:    cfg.Timelock.MinDelay,
		GracePeriod: cfg.Timelock.GracePeriod,
		Admin:       cfg.Deployer,
	}, clk, s.router, s.journal, s.logger)

	gov, err := governor.New(s.addresses.Governor, cfg.Governor, s.ledger, s.timelock, clk,
		governor.WithEvents(s.journal), governor.WithLogger(s.logger))
	if err != nil {
		return nil, fmt.Errorf("invalid governor settings: %w", err)
	}
	s.governor = gov
	s.box = box.New(s.addresses.Box, s.addresses.Timelock, s.journal, s.logger)

	s.router.Register(s.addresses.Token, s.token)
	s.router.Register(s.addresses.Governor, s.governor)
	s.router.Register(s.addresses.Box, s.box)
	return s, nil
}

// Deploy performs the setup transactions: the governor becomes the only
// proposer, executors and cancellers are granted, and the deployer gives up
// its admin role if configured to.
func (s *System) Deploy(ctx context.Context) error {
	return s.atomic(ctx, "deploy", func() error {
		if s.deployed {
			return fmt.Errorf("system already deployed")
		}
		deployer := s.cfg.Deployer
		grants := []roleGrant{
			{models.RoleProposer, s.addresses.Governor},
			{models.RoleCanceller, s.addresses.Governor},
		}
		for _, c := range s.cfg.Timelock.Cancellers {
			grants = append(grants, roleGrant{models.RoleCanceller, c})
		}
		if s.cfg.Timelock.OpenExecutor {
			grants = append(grants, roleGrant{models.RoleExecutor, models.AnyAccount})
		}
		for _, e := range s.cfg.Timelock.Executors {
			grants = append(grants, roleGrant{models.RoleExecutor, e})
		}
		for _, g := range grants {
			if err := s.timelock.GrantRole(deployer, g.role, g.account); err != nil {
				return err
			}
		}
		if s.cfg.Timelock.RenounceAdmin {
			if err := s.timelock.RenounceRole(deployer, models.RoleAdmin, deployer); err != nil {
				return err
			}
		}
		s.deployed = true
		return nil
	})
}

type roleGrant struct {
	role    models.Role
	account common.Address
}

// atomic runs fn under the write lock. If fn fails every component is
// restored and the events it emitted are dropped.
func (s *System) atomic(ctx context.Context, op string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	mark := s.journal.mark()
	restores := []func(){
		s.router.Bank().Snapshot(),
		s.token.Snapshot(),
		s.timelock.Snapshot(),
		s.governor.Snapshot(),
		s.box.Snapshot(),
	}

	if err := fn(); err != nil {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
		s.journal.rollback(mark)
		s.logger.Debug("call rejected", "op", op, "kind", domain.KindOf(err), "error", err)
		return err
	}

	events := s.journal.drain(s.clock.Ordinal(), s.clock.Now())
	if len(events) == 0 {
		return nil
	}
	for _, sub := range s.subscribers {
		if err := sub.Publish(ctx, events); err != nil {
			s.logger.Warn("event subscriber failed", "op", op, "error", err)
		}
	}
	return nil
}

// Addresses returns the component addresses
func (s *System) Addresses() Addresses { return s.addresses }

// Config returns the deployment configuration
func (s *System) Config() Config { return s.cfg }

// Mint creates tokens. Only the token owner may mint.
func (s *System) Mint(ctx context.Context, caller, to common.Address, amount *uint256.Int) error {
	return s.atomic(ctx, "mint", func() error { return s.token.Mint(caller, to, amount) })
}

// Burn destroys tokens held by from
func (s *System) Burn(ctx context.Context, from common.Address, amount *uint256.Int) error {
	return s.atomic(ctx, "burn", func() error { return s.token.Burn(from, amount) })
}

// Transfer moves tokens between accounts
func (s *System) Transfer(ctx context.Context, from, to common.Address, amount *uint256.Int) error {
	return s.atomic(ctx, "transfer", func() error { return s.token.Transfer(from, to, amount) })
}

// Delegate attributes account's voting units to delegatee
func (s *System) Delegate(ctx context.Context, account, delegatee common.Address) error {
	return s.atomic(ctx, "delegate", func() error { return s.token.Delegate(account, delegatee) })
}

// Propose submits a proposal
func (s *System) Propose(ctx context.Context, proposer common.Address, calls []models.Call, description string) (common.Hash, error) {
	var id common.Hash
	err := s.atomic(ctx, "propose", func() (err error) {
		id, err = s.governor.Propose(proposer, calls, description)
		return err
	})
	return id, err
}

// CastVote votes on an active proposal and returns the counted weight
func (s *System) CastVote(ctx context.Context, voter common.Address, id common.Hash, support models.VoteType, reason string) (*uint256.Int, error) {
	var weight *uint256.Int
	err := s.atomic(ctx, "castVote", func() (err error) {
		weight, err = s.governor.CastVoteWithReason(voter, id, support, reason)
		return err
	})
	return weight, err
}

// Queue admits a succeeded proposal to the timelock
func (s *System) Queue(ctx context.Context, id common.Hash) (common.Hash, error) {
	var opID common.Hash
	err := s.atomic(ctx, "queue", func() (err error) {
		opID, err = s.governor.Queue(id)
		return err
	})
	return opID, err
}

// Execute runs a queued proposal
func (s *System) Execute(ctx context.Context, caller common.Address, id common.Hash) error {
	return s.atomic(ctx, "execute", func() error { return s.governor.Execute(ctx, caller, id) })
}

// Cancel cancels a proposal that has not succeeded
func (s *System) Cancel(ctx context.Context, caller common.Address, id common.Hash) error {
	return s.atomic(ctx, "cancel", func() error { return s.governor.Cancel(caller, id) })
}

// CancelOperation cancels a pending timelock operation
func (s *System) CancelOperation(ctx context.Context, caller common.Address, id common.Hash) error {
	return s.atomic(ctx, "cancelOperation", func() error { return s.timelock.Cancel(caller, id) })
}

// Deposit funds the timelock treasury
func (s *System) Deposit(ctx context.Context, from common.Address, amount *big.Int) error {
	return s.atomic(ctx, "deposit", func() error {
		if amount == nil || amount.Sign() <= 0 {
			return fmt.Errorf("deposit amount must be positive")
		}
		s.timelock.Deposit(from, amount)
		return nil
	})
}

// GrantRole grants a timelock role. The caller must hold the admin role.
func (s *System) GrantRole(ctx context.Context, caller common.Address, role models.Role, account common.Address) error {
	return s.atomic(ctx, "grantRole", func() error { return s.timelock.GrantRole(caller, role, account) })
}

// RevokeRole revokes a timelock role. The caller must hold the admin role.
func (s *System) RevokeRole(ctx context.Context, caller common.Address, role models.Role, account common.Address) error {
	return s.atomic(ctx, "revokeRole", func() error { return s.timelock.RevokeRole(caller, role, account) })
}

// RenounceRole drops one of the caller's own roles
func (s *System) RenounceRole(ctx context.Context, caller common.Address, role models.Role) error {
	return s.atomic(ctx, "renounceRole", func() error { return s.timelock.RenounceRole(caller, role, caller) })
}

// Call sends an arbitrary payload to a registered target on behalf of from
func (s *System) Call(ctx context.Context, msg dispatch.CallMsg) ([]byte, error) {
	var out []byte
	err := s.atomic(ctx, "call", func() (err error) {
		out, err = s.router.Call(ctx, msg)
		return err
	})
	return out, err
}

// Mine advances a manual clock by n ordinals
func (s *System) Mine(n uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	mc, ok := s.clock.(*clock.ManualClock)
	if !ok {
		return fmt.Errorf("clock in %s mode cannot be mined", s.clock.Mode())
	}
	mc.Mine(n)
	return nil
}

// Warp advances a manual clock by d and mines one ordinal
func (s *System) Warp(d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	mc, ok := s.clock.(*clock.ManualClock)
	if !ok {
		return fmt.Errorf("clock in %s mode cannot be warped", s.clock.Mode())
	}
	return mc.Warp(d)
}
