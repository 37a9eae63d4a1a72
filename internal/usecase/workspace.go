package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/trebuchet-org/treb-gov/internal/clock"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/governance"
)

// Workspace opens the persisted governance system, applies one command to it
// and saves it back. Events are forwarded to the event log only after the new
// state has been saved.
type Workspace struct {
	repo       StateRepository
	events     EventLog
	deployment governance.Config
	clock      config.ClockSettings
	logger     *slog.Logger
	now        func() time.Time
}

// NewWorkspace creates a workspace over the state repository
func NewWorkspace(
	repo StateRepository,
	events EventLog,
	deployment governance.Config,
	cfg *config.RuntimeConfig,
	logger *slog.Logger,
) *Workspace {
	return &Workspace{
		repo:       repo,
		events:     events,
		deployment: deployment,
		clock:      cfg.Clock,
		logger:     logger,
		now:        time.Now,
	}
}

// Deployment returns the configured deployment
func (w *Workspace) Deployment() governance.Config {
	return w.deployment
}

// pending buffers committed events until the state is durable
type pending struct {
	mu     sync.Mutex
	events []domain.EventEnvelope
}

func (p *pending) Publish(_ context.Context, events []domain.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (w *Workspace) build(buf *pending) (*governance.System, error) {
	var clk clock.Clock
	switch w.clock.Mode {
	case config.ClockTimestamp:
		clk = clock.NewWall(w.now)
	default:
		blockTime := uint64(w.clock.BlockTime / time.Second)
		if blockTime == 0 {
			blockTime = 12
		}
		clk = clock.NewManual(1, uint64(w.now().Unix()), blockTime)
	}
	return governance.New(w.deployment, clk,
		governance.WithLogger(w.logger),
		governance.WithSubscriber(buf),
	)
}

// Open loads the persisted system for reading
func (w *Workspace) Open(ctx context.Context) (*governance.System, error) {
	sys, _, err := w.open(ctx)
	return sys, err
}

func (w *Workspace) open(ctx context.Context) (*governance.System, *pending, error) {
	exists, err := w.repo.Exists(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, ErrNotInitialized
	}
	st, err := w.repo.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load governance state: %w", err)
	}
	buf := &pending{}
	sys, err := w.build(buf)
	if err != nil {
		return nil, nil, err
	}
	if err := sys.Restore(st); err != nil {
		return nil, nil, fmt.Errorf("failed to restore governance state from %s: %w", w.repo.Path(), err)
	}
	return sys, buf, nil
}

// Create deploys a fresh system and persists it. The event log of a previous
// deployment is only dropped once the new one is fully set up.
func (w *Workspace) Create(ctx context.Context, setup func(*governance.System) error) (_ *governance.System, err error) {
	unlock, err := w.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer w.release(unlock, &err)

	buf := &pending{}
	sys, err := w.build(buf)
	if err != nil {
		return nil, err
	}
	if err := sys.Deploy(ctx); err != nil {
		return nil, err
	}
	if setup != nil {
		if err := setup(sys); err != nil {
			return nil, err
		}
	}
	if err := w.events.Reset(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset event log: %w", err)
	}
	if err := w.commit(ctx, sys, buf); err != nil {
		return nil, err
	}
	return sys, nil
}

// Mutate opens the system, applies fn and saves the result. Nothing is saved
// when fn fails. The state stays locked from load to save, so commands from
// concurrent processes apply one after the other.
func (w *Workspace) Mutate(ctx context.Context, fn func(*governance.System) error) (_ *governance.System, err error) {
	unlock, err := w.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer w.release(unlock, &err)

	sys, buf, err := w.open(ctx)
	if err != nil {
		return nil, err
	}
	if err := fn(sys); err != nil {
		return sys, err
	}
	if err := w.commit(ctx, sys, buf); err != nil {
		return sys, err
	}
	return sys, nil
}

func (w *Workspace) lock(ctx context.Context) (func() error, error) {
	unlock, err := w.repo.Lock(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to lock governance state: %w", err)
	}
	return unlock, nil
}

func (w *Workspace) release(unlock func() error, err *error) {
	if uerr := unlock(); uerr != nil {
		if *err == nil {
			*err = fmt.Errorf("failed to unlock governance state: %w", uerr)
			return
		}
		w.logger.Warn("failed to unlock governance state", "error", uerr)
	}
}

func (w *Workspace) commit(ctx context.Context, sys *governance.System, buf *pending) error {
	if err := w.repo.Save(ctx, sys.Export()); err != nil {
		return fmt.Errorf("failed to save governance state: %w", err)
	}
	buf.mu.Lock()
	events := buf.events
	buf.events = nil
	buf.mu.Unlock()
	if len(events) == 0 {
		return nil
	}
	if err := w.events.Publish(ctx, events); err != nil {
		w.logger.Warn("failed to record events", "count", len(events), "error", err)
	}
	return nil
}
