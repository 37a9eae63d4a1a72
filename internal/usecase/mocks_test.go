package usecase_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/mock"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/governance"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

var (
	deployer = common.HexToAddress("0xD000000000000000000000000000000000000001")
	alice    = common.HexToAddress("0xA000000000000000000000000000000000000001")
	bob      = common.HexToAddress("0xA000000000000000000000000000000000000002")
)

// memRepository keeps the exported state as JSON, the way the file repository does
type memRepository struct {
	mu    sync.Mutex
	lock  sync.Mutex
	data  []byte
	saves int
	locks int
}

func (r *memRepository) Lock(context.Context) (func() error, error) {
	r.lock.Lock()
	r.mu.Lock()
	r.locks++
	r.mu.Unlock()
	return func() error {
		r.lock.Unlock()
		return nil
	}, nil
}

func (r *memRepository) Exists(context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.data != nil, nil
}

func (r *memRepository) Load(context.Context) (*governance.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data == nil {
		return nil, fmt.Errorf("no state")
	}
	var st governance.State
	if err := json.Unmarshal(r.data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *memRepository) Save(_ context.Context, st *governance.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = data
	r.saves++
	return nil
}

func (r *memRepository) Path() string { return "memory" }

func (r *memRepository) lockCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.locks
}

func (r *memRepository) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

// MockEventLog is a mock implementation of EventLog
type MockEventLog struct {
	mock.Mock
	mu        sync.Mutex
	published []domain.EventEnvelope
}

func (m *MockEventLog) Publish(ctx context.Context, events []domain.EventEnvelope) error {
	m.mu.Lock()
	m.published = append(m.published, events...)
	m.mu.Unlock()
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *MockEventLog) List(ctx context.Context, filter domain.EventFilter) ([]domain.EventEnvelope, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EventEnvelope), args.Error(1)
}

func (m *MockEventLog) Reset(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockEventLog) names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.published))
	for i, e := range m.published {
		out[i] = e.Event.ContractEventName()
	}
	return out
}

// MockCalldataEncoder is a mock implementation of CalldataEncoder
type MockCalldataEncoder struct {
	mock.Mock
}

func (m *MockCalldataEncoder) Encode(signature string, args []string) ([]byte, error) {
	ret := m.Called(signature, args)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).([]byte), ret.Error(1)
}

// MockProposalFileParser is a mock implementation of ProposalFileParser
type MockProposalFileParser struct {
	mock.Mock
}

func (m *MockProposalFileParser) ParseFile(ctx context.Context, path string) (*usecase.ProposalFile, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ProposalFile), args.Error(1)
}

// MockConfirmer is a mock implementation of Confirmer
type MockConfirmer struct {
	mock.Mock
}

func (m *MockConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	args := m.Called(ctx, prompt)
	return args.Bool(0), args.Error(1)
}

// MockProposalSelector is a mock implementation of ProposalSelector
type MockProposalSelector struct {
	mock.Mock
}

func (m *MockProposalSelector) SelectProposal(ctx context.Context, proposals []*models.ProposalView, prompt string) (*models.ProposalView, error) {
	args := m.Called(ctx, proposals, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProposalView), args.Error(1)
}

// MockProgressSink records progress events
type MockProgressSink struct {
	events []usecase.ProgressEvent
}

func (m *MockProgressSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	m.events = append(m.events, event)
}
func (m *MockProgressSink) Info(string)  {}
func (m *MockProgressSink) Error(string) {}

func (m *MockProgressSink) stages() []string {
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.Stage
	}
	return out
}

// hexAccounts resolves hex addresses and defaults to the deployer
type hexAccounts struct{}

func (hexAccounts) Resolve(ref string) (common.Address, error) {
	if ref == "" {
		return deployer, nil
	}
	if !common.IsHexAddress(ref) {
		return common.Address{}, fmt.Errorf("bad account %q", ref)
	}
	return common.HexToAddress(ref), nil
}

type fixture struct {
	cfg       *config.RuntimeConfig
	repo      *memRepository
	events    *MockEventLog
	workspace *usecase.Workspace
	resolver  *usecase.ProposalResolver
	sink      *MockProgressSink
}

func deploymentConfig() governance.Config {
	cfg := governance.DefaultConfig(deployer)
	cfg.Governor.VotingPeriod = 5
	cfg.Timelock.MinDelay = 60
	cfg.Timelock.GracePeriod = 3600
	return cfg
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.RuntimeConfig{
		NonInteractive: true,
		Clock:          config.ClockSettings{Mode: config.ClockManual, BlockTime: 12_000_000_000},
	}
	events := new(MockEventLog)
	events.On("Publish", mock.Anything, mock.Anything).Return(nil)
	events.On("Reset", mock.Anything).Return(nil)

	repo := &memRepository{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ws := usecase.NewWorkspace(repo, events, deploymentConfig(), cfg, logger)
	return &fixture{
		cfg:       cfg,
		repo:      repo,
		events:    events,
		workspace: ws,
		resolver:  usecase.NewProposalResolver(nil, cfg),
		sink:      &MockProgressSink{},
	}
}

func (f *fixture) accounts() usecase.Accounts { return hexAccounts{} }
