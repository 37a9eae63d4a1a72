package governance_test

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/box"
	"github.com/trebuchet-org/treb-gov/internal/clock"
	"github.com/trebuchet-org/treb-gov/internal/dispatch"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
	"github.com/trebuchet-org/treb-gov/internal/governance"
)

var (
	deployer = common.HexToAddress("0xD000000000000000000000000000000000000001")
	guardian = common.HexToAddress("0xD000000000000000000000000000000000000002")
	voter    = common.HexToAddress("0xA000000000000000000000000000000000000001")
	stranger = common.HexToAddress("0xA000000000000000000000000000000000000002")
)

type recorder struct {
	mu     sync.Mutex
	events []domain.EventEnvelope
}

func (r *recorder) Publish(_ context.Context, events []domain.EventEnvelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Event.ContractEventName()
	}
	return out
}

func testConfig() governance.Config {
	cfg := governance.DefaultConfig(deployer)
	cfg.Governor.VotingPeriod = 10
	cfg.Timelock.MinDelay = 3600
	cfg.Timelock.Cancellers = []common.Address{guardian}
	return cfg
}

func newSystem(t *testing.T) (*governance.System, *clock.ManualClock, *recorder) {
	t.Helper()
	clk := clock.NewManual(1, 1_700_000_000, 12)
	rec := &recorder{}
	sys, err := governance.New(testConfig(), clk, governance.WithSubscriber(rec))
	require.NoError(t, err)
	require.NoError(t, sys.Deploy(context.Background()))
	return sys, clk, rec
}

func storeCalls(t *testing.T, sys *governance.System, v int64) []models.Call {
	t.Helper()
	data, err := box.StoreCalldata(big.NewInt(v))
	require.NoError(t, err)
	return []models.Call{{Target: sys.Addresses().Box, Value: new(big.Int), Data: data}}
}

func TestDeploy(t *testing.T) {
	sys, _, rec := newSystem(t)
	addrs := sys.Addresses()
	assert.Equal(t, governance.DeriveAddresses(deployer), addrs)

	roles := sys.Roles()
	assert.Equal(t, []common.Address{addrs.Governor}, roles[models.RoleProposer])
	assert.Equal(t, []common.Address{models.AnyAccount}, roles[models.RoleExecutor])
	assert.ElementsMatch(t, []common.Address{addrs.Governor, guardian}, roles[models.RoleCanceller])
	assert.Equal(t, []common.Address{addrs.Timelock}, roles[models.RoleAdmin])
	assert.Contains(t, rec.names(), string(domain.EventTypeRoleRevoked))

	err := sys.Deploy(context.Background())
	require.Error(t, err)
}

func TestLifecycle(t *testing.T) {
	ctx := context.Background()
	sys, clk, rec := newSystem(t)

	require.NoError(t, sys.Mint(ctx, deployer, voter, uint256.NewInt(100)))
	require.NoError(t, sys.Delegate(ctx, voter, voter))
	clk.Mine(1)

	id, err := sys.Propose(ctx, voter, storeCalls(t, sys, 777), "store 777")
	require.NoError(t, err)
	require.NoError(t, sys.Mine(2))

	weight, err := sys.CastVote(ctx, voter, id, models.VoteFor, "ship it")
	require.NoError(t, err)
	assert.Equal(t, uint64(100), weight.Uint64())

	require.NoError(t, sys.Mine(10))
	state, err := sys.ProposalState(id)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStateSucceeded, state)

	_, err = sys.Queue(ctx, id)
	require.NoError(t, err)
	require.NoError(t, sys.Warp(time.Hour))
	require.NoError(t, sys.Execute(ctx, stranger, id))
	assert.Equal(t, int64(777), sys.BoxValue().Int64())

	names := rec.names()
	for _, want := range []domain.EventType{
		domain.EventTypeProposalCreated,
		domain.EventTypeVoteCast,
		domain.EventTypeProposalQueued,
		domain.EventTypeCallScheduled,
		domain.EventTypeValueStored,
		domain.EventTypeCallExecuted,
		domain.EventTypeProposalExecuted,
	} {
		assert.Contains(t, names, string(want))
	}

	// sequence numbers are strictly increasing
	for i := 1; i < len(rec.events); i++ {
		assert.Greater(t, rec.events[i].Seq, rec.events[i-1].Seq)
	}
}

func TestFailedCallLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	sys, _, rec := newSystem(t)
	require.NoError(t, sys.Mint(ctx, deployer, voter, uint256.NewInt(100)))
	before := len(rec.events)
	snapshot := sys.Export()

	err := sys.Mint(ctx, stranger, voter, uint256.NewInt(1))
	assert.True(t, errors.Is(err, domain.ErrNotOwner))

	data, err := box.StoreCalldata(big.NewInt(1))
	require.NoError(t, err)
	_, err = sys.Call(ctx, dispatch.CallMsg{From: voter, To: sys.Addresses().Box, Data: data})
	assert.Equal(t, domain.KindAuthorization, domain.KindOf(err))

	assert.Len(t, rec.events, before)
	assert.Equal(t, snapshot, sys.Export())
}

func TestConcurrentVotesCountOnce(t *testing.T) {
	ctx := context.Background()
	sys, _, _ := newSystem(t)
	require.NoError(t, sys.Mint(ctx, deployer, voter, uint256.NewInt(100)))
	require.NoError(t, sys.Delegate(ctx, voter, voter))
	id, err := sys.Propose(ctx, voter, storeCalls(t, sys, 1), "race")
	require.NoError(t, err)
	require.NoError(t, sys.Mine(2))

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := sys.CastVote(ctx, voter, id, models.VoteFor, ""); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.True(t, errors.Is(err, domain.ErrAlreadyVoted))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	view, err := sys.Proposal(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), view.Votes.For.Uint64())
}

func TestExportRestore(t *testing.T) {
	ctx := context.Background()
	sys, clk, _ := newSystem(t)
	require.NoError(t, sys.Mint(ctx, deployer, voter, uint256.NewInt(100)))
	require.NoError(t, sys.Delegate(ctx, voter, voter))
	require.NoError(t, sys.Deposit(ctx, stranger, big.NewInt(5)))
	id, err := sys.Propose(ctx, voter, storeCalls(t, sys, 9), "persist me")
	require.NoError(t, err)
	require.NoError(t, sys.Mine(2))
	_, err = sys.CastVote(ctx, voter, id, models.VoteFor, "")
	require.NoError(t, err)

	raw, err := json.Marshal(sys.Export())
	require.NoError(t, err)
	var st governance.State
	require.NoError(t, json.Unmarshal(raw, &st))

	clk2 := clock.NewManual(0, 0, 12)
	restored, err := governance.New(testConfig(), clk2)
	require.NoError(t, err)
	require.NoError(t, restored.Restore(&st))

	assert.Equal(t, clk.State(), clk2.State())
	assert.Equal(t, int64(5), restored.Timelock().Balance.Int64())
	assert.True(t, restored.HasRole(models.RoleProposer, restored.Addresses().Governor))

	// the restored system carries on where the original stopped
	require.NoError(t, restored.Mine(10))
	state, err := restored.ProposalState(id)
	require.NoError(t, err)
	assert.Equal(t, models.ProposalStateSucceeded, state)
	_, err = restored.Queue(ctx, id)
	require.NoError(t, err)

	t.Run("foreign deployment is refused", func(t *testing.T) {
		cfg := testConfig()
		cfg.Deployer = stranger
		other, err := governance.New(cfg, clock.NewManual(0, 0, 12))
		require.NoError(t, err)
		assert.Error(t, other.Restore(&st))
	})
}
