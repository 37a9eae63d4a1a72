package state_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/adapters/repository/state"
	"github.com/trebuchet-org/treb-gov/internal/clock"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/governance"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

var deployer = common.HexToAddress("0xD000000000000000000000000000000000000001")

func newSystem(t *testing.T) *governance.System {
	t.Helper()
	sys, err := governance.New(governance.DefaultConfig(deployer), clock.NewManual(1, uint64(time.Unix(1_700_000_000, 0).Unix()), 12))
	require.NoError(t, err)
	return sys
}

func TestFileRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("missing state", func(t *testing.T) {
		repo := state.NewFileRepository(&config.RuntimeConfig{DataDir: filepath.Join(t.TempDir(), ".trebgov")})

		exists, err := repo.Exists(ctx)
		require.NoError(t, err)
		assert.False(t, exists)

		_, err = repo.Load(ctx)
		assert.ErrorIs(t, err, usecase.ErrNotInitialized)
	})

	t.Run("save and restore", func(t *testing.T) {
		dataDir := filepath.Join(t.TempDir(), ".trebgov")
		repo := state.NewFileRepository(&config.RuntimeConfig{DataDir: dataDir})
		assert.Equal(t, filepath.Join(dataDir, state.StateFile), repo.Path())

		sys := newSystem(t)
		require.NoError(t, sys.Deploy(ctx))
		require.NoError(t, sys.Mint(ctx, deployer, deployer, uint256.NewInt(500)))
		require.NoError(t, sys.Delegate(ctx, deployer, deployer))
		require.NoError(t, sys.Mine(3))

		require.NoError(t, repo.Save(ctx, sys.Export()))

		exists, err := repo.Exists(ctx)
		require.NoError(t, err)
		assert.True(t, exists)
		_, err = os.Stat(repo.Path() + ".tmp")
		assert.True(t, os.IsNotExist(err))

		loaded, err := repo.Load(ctx)
		require.NoError(t, err)

		restored := newSystem(t)
		require.NoError(t, restored.Restore(loaded))
		assert.Equal(t, sys.Clock(), restored.Clock())
		assert.Equal(t, sys.TotalSupply(), restored.TotalSupply())
		assert.Equal(t, sys.Account(deployer), restored.Account(deployer))
	})

	t.Run("corrupt file", func(t *testing.T) {
		dataDir := t.TempDir()
		repo := state.NewFileRepository(&config.RuntimeConfig{DataDir: dataDir})
		require.NoError(t, os.WriteFile(repo.Path(), []byte("{not json"), 0644))

		_, err := repo.Load(ctx)
		require.Error(t, err)
		assert.NotErrorIs(t, err, usecase.ErrNotInitialized)
	})
}

func TestFileRepositoryLock(t *testing.T) {
	ctx := context.Background()
	dataDir := filepath.Join(t.TempDir(), ".trebgov")
	first := state.NewFileRepository(&config.RuntimeConfig{DataDir: dataDir})
	second := state.NewFileRepository(&config.RuntimeConfig{DataDir: dataDir})

	unlock, err := first.Lock(ctx)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dataDir, state.LockFile))
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_, err = second.Lock(waitCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock())
	unlock, err = second.Lock(ctx)
	require.NoError(t, err)
	require.NoError(t, unlock())
}

type discardEvents struct{}

func (discardEvents) Publish(context.Context, []domain.EventEnvelope) error { return nil }
func (discardEvents) Reset(context.Context) error { return nil }
func (discardEvents) List(context.Context, domain.EventFilter) ([]domain.EventEnvelope, error) {
	return nil, nil
}

// Each workspace has its own repository, the way separate trebgov processes do
func TestConcurrentWorkspacesKeepEveryUpdate(t *testing.T) {
	ctx := context.Background()
	cfg := &config.RuntimeConfig{
		DataDir: filepath.Join(t.TempDir(), ".trebgov"),
		Clock:   config.ClockSettings{Mode: config.ClockManual, BlockTime: 12 * time.Second},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	newWorkspace := func() *usecase.Workspace {
		return usecase.NewWorkspace(state.NewFileRepository(cfg), discardEvents{}, governance.DefaultConfig(deployer), cfg, logger)
	}

	sys, err := newWorkspace().Create(ctx, nil)
	require.NoError(t, err)
	start := sys.Clock().Ordinal

	const writers, rounds = 4, 5
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		ws := newWorkspace()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				_, err := ws.Mutate(ctx, func(sys *governance.System) error { return sys.Mine(1) })
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	sys, err = newWorkspace().Open(ctx)
	require.NoError(t, err)
	assert.Equal(t, start+writers*rounds, sys.Clock().Ordinal)
}
