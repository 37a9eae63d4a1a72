package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/config"
	domainconfig "github.com/trebuchet-org/treb-gov/internal/domain/config"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func newViper(root string) *viper.Viper {
	v := viper.New()
	v.Set("project_root", root)
	return v
}

func TestProvider(t *testing.T) {
	t.Run("defaults without governance.toml", func(t *testing.T) {
		root := t.TempDir()

		cfg, err := config.Provider(newViper(root))
		require.NoError(t, err)

		assert.Equal(t, root, cfg.ProjectRoot)
		assert.Equal(t, filepath.Join(root, ".trebgov"), cfg.DataDir)
		assert.Equal(t, "defaults", cfg.ConfigSource)
		assert.Equal(t, domainconfig.ClockManual, cfg.Clock.Mode)
		assert.Equal(t, 12*time.Second, cfg.Clock.BlockTime)
		require.NotNil(t, cfg.Governance)
	})

	t.Run("reads governance.toml", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "governance.toml", `
[governor]
name = "DAO"
voting_delay = 2
clock = "timestamp"

[timelock]
min_delay = "1h"
`)

		cfg, err := config.Provider(newViper(root))
		require.NoError(t, err)

		assert.Equal(t, "governance.toml", cfg.ConfigSource)
		assert.Equal(t, "DAO", cfg.Governance.Governor.Name)
		require.NotNil(t, cfg.Governance.Governor.VotingDelay)
		assert.Equal(t, uint64(2), *cfg.Governance.Governor.VotingDelay)
		assert.Equal(t, domainconfig.ClockTimestamp, cfg.Clock.Mode)
		assert.Equal(t, "1h", cfg.Governance.Timelock.MinDelay)
	})

	t.Run("relative data dir is resolved against the root", func(t *testing.T) {
		root := t.TempDir()
		v := newViper(root)
		v.Set("data_dir", "state")

		cfg, err := config.Provider(v)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "state"), cfg.DataDir)
	})

	t.Run("rejects malformed toml", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "governance.toml", "[governor\nname=")

		_, err := config.Provider(newViper(root))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "governance.toml")
	})

	t.Run("rejects unknown clock mode", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "governance.toml", "[governor]\nclock = \"lunar\"\n")

		_, err := config.Provider(newViper(root))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "lunar")
	})

	t.Run("rejects sub-second block time", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "governance.toml", "[governor]\nblock_time = \"10ms\"\n")

		_, err := config.Provider(newViper(root))
		require.Error(t, err)
	})
}

func TestSetupViper(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".env", "TREBGOV_FROM=0x70997970C51812dc3A010C7d01b50e0d17dc79C8\n")
	t.Cleanup(func() { os.Unsetenv("TREBGOV_FROM") })

	v := config.SetupViper(root, nil)

	assert.Equal(t, root, v.GetString("project_root"))
	assert.Equal(t, 5*time.Minute, v.GetDuration("timeout"))
	assert.Equal(t, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8", v.GetString("from"))
}

func TestProvideDeploymentConfig(t *testing.T) {
	t.Run("reference defaults", func(t *testing.T) {
		dep, err := config.ProvideDeploymentConfig(&domainconfig.RuntimeConfig{})
		require.NoError(t, err)

		assert.Equal(t, config.DefaultDeployer, dep.Deployer)
		assert.Equal(t, uint64(1), dep.Governor.VotingDelay)
		assert.Equal(t, uint64(50400), dep.Governor.VotingPeriod)
		assert.Equal(t, uint64(4), dep.Governor.QuorumNumerator)
		assert.Equal(t, uint64(100), dep.Governor.QuorumDenominator)
		assert.True(t, dep.Governor.ProposalThreshold.IsZero())
		assert.Equal(t, uint64(2*24*3600), dep.Timelock.MinDelay)
		assert.Equal(t, uint64(14*24*3600), dep.Timelock.GracePeriod)
		assert.True(t, dep.Timelock.OpenExecutor)
		assert.True(t, dep.Timelock.RenounceAdmin)
	})

	t.Run("file overrides", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, root, "governance.toml", `
deployer = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"

[governor]
voting_period = 10
proposal_threshold = "1000"
quorum_numerator = 10

[timelock]
min_delay = "90s"
grace_period = "0s"
open_executor = false
executors = ["0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"]
cancellers = ["$GUARDIAN"]

[token]
symbol = "GOV"
`)
		t.Setenv("GUARDIAN", "0x90F79bf6EB2c4f870365E785982E1f101E93b906")

		cfg, err := config.Provider(newViper(root))
		require.NoError(t, err)
		dep, err := config.ProvideDeploymentConfig(cfg)
		require.NoError(t, err)

		assert.Equal(t, common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"), dep.Deployer)
		assert.Equal(t, uint64(10), dep.Governor.VotingPeriod)
		assert.Equal(t, "1000", dep.Governor.ProposalThreshold.Dec())
		assert.Equal(t, uint64(10), dep.Governor.QuorumNumerator)
		assert.Equal(t, uint64(90), dep.Timelock.MinDelay)
		assert.Equal(t, uint64(0), dep.Timelock.GracePeriod)
		assert.False(t, dep.Timelock.OpenExecutor)
		assert.Equal(t, []common.Address{common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC")}, dep.Timelock.Executors)
		assert.Equal(t, []common.Address{common.HexToAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906")}, dep.Timelock.Cancellers)
		assert.Equal(t, "GOV", dep.TokenSymbol)
		assert.Equal(t, "Treb Governance", dep.TokenName)
	})

	t.Run("invalid values", func(t *testing.T) {
		seven, hundred := uint64(700), uint64(100)
		tests := []struct {
			name string
			file domainconfig.GovernanceFileConfig
		}{
			{"bad deployer", domainconfig.GovernanceFileConfig{Deployer: "alice"}},
			{"bad threshold", domainconfig.GovernanceFileConfig{Governor: domainconfig.GovernorFileConfig{ProposalThreshold: "-1"}}},
			{"quorum above denominator", domainconfig.GovernanceFileConfig{Governor: domainconfig.GovernorFileConfig{QuorumNumerator: &seven, QuorumDenominator: &hundred}}},
			{"bad delay", domainconfig.GovernanceFileConfig{Timelock: domainconfig.TimelockFileConfig{MinDelay: "two days"}}},
			{"bad executor", domainconfig.GovernanceFileConfig{Timelock: domainconfig.TimelockFileConfig{Executors: []string{"0x1234"}}}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				file := tt.file
				_, err := config.ProvideDeploymentConfig(&domainconfig.RuntimeConfig{Governance: &file})
				assert.Error(t, err)
			})
		}
	})
}
