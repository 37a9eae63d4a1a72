package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/joho/godotenv"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/governance"
)

// DefaultDeployer is the first well-known development account
var DefaultDeployer = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

const defaultBlockTime = 12 * time.Second

// loadDotEnv loads .env and .env.local from the project root when present
func loadDotEnv(projectRoot string) {
	for _, name := range []string{".env", ".env.local"} {
		envFile := filepath.Join(projectRoot, name)
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
		}
	}
}

// loadGovernanceFile loads and parses governance.toml if it exists.
// Returns (nil, nil) when the file does not exist.
func loadGovernanceFile(projectRoot string) (*config.GovernanceFileConfig, error) {
	path := filepath.Join(projectRoot, GovernanceFile)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	var cfg config.GovernanceFileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", GovernanceFile, err)
	}

	// Expand environment variables in account fields
	cfg.Deployer = os.ExpandEnv(cfg.Deployer)
	for i, e := range cfg.Timelock.Executors {
		cfg.Timelock.Executors[i] = os.ExpandEnv(e)
	}
	for i, c := range cfg.Timelock.Cancellers {
		cfg.Timelock.Cancellers[i] = os.ExpandEnv(c)
	}

	return &cfg, nil
}

func resolveClock(gov config.GovernorFileConfig) (config.ClockSettings, error) {
	s := config.ClockSettings{Mode: config.ClockManual, BlockTime: defaultBlockTime}

	switch config.ClockMode(strings.ToLower(gov.Clock)) {
	case "", config.ClockManual:
	case config.ClockTimestamp:
		s.Mode = config.ClockTimestamp
	default:
		return s, fmt.Errorf("invalid clock mode %q: must be manual or timestamp", gov.Clock)
	}

	if gov.BlockTime != "" {
		d, err := time.ParseDuration(gov.BlockTime)
		if err != nil {
			return s, fmt.Errorf("invalid block_time: %w", err)
		}
		if d < time.Second {
			return s, fmt.Errorf("block_time must be at least 1s, got %s", d)
		}
		s.BlockTime = d
	}
	return s, nil
}

// ProvideDeploymentConfig converts the resolved governance.toml into the
// deployment configuration, falling back to the reference defaults
func ProvideDeploymentConfig(cfg *config.RuntimeConfig) (governance.Config, error) {
	file := cfg.Governance
	if file == nil {
		file = &config.GovernanceFileConfig{}
	}

	deployer := DefaultDeployer
	if file.Deployer != "" {
		addr, err := ParseAddress(file.Deployer)
		if err != nil {
			return governance.Config{}, fmt.Errorf("invalid deployer: %w", err)
		}
		deployer = addr
	}

	out := governance.DefaultConfig(deployer)

	gov := file.Governor
	if gov.Name != "" {
		out.Governor.Name = gov.Name
	}
	if gov.VotingDelay != nil {
		out.Governor.VotingDelay = *gov.VotingDelay
	}
	if gov.VotingPeriod != nil {
		out.Governor.VotingPeriod = *gov.VotingPeriod
	}
	if gov.ProposalThreshold != "" {
		threshold, err := uint256.FromDecimal(gov.ProposalThreshold)
		if err != nil {
			return governance.Config{}, fmt.Errorf("invalid proposal_threshold %q: %w", gov.ProposalThreshold, err)
		}
		out.Governor.ProposalThreshold = threshold
	}
	if gov.QuorumNumerator != nil {
		out.Governor.QuorumNumerator = *gov.QuorumNumerator
	}
	if gov.QuorumDenominator != nil {
		out.Governor.QuorumDenominator = *gov.QuorumDenominator
	}
	if err := out.Governor.Validate(); err != nil {
		return governance.Config{}, fmt.Errorf("invalid [governor] section: %w", err)
	}

	tl := file.Timelock
	var err error
	if out.Timelock.MinDelay, err = durationSeconds(tl.MinDelay, out.Timelock.MinDelay); err != nil {
		return governance.Config{}, fmt.Errorf("invalid min_delay: %w", err)
	}
	if out.Timelock.GracePeriod, err = durationSeconds(tl.GracePeriod, out.Timelock.GracePeriod); err != nil {
		return governance.Config{}, fmt.Errorf("invalid grace_period: %w", err)
	}
	if tl.OpenExecutor != nil {
		out.Timelock.OpenExecutor = *tl.OpenExecutor
	}
	if tl.RenounceAdmin != nil {
		out.Timelock.RenounceAdmin = *tl.RenounceAdmin
	}
	if out.Timelock.Executors, err = parseAddresses(tl.Executors); err != nil {
		return governance.Config{}, fmt.Errorf("invalid executors: %w", err)
	}
	if out.Timelock.Cancellers, err = parseAddresses(tl.Cancellers); err != nil {
		return governance.Config{}, fmt.Errorf("invalid cancellers: %w", err)
	}

	if file.Token.Name != "" {
		out.TokenName = file.Token.Name
	}
	if file.Token.Symbol != "" {
		out.TokenSymbol = file.Token.Symbol
	}

	return out, nil
}

// ParseAddress parses a 0x-prefixed 20 byte hex address
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%q is not a hex address", s)
	}
	return common.HexToAddress(s), nil
}

func parseAddresses(in []string) ([]common.Address, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]common.Address, 0, len(in))
	for _, s := range in {
		addr, err := ParseAddress(s)
		if err != nil {
			return nil, err
		}
		out = append(out, addr)
	}
	return out, nil
}

func durationSeconds(s string, fallback uint64) (uint64, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", d)
	}
	return uint64(d / time.Second), nil
}
