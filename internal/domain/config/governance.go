package config

// GovernanceFileConfig represents the governance.toml file
type GovernanceFileConfig struct {
	Deployer string             `toml:"deployer,omitempty"`
	Governor GovernorFileConfig `toml:"governor"`
	Timelock TimelockFileConfig `toml:"timelock"`
	Token    TokenFileConfig    `toml:"token"`
}

// GovernorFileConfig is the [governor] section. Unset fields keep the
// reference defaults, so numeric fields are pointers.
type GovernorFileConfig struct {
	Name              string  `toml:"name,omitempty"`
	VotingDelay       *uint64 `toml:"voting_delay,omitempty"`
	VotingPeriod      *uint64 `toml:"voting_period,omitempty"`
	ProposalThreshold string  `toml:"proposal_threshold,omitempty"` // decimal token units
	QuorumNumerator   *uint64 `toml:"quorum_numerator,omitempty"`
	QuorumDenominator *uint64 `toml:"quorum_denominator,omitempty"`
	Clock             string  `toml:"clock,omitempty"`      // "manual" or "timestamp"
	BlockTime         string  `toml:"block_time,omitempty"` // Go duration, manual clock only
}

// TimelockFileConfig is the [timelock] section. Durations use Go syntax ("48h").
type TimelockFileConfig struct {
	MinDelay      string   `toml:"min_delay,omitempty"`
	GracePeriod   string   `toml:"grace_period,omitempty"`
	OpenExecutor  *bool    `toml:"open_executor,omitempty"`
	Executors     []string `toml:"executors,omitempty"`
	Cancellers    []string `toml:"cancellers,omitempty"`
	RenounceAdmin *bool    `toml:"renounce_admin,omitempty"`
}

// TokenFileConfig is the [token] section
type TokenFileConfig struct {
	Name   string `toml:"name,omitempty"`
	Symbol string `toml:"symbol,omitempty"`
}
