package config

import (
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	// Execution settings
	Debug          bool
	NonInteractive bool
	JSON           bool // Output in JSON format
	Timeout        time.Duration

	// Acting account for commands that submit calls. Empty means the deployer.
	From string

	// Command-specific settings (only populated for relevant commands)
	ListenAddr string

	// Config source tracking
	ConfigSource string // "governance.toml" or "defaults"

	// Resolved configurations
	Governance *GovernanceFileConfig
	Clock      ClockSettings
}

// ClockMode selects how proposal ordinals are measured
type ClockMode string

const (
	// ClockManual counts blocks advanced explicitly with mine/warp
	ClockManual ClockMode = "manual"
	// ClockTimestamp uses wall-clock seconds as ordinals
	ClockTimestamp ClockMode = "timestamp"
)

// ClockSettings is the resolved clock section of governance.toml
type ClockSettings struct {
	Mode      ClockMode
	BlockTime time.Duration
}
