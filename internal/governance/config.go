package governance

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/treb-gov/internal/governor"
)

// Config describes a governance deployment
type Config struct {
	Deployer    common.Address
	TokenName   string
	TokenSymbol string
	Governor    governor.Settings
	Timelock    TimelockConfig
}

// TimelockConfig configures the execution queue. Durations are in seconds.
type TimelockConfig struct {
	MinDelay      uint64
	GracePeriod   uint64
	OpenExecutor  bool
	Executors     []common.Address
	Cancellers    []common.Address
	RenounceAdmin bool
}

// Addresses are the deterministic component addresses of a deployment
type Addresses struct {
	Token    common.Address `json:"token"`
	Timelock common.Address `json:"timelock"`
	Governor common.Address `json:"governor"`
	Box      common.Address `json:"box"`
}

// DeriveAddresses computes component addresses from the deployer the way
// sequential contract creations would
func DeriveAddresses(deployer common.Address) Addresses {
	return Addresses{
		Token:    crypto.CreateAddress(deployer, 0),
		Timelock: crypto.CreateAddress(deployer, 1),
		Governor: crypto.CreateAddress(deployer, 2),
		Box:      crypto.CreateAddress(deployer, 3),
	}
}

// DefaultConfig is the reference deployment: 4% quorum, one-ordinal voting
// delay, a week-long voting period, two-day timelock and an open executor.
func DefaultConfig(deployer common.Address) Config {
	return Config{
		Deployer:    deployer,
		TokenName:   "Treb Governance",
		TokenSymbol: "TGOV",
		Governor:    governor.DefaultSettings(),
		Timelock: TimelockConfig{
			MinDelay:      2 * 24 * 60 * 60,
			GracePeriod:   14 * 24 * 60 * 60,
			OpenExecutor:  true,
			RenounceAdmin: true,
		},
	}
}
