package accounts

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	appconfig "github.com/trebuchet-org/treb-gov/internal/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/governance"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// Resolver maps --from style references to addresses
type Resolver struct {
	deployer    common.Address
	defaultFrom string
}

// NewResolver creates a resolver defaulting to the configured sender, then the deployer
func NewResolver(cfg *config.RuntimeConfig, deployment governance.Config) *Resolver {
	return &Resolver{deployer: deployment.Deployer, defaultFrom: cfg.From}
}

// Resolve accepts a hex address or "deployer"
func (r *Resolver) Resolve(ref string) (common.Address, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		ref = r.defaultFrom
	}
	if ref == "" || strings.EqualFold(ref, "deployer") {
		return r.deployer, nil
	}
	addr, err := appconfig.ParseAddress(ref)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid account: %w", err)
	}
	return addr, nil
}

var _ usecase.Accounts = (*Resolver)(nil)
