package cli

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"github.com/trebuchet-org/treb-gov/internal/app"
	"github.com/trebuchet-org/treb-gov/internal/cli/render"
	"github.com/trebuchet-org/treb-gov/internal/config"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
)

// parseAmount parses a positive decimal token amount
func parseAmount(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(strings.ReplaceAll(strings.TrimSpace(s), "_", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}

// parseValue parses a non-negative decimal integer of arbitrary size
func parseValue(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.ReplaceAll(strings.TrimSpace(s), "_", ""), 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid value %q", s)
	}
	return v, nil
}

// parseAccount accepts a hex address or the "deployer" alias
func parseAccount(a *app.App, s string) (common.Address, error) {
	if strings.EqualFold(strings.TrimSpace(s), "deployer") {
		return a.Deployment.Deployer, nil
	}
	return config.ParseAddress(s)
}

// parseAllocation parses an "account=amount" initial grant
func parseAllocation(a *app.App, s string, selfDelegate bool) (usecase.Allocation, error) {
	account, amount, ok := strings.Cut(s, "=")
	if !ok {
		return usecase.Allocation{}, fmt.Errorf("invalid allocation %q, expected account=amount", s)
	}
	addr, err := parseAccount(a, account)
	if err != nil {
		return usecase.Allocation{}, err
	}
	v, err := parseAmount(amount)
	if err != nil {
		return usecase.Allocation{}, err
	}
	return usecase.Allocation{Account: addr, Amount: v, SelfDelegate: selfDelegate}, nil
}

// renderResult writes result as JSON when --json is set, otherwise calls human
func renderResult[T any](cmd *cobra.Command, a *app.App, result T, human func(T) error) error {
	if a.Config.JSON {
		return render.NewJSONRenderer[T](cmd.OutOrStdout()).Render(result)
	}
	return human(result)
}
