package dispatch

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// MustParseABI parses a JSON ABI definition, panicking on malformed input.
// Only used for the package-level ABIs of built-in targets.
func MustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("invalid abi: %v", err))
	}
	return parsed
}

// DecodeCall resolves the method selected by data and unpacks its arguments
func DecodeCall(contract abi.ABI, data []byte) (*abi.Method, []any, error) {
	if len(data) < 4 {
		return nil, nil, fmt.Errorf("calldata too short: %d bytes", len(data))
	}
	method, err := contract.MethodById(data[:4])
	if err != nil {
		return nil, nil, err
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to unpack %s arguments: %w", method.Name, err)
	}
	return method, args, nil
}
