package proposalfile

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/treb-gov/internal/usecase"
	"gopkg.in/yaml.v3"
)

// fileFormat is the on-disk layout of a proposal file:
//
//	description: |
//	  # Store 42
//	calls:
//	  - target: box
//	    sig: store(uint256)
//	    args: ["42"]
//	  - target: "0x..."
//	    value: "1000"
//	    data: "0x"
type fileFormat struct {
	Description string       `yaml:"description"`
	Calls       []callFormat `yaml:"calls"`
}

type callFormat struct {
	Target string   `yaml:"target"`
	Sig    string   `yaml:"sig"`
	Args   []string `yaml:"args"`
	Value  string   `yaml:"value"`
	Data   string   `yaml:"data"`
}

// Parser reads YAML proposal files
type Parser struct{}

// NewParser creates a new proposal file parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile reads and validates a proposal file
func (p *Parser) ParseFile(_ context.Context, path string) (*usecase.ProposalFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read proposal file: %w", err)
	}
	return Parse(data)
}

// Parse decodes the YAML content of a proposal file
func Parse(data []byte) (*usecase.ProposalFile, error) {
	var raw fileFormat
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse proposal file: %w", err)
	}
	if len(raw.Calls) == 0 {
		return nil, fmt.Errorf("proposal file has no calls")
	}

	out := &usecase.ProposalFile{
		Description: strings.TrimRight(raw.Description, "\n"),
		Calls:       make([]usecase.CallSpec, 0, len(raw.Calls)),
	}
	for i, c := range raw.Calls {
		spec, err := c.toSpec()
		if err != nil {
			return nil, fmt.Errorf("call %d: %w", i, err)
		}
		out.Calls = append(out.Calls, spec)
	}
	return out, nil
}

func (c callFormat) toSpec() (usecase.CallSpec, error) {
	if c.Target == "" {
		return usecase.CallSpec{}, fmt.Errorf("target is required")
	}
	if c.Sig != "" && c.Data != "" {
		return usecase.CallSpec{}, fmt.Errorf("sig and data are mutually exclusive")
	}
	if c.Sig == "" && len(c.Args) > 0 {
		return usecase.CallSpec{}, fmt.Errorf("args given without sig")
	}

	spec := usecase.CallSpec{
		Target:    c.Target,
		Signature: c.Sig,
		Args:      c.Args,
		Value:     new(big.Int),
	}
	if c.Value != "" {
		v, ok := new(big.Int).SetString(c.Value, 0)
		if !ok || v.Sign() < 0 {
			return usecase.CallSpec{}, fmt.Errorf("invalid value %q", c.Value)
		}
		spec.Value = v
	}
	if c.Data != "" {
		data, err := hexutil.Decode(c.Data)
		if err != nil {
			return usecase.CallSpec{}, fmt.Errorf("invalid data: %w", err)
		}
		spec.Data = data
	}
	return spec, nil
}

var _ usecase.ProposalFileParser = (*Parser)(nil)
