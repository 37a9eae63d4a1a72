package interactive

import (
	"context"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/domain/config"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

func TestFuzzySearcher(t *testing.T) {
	items := []string{"0x1a2b3c4d5e6f [active] Upgrade box", "0xffff00001111 [pending] Lower quorum"}
	search := fuzzySearcher(items)

	assert.True(t, search("", 0))
	assert.True(t, search("upgrade", 0))
	assert.False(t, search("upgrade", 1))
	assert.True(t, search("lwrqrm", 1))
}

func TestFormatProposalOptions(t *testing.T) {
	p := &models.ProposalView{
		Proposal: models.Proposal{
			ID:          common.HexToHash("0xabcdef"),
			Description: "# Store 42\n\nLonger body",
		},
		State: models.ProposalStateActive,
	}
	opts := FormatProposalOptions([]*models.ProposalView{p})
	require.Len(t, opts, 1)
	assert.Contains(t, opts[0], "active")
	assert.Contains(t, opts[0], "# Store 42")
	assert.False(t, strings.Contains(opts[0], "Longer body"))
}

func TestSelectorNonInteractive(t *testing.T) {
	s := NewSelectorAdapter(&config.RuntimeConfig{NonInteractive: true})

	_, err := s.SelectProposal(context.Background(), []*models.ProposalView{{}, {}}, "pick")
	assert.Error(t, err)

	ok, err := s.Confirm(context.Background(), "sure?")
	require.NoError(t, err)
	assert.True(t, ok)
}
