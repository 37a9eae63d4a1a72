package proposalfile_test

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/adapters/proposalfile"
)

func TestParseFile(t *testing.T) {
	content := `description: |
  # Store 42
  Sets the box value.
calls:
  - target: box
    sig: store(uint256)
    args: ["42"]
  - target: "0x00000000000000000000000000000000000000aa"
    value: "1000"
    data: "0x1234"
`
	path := filepath.Join(t.TempDir(), "proposal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	file, err := proposalfile.NewParser().ParseFile(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "# Store 42\nSets the box value.", file.Description)
	require.Len(t, file.Calls, 2)

	assert.Equal(t, "box", file.Calls[0].Target)
	assert.Equal(t, "store(uint256)", file.Calls[0].Signature)
	assert.Equal(t, []string{"42"}, file.Calls[0].Args)
	assert.Equal(t, 0, file.Calls[0].Value.Sign())

	assert.Equal(t, big.NewInt(1000), file.Calls[1].Value)
	assert.Equal(t, []byte{0x12, 0x34}, file.Calls[1].Data)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not yaml", content: "calls: [unterminated"},
		{name: "no calls", content: "description: nothing"},
		{name: "missing target", content: "calls:\n  - sig: store(uint256)\n"},
		{name: "sig and data", content: "calls:\n  - target: box\n    sig: retrieve()\n    data: \"0x\"\n"},
		{name: "args without sig", content: "calls:\n  - target: box\n    args: [\"1\"]\n"},
		{name: "negative value", content: "calls:\n  - target: box\n    value: \"-1\"\n"},
		{name: "bad data", content: "calls:\n  - target: box\n    data: zz\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := proposalfile.Parse([]byte(tt.content))
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := proposalfile.NewParser().ParseFile(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
