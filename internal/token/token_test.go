package token_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/clock"
	"github.com/trebuchet-org/treb-gov/internal/dispatch"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/token"
	"github.com/trebuchet-org/treb-gov/internal/votes"
)

var (
	tokenAddr = common.HexToAddress("0x70c0000000000000000000000000000000000001")
	owner     = common.HexToAddress("0xA000000000000000000000000000000000000001")
	alice     = common.HexToAddress("0xA000000000000000000000000000000000000002")
	bob       = common.HexToAddress("0xA000000000000000000000000000000000000003")
)

func setup() (*token.Token, *votes.Ledger, *clock.ManualClock) {
	clk := clock.NewManual(10, 1000, 12)
	ledger := votes.NewLedger(clk, nil, nil)
	return token.New(tokenAddr, "Treb", "TREB", owner, ledger, clk, nil), ledger, clk
}

func TestMintTransferBurn(t *testing.T) {
	tok, ledger, clk := setup()

	require.NoError(t, tok.Mint(owner, alice, uint256.NewInt(100)))
	require.NoError(t, tok.Delegate(alice, alice))
	assert.Equal(t, uint64(100), ledger.CurrentPower(alice).Uint64())

	clk.Mine(1)
	require.NoError(t, tok.Transfer(alice, bob, uint256.NewInt(40)))
	assert.Equal(t, uint64(60), tok.BalanceOf(alice).Uint64())
	assert.Equal(t, uint64(40), tok.BalanceOf(bob).Uint64())
	assert.Equal(t, uint64(60), ledger.CurrentPower(alice).Uint64())
	// bob has not delegated so his units carry no power
	assert.True(t, ledger.CurrentPower(bob).IsZero())

	past, err := ledger.PowerAt(alice, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), past.Uint64())

	clk.Mine(1)
	require.NoError(t, tok.Burn(bob, uint256.NewInt(40)))
	assert.Equal(t, uint64(60), tok.TotalSupply().Uint64())
	assert.Equal(t, uint64(60), ledger.TotalPower().Uint64())
	assert.Equal(t, []common.Address{alice}, tok.Holders())
}

func TestRejections(t *testing.T) {
	tok, _, _ := setup()

	err := tok.Mint(alice, alice, uint256.NewInt(1))
	assert.True(t, errors.Is(err, domain.ErrNotOwner))

	err = tok.Transfer(alice, bob, uint256.NewInt(1))
	assert.True(t, errors.Is(err, domain.ErrCallFailed))

	huge := new(uint256.Int).Lsh(uint256.NewInt(1), 208)
	err = tok.Mint(owner, alice, huge)
	assert.True(t, errors.Is(err, domain.ErrCallFailed))
	assert.True(t, tok.TotalSupply().IsZero())
}

func TestCallTransfer(t *testing.T) {
	tok, ledger, _ := setup()
	require.NoError(t, tok.Mint(owner, alice, uint256.NewInt(10)))
	require.NoError(t, tok.Delegate(alice, alice))

	restore := tok.Snapshot()
	data, err := token.TransferCalldata(bob, uint256.NewInt(3))
	require.NoError(t, err)
	_, err = tok.Call(context.Background(), dispatch.CallMsg{From: alice, To: tokenAddr, Data: data})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), tok.BalanceOf(bob).Uint64())
	assert.Equal(t, uint64(7), ledger.CurrentPower(alice).Uint64())

	restore()
	assert.True(t, tok.BalanceOf(bob).IsZero())
	assert.Equal(t, uint64(10), ledger.CurrentPower(alice).Uint64())
}
