package box_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/box"
	"github.com/trebuchet-org/treb-gov/internal/dispatch"
	"github.com/trebuchet-org/treb-gov/internal/domain"
)

var (
	boxAddr  = common.HexToAddress("0xB0B0000000000000000000000000000000000001")
	timelock = common.HexToAddress("0x7110000000000000000000000000000000000001")
	stranger = common.HexToAddress("0x5700000000000000000000000000000000000001")
)

func TestStore(t *testing.T) {
	var stored []domain.ParsedEvent
	b := box.New(boxAddr, timelock, domain.EventSinkFunc(func(e domain.ParsedEvent) { stored = append(stored, e) }), nil)

	t.Run("owner stores through calldata", func(t *testing.T) {
		data, err := box.StoreCalldata(big.NewInt(777))
		require.NoError(t, err)
		_, err = b.Call(context.Background(), dispatch.CallMsg{From: timelock, To: boxAddr, Data: data})
		require.NoError(t, err)
		assert.Equal(t, int64(777), b.Retrieve().Int64())
		require.Len(t, stored, 1)
	})

	t.Run("anyone else is rejected", func(t *testing.T) {
		data, err := box.StoreCalldata(big.NewInt(1))
		require.NoError(t, err)
		_, err = b.Call(context.Background(), dispatch.CallMsg{From: stranger, To: boxAddr, Data: data})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrAuthorization))
		assert.True(t, errors.Is(err, domain.ErrNotOwner))
		assert.Equal(t, int64(777), b.Retrieve().Int64())
	})

	t.Run("value is rejected", func(t *testing.T) {
		data, err := box.StoreCalldata(big.NewInt(2))
		require.NoError(t, err)
		_, err = b.Call(context.Background(), dispatch.CallMsg{From: timelock, To: boxAddr, Value: big.NewInt(1), Data: data})
		assert.True(t, errors.Is(err, domain.ErrCallFailed))
	})

	t.Run("retrieve returns encoded value", func(t *testing.T) {
		data, err := box.ABI.Pack("retrieve")
		require.NoError(t, err)
		out, err := b.Call(context.Background(), dispatch.CallMsg{From: stranger, To: boxAddr, Data: data})
		require.NoError(t, err)
		values, err := box.ABI.Unpack("retrieve", out)
		require.NoError(t, err)
		assert.Equal(t, int64(777), values[0].(*big.Int).Int64())
	})
}

func TestSnapshot(t *testing.T) {
	b := box.New(boxAddr, timelock, nil, nil)
	require.NoError(t, b.Store(timelock, big.NewInt(5)))

	restore := b.Snapshot()
	require.NoError(t, b.Store(timelock, big.NewInt(9)))
	require.NoError(t, b.TransferOwnership(timelock, stranger))
	restore()

	assert.Equal(t, int64(5), b.Retrieve().Int64())
	assert.Equal(t, timelock, b.Owner())
}
