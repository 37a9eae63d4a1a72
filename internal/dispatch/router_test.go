package dispatch_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/dispatch"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

// counter adds the first payload byte to its total, failing on 0xff
type counter struct {
	total int
}

func (c *counter) Call(_ context.Context, msg dispatch.CallMsg) ([]byte, error) {
	if len(msg.Data) == 0 || msg.Data[0] == 0xff {
		return nil, errors.New("revert")
	}
	c.total += int(msg.Data[0])
	return nil, nil
}

func (c *counter) Snapshot() func() {
	saved := c.total
	return func() { c.total = saved }
}

var (
	sender = common.HexToAddress("0x1000000000000000000000000000000000000001")
	first  = common.HexToAddress("0x2000000000000000000000000000000000000001")
	second = common.HexToAddress("0x2000000000000000000000000000000000000002")
	wallet = common.HexToAddress("0x3000000000000000000000000000000000000001")
)

func newRouter() (*dispatch.Router, *counter, *counter) {
	r := dispatch.NewRouter(nil)
	a, b := &counter{}, &counter{}
	r.Register(first, a)
	r.Register(second, b)
	return r, a, b
}

func TestExecuteBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("all calls applied in order", func(t *testing.T) {
		r, a, b := newRouter()
		var seen []int
		err := r.ExecuteBatch(ctx, sender, []models.Call{
			{Target: first, Data: []byte{1}},
			{Target: second, Data: []byte{2}},
			{Target: first, Data: []byte{3}},
		}, func(i int, _ models.Call) { seen = append(seen, i) })
		require.NoError(t, err)
		assert.Equal(t, 4, a.total)
		assert.Equal(t, 2, b.total)
		assert.Equal(t, []int{0, 1, 2}, seen)
	})

	t.Run("failure rolls back earlier calls", func(t *testing.T) {
		r, a, b := newRouter()
		r.Bank().Credit(sender, big.NewInt(10))
		err := r.ExecuteBatch(ctx, sender, []models.Call{
			{Target: first, Data: []byte{1}},
			{Target: wallet, Value: big.NewInt(4)},
			{Target: second, Data: []byte{0xff}},
		}, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrExecution))
		assert.True(t, errors.Is(err, domain.ErrCallFailed))
		assert.Equal(t, 0, a.total)
		assert.Equal(t, 0, b.total)
		assert.Equal(t, int64(10), r.Bank().Balance(sender).Int64())
		assert.Zero(t, r.Bank().Balance(wallet).Sign())
	})

	t.Run("unknown target with payload", func(t *testing.T) {
		r, _, _ := newRouter()
		err := r.ExecuteBatch(ctx, sender, []models.Call{{Target: wallet, Data: []byte{1}}}, nil)
		assert.True(t, errors.Is(err, domain.ErrUnknownTarget))
		assert.Equal(t, domain.KindExecution, domain.KindOf(err))
	})

	t.Run("value beyond balance", func(t *testing.T) {
		r, _, _ := newRouter()
		err := r.ExecuteBatch(ctx, sender, []models.Call{{Target: wallet, Value: big.NewInt(1)}}, nil)
		assert.True(t, errors.Is(err, domain.ErrInsufficientBalance))
	})
}

func TestBank(t *testing.T) {
	b := dispatch.NewBank()
	b.Credit(sender, big.NewInt(5))
	require.NoError(t, b.Transfer(sender, wallet, big.NewInt(3)))
	assert.Equal(t, int64(2), b.Balance(sender).Int64())
	assert.Equal(t, []common.Address{sender, wallet}, b.Holders())

	restore := b.Snapshot()
	require.NoError(t, b.Transfer(sender, wallet, big.NewInt(2)))
	restore()
	assert.Equal(t, int64(2), b.Balance(sender).Int64())
	assert.Equal(t, int64(3), b.Balance(wallet).Int64())
}
