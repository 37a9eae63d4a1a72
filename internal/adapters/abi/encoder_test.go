package abi_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/treb-gov/internal/adapters/abi"
	"github.com/trebuchet-org/treb-gov/internal/box"
	"github.com/trebuchet-org/treb-gov/internal/dispatch"
)

func TestParseSignature(t *testing.T) {
	tests := []struct {
		name      string
		signature string
		wantName  string
		wantTypes []string
		wantErr   bool
	}{
		{name: "single arg", signature: "store(uint256)", wantName: "store", wantTypes: []string{"uint256"}},
		{name: "no args", signature: "retrieve()", wantName: "retrieve"},
		{name: "named args and aliases", signature: "transfer(address to, uint amount)", wantName: "transfer", wantTypes: []string{"address", "uint256"}},
		{name: "missing parens", signature: "store", wantErr: true},
		{name: "tuple", signature: "f((uint256,address))", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, types, err := abi.ParseSignature(tt.signature)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantTypes, types)
		})
	}
}

func TestEncoder(t *testing.T) {
	enc := abi.NewEncoder()

	t.Run("store matches the box calldata", func(t *testing.T) {
		data, err := enc.Encode("store(uint256)", []string{"42"})
		require.NoError(t, err)
		want, err := box.StoreCalldata(big.NewInt(42))
		require.NoError(t, err)
		assert.Equal(t, want, data)

		method, args, err := dispatch.DecodeCall(box.ABI, data)
		require.NoError(t, err)
		assert.Equal(t, "store", method.Name)
		assert.Equal(t, big.NewInt(42), args[0])
	})

	t.Run("selector only", func(t *testing.T) {
		data, err := enc.Encode("retrieve()", nil)
		require.NoError(t, err)
		assert.Equal(t, "0x2e64cec1", hexutil.Encode(data))
	})

	t.Run("mixed types", func(t *testing.T) {
		to := common.HexToAddress("0x00000000000000000000000000000000000000aa")
		data, err := enc.Encode("f(address,bool,uint8,bytes32)", []string{to.Hex(), "true", "7", "0x01"})
		require.NoError(t, err)
		require.Len(t, data, 4+32*4)
		assert.Equal(t, to.Bytes(), data[4+12:4+32])
		assert.Equal(t, byte(1), data[4+63])
		assert.Equal(t, byte(7), data[4+95])
		assert.Equal(t, byte(1), data[4+96])
	})

	errCases := []struct {
		name string
		sig  string
		args []string
	}{
		{"arity", "store(uint256)", nil},
		{"bad integer", "store(uint256)", []string{"abc"}},
		{"negative unsigned", "store(uint256)", []string{"-1"}},
		{"uint8 overflow", "f(uint8)", []string{"256"}},
		{"bad address", "f(address)", []string{"0x12"}},
		{"fixed bytes too long", "f(bytes2)", []string{"0x010203"}},
	}
	for _, tc := range errCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := enc.Encode(tc.sig, tc.args)
			assert.Error(t, err)
		})
	}
}
