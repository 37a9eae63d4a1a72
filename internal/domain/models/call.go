package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Call is a single (target, value, payload) triple of a proposal or timelock batch
type Call struct {
	Target common.Address `json:"target"`
	Value  *big.Int       `json:"value"`
	Data   hexutil.Bytes  `json:"data"`
}

// ValueOrZero returns the native value of the call, treating nil as zero
func (c Call) ValueOrZero() *big.Int {
	if c.Value == nil {
		return new(big.Int)
	}
	return c.Value
}

// ValueInRange reports whether the native value fits a uint256. Hashing packs
// values as uint256, so anything outside that range would alias another call.
func (c Call) ValueInRange() bool {
	v := c.ValueOrZero()
	return v.Sign() >= 0 && v.BitLen() <= 256
}

// SplitCalls returns the parallel target, value and payload lists used for hashing
func SplitCalls(calls []Call) ([]common.Address, []*big.Int, [][]byte) {
	targets := make([]common.Address, len(calls))
	values := make([]*big.Int, len(calls))
	payloads := make([][]byte, len(calls))
	for i, c := range calls {
		targets[i] = c.Target
		values[i] = c.ValueOrZero()
		payloads[i] = c.Data
	}
	return targets, values, payloads
}

// CloneCalls deep-copies a call list
func CloneCalls(calls []Call) []Call {
	out := make([]Call, len(calls))
	for i, c := range calls {
		out[i] = Call{
			Target: c.Target,
			Value:  new(big.Int).Set(c.ValueOrZero()),
			Data:   append(hexutil.Bytes(nil), c.Data...),
		}
	}
	return out
}
