package timelock

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/treb-gov/internal/dispatch"
	"github.com/trebuchet-org/treb-gov/internal/domain"
	"github.com/trebuchet-org/treb-gov/internal/domain/models"
)

const controllerABI = `[
	{"type":"function","name":"updateDelay","stateMutability":"nonpayable","inputs":[{"name":"newDelay","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"grantRole","stateMutability":"nonpayable","inputs":[{"name":"role","type":"bytes32"},{"name":"account","type":"address"}],"outputs":[]},
	{"type":"function","name":"revokeRole","stateMutability":"nonpayable","inputs":[{"name":"role","type":"bytes32"},{"name":"account","type":"address"}],"outputs":[]},
	{"type":"function","name":"renounceRole","stateMutability":"nonpayable","inputs":[{"name":"role","type":"bytes32"},{"name":"callerConfirmation","type":"address"}],"outputs":[]},
	{"type":"function","name":"getMinDelay","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"hasRole","stateMutability":"view","inputs":[{"name":"role","type":"bytes32"},{"name":"account","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"getTimestamp","stateMutability":"view","inputs":[{"name":"id","type":"bytes32"}],"outputs":[{"name":"","type":"uint256"}]}
]`

// ABI is the calldata interface of the controller
var ABI = dispatch.MustParseABI(controllerABI)

var _ dispatch.Target = (*Controller)(nil)

// Call applies a payload sent to the timelock's own address. An empty payload
// is a plain deposit, the router has already credited the value.
func (c *Controller) Call(_ context.Context, msg dispatch.CallMsg) ([]byte, error) {
	const op = "timelock.call"
	if len(msg.Data) == 0 {
		if msg.Value != nil && msg.Value.Sign() > 0 {
			c.events.Emit(&domain.NativeDepositEvent{From: msg.From, Amount: new(big.Int).Set(msg.Value)})
		}
		return nil, nil
	}

	method, args, err := dispatch.DecodeCall(ABI, msg.Data)
	if err != nil {
		return nil, domain.NewError(op, domain.ErrCallFailed, "%v", err)
	}
	if msg.Value != nil && msg.Value.Sign() > 0 {
		return nil, domain.NewError(op, domain.ErrCallFailed, "%s is not payable", method.Name)
	}

	switch method.Name {
	case "updateDelay":
		d := args[0].(*big.Int)
		if !d.IsUint64() {
			return nil, domain.NewError(op, domain.ErrCallFailed, "delay out of range")
		}
		return nil, c.UpdateDelay(msg.From, d.Uint64())
	case "grantRole", "revokeRole", "renounceRole":
		role, ok := models.RoleFromID(common.Hash(args[0].([32]byte)))
		if !ok {
			return nil, domain.NewError(op, domain.ErrCallFailed, "unknown role %x", args[0])
		}
		account := args[1].(common.Address)
		switch method.Name {
		case "grantRole":
			return nil, c.GrantRole(msg.From, role, account)
		case "revokeRole":
			return nil, c.RevokeRole(msg.From, role, account)
		default:
			return nil, c.RenounceRole(msg.From, role, account)
		}
	case "getMinDelay":
		return method.Outputs.Pack(new(big.Int).SetUint64(c.minDelay))
	case "hasRole":
		role, ok := models.RoleFromID(common.Hash(args[0].([32]byte)))
		return method.Outputs.Pack(ok && c.HasRole(role, args[1].(common.Address)))
	case "getTimestamp":
		return method.Outputs.Pack(new(big.Int).SetUint64(c.Timestamp(common.Hash(args[0].([32]byte)))))
	}
	return nil, domain.NewError(op, domain.ErrCallFailed, "unsupported method %s", method.Name)
}

// UpdateDelayCalldata encodes updateDelay(newDelay)
func UpdateDelayCalldata(newDelay uint64) ([]byte, error) {
	return ABI.Pack("updateDelay", new(big.Int).SetUint64(newDelay))
}

// GrantRoleCalldata encodes grantRole(role, account)
func GrantRoleCalldata(role models.Role, account common.Address) ([]byte, error) {
	return ABI.Pack("grantRole", [32]byte(role.ID()), account)
}

// RevokeRoleCalldata encodes revokeRole(role, account)
func RevokeRoleCalldata(role models.Role, account common.Address) ([]byte, error) {
	return ABI.Pack("revokeRole", [32]byte(role.ID()), account)
}
